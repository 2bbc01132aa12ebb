package reflection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the pending queue; the oldest entry is evicted
	// when a new one arrives at capacity.
	DefaultCapacity = 10000

	// DefaultRetention is how long an unanswered poll stays eligible.
	DefaultRetention = 7 * 24 * time.Hour
)

// Queue holds reflections awaiting a user response, oldest first. All
// operations hold a single lock: the scheduler and the update dispatcher
// share this object and nothing else coordinates them.
type Queue struct {
	mu        sync.Mutex
	entries   []*Reflection
	capacity  int
	retention time.Duration
}

// NewQueue creates an empty queue. Non-positive capacity or retention fall
// back to the defaults.
func NewQueue(capacity int, retention time.Duration) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Queue{
		entries:   make([]*Reflection, 0),
		capacity:  capacity,
		retention: retention,
	}
}

// Enqueue appends a reflection, evicting the oldest entry if at capacity.
func (q *Queue) Enqueue(r *Reflection) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) >= q.capacity {
		q.entries = q.entries[1:]
	}
	q.entries = append(q.entries, r)
}

// TakeNext removes and returns the oldest entry, or nil if the queue is empty.
func (q *Queue) TakeNext() *Reflection {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return nil
	}
	r := q.entries[0]
	q.entries = q.entries[1:]
	return r
}

// FindByID returns the matching entry without removing it, or nil. A miss is
// a normal outcome: stale callback buttons may reference removed entries.
func (q *Queue) FindByID(id string) *Reflection {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, r := range q.entries {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// RemoveByID removes the first entry with the given id; no-op if absent.
func (q *Queue) RemoveByID(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, r := range q.entries {
		if r.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// PurgeExpired removes entries strictly older than the retention window and
// returns how many were removed. An entry exactly at the boundary is kept.
func (q *Queue) PurgeExpired(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	removed := 0
	for _, r := range q.entries {
		if r.Age(now) > q.retention {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	q.entries = kept
	return removed
}

// Size returns the number of pending entries.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Snapshot returns a copy of the current entries in order.
func (q *Queue) Snapshot() []*Reflection {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Reflection, len(q.entries))
	copy(out, q.entries)
	return out
}

// Dump renders the queue contents for debug logging.
func (q *Queue) Dump() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var sb strings.Builder
	for _, r := range q.entries {
		fmt.Fprintf(&sb, "\nid=%s; timestamp=%d %s", r.ID, r.EpochSeconds, r.Describe())
	}
	return sb.String()
}

// Save writes the whole queue to path as one JSON document, replacing any
// previous snapshot. Capacity and retention are build constants and are not
// persisted.
func (q *Queue) Save(path string) error {
	q.mu.Lock()
	data, err := json.MarshalIndent(q.entries, "", "  ")
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write queue snapshot: %w", err)
	}
	return nil
}

// Load replaces the queue contents from a snapshot file. A missing or corrupt
// file leaves the queue empty and returns an error the caller only logs;
// starting fresh is the normal fallback.
func (q *Queue) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read queue snapshot: %w", err)
	}

	var entries []*Reflection
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("unmarshal queue snapshot: %w", err)
	}
	if entries == nil {
		entries = make([]*Reflection, 0)
	}

	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()
	return nil
}
