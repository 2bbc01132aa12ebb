package writeback

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS reflections (
	id            TEXT PRIMARY KEY,
	target_date   TEXT NOT NULL,
	target_period TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	activity      TEXT NOT NULL,
	pleasure      TEXT NOT NULL,
	value         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reflections_date ON reflections(target_date);
`

// Archive is the local sqlite store of completed reflections, insert-only.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (creating if needed) the archive database.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Insert stores one completed reflection. Re-inserting the same id replaces
// the previous row.
func (a *Archive) Insert(r *reflection.Reflection) error {
	_, err := a.db.Exec(
		`INSERT OR REPLACE INTO reflections (id, target_date, target_period, created_at, activity, pleasure, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Date(), r.TargetPeriod, r.EpochSeconds, r.Activity, r.PleasureRating, r.ValueRating,
	)
	if err != nil {
		return fmt.Errorf("insert reflection: %w", err)
	}
	return nil
}

// Count returns the number of archived reflections.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM reflections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reflections: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
