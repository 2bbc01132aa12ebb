package writeback

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

// writeTextFile writes one key=value file per reflection into the failures
// directory, creating it if absent.
func (w *Writer) writeTextFile(r *reflection.Reflection) error {
	if err := os.MkdirAll(w.cfg.FailuresDir, 0755); err != nil {
		return fmt.Errorf("create failures dir: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "targetDate=%s\n", r.Date())
	fmt.Fprintf(&sb, "targetTimePeriod=%s\n", r.TargetPeriod)
	fmt.Fprintf(&sb, "timestamp=%d\n", r.EpochSeconds)
	fmt.Fprintf(&sb, "weekDay=%s\n", r.WeekDay())
	fmt.Fprintf(&sb, "activity=%s\n", r.Activity)
	fmt.Fprintf(&sb, "pleasure=%s\n", r.PleasureRating)
	fmt.Fprintf(&sb, "value=%s\n", r.ValueRating)

	path := filepath.Join(w.cfg.FailuresDir, r.ID+".txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write reflection file: %w", err)
	}
	return nil
}
