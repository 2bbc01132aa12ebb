// Package writeback persists completed reflections to the external tabular
// store, with local fallbacks so a record is never lost outright.
package writeback

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

// Destination is an enumerated write target.
type Destination int

const (
	DestSheets Destination = iota
	DestTextFile
	DestArchive
)

// Default logging window: hourly polls run from the start hour through the
// wrap-around end hour (end modulo 24 is the final window).
const (
	DefaultLoggingStartHour = 9
	DefaultLoggingEndHour   = 24
)

// taskQueueSize bounds the write-back worker. Overflow rejects the submit
// and the record goes straight to the text-file fallback instead.
const taskQueueSize = 64

// Sub-row labels inside a day block.
var dayBlockLabels = []string{"activity", "pleasure", "value"}

// TableStore is the external tabular backend, addressed by 0-based row and
// column indices. Misses are (0, false, nil), not errors.
type TableStore interface {
	AppendRow(cells []string) (int, error)
	FindRow(column int, value string) (int, bool, error)
	FindColumn(row int, value string) (int, bool, error)
	SetCell(row, col int, value string) error
}

// Config carries the writer's tunables.
type Config struct {
	StartHour   int
	EndHour     int
	FailuresDir string
}

// Writer runs a single worker goroutine draining submitted reflections, so a
// slow remote call never stalls the conversation path.
type Writer struct {
	store   TableStore
	archive *Archive
	cfg     Config
	log     zerolog.Logger
	tasks   chan *reflection.Reflection
	done    chan struct{}
}

// NewWriter builds a writer. store may be nil (no spreadsheet configured), in
// which case the archive becomes the primary destination. archive may be nil
// too; the text-file fallback always works.
func NewWriter(store TableStore, archive *Archive, cfg Config, logger zerolog.Logger) *Writer {
	if cfg.StartHour == 0 {
		cfg.StartHour = DefaultLoggingStartHour
	}
	if cfg.EndHour == 0 {
		cfg.EndHour = DefaultLoggingEndHour
	}
	return &Writer{
		store:   store,
		archive: archive,
		cfg:     cfg,
		log:     logger.With().Str("component", "writeback").Logger(),
		tasks:   make(chan *reflection.Reflection, taskQueueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the worker.
func (w *Writer) Start() {
	go w.run()
}

// Stop drains the remaining tasks and waits for the worker to exit.
func (w *Writer) Stop() {
	close(w.tasks)
	<-w.done
}

// Submit queues a reflection for write-back and returns immediately. When the
// worker queue is full the record is demoted to the text-file fallback on the
// caller's goroutine rather than dropped.
func (w *Writer) Submit(r *reflection.Reflection) {
	select {
	case w.tasks <- r:
	default:
		w.log.Warn().Str("id", r.ID).Msg("write-back queue full, demoting to local file")
		if err := w.writeTextFile(r); err != nil {
			w.log.Error().Err(err).Str("id", r.ID).Msg("couldn't write fallback file")
		}
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for r := range w.tasks {
		w.write(r)
	}
}

// write pushes one reflection to its primary destination and demotes it to
// the text file on any failure.
func (w *Writer) write(r *reflection.Reflection) {
	dest := DestSheets
	if w.store == nil {
		dest = DestArchive
	}

	if err := w.writeTo(r, dest); err != nil {
		w.log.Error().Err(err).Str("id", r.ID).Msg("write-back failed, demoting to local file")
		if ferr := w.writeTo(r, DestTextFile); ferr != nil {
			w.log.Error().Err(ferr).Str("id", r.ID).Msg("couldn't write fallback file")
		}
		return
	}

	w.log.Info().Str("id", r.ID).Str("period", r.TargetPeriod).Msg("reflection written")

	// Keep the local archive in step with the remote store, best effort.
	if dest == DestSheets && w.archive != nil {
		if err := w.archive.Insert(r); err != nil {
			w.log.Warn().Err(err).Str("id", r.ID).Msg("couldn't archive reflection")
		}
	}
}

func (w *Writer) writeTo(r *reflection.Reflection, dest Destination) error {
	switch dest {
	case DestSheets:
		return w.writeSheets(r)
	case DestTextFile:
		return w.writeTextFile(r)
	case DestArchive:
		if w.archive == nil {
			return errors.New("no archive configured")
		}
		return w.archive.Insert(r)
	default:
		return fmt.Errorf("unknown destination %d", dest)
	}
}

// writeSheets locates (or appends) the day block for the reflection's date,
// finds the period column, and fills the three sub-rows.
func (w *Writer) writeSheets(r *reflection.Reflection) error {
	if w.store == nil {
		return errors.New("no table store configured")
	}

	row, ok, err := w.store.FindRow(0, r.Date())
	if err != nil {
		return fmt.Errorf("find date row: %w", err)
	}
	if !ok {
		row, err = w.AppendDay(r.TargetDate)
		if err != nil {
			return fmt.Errorf("append day block: %w", err)
		}
	}

	col, ok, err := w.store.FindColumn(row, r.TargetPeriod)
	if err != nil {
		return fmt.Errorf("find period column: %w", err)
	}
	if !ok {
		return fmt.Errorf("period column %q not found in row %d", r.TargetPeriod, row)
	}

	cells := []string{r.Activity, r.PleasureRating, r.ValueRating}
	for i, value := range cells {
		if err := w.store.SetCell(row+1+i, col, value); err != nil {
			return fmt.Errorf("set %s cell: %w", dayBlockLabels[i], err)
		}
	}
	return nil
}

// AppendDay appends a fresh day block (header row with the date, weekday and
// all period labels, then one labeled sub-row per field) and returns the
// header row's index.
func (w *Writer) AppendDay(day time.Time) (int, error) {
	if w.store == nil {
		return 0, errors.New("no table store configured")
	}

	header := []string{reflection.FormatDate(day), reflection.FormatWeekDay(day), reflection.WholeDayPeriod}
	for hour := w.cfg.StartHour; hour <= w.cfg.EndHour; hour++ {
		header = append(header, reflection.PeriodLabel(hour))
	}

	row, err := w.store.AppendRow(header)
	if err != nil {
		return 0, fmt.Errorf("append header row: %w", err)
	}
	for _, label := range dayBlockLabels {
		if _, err := w.store.AppendRow([]string{"", label}); err != nil {
			return 0, fmt.Errorf("append %s row: %w", label, err)
		}
	}
	return row, nil
}
