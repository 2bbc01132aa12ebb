// Package schedule drives the timed tasks: hourly poll generation, periodic
// queue snapshots, and the daily rollover.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/AlbusDoubledoor/self-reflection-bot/internal/reflection"
)

// PollSink receives freshly generated polls; implemented by the bot.
type PollSink interface {
	AddPoll(r *reflection.Reflection)
}

// DayAppender appends a new day block to the external store; implemented by
// the write-back writer. Optional.
type DayAppender interface {
	AppendDay(day time.Time) (int, error)
}

// Config carries the scheduling windows.
type Config struct {
	// StartHour through EndHour (wrap-around; EndHour modulo 24 is the final
	// window) are the logging hours.
	StartHour int
	EndHour   int
	// MinuteStart..MinuteEnd gate when within the hour a poll may fire.
	MinuteStart int
	MinuteEnd   int
	// CleanupHour is when the daily rollover runs.
	CleanupHour int

	Timezone     *time.Location
	SnapshotPath string
}

// Scheduler runs three fixed-interval jobs on a single cron runner; jobs
// never overlap each other but do run concurrently with update dispatch, so
// the only state shared with that path is the internally locked queue.
type Scheduler struct {
	cfg   Config
	sink  PollSink
	queue *reflection.Queue
	days  DayAppender
	log   zerolog.Logger
	clock func() time.Time
	cron  *cron.Cron

	mu     sync.Mutex
	polled map[int]struct{}
}

// New builds a scheduler. days may be nil when no external store is wired.
func New(cfg Config, sink PollSink, queue *reflection.Queue, days DayAppender, logger zerolog.Logger) *Scheduler {
	if cfg.Timezone == nil {
		cfg.Timezone = time.Local
	}
	return &Scheduler{
		cfg:    cfg,
		sink:   sink,
		queue:  queue,
		days:   days,
		log:    logger.With().Str("component", "scheduler").Logger(),
		clock:  time.Now,
		polled: make(map[int]struct{}),
	}
}

// SetClock overrides the time source.
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Start registers the jobs and launches the cron runner.
func (s *Scheduler) Start() error {
	c := cron.New(cron.WithLocation(s.cfg.Timezone))

	jobs := []struct {
		spec string
		fn   func()
	}{
		{"@every 5m", s.PollTick},
		{"@every 1h", s.SnapshotTick},
		{"@every 1h", s.RolloverTick},
	}
	for _, job := range jobs {
		if _, err := c.AddFunc(job.spec, job.fn); err != nil {
			return fmt.Errorf("register %s job: %w", job.spec, err)
		}
	}

	c.Start()
	s.cron = c
	s.log.Info().Msg("scheduler started")
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// PollTick generates at most one poll per hour window: the hour must be a
// logging hour, the minute must be inside the gate, and the hour must not
// already be in the dedupe register. The final window also gets the
// whole-day summary poll.
func (s *Scheduler) PollTick() {
	now := s.clock().In(s.cfg.Timezone)
	hour, minute := now.Hour(), now.Minute()
	final := s.cfg.EndHour % 24

	if hour < s.cfg.StartHour && hour != final {
		return
	}
	if minute < s.cfg.MinuteStart || minute > s.cfg.MinuteEnd {
		return
	}

	s.mu.Lock()
	_, seen := s.polled[hour]
	if !seen {
		s.polled[hour] = struct{}{}
	}
	s.mu.Unlock()
	if seen {
		return
	}

	s.log.Info().Int("hour", hour).Msg("sending new hourly request")
	s.sink.AddPoll(reflection.New(now))
	if hour == final {
		s.sink.AddPoll(reflection.NewWithPeriod(now, reflection.WholeDayPeriod))
	}
}

// SnapshotTick persists the whole queue; failures are logged and the queue
// keeps running in memory.
func (s *Scheduler) SnapshotTick() {
	if err := s.queue.Save(s.cfg.SnapshotPath); err != nil {
		s.log.Error().Err(err).Msg("couldn't save poll queue")
		return
	}
	s.log.Info().Int("size", s.queue.Size()).Msg("poll queue saved")
}

// RolloverTick runs once a day at the cleanup hour: clears the per-hour
// dedupe register, appends the new day block to the store, and purges
// expired queue entries.
func (s *Scheduler) RolloverTick() {
	now := s.clock().In(s.cfg.Timezone)
	if now.Hour() != s.cfg.CleanupHour {
		return
	}

	s.mu.Lock()
	s.polled = make(map[int]struct{})
	s.mu.Unlock()

	if s.days != nil {
		if _, err := s.days.AppendDay(now); err != nil {
			s.log.Error().Err(err).Msg("couldn't append new day")
		} else {
			s.log.Info().Msg("new day appended")
		}
	}

	before := s.queue.Size()
	removed := s.queue.PurgeExpired(now)
	s.log.Info().
		Int("before", before).
		Int("after", s.queue.Size()).
		Int("removed", removed).
		Msg("request queue clean-up completed")
}
