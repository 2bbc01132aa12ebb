package reflection

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WholeDayPeriod labels the end-of-day summary entry instead of an hourly window.
const WholeDayPeriod = "whole day"

// Reflection is a single time-windowed journal record. It is created empty by
// the scheduler, filled progressively by the conversation flow, and written
// back once all three fields are set.
type Reflection struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	EpochSeconds   int64     `json:"epoch_seconds"`
	TargetDate     time.Time `json:"target_date"`
	TargetPeriod   string    `json:"target_period"`
	Activity       string    `json:"activity"`
	PleasureRating string    `json:"pleasure_rating"`
	ValueRating    string    `json:"value_rating"`
}

// New creates a reflection for the hour window ending at now's hour.
// Entries created in the midnight hour log against the previous calendar day.
func New(now time.Time) *Reflection {
	target := now
	if now.Hour() == 0 {
		target = target.AddDate(0, 0, -1)
	}

	return &Reflection{
		ID:           strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt:    now,
		EpochSeconds: now.Unix(),
		TargetDate:   target,
		TargetPeriod: PeriodLabel(now.Hour()),
	}
}

// NewWithPeriod creates a reflection with an overridden period label, used for
// the whole-day summary entry and simulated polls.
func NewWithPeriod(now time.Time, period string) *Reflection {
	r := New(now)
	r.TargetPeriod = period
	return r
}

// PeriodLabel returns the "HH:00-HH:00" label for the window ending at hour.
// Hour 24 and hour 0 both yield "23:00-00:00".
func PeriodLabel(hour int) string {
	end := hour % 24
	start := end - 1
	if start < 0 {
		start = 23
	}
	return fmt.Sprintf("%02d:00-%02d:00", start, end)
}

// Complete reports whether the record is write-eligible.
func (r *Reflection) Complete() bool {
	return r.Activity != "" && r.PleasureRating != "" && r.ValueRating != ""
}

// Age returns how long ago the reflection was created.
func (r *Reflection) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(r.EpochSeconds, 0))
}

// Date returns the represented date as dd-mm-yyyy.
func (r *Reflection) Date() string {
	return FormatDate(r.TargetDate)
}

// WeekDay returns the short weekday label of the represented date.
func (r *Reflection) WeekDay() string {
	return FormatWeekDay(r.TargetDate)
}

// Describe returns the "date period (weekday)" line shown in prompts.
func (r *Reflection) Describe() string {
	return fmt.Sprintf("%s %s (%s)", r.Date(), r.TargetPeriod, r.WeekDay())
}

// Banner prefixes a message with the reflection's Describe line.
func (r *Reflection) Banner(message string) string {
	return fmt.Sprintf("[%s]\n%s", r.Describe(), message)
}

// FormatDate renders a time as dd-mm-yyyy, the date key used in the sheet.
func FormatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// FormatWeekDay renders a time's weekday as a short label.
func FormatWeekDay(t time.Time) string {
	return t.Format("Mon")
}
