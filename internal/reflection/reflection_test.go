package reflection

import (
	"testing"
	"time"
)

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "23:00-00:00"},
		{1, "00:00-01:00"},
		{9, "08:00-09:00"},
		{14, "13:00-14:00"},
		{23, "22:00-23:00"},
		{24, "23:00-00:00"},
	}
	for _, tt := range tests {
		if got := PeriodLabel(tt.hour); got != tt.want {
			t.Errorf("PeriodLabel(%d) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestNewDerivesPeriodAndDate(t *testing.T) {
	r := New(time.Date(2026, 3, 14, 14, 7, 0, 0, time.UTC))

	if r.ID == "" {
		t.Error("id not generated")
	}
	if r.TargetPeriod != "13:00-14:00" {
		t.Errorf("period = %q, want 13:00-14:00", r.TargetPeriod)
	}
	if r.Date() != "14-03-2026" {
		t.Errorf("date = %q, want 14-03-2026", r.Date())
	}
	if r.Complete() {
		t.Error("fresh reflection must not be write-eligible")
	}
}

func TestMidnightShiftsDateBack(t *testing.T) {
	r := New(time.Date(2026, 3, 15, 0, 3, 0, 0, time.UTC))

	if r.Date() != "14-03-2026" {
		t.Errorf("midnight entry date = %q, want previous day 14-03-2026", r.Date())
	}
	if r.TargetPeriod != "23:00-00:00" {
		t.Errorf("midnight period = %q, want 23:00-00:00", r.TargetPeriod)
	}
}

func TestNewWithPeriodOverridesLabelOnly(t *testing.T) {
	now := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	r := NewWithPeriod(now, WholeDayPeriod)

	if r.TargetPeriod != WholeDayPeriod {
		t.Errorf("period = %q, want %q", r.TargetPeriod, WholeDayPeriod)
	}
	if r.Date() != "14-03-2026" {
		t.Errorf("date = %q, want 14-03-2026", r.Date())
	}
}

func TestIDsAreUnique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := New(now)
		if seen[r.ID] {
			t.Fatalf("duplicate id %q", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestComplete(t *testing.T) {
	r := New(time.Now())
	r.Activity = "Read"
	if r.Complete() {
		t.Error("activity alone is not write-eligible")
	}
	r.PleasureRating = "4"
	r.ValueRating = "7"
	if !r.Complete() {
		t.Error("all three fields set must be write-eligible")
	}
}
