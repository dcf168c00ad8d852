package utils

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"midweek", time.Date(2024, 3, 12, 15, 30, 0, 0, time.UTC), sunday},
		{"sunday midnight is its own week start", sunday, sunday},
		{"late sunday", time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC), sunday},
		{"saturday belongs to the preceding sunday", time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC), sunday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMinuteOfDay(t *testing.T) {
	if got := MinuteOfDay(time.Date(2024, 3, 12, 6, 0, 0, 0, time.UTC)); got != 360 {
		t.Errorf("MinuteOfDay(06:00) = %d, want 360", got)
	}
	if got := MinuteOfDay(time.Date(2024, 3, 12, 0, 5, 0, 0, time.UTC)); got != 5 {
		t.Errorf("MinuteOfDay(00:05) = %d, want 5", got)
	}
}
