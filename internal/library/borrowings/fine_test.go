package borrowings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeFine(t *testing.T) {
	due := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	const perDay = 1000

	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"before due", due.Add(-time.Hour), 0},
		{"exactly at due", due, 0},
		{"one millisecond late", due.Add(time.Millisecond), 1000},
		{"one hour late", due.Add(time.Hour), 1000},
		{"exactly one day late", due.Add(24 * time.Hour), 1000},
		{"one day and a millisecond late", due.Add(24*time.Hour + time.Millisecond), 2000},
		{"three and a half days late", due.Add(84 * time.Hour), 4000},
		{"exactly seven days late", due.Add(7 * 24 * time.Hour), 7000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeFine(tt.now, due, perDay))
		})
	}
}

func TestComputeFine_PerDayRate(t *testing.T) {
	due := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	now := due.Add(48 * time.Hour)
	assert.Equal(t, int64(5000), ComputeFine(now, due, 2500))
}
