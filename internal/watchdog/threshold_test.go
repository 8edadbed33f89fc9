package watchdog

import (
	"testing"
	"time"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	gap := 4 * time.Hour

	tests := []struct {
		name        string
		lastCleaned time.Time
		want        bool
	}{
		{
			name:        "serviced well within window",
			lastCleaned: now.Add(-1 * time.Hour),
			want:        false,
		},
		{
			name:        "serviced exactly at cutoff is still compliant",
			lastCleaned: now.Add(-4 * time.Hour),
			want:        false,
		},
		{
			name:        "one instant past the cutoff breaches",
			lastCleaned: now.Add(-4 * time.Hour).Add(-time.Nanosecond),
			want:        true,
		},
		{
			name:        "serviced long ago breaches",
			lastCleaned: now.Add(-5 * time.Hour),
			want:        true,
		},
		{
			name:        "never serviced breaches",
			lastCleaned: time.Time{},
			want:        true,
		},
		{
			name:        "serviced in the future is compliant",
			lastCleaned: now.Add(time.Hour),
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsOverdue(now, tt.lastCleaned, gap)
			if got != tt.want {
				t.Errorf("IsOverdue(%v) = %v, want %v", tt.lastCleaned, got, tt.want)
			}
		})
	}
}

func TestCutoff(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	got := Cutoff(now, 24*time.Hour)
	want := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Cutoff() = %v, want %v", got, want)
	}
}

func TestHoursOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		lastCleaned time.Time
		want        float64
	}{
		{
			name:        "five hours since service",
			lastCleaned: now.Add(-5 * time.Hour),
			want:        5.00,
		},
		{
			name:        "fractional hours round to two decimals",
			lastCleaned: now.Add(-90 * time.Minute),
			want:        1.50,
		},
		{
			name:        "sub-cent gap rounds",
			lastCleaned: now.Add(-1*time.Hour - 20*time.Second),
			want:        1.01,
		},
		{
			name:        "never serviced clamps to zero",
			lastCleaned: time.Time{},
			want:        0,
		},
		{
			name:        "clock skew clamps to zero",
			lastCleaned: now.Add(time.Hour),
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HoursOverdue(now, tt.lastCleaned)
			if got != tt.want {
				t.Errorf("HoursOverdue(%v) = %v, want %v", tt.lastCleaned, got, tt.want)
			}
		})
	}
}
