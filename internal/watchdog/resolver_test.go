package watchdog

import (
	"testing"
	"time"

	"github.com/ferrgo/kestrel/internal/model"
)

func TestPolicyResolverResolve(t *testing.T) {
	resolver := NewPolicyResolver(24*time.Hour, []model.SLAPolicy{
		{BuildingID: "bld-hospital", MaxGapHours: 4},
		{BuildingID: "bld-office", MaxGapHours: 48},
		{BuildingID: "bld-broken", MaxGapHours: 0}, // invalid, ignored
	})

	tests := []struct {
		buildingID string
		want       time.Duration
	}{
		{"bld-hospital", 4 * time.Hour},
		{"bld-office", 48 * time.Hour},
		{"bld-broken", 24 * time.Hour},
		{"bld-unknown", 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := resolver.Resolve(tt.buildingID); got != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.buildingID, got, tt.want)
		}
	}
}

func TestPolicyResolverScanWindow(t *testing.T) {
	tests := []struct {
		name       string
		defaultGap time.Duration
		policies   []model.SLAPolicy
		want       time.Duration
	}{
		{
			name:       "no overrides uses default",
			defaultGap: 24 * time.Hour,
			want:       24 * time.Hour,
		},
		{
			name:       "tighter override wins",
			defaultGap: 24 * time.Hour,
			policies: []model.SLAPolicy{
				{BuildingID: "bld-hospital", MaxGapHours: 4},
				{BuildingID: "bld-office", MaxGapHours: 48},
			},
			want: 4 * time.Hour,
		},
		{
			name:       "looser overrides keep the default",
			defaultGap: 24 * time.Hour,
			policies: []model.SLAPolicy{
				{BuildingID: "bld-office", MaxGapHours: 48},
			},
			want: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewPolicyResolver(tt.defaultGap, tt.policies)
			if got := resolver.ScanWindow(); got != tt.want {
				t.Errorf("ScanWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}
