package model

import (
	"strings"
	"testing"
	"time"
)

func TestCheckpointValidate(t *testing.T) {
	tests := []struct {
		name       string
		checkpoint Checkpoint
		wantErr    bool
	}{
		{
			name:       "valid checkpoint",
			checkpoint: Checkpoint{Name: "Lobby", BuildingID: "bld-1"},
		},
		{
			name:       "missing name",
			checkpoint: Checkpoint{BuildingID: "bld-1"},
			wantErr:    true,
		},
		{
			name:       "missing building",
			checkpoint: Checkpoint{Name: "Lobby"},
			wantErr:    true,
		},
		{
			name:       "name too long",
			checkpoint: Checkpoint{Name: strings.Repeat("x", 256), BuildingID: "bld-1"},
			wantErr:    true,
		},
		{
			name:       "invalid status",
			checkpoint: Checkpoint{Name: "Lobby", BuildingID: "bld-1", CurrentStatus: "DIRTY"},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.checkpoint.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckpointValidateDefaults(t *testing.T) {
	cp := Checkpoint{Name: "Lobby", BuildingID: "bld-1"}
	if err := cp.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cp.CurrentStatus != CheckpointStatusUnknown {
		t.Errorf("CurrentStatus = %q, want %q", cp.CurrentStatus, CheckpointStatusUnknown)
	}
	if cp.CreatedAt.IsZero() || cp.UpdatedAt.IsZero() {
		t.Error("Validate() should fill timestamps")
	}
}

func TestCheckpointNeverCleaned(t *testing.T) {
	cp := Checkpoint{Name: "Lobby", BuildingID: "bld-1"}
	if !cp.NeverCleaned() {
		t.Error("zero timestamp means never cleaned")
	}

	cp.LastCleanedTimestamp = time.Now()
	if cp.NeverCleaned() {
		t.Error("a serviced checkpoint is not never-cleaned")
	}
}

func TestSLAPolicyValidate(t *testing.T) {
	p := SLAPolicy{BuildingID: "bld-1", MaxGapHours: 4}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if p.MaxGap() != 4*time.Hour {
		t.Errorf("MaxGap() = %v, want 4h", p.MaxGap())
	}

	bad := SLAPolicy{BuildingID: "bld-1", MaxGapHours: 0}
	if err := bad.Validate(); err == nil {
		t.Error("zero max_gap_hours must fail validation")
	}
}
