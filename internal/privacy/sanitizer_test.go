package privacy

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/model"
)

func testLog() model.ServiceLog {
	return model.ServiceLog{
		ID:           primitive.NewObjectID(),
		CheckpointID: primitive.NewObjectID(),
		BuildingID:   "bld-1",
		CleanerName:  "Maria Souza",
		CleanerEmail: "maria@example.com",
		Notes:        "tenant in room 4 complained about the smell",
		Metadata: map[string]interface{}{
			"device": map[string]interface{}{
				"model":  "ScrubBot 3000",
				"serial": "SB3-0042",
			},
			"duration_seconds": 340,
		},
		ServicedAt: time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		Verified:   true,
	}
}

func TestRedactorStripsIdentityFields(t *testing.T) {
	redactor := NewRedactor([]string{"$.device.model", "$.duration_seconds"})
	record := redactor.Sanitize(testLog())

	// The strongest check: nothing identifying survives serialization
	payload, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, leaked := range []string{"Maria", "maria@example.com", "complained", "SB3-0042"} {
		if strings.Contains(string(payload), leaked) {
			t.Errorf("sanitized record leaks %q: %s", leaked, payload)
		}
	}
}

func TestRedactorRetainsAllowListedAttributes(t *testing.T) {
	redactor := NewRedactor([]string{"$.device.model", "$.duration_seconds"})
	log := testLog()
	record := redactor.Sanitize(log)

	if record.CheckpointID != log.CheckpointID.Hex() {
		t.Errorf("CheckpointID = %q, want %q", record.CheckpointID, log.CheckpointID.Hex())
	}
	if record.BuildingID != "bld-1" {
		t.Errorf("BuildingID = %q, want bld-1", record.BuildingID)
	}
	if !record.Verified {
		t.Error("Verified flag must survive")
	}
	if !record.ServicedAt.Equal(log.ServicedAt) {
		t.Errorf("ServicedAt = %v, want %v", record.ServicedAt, log.ServicedAt)
	}

	if got := record.Attributes["model"]; got != "ScrubBot 3000" {
		t.Errorf("Attributes[model] = %v, want ScrubBot 3000", got)
	}
	if got := record.Attributes["duration_seconds"]; got != 340 {
		t.Errorf("Attributes[duration_seconds] = %v, want 340", got)
	}
	if _, ok := record.Attributes["serial"]; ok {
		t.Error("serial is not allow-listed and must not survive")
	}
}

func TestRedactorAbsentPathsSkipped(t *testing.T) {
	redactor := NewRedactor([]string{"$.device.model", "$.supplies_used"})
	log := testLog()
	record := redactor.Sanitize(log)

	if _, ok := record.Attributes["supplies_used"]; ok {
		t.Error("absent path must not produce an attribute")
	}
	if got := record.Attributes["model"]; got != "ScrubBot 3000" {
		t.Errorf("Attributes[model] = %v, want ScrubBot 3000", got)
	}
}

func TestRedactorNoMetadata(t *testing.T) {
	redactor := NewRedactor([]string{"$.device.model"})
	log := testLog()
	log.Metadata = nil

	record := redactor.Sanitize(log)
	if record.Attributes != nil {
		t.Errorf("Attributes = %v, want nil for a record with no metadata", record.Attributes)
	}
}

func TestRedactorEmptyAllowList(t *testing.T) {
	redactor := NewRedactor(nil)
	record := redactor.Sanitize(testLog())

	if record.Attributes != nil {
		t.Errorf("Attributes = %v, want nil with an empty allow-list", record.Attributes)
	}
}

func TestLeafName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"$.device.model", "model"},
		{"$.duration_seconds", "duration_seconds"},
		{"$.device['serial']", "serial"},
	}

	for _, tt := range tests {
		if got := leafName(tt.path); got != tt.want {
			t.Errorf("leafName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
