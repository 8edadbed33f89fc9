// Package privacy projects service records down to the fields that may leave
// the primary store. Identity fields (cleaner name, email, free-form notes)
// are never copied; device metadata survives only through an explicit
// JSONPath allow-list.
package privacy

import (
	"strings"

	"github.com/oliveagle/jsonpath"

	"github.com/ferrgo/kestrel/internal/model"
)

// Sanitizer strips personally identifying fields from a service record before
// it is handed to any external consumer
type Sanitizer interface {
	Sanitize(record model.ServiceLog) model.MirrorRecord
}

// Redactor is the standard Sanitizer. It works by projection, not deletion:
// the output starts empty and only allow-listed values are copied in, so a
// new PII field added to ServiceLog can never leak by omission.
type Redactor struct {
	retainPaths []string
}

// NewRedactor creates a redactor with the given JSONPath allow-list for the
// record's free-form metadata (e.g. "$.device.model")
func NewRedactor(retainPaths []string) *Redactor {
	return &Redactor{
		retainPaths: retainPaths,
	}
}

// Sanitize returns the externally shareable projection of a service record
func (r *Redactor) Sanitize(record model.ServiceLog) model.MirrorRecord {
	out := model.MirrorRecord{
		CheckpointID: record.CheckpointID.Hex(),
		BuildingID:   record.BuildingID,
		ServicedAt:   record.ServicedAt,
		Verified:     record.Verified,
	}

	if len(record.Metadata) == 0 || len(r.retainPaths) == 0 {
		return out
	}

	attrs := make(map[string]interface{})
	for _, path := range r.retainPaths {
		value, err := jsonpath.JsonPathLookup(record.Metadata, path)
		if err != nil {
			// Path absent in this record
			continue
		}
		attrs[leafName(path)] = value
	}

	if len(attrs) > 0 {
		out.Attributes = attrs
	}

	return out
}

// leafName returns the last segment of a JSONPath expression, used as the
// attribute key in the mirrored record
func leafName(path string) string {
	trimmed := strings.TrimSuffix(path, "]")
	if idx := strings.LastIndexAny(trimmed, ".["); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return strings.Trim(trimmed, "'\"$")
}
