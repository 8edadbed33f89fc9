package watchdog

import (
	"time"

	"github.com/ferrgo/kestrel/internal/model"
)

// PolicyResolver answers the effective SLA window per building. It is built
// once per sweep from the policy overrides loaded in a single query, so every
// Resolve call afterwards is an in-memory lookup.
type PolicyResolver struct {
	defaultGap time.Duration
	overrides  map[string]time.Duration
}

// NewPolicyResolver creates a resolver from the global default and the
// per-building overrides
func NewPolicyResolver(defaultGap time.Duration, policies []model.SLAPolicy) *PolicyResolver {
	overrides := make(map[string]time.Duration, len(policies))
	for _, p := range policies {
		if p.MaxGapHours > 0 {
			overrides[p.BuildingID] = p.MaxGap()
		}
	}

	return &PolicyResolver{
		defaultGap: defaultGap,
		overrides:  overrides,
	}
}

// Resolve returns the maximum allowed service gap for a building
func (r *PolicyResolver) Resolve(buildingID string) time.Duration {
	if gap, ok := r.overrides[buildingID]; ok {
		return gap
	}
	return r.defaultGap
}

// ScanWindow returns the tightest gap across all policies. Scanning with this
// window yields a superset of every building's overdue set from one indexed
// query; candidates are then re-checked against their own building's window.
func (r *PolicyResolver) ScanWindow() time.Duration {
	min := r.defaultGap
	for _, gap := range r.overrides {
		if gap < min {
			min = gap
		}
	}
	return min
}
