package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ferrgo/kestrel/internal/database"
	"github.com/ferrgo/kestrel/internal/model"
)

// PolicyService handles SLA policy reads and updates
type PolicyService struct {
	repo            *database.PolicyRepository
	defaultSLAHours int
}

// NewPolicyService creates a new policy service
func NewPolicyService(repo *database.PolicyRepository, defaultSLAHours int) *PolicyService {
	return &PolicyService{
		repo:            repo,
		defaultSLAHours: defaultSLAHours,
	}
}

// Effective returns the policy in force for a building: the override if one
// exists, otherwise the global default
func (s *PolicyService) Effective(ctx context.Context, buildingID string) (*model.SLAPolicy, error) {
	if buildingID == "" {
		return nil, fmt.Errorf("building_id is required")
	}

	policy, err := s.repo.GetByBuilding(ctx, buildingID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return &model.SLAPolicy{
				BuildingID:  buildingID,
				MaxGapHours: s.defaultSLAHours,
			}, nil
		}
		return nil, err
	}

	return policy, nil
}

// Set creates or replaces the override for a building
func (s *PolicyService) Set(ctx context.Context, policy *model.SLAPolicy) error {
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return s.repo.Upsert(ctx, policy)
}
