package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sostak/Bakalauras/internal/domain"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
)

// ChangeRoleInput holds the parameters for a role transition. Specialization
// and ExperienceLevel are required only when the target role is Mechanic.
// ExperienceLevel is a pointer so an absent value is distinguishable from a
// legitimate zero.
type ChangeRoleInput struct {
	NewRole         string
	Specialization  string
	ExperienceLevel *int
}

// ChangeRole transitions an identity to a new role, swapping its profile
// variant atomically. All validation happens before any mutation: an invalid
// transition leaves both the role and the profile untouched. The operation is
// not idempotent: a transition into the identity's current role still deletes
// and recreates the profile row.
func (s *IdentityService) ChangeRole(ctx context.Context, identityID string, input ChangeRoleInput) (*domain.Identity, error) {
	newRole, err := domain.ParseRole(input.NewRole)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", input.NewRole))
	}

	identity, err := s.identityRepo.GetByID(ctx, identityID)
	if err != nil {
		return nil, apperrors.NotFound("identity", identityID)
	}

	previousRole := identity.PrimaryRole()

	profile, err := buildProfile(identityID, newRole, input)
	if err != nil {
		return nil, err
	}

	if err := s.identityRepo.ChangeRole(ctx, identityID, newRole, profile); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}

	identity.Roles = []domain.Role{newRole}

	// Publish role change event (non-blocking on failure).
	if err := s.producer.PublishIdentityRoleChanged(ctx, identity, previousRole, newRole); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish identity.role_changed event",
			slog.String("identity_id", identity.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "identity role changed",
		slog.String("identity_id", identity.ID),
		slog.String("previous_role", string(previousRole)),
		slog.String("new_role", string(newRole)),
	)

	return identity, nil
}

// buildProfile constructs the profile variant required by the target role.
// Admin transitions return nil: the role changes but no profile is attached.
func buildProfile(identityID string, newRole domain.Role, input ChangeRoleInput) (domain.Profile, error) {
	now := time.Now().UTC()

	switch newRole {
	case domain.RoleCustomer:
		return &domain.CustomerProfile{
			ID:         uuid.New().String(),
			IdentityID: identityID,
			CreatedAt:  now,
		}, nil

	case domain.RoleMechanic:
		if input.Specialization == "" {
			return nil, apperrors.InvalidInput("specialization is required for the Mechanic role")
		}
		if input.ExperienceLevel == nil {
			return nil, apperrors.InvalidInput("experience level is required for the Mechanic role")
		}
		if *input.ExperienceLevel < 0 {
			return nil, apperrors.InvalidInput("experience level must not be negative")
		}
		return &domain.MechanicProfile{
			ID:              uuid.New().String(),
			IdentityID:      identityID,
			Specialization:  input.Specialization,
			ExperienceLevel: *input.ExperienceLevel,
			CreatedAt:       now,
		}, nil

	case domain.RoleAdmin:
		return nil, nil

	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown role %q", newRole))
	}
}
