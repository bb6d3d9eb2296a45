package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sostak/Bakalauras/internal/domain"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
)

// UpdateProfileInput holds the parameters for updating an identity's mutable
// fields. Nil pointers leave the corresponding field unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// GetUser retrieves an identity by its ID.
func (s *IdentityService) GetUser(ctx context.Context, identityID string) (*domain.Identity, error) {
	identity, err := s.identityRepo.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return identity, nil
}

// UpdateProfile updates an identity's name and phone fields.
func (s *IdentityService) UpdateProfile(ctx context.Context, identityID string, input UpdateProfileInput) (*domain.Identity, error) {
	identity, err := s.identityRepo.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("get identity for update: %w", err)
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, apperrors.InvalidInput("first name must not be empty")
		}
		identity.FirstName = *input.FirstName
	}

	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, apperrors.InvalidInput("last name must not be empty")
		}
		identity.LastName = *input.LastName
	}

	if input.Phone != nil {
		identity.Phone = *input.Phone
	}

	if err := s.identityRepo.Update(ctx, identity); err != nil {
		return nil, fmt.Errorf("update identity: %w", err)
	}

	// Publish update event (non-blocking on failure).
	if err := s.producer.PublishIdentityUpdated(ctx, identity); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish identity.updated event",
			slog.String("identity_id", identity.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "identity profile updated",
		slog.String("identity_id", identity.ID),
	)

	return identity, nil
}

// ListUsers returns the outward views of all identities.
func (s *IdentityService) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	identities, err := s.identityRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}

	views := make([]domain.UserView, 0, len(identities))
	for i := range identities {
		views = append(views, *identities[i].View())
	}

	return views, nil
}

// ListCustomers returns all customer views.
func (s *IdentityService) ListCustomers(ctx context.Context) ([]domain.CustomerView, error) {
	customers, err := s.profileRepo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// ListMechanics returns all mechanic views.
func (s *IdentityService) ListMechanics(ctx context.Context) ([]domain.MechanicView, error) {
	mechanics, err := s.profileRepo.ListMechanics(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mechanics: %w", err)
	}
	return mechanics, nil
}

// GetCustomer returns the customer view for an identity. Callers may read
// their own record; anyone else needs the Admin role.
func (s *IdentityService) GetCustomer(ctx context.Context, identityID, callerID string, callerIsAdmin bool) (*domain.CustomerView, error) {
	if identityID != callerID && !callerIsAdmin {
		return nil, apperrors.Forbidden("access to this customer record is not allowed")
	}

	customer, err := s.profileRepo.GetCustomerByIdentityID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

// GetMechanic returns the mechanic view for an identity. Callers may read
// their own record; anyone else needs the Admin role.
func (s *IdentityService) GetMechanic(ctx context.Context, identityID, callerID string, callerIsAdmin bool) (*domain.MechanicView, error) {
	if identityID != callerID && !callerIsAdmin {
		return nil, apperrors.Forbidden("access to this mechanic record is not allowed")
	}

	mechanic, err := s.profileRepo.GetMechanicByIdentityID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("get mechanic: %w", err)
	}

	return mechanic, nil
}
