package repository

import (
	"context"
	"time"

	"github.com/sostak/Bakalauras/internal/domain"
)

// IdentityRepository defines the persistence operations for identities and
// their refresh-token state. All multi-record mutations are atomic: either
// every write commits or none does.
type IdentityRepository interface {
	// Create inserts an identity without any profile row. Used for seeding
	// Admin identities, which carry no profile.
	Create(ctx context.Context, identity *domain.Identity) error

	// CreateWithCustomerProfile inserts a new identity together with its
	// initial customer profile in a single transaction.
	CreateWithCustomerProfile(ctx context.Context, identity *domain.Identity, profile *domain.CustomerProfile) error

	// GetByID retrieves an identity by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Identity, error)

	// GetByEmail retrieves an identity by its email address.
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)

	// Update modifies an identity's mutable profile fields (name, phone).
	Update(ctx context.Context, identity *domain.Identity) error

	// List returns all identities.
	List(ctx context.Context) ([]domain.Identity, error)

	// SetRefreshToken overwrites the stored refresh-token hash and expiry.
	// Used on login and registration, where no previous token is presented.
	SetRefreshToken(ctx context.Context, identityID, tokenHash string, expiresAt time.Time) error

	// RotateRefreshToken replaces the stored refresh-token hash only if it
	// still equals currentHash (compare-and-swap). Returns
	// apperrors.ErrConflict when the stored value changed underneath the
	// caller, which means a concurrent rotation won.
	RotateRefreshToken(ctx context.Context, identityID, currentHash, newHash string, expiresAt time.Time) error

	// ChangeRole atomically replaces the identity's role set with newRole,
	// removes any existing profile rows, and inserts the given profile
	// variant. A nil profile changes the role only (Admin transitions carry
	// no profile).
	ChangeRole(ctx context.Context, identityID string, newRole domain.Role, profile domain.Profile) error
}

// ProfileRepository defines read operations over the role-specific profile
// records, joined with their identity fields.
type ProfileRepository interface {
	// GetCustomerByIdentityID returns the customer view for an identity.
	GetCustomerByIdentityID(ctx context.Context, identityID string) (*domain.CustomerView, error)

	// GetMechanicByIdentityID returns the mechanic view for an identity.
	GetMechanicByIdentityID(ctx context.Context, identityID string) (*domain.MechanicView, error)

	// ListCustomers returns all customer views.
	ListCustomers(ctx context.Context) ([]domain.CustomerView, error)

	// ListMechanics returns all mechanic views.
	ListMechanics(ctx context.Context) ([]domain.MechanicView, error)
}
