package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/pkg/database"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const customerViewQuery = `
	SELECT cp.id, cp.identity_id, i.email, i.first_name, i.last_name, i.phone
	FROM customer_profiles cp
	JOIN identities i ON i.id = cp.identity_id`

const mechanicViewQuery = `
	SELECT mp.id, mp.identity_id, i.email, i.first_name, i.last_name, i.phone, mp.specialization, mp.experience_level
	FROM mechanic_profiles mp
	JOIN identities i ON i.id = mp.identity_id`

// GetCustomerByIdentityID returns the customer view for an identity.
func (r *ProfileRepository) GetCustomerByIdentityID(ctx context.Context, identityID string) (*domain.CustomerView, error) {
	row := r.pool.QueryRow(ctx, customerViewQuery+` WHERE cp.identity_id = $1`, identityID)

	var v domain.CustomerView
	err := row.Scan(&v.ID, &v.IdentityID, &v.Email, &v.FirstName, &v.LastName, &v.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer profile", identityID)
		}
		return nil, fmt.Errorf("scan customer profile: %w", err)
	}

	return &v, nil
}

// GetMechanicByIdentityID returns the mechanic view for an identity.
func (r *ProfileRepository) GetMechanicByIdentityID(ctx context.Context, identityID string) (*domain.MechanicView, error) {
	row := r.pool.QueryRow(ctx, mechanicViewQuery+` WHERE mp.identity_id = $1`, identityID)

	var v domain.MechanicView
	err := row.Scan(&v.ID, &v.IdentityID, &v.Email, &v.FirstName, &v.LastName, &v.Phone, &v.Specialization, &v.ExperienceLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("mechanic profile", identityID)
		}
		return nil, fmt.Errorf("scan mechanic profile: %w", err)
	}

	return &v, nil
}

// ListCustomers returns all customer views ordered by profile creation time.
func (r *ProfileRepository) ListCustomers(ctx context.Context) ([]domain.CustomerView, error) {
	rows, err := r.pool.Query(ctx, customerViewQuery+` ORDER BY cp.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.CustomerView{}
	for rows.Next() {
		var v domain.CustomerView
		if err := rows.Scan(&v.ID, &v.IdentityID, &v.Email, &v.FirstName, &v.LastName, &v.Phone); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

// ListMechanics returns all mechanic views ordered by profile creation time.
func (r *ProfileRepository) ListMechanics(ctx context.Context) ([]domain.MechanicView, error) {
	rows, err := r.pool.Query(ctx, mechanicViewQuery+` ORDER BY mp.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list mechanics: %w", err)
	}
	defer rows.Close()

	mechanics := []domain.MechanicView{}
	for rows.Next() {
		var v domain.MechanicView
		if err := rows.Scan(&v.ID, &v.IdentityID, &v.Email, &v.FirstName, &v.LastName, &v.Phone, &v.Specialization, &v.ExperienceLevel); err != nil {
			return nil, fmt.Errorf("scan mechanic row: %w", err)
		}
		mechanics = append(mechanics, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mechanic rows: %w", err)
	}

	return mechanics, nil
}
