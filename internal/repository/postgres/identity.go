package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/pkg/database"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
)

// IdentityRepository implements repository.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	pool database.DBTX
}

// NewIdentityRepository creates a new PostgreSQL-backed identity repository.
func NewIdentityRepository(pool database.DBTX) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

const identityColumns = `id, email, password_hash, first_name, last_name, phone, roles, refresh_token_hash, refresh_token_expires_at, created_at, updated_at`

// Create inserts an identity without any profile row.
func (r *IdentityRepository) Create(ctx context.Context, i *domain.Identity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO identities (id, email, password_hash, first_name, last_name, phone, roles, refresh_token_hash, refresh_token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		i.ID,
		i.Email,
		i.PasswordHash,
		i.FirstName,
		i.LastName,
		i.Phone,
		domain.RoleStrings(i.Roles),
		i.RefreshTokenHash,
		i.RefreshTokenExpiresAt,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("identity", "email", i.Email)
		}
		return fmt.Errorf("insert identity: %w", err)
	}

	return nil
}

// CreateWithCustomerProfile inserts the identity and its initial customer
// profile inside one transaction, so an identity never exists without the
// profile variant its role requires.
func (r *IdentityRepository) CreateWithCustomerProfile(ctx context.Context, i *domain.Identity, p *domain.CustomerProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO identities (id, email, password_hash, first_name, last_name, phone, roles, refresh_token_hash, refresh_token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		i.ID,
		i.Email,
		i.PasswordHash,
		i.FirstName,
		i.LastName,
		i.Phone,
		domain.RoleStrings(i.Roles),
		i.RefreshTokenHash,
		i.RefreshTokenExpiresAt,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("identity", "email", i.Email)
		}
		return fmt.Errorf("insert identity: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO customer_profiles (id, identity_id, created_at)
		VALUES ($1, $2, $3)`,
		p.ID,
		p.IdentityID,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an identity by its ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return r.scanIdentity(ctx, query, id)
}

// GetByEmail retrieves an identity by its email address.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
	return r.scanIdentity(ctx, query, email)
}

// Update modifies an identity's name and phone fields.
func (r *IdentityRepository) Update(ctx context.Context, i *domain.Identity) error {
	i.UpdatedAt = time.Now().UTC()

	ct, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET first_name = $1, last_name = $2, phone = $3, updated_at = $4
		WHERE id = $5`,
		i.FirstName,
		i.LastName,
		i.Phone,
		i.UpdatedAt,
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("identity", i.ID)
	}

	return nil
}

// List returns all identities ordered by creation time.
func (r *IdentityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		identity, err := scanIdentityRow(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identity rows: %w", err)
	}

	if identities == nil {
		identities = []domain.Identity{}
	}

	return identities, nil
}

// SetRefreshToken overwrites the stored refresh-token hash and expiry.
func (r *IdentityRepository) SetRefreshToken(ctx context.Context, identityID, tokenHash string, expiresAt time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET refresh_token_hash = $1, refresh_token_expires_at = $2, updated_at = $3
		WHERE id = $4`,
		tokenHash,
		expiresAt,
		time.Now().UTC(),
		identityID,
	)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("identity", identityID)
	}

	return nil
}

// RotateRefreshToken replaces the stored refresh-token hash only if it still
// equals currentHash. Zero rows affected means a concurrent rotation already
// replaced the token; the caller loses the race.
func (r *IdentityRepository) RotateRefreshToken(ctx context.Context, identityID, currentHash, newHash string, expiresAt time.Time) error {
	ct, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET refresh_token_hash = $1, refresh_token_expires_at = $2, updated_at = $3
		WHERE id = $4 AND refresh_token_hash = $5`,
		newHash,
		expiresAt,
		time.Now().UTC(),
		identityID,
		currentHash,
	)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return fmt.Errorf("refresh token already rotated: %w", apperrors.ErrConflict)
	}

	return nil
}

// ChangeRole atomically replaces the identity's role set and swaps the
// profile variant. Any failure rolls the whole transition back, so the
// profile always matches the stored role.
func (r *IdentityRepository) ChangeRole(ctx context.Context, identityID string, newRole domain.Role, profile domain.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		UPDATE identities SET roles = $1, updated_at = $2 WHERE id = $3`,
		[]string{string(newRole)},
		time.Now().UTC(),
		identityID,
	)
	if err != nil {
		return fmt.Errorf("update identity roles: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("identity", identityID)
	}

	// Admin transitions change the role only; the profile-swap rules apply
	// to Customer and Mechanic.
	if profile != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM customer_profiles WHERE identity_id = $1`, identityID); err != nil {
			return fmt.Errorf("delete customer profile: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM mechanic_profiles WHERE identity_id = $1`, identityID); err != nil {
			return fmt.Errorf("delete mechanic profile: %w", err)
		}

		switch p := profile.(type) {
		case *domain.CustomerProfile:
			_, err = tx.Exec(ctx, `
				INSERT INTO customer_profiles (id, identity_id, created_at)
				VALUES ($1, $2, $3)`,
				p.ID, p.IdentityID, p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert customer profile: %w", err)
			}
		case *domain.MechanicProfile:
			_, err = tx.Exec(ctx, `
				INSERT INTO mechanic_profiles (id, identity_id, specialization, experience_level, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				p.ID, p.IdentityID, p.Specialization, p.ExperienceLevel, p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert mechanic profile: %w", err)
			}
		default:
			return fmt.Errorf("unsupported profile variant %T", profile)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// scanIdentity executes a query expected to return a single identity row.
func (r *IdentityRepository) scanIdentity(ctx context.Context, query string, args ...any) (*domain.Identity, error) {
	return scanIdentityRow(r.pool.QueryRow(ctx, query, args...))
}

func scanIdentityRow(row pgx.Row) (*domain.Identity, error) {
	var (
		i     domain.Identity
		roles []string
	)

	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.PasswordHash,
		&i.FirstName,
		&i.LastName,
		&i.Phone,
		&roles,
		&i.RefreshTokenHash,
		&i.RefreshTokenExpiresAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	i.Roles, err = domain.RolesFromStrings(roles)
	if err != nil {
		return nil, fmt.Errorf("scan identity roles: %w", err)
	}

	return &i, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
