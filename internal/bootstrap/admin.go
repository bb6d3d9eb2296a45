// Package bootstrap seeds baseline data the service needs before it can
// accept traffic.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/internal/repository"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
)

// bcryptCost matches the cost used for regular registrations.
const bcryptCost = 12

// SeedAdmin ensures an Admin identity with the given email exists. It is a
// no-op when the email is already registered, so repeated startups are safe.
// Empty credentials skip seeding entirely.
func SeedAdmin(ctx context.Context, repo repository.IdentityRepository, email, password string, logger *slog.Logger) error {
	if email == "" || password == "" {
		logger.InfoContext(ctx, "admin bootstrap skipped, credentials not configured")
		return nil
	}

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		logger.InfoContext(ctx, "admin identity already present",
			slog.String("email", email),
		)
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check admin identity: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &domain.Identity{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    "System",
		LastName:     "Administrator",
		Roles:        []domain.Role{domain.RoleAdmin},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := repo.Create(ctx, admin); err != nil {
		// A concurrent instance may have seeded first.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.InfoContext(ctx, "admin identity seeded by another instance",
				slog.String("email", email),
			)
			return nil
		}
		return fmt.Errorf("create admin identity: %w", err)
	}

	logger.InfoContext(ctx, "admin identity seeded",
		slog.String("identity_id", admin.ID),
		slog.String("email", email),
	)

	return nil
}
