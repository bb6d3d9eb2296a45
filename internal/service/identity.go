package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sostak/Bakalauras/internal/auth"
	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/internal/event"
	"github.com/sostak/Bakalauras/internal/repository"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 6

// refreshTokenTTL is the lifetime of a refresh token from issuance.
const refreshTokenTTL = 7 * 24 * time.Hour

// IdentityService implements the business logic for authentication, identity
// management, and role transitions.
type IdentityService struct {
	identityRepo repository.IdentityRepository
	profileRepo  repository.ProfileRepository
	jwtManager   *auth.JWTManager
	producer     *event.Producer
	logger       *slog.Logger
}

// NewIdentityService creates a new identity service.
func NewIdentityService(
	identityRepo repository.IdentityRepository,
	profileRepo repository.ProfileRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
) *IdentityService {
	return &IdentityService{
		identityRepo: identityRepo,
		profileRepo:  profileRepo,
		jwtManager:   jwtManager,
		producer:     producer,
		logger:       logger,
	}
}

// --- Input types ---

// RegisterInput holds the parameters for registering a new identity.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput holds the two credentials presented during the refresh
// handshake: the expired (or expiring) access token and the opaque refresh
// token issued alongside it.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string
}

// --- Auth Operations ---

// Register creates a new identity with the Customer role, its customer
// profile, and an initial token pair.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*domain.Identity, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.FirstName == "" {
		return nil, nil, apperrors.InvalidInput("first name is required")
	}
	if input.LastName == "" {
		return nil, nil, apperrors.InvalidInput("last name is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	identity := &domain.Identity{
		ID:           uuid.New().String(),
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Roles:        []domain.Role{domain.RoleCustomer},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	profile := &domain.CustomerProfile{
		ID:         uuid.New().String(),
		IdentityID: identity.ID,
		CreatedAt:  now,
	}

	if err := s.identityRepo.CreateWithCustomerProfile(ctx, identity, profile); err != nil {
		return nil, nil, fmt.Errorf("create identity: %w", err)
	}

	tokens, err := s.issueTokenPair(ctx, identity)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishIdentityRegistered(ctx, identity); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish identity.registered event",
			slog.String("identity_id", identity.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "identity registered",
		slog.String("identity_id", identity.ID),
		slog.String("email", identity.Email),
	)

	return identity, tokens, nil
}

// Login authenticates an identity with email and password, returning a fresh
// token pair. The stored refresh token is replaced unconditionally.
func (s *IdentityService) Login(ctx context.Context, input LoginInput) (*domain.Identity, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	identity, err := s.identityRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := s.issueTokenPair(ctx, identity)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "identity logged in",
		slog.String("identity_id", identity.ID),
		slog.String("email", identity.Email),
	)

	return identity, tokens, nil
}

// Refresh exchanges an expired-but-authentic access token plus the matching
// refresh token for a new pair. Rotation is one-shot: the presented refresh
// token is atomically replaced, and a second presentation of the same token
// fails even under concurrent requests.
func (s *IdentityService) Refresh(ctx context.Context, input RefreshInput) (*domain.TokenPair, error) {
	if input.AccessToken == "" {
		return nil, apperrors.InvalidInput("access token is required")
	}
	if input.RefreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	// The access token must be authentic but may be expired.
	claims, err := s.jwtManager.ValidateExpiredAccessToken(input.AccessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid access token")
	}

	identity, err := s.identityRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	presentedHash := hashToken(input.RefreshToken)
	if identity.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(identity.RefreshTokenHash), []byte(presentedHash)) != 1 {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	// The stored expiry must be strictly in the future; a token expiring at
	// this exact instant is already dead.
	if !identity.RefreshTokenExpiresAt.After(time.Now().UTC()) {
		return nil, apperrors.Unauthorized("refresh token has expired")
	}

	accessToken, err := s.jwtManager.CreateAccessToken(identity.ID, identity.Email, identity.Roles)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, err := s.jwtManager.CreateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(refreshTokenTTL)
	err = s.identityRepo.RotateRefreshToken(ctx, identity.ID, presentedHash, hashToken(refreshToken), expiresAt)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost the rotation race: another request consumed this token first.
			s.logger.WarnContext(ctx, "refresh token rotation conflict",
				slog.String("identity_id", identity.ID),
			)
			return nil, apperrors.Unauthorized("refresh token already used")
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("identity_id", identity.ID),
	)

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken verifies an access token for request authorization.
// Exposed so the HTTP layer can plug it into the auth middleware.
func (s *IdentityService) ValidateAccessToken(tokenString string) (*auth.Claims, error) {
	return s.jwtManager.ValidateAccessToken(tokenString)
}

// --- Helpers ---

// issueTokenPair creates an access/refresh token pair and stores the refresh
// token hash on the identity, replacing any previous token.
func (s *IdentityService) issueTokenPair(ctx context.Context, identity *domain.Identity) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.CreateAccessToken(identity.ID, identity.Email, identity.Roles)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, err := s.jwtManager.CreateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(refreshTokenTTL)
	if err := s.identityRepo.SetRefreshToken(ctx, identity.ID, hashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken returns the SHA256 hex digest of the given token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// validatePassword checks the minimum password length. No character-class
// requirements apply beyond the length floor.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
