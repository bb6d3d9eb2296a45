package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sostak/Bakalauras/internal/domain"
)

// refreshTokenBytes is the entropy of an opaque refresh token (256 bits).
const refreshTokenBytes = 32

// Claims represents the JWT claims carried by an access token. The role list
// rides alongside the registered claims so protected callers can authorize
// without a store lookup.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager mints and validates signed access tokens and generates opaque
// refresh tokens. It is stateless: it holds only signing configuration.
type JWTManager struct {
	secret       []byte
	issuer       string
	audience     string
	accessExpiry time.Duration
}

// NewJWTManager creates a token manager with the given symmetric secret,
// issuer/audience pair, and access token lifetime.
func NewJWTManager(secret, issuer, audience string, accessExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:       []byte(secret),
		issuer:       issuer,
		audience:     audience,
		accessExpiry: accessExpiry,
	}
}

// CreateAccessToken builds and signs an HS256 access token for the given
// identity. Each issuance gets a fresh jti, so two calls with identical
// inputs never produce byte-identical tokens.
func (m *JWTManager) CreateAccessToken(identityID, email string, roles []domain.Role) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Email: email,
		Roles: domain.RoleStrings(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ID:        uuid.New().String(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signedToken, nil
}

// CreateRefreshToken generates an opaque refresh token: 32 cryptographically
// random bytes, base64-encoded. It carries no decodable information.
func (m *JWTManager) CreateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// ValidateAccessToken verifies the signature, algorithm, issuer, audience,
// and expiry of an access token. Used to authorize ordinary protected
// requests.
func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now().UTC()) {
		return nil, fmt.Errorf("access token expired")
	}

	return claims, nil
}

// ValidateExpiredAccessToken verifies the signature, algorithm, issuer, and
// audience of an access token but deliberately does not reject on expiry.
// Used only inside the refresh handshake, never to authorize a request.
func (m *JWTManager) ValidateExpiredAccessToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString)
}

// parse verifies the signature and structural claims of a token without
// checking its lifetime. Expiry enforcement is left to the caller so the
// refresh handshake can accept expired-but-authentic tokens.
func (m *JWTManager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}

	if claims.Issuer != m.issuer {
		return nil, fmt.Errorf("invalid token issuer")
	}

	if !containsAudience(claims.Audience, m.audience) {
		return nil, fmt.Errorf("invalid token audience")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing subject")
	}

	return claims, nil
}

func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}
