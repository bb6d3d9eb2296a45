package domain

import (
	"time"
)

// Identity is the authenticatable account record: credentials, assigned
// roles, and the current refresh-token state. At most one valid refresh token
// exists per identity at any time; only its SHA-256 hash is stored.
type Identity struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	Roles        []Role `json:"roles"`

	// RefreshTokenHash is empty until the first token pair is issued.
	RefreshTokenHash      string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrimaryRole returns the identity's single domain role. Role cardinality is
// one in this system; the slice form exists because the token claim carries a
// role list.
func (i *Identity) PrimaryRole() Role {
	if len(i.Roles) == 0 {
		return ""
	}
	return i.Roles[0]
}

// HasRole reports whether the identity holds the given role.
func (i *Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenPair holds an access and refresh token pair as returned to callers.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserView is the outward representation of an identity: everything a caller
// may see, with the single primary role flattened out.
type UserView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      Role   `json:"role"`
}

// View converts an identity into its outward representation.
func (i *Identity) View() *UserView {
	return &UserView{
		ID:        i.ID,
		Email:     i.Email,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		Phone:     i.Phone,
		Role:      i.PrimaryRole(),
	}
}
