package domain

import "time"

// Profile is the role-specific record attached one-to-one to an identity.
// Exactly one variant exists per identity whose role is Customer or Mechanic,
// and the variant must match the identity's current role at all times.
type Profile interface {
	// ProfileRole returns the role this profile variant belongs to.
	ProfileRole() Role
}

// CustomerProfile is the profile variant for the Customer role.
type CustomerProfile struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfileRole implements Profile.
func (*CustomerProfile) ProfileRole() Role { return RoleCustomer }

// MechanicProfile is the profile variant for the Mechanic role.
type MechanicProfile struct {
	ID              string    `json:"id"`
	IdentityID      string    `json:"identity_id"`
	Specialization  string    `json:"specialization"`
	ExperienceLevel int       `json:"experience_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProfileRole implements Profile.
func (*MechanicProfile) ProfileRole() Role { return RoleMechanic }

// CustomerView joins a customer profile with its identity fields for admin
// listings and per-identity lookups.
type CustomerView struct {
	ID         string `json:"id"`
	IdentityID string `json:"identity_id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone,omitempty"`
}

// MechanicView joins a mechanic profile with its identity fields.
type MechanicView struct {
	ID              string `json:"id"`
	IdentityID      string `json:"identity_id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone,omitempty"`
	Specialization  string `json:"specialization"`
	ExperienceLevel int    `json:"experience_level"`
}
