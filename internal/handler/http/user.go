package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/internal/service"
	"github.com/sostak/Bakalauras/pkg/middleware"
	"github.com/sostak/Bakalauras/pkg/validator"
)

// UserHandler handles HTTP requests for identity, profile, and role endpoints.
type UserHandler struct {
	service *service.IdentityService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.IdentityService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// UpdateProfileRequest is the JSON request body for updating the current
// identity's profile fields.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
}

// ChangeRoleRequest is the JSON request body for a role transition. The
// experience level is a pointer so a missing field is not mistaken for zero.
type ChangeRoleRequest struct {
	NewRole         string `json:"new_role" validate:"required"`
	Specialization  string `json:"specialization" validate:"omitempty,max=200"`
	ExperienceLevel *int   `json:"experience_level" validate:"omitempty,min=0"`
}

// --- Handlers ---

// GetCurrentUser handles GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	identityID := middleware.IdentityIDFromContext(r.Context())

	identity, err := h.service.GetUser(r.Context(), identityID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: identity.View()})
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identityID := middleware.IdentityIDFromContext(r.Context())
	identity, err := h.service.UpdateProfile(r.Context(), identityID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: identity.View()})
}

// UpdateUser handles PUT /api/v1/users/{id} (Admin only)
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	identityID := chi.URLParam(r, "id")

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identity, err := h.service.UpdateProfile(r.Context(), identityID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: identity.View()})
}

// ChangeRole handles PUT /api/v1/users/{id}/role (Admin only)
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	identityID := chi.URLParam(r, "id")

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	identity, err := h.service.ChangeRole(r.Context(), identityID, service.ChangeRoleInput{
		NewRole:         req.NewRole,
		Specialization:  req.Specialization,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: identity.View()})
}

// ListUsers handles GET /api/v1/users (Admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: users})
}

// ListCustomers handles GET /api/v1/customers (Admin only)
func (h *UserHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: customers})
}

// ListMechanics handles GET /api/v1/mechanics (Admin only)
func (h *UserHandler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.service.ListMechanics(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: mechanics})
}

// GetCustomer handles GET /api/v1/customers/{id} (owner or Admin)
func (h *UserHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")
	callerID := middleware.IdentityIDFromContext(r.Context())
	callerIsAdmin := middleware.HasRole(r.Context(), string(domain.RoleAdmin))

	customer, err := h.service.GetCustomer(r.Context(), identityID, callerID, callerIsAdmin)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: customer})
}

// GetMechanic handles GET /api/v1/mechanics/{id} (owner or Admin)
func (h *UserHandler) GetMechanic(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")
	callerID := middleware.IdentityIDFromContext(r.Context())
	callerIsAdmin := middleware.HasRole(r.Context(), string(domain.RoleAdmin))

	mechanic, err := h.service.GetMechanic(r.Context(), identityID, callerID, callerIsAdmin)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: mechanic})
}
