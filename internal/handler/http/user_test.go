package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sostak/Bakalauras/internal/auth"
	"github.com/sostak/Bakalauras/internal/domain"
	"github.com/sostak/Bakalauras/internal/event"
	"github.com/sostak/Bakalauras/internal/service"
	apperrors "github.com/sostak/Bakalauras/pkg/errors"
	pkgkafka "github.com/sostak/Bakalauras/pkg/kafka"
	"github.com/sostak/Bakalauras/pkg/middleware"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockIdentityRepo struct {
	mock.Mock
}

func (m *mockIdentityRepo) Create(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepo) CreateWithCustomerProfile(ctx context.Context, identity *domain.Identity, profile *domain.CustomerProfile) error {
	args := m.Called(ctx, identity, profile)
	return args.Error(0)
}

func (m *mockIdentityRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockIdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockIdentityRepo) Update(ctx context.Context, identity *domain.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepo) List(ctx context.Context) ([]domain.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Identity), args.Error(1)
}

func (m *mockIdentityRepo) SetRefreshToken(ctx context.Context, identityID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, identityID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockIdentityRepo) RotateRefreshToken(ctx context.Context, identityID, currentHash, newHash string, expiresAt time.Time) error {
	args := m.Called(ctx, identityID, currentHash, newHash, expiresAt)
	return args.Error(0)
}

func (m *mockIdentityRepo) ChangeRole(ctx context.Context, identityID string, newRole domain.Role, profile domain.Profile) error {
	args := m.Called(ctx, identityID, newRole, profile)
	return args.Error(0)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) GetCustomerByIdentityID(ctx context.Context, identityID string) (*domain.CustomerView, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerView), args.Error(1)
}

func (m *mockProfileRepo) GetMechanicByIdentityID(ctx context.Context, identityID string) (*domain.MechanicView, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MechanicView), args.Error(1)
}

func (m *mockProfileRepo) ListCustomers(ctx context.Context) ([]domain.CustomerView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CustomerView), args.Error(1)
}

func (m *mockProfileRepo) ListMechanics(ctx context.Context) ([]domain.MechanicView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.MechanicView), args.Error(1)
}

// ============================================================================
// Fixtures
// ============================================================================

const testIdentityID = "550e8400-e29b-41d4-a716-446655440001"
const testAdminID = "550e8400-e29b-41d4-a716-446655440009"

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestService(identityRepo *mockIdentityRepo, profileRepo *mockProfileRepo) *service.IdentityService {
	logger := handlerTestLogger()
	jwtManager := auth.NewJWTManager("test-secret-at-least-32-characters!!", "autoshop", "autoshop-api", 15*time.Minute)
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	producer := event.NewProducer(kafkaProducer, logger)
	return service.NewIdentityService(identityRepo, profileRepo, jwtManager, producer, logger)
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// and injects the given identity and roles into the request context.
func fakeTokenValidator(identityID string, roles ...string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{IdentityID: identityID, Email: "test@example.com", Roles: roles}, nil
	}
}

// setupRouter mirrors the production routes using a fake token validator so
// tests can act as any identity without minting real tokens.
func setupRouter(svc *service.IdentityService, validator middleware.TokenValidator) *chi.Mux {
	logger := handlerTestLogger()
	authHandler := NewAuthHandler(svc, logger)
	userHandler := NewUserHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(validator))
		r.Get("/me", userHandler.GetCurrentUser)
		r.Put("/me", userHandler.UpdateProfile)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			r.Get("/", userHandler.ListUsers)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Put("/{id}/role", userHandler.ChangeRole)
		})
	})
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Use(middleware.Auth(validator))
		r.Get("/{id}", userHandler.GetCustomer)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			r.Get("/", userHandler.ListCustomers)
		})
	})
	r.Route("/api/v1/mechanics", func(r chi.Router) {
		r.Use(middleware.Auth(validator))
		r.Get("/{id}", userHandler.GetMechanic)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))
			r.Get("/", userHandler.ListMechanics)
		})
	})
	return r
}

type testResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *errorResponse  `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func handlerTestIdentity() *domain.Identity {
	now := time.Now().UTC()
	return &domain.Identity{
		ID:        testIdentityID,
		Email:     "test@example.com",
		FirstName: "John",
		LastName:  "Doe",
		Phone:     "+37060000000",
		Roles:     []domain.Role{domain.RoleCustomer},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ============================================================================
// Auth endpoint tests
// ============================================================================

func TestRegister_Success(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	identityRepo.On("CreateWithCustomerProfile", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	identityRepo.On("SetRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body := jsonBody(t, RegisterRequest{
		Email:     "new@example.com",
		Password:  "Password1",
		FirstName: "New",
		LastName:  "User",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var data struct {
		User   domain.UserView  `json:"user"`
		Tokens domain.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "new@example.com", data.User.Email)
	assert.Equal(t, domain.RoleCustomer, data.User.Role)
	assert.NotEmpty(t, data.Tokens.AccessToken)
	assert.NotEmpty(t, data.Tokens.RefreshToken)
	identityRepo.AssertExpectations(t)
}

func TestRegister_ValidationError(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	body := jsonBody(t, RegisterRequest{Email: "not-an-email", Password: "short"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Fields)
	identityRepo.AssertNotCalled(t, "CreateWithCustomerProfile")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	identityRepo.On("CreateWithCustomerProfile", mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("identity", "email", "dup@example.com"))

	body := jsonBody(t, RegisterRequest{
		Email:     "dup@example.com",
		Password:  "Password1",
		FirstName: "Dup",
		LastName:  "User",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	identityRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, apperrors.ErrNotFound)

	body := jsonBody(t, LoginRequest{Email: "test@example.com", Password: "Password1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestRefresh_MissingFields(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	body := jsonBody(t, RefreshRequest{RefreshToken: "only-half-the-pair"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestRefresh_ForgedAccessToken(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	body := jsonBody(t, RefreshRequest{AccessToken: "not.a.jwt", RefreshToken: "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Identity endpoint tests
// ============================================================================

func TestGetCurrentUser_Success(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	identityRepo.On("GetByID", mock.Anything, testIdentityID).Return(handlerTestIdentity(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	var view domain.UserView
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, testIdentityID, view.ID)
	assert.Equal(t, domain.RoleCustomer, view.Role)
	identityRepo.AssertExpectations(t)
}

func TestGetCurrentUser_MissingToken(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateProfile_Success(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	identityRepo.On("GetByID", mock.Anything, testIdentityID).Return(handlerTestIdentity(), nil)
	identityRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)

	first := "Jane"
	body := jsonBody(t, UpdateProfileRequest{FirstName: &first})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me", body)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var view domain.UserView
	resp := decodeResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "Jane", view.FirstName)
	identityRepo.AssertExpectations(t)
}

func TestUpdateUser_AdminUpdatesOther(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))

	identityRepo.On("GetByID", mock.Anything, testIdentityID).Return(handlerTestIdentity(), nil)
	identityRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Identity")).Return(nil)

	phone := "+37061111111"
	body := jsonBody(t, UpdateProfileRequest{Phone: &phone})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testIdentityID, body)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	identityRepo.AssertExpectations(t)
}

func TestUpdateUser_NonAdminForbidden(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	first := "Jane"
	body := jsonBody(t, UpdateProfileRequest{FirstName: &first})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testAdminID, body)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	identityRepo.AssertNotCalled(t, "Update")
}

// ============================================================================
// Role transition tests
// ============================================================================

func TestChangeRole_AdminSuccess(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))

	identityRepo.On("GetByID", mock.Anything, testIdentityID).Return(handlerTestIdentity(), nil)
	identityRepo.On("ChangeRole", mock.Anything, testIdentityID, domain.RoleMechanic, mock.AnythingOfType("*domain.MechanicProfile")).Return(nil)

	experience := 5
	body := jsonBody(t, ChangeRoleRequest{
		NewRole:         "Mechanic",
		Specialization:  "Transmission",
		ExperienceLevel: &experience,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testIdentityID+"/role", body)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var view domain.UserView
	resp := decodeResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, domain.RoleMechanic, view.Role)
	identityRepo.AssertExpectations(t)
}

func TestChangeRole_NonAdminForbidden(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	body := jsonBody(t, ChangeRoleRequest{NewRole: "Admin"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testIdentityID+"/role", body)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	identityRepo.AssertNotCalled(t, "ChangeRole")
}

func TestChangeRole_MechanicMissingSpecialization(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))

	identityRepo.On("GetByID", mock.Anything, testIdentityID).Return(handlerTestIdentity(), nil)

	experience := 5
	body := jsonBody(t, ChangeRoleRequest{NewRole: "Mechanic", ExperienceLevel: &experience})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testIdentityID+"/role", body)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	identityRepo.AssertNotCalled(t, "ChangeRole")
}

func TestChangeRole_MechanicMissingExperience(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))

	identityRepo.On("GetByID", mock.Anything, testIdentityID).Return(handlerTestIdentity(), nil)

	// No experience_level in the body: rejected, not defaulted to zero.
	body := jsonBody(t, ChangeRoleRequest{NewRole: "Mechanic", Specialization: "Engine"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/"+testIdentityID+"/role", body)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	identityRepo.AssertNotCalled(t, "ChangeRole")
}

// ============================================================================
// Profile listing and lookup tests
// ============================================================================

func TestListUsers_AdminOnly(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)

	adminRouter := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))
	customerRouter := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	identityRepo.On("List", mock.Anything).Return([]domain.Identity{*handlerTestIdentity()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	adminRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec = httptest.NewRecorder()
	customerRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetCustomer_OwnerAllowed(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testIdentityID, "Customer"))

	view := &domain.CustomerView{ID: "cp-1", IdentityID: testIdentityID, Email: "test@example.com"}
	profileRepo.On("GetCustomerByIdentityID", mock.Anything, testIdentityID).Return(view, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+testIdentityID, nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestGetCustomer_StrangerForbidden(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator("someone-else", "Customer"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+testIdentityID, nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	profileRepo.AssertNotCalled(t, "GetCustomerByIdentityID")
}

func TestGetMechanic_AdminAllowed(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))

	view := &domain.MechanicView{ID: "mp-1", IdentityID: testIdentityID, Specialization: "Engine", ExperienceLevel: 3}
	profileRepo.On("GetMechanicByIdentityID", mock.Anything, testIdentityID).Return(view, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/mechanics/"+testIdentityID, nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.MechanicView
	resp := decodeResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "Engine", got.Specialization)
}

func TestListMechanics_Admin(t *testing.T) {
	identityRepo := new(mockIdentityRepo)
	profileRepo := new(mockProfileRepo)
	svc := handlerTestService(identityRepo, profileRepo)
	router := setupRouter(svc, fakeTokenValidator(testAdminID, "Admin"))

	profileRepo.On("ListMechanics", mock.Anything).Return([]domain.MechanicView{
		{ID: "mp-1", IdentityID: testIdentityID, Specialization: "Engine", ExperienceLevel: 3},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/mechanics/", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []domain.MechanicView
	resp := decodeResponse(t, rec)
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Engine", got[0].Specialization)
}
