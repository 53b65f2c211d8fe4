package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskdesk/internal/auth"
	"taskdesk/internal/config"
	"taskdesk/internal/handler"
	"taskdesk/internal/model"
	"taskdesk/internal/service"
)

const (
	testSecret   = "test-secret"
	testEmail    = "alice@example.com"
	testPassword = "secret1"
)

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[uuid.UUID]*model.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

// stubTaskRepo is an in-memory TaskRepository.
type stubTaskRepo struct {
	tasks map[uuid.UUID]*model.Task
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: map[uuid.UUID]*model.Task{}}
}

func (r *stubTaskRepo) Create(_ context.Context, task *model.Task) error {
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	if task, ok := r.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTaskRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	var owned []model.Task
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			owned = append(owned, *task)
		}
	}
	return owned, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *model.Task) error {
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *stubTaskRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.TaskStatus) error {
	if task, ok := r.tasks[id]; ok {
		task.Status = status
	}
	return nil
}

func (r *stubTaskRepo) MarkExpired(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if task, ok := r.tasks[id]; ok && task.Status != model.TaskStatusCompleted {
			task.Status = model.TaskStatusExpired
		}
	}
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tasks, id)
	return nil
}

// stubTokenStore is an in-memory TokenStoreInterface.
type stubTokenStore struct {
	tokens map[string]uuid.UUID
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: map[string]uuid.UUID{}}
}

func (s *stubTokenStore) StoreRefreshToken(_ context.Context, tokenID string, userID uuid.UUID, _ string, _ time.Duration) error {
	s.tokens[tokenID] = userID
	return nil
}

func (s *stubTokenStore) GetRefreshToken(_ context.Context, tokenID string) (uuid.UUID, string, error) {
	if userID, ok := s.tokens[tokenID]; ok {
		return userID, testEmail, nil
	}
	return uuid.Nil, "", fmt.Errorf("refresh token not found")
}

func (s *stubTokenStore) DeleteRefreshToken(_ context.Context, tokenID string) error {
	delete(s.tokens, tokenID)
	return nil
}

// testServer wires the real router, services, and middleware over in-memory
// stores so requests exercise the same path a live deployment uses.
type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{JWTSecret: testSecret}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	assert.NoError(t, err)

	userRepo := newStubUserRepo()
	userID := uuid.New()
	userRepo.users[userID] = &model.User{
		ID:           userID,
		Username:     "alice",
		Email:        testEmail,
		PasswordHash: string(hash),
		IsStaff:      true,
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(userRepo, jwtService, newStubTokenStore())
	userService := service.NewUserService(userRepo, nil)
	taskService := service.NewTaskService(newStubTaskRepo())

	e := echo.New()
	Register(
		e,
		cfg,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewTaskHandler(taskService),
	)

	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, authorization, body string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login() string {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/login", "", fmt.Sprintf(`{"email":%q,"password":%q}`, testEmail, testPassword))
	assert.Equal(s.t, http.StatusOK, rec.Code)

	var tokens handler.TokenResponse
	assert.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	assert.NotEmpty(s.t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestRouter_BearerTokenAuthenticatesSecuredRoutes(t *testing.T) {
	srv := newTestServer(t)
	bearer := "Bearer " + srv.login()

	// Profile read through the middleware.
	rec := srv.do(http.MethodGet, "/user", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	// Full task round trip: create, list pending, complete, list completed.
	due := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	rec = srv.do(http.MethodPost, "/task", bearer, fmt.Sprintf(`{"name":"Write report","due_date":%q}`, due))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created model.Task
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.TaskStatusPending, created.CurrentStatus)

	rec = srv.do(http.MethodGet, "/task", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_status":"PENDING"`)

	rec = srv.do(http.MethodPost, "/task/complete", bearer, fmt.Sprintf(`{"id":%q}`, created.ID))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/task", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_status":"COMPLETED"`)
}

func TestRouter_RejectsMissingOrInvalidBearerToken(t *testing.T) {
	srv := newTestServer(t)
	access := srv.login()

	// No Authorization header at all.
	rec := srv.do(http.MethodGet, "/task", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A valid token sent without the Bearer scheme is not accepted.
	rec = srv.do(http.MethodGet, "/task", access, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A token signed with another secret fails validation.
	forged, err := auth.NewJWTService("other-secret").GenerateAccessToken(uuid.New(), testEmail)
	assert.NoError(t, err)
	rec = srv.do(http.MethodGet, "/task", "Bearer "+forged, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProfileHidesSensitiveFields(t *testing.T) {
	srv := newTestServer(t)
	bearer := "Bearer " + srv.login()

	rec := srv.do(http.MethodGet, "/user", bearer, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "is_staff")
}
