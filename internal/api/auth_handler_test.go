package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/mocks"
	"github.com/taskflow/taskflow-api/internal/platform/cache"
	"github.com/taskflow/taskflow-api/internal/platform/mailer"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/service/verification"
	"github.com/taskflow/taskflow-api/internal/task"
)

// captureEnqueuer records enqueued email jobs without running a
// dispatcher.
type captureEnqueuer struct {
	mu   sync.Mutex
	jobs []task.EmailJob
	err  error
}

func (e *captureEnqueuer) EnqueueEmail(_ context.Context, job task.EmailJob) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, job)
	return nil
}

func (e *captureEnqueuer) Jobs() []task.EmailJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]task.EmailJob, len(e.jobs))
	copy(out, e.jobs)
	return out
}

type authFixture struct {
	users    *mocks.MockUserStore
	jwt      *mocks.MockJWTService
	tokens   *verification.TokenStore
	resetGen *auth.ResetTokenGenerator
	enqueuer *captureEnqueuer
	authCfg  *config.AuthConfig
	router   chi.Router
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	authCfg := &config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough!!",
		AccessTokenLifetimeMinutes:  15,
		RefreshTokenLifetimeDays:    7,
		RefreshReissueLifetimeDays:  1,
		AccessCookieName:            "access_token",
		ResetTokenLifetimeHours:     24,
		VerificationTokenTTLMinutes: 10,
	}
	serverCfg := &config.ServerConfig{
		Port:     8080,
		LogLevel: "debug",
		BaseURL:  "http://localhost:8080",
		Debug:    true,
	}

	f := &authFixture{
		users:    mocks.NewMockUserStore(),
		jwt:      &mocks.MockJWTService{},
		tokens:   verification.NewTokenStore(cache.NewMemoryCache(), authCfg.VerificationTokenTTL()),
		resetGen: auth.NewResetTokenGenerator(authCfg.JWTSecret, authCfg.ResetTokenLifetime()),
		enqueuer: &captureEnqueuer{},
		authCfg:  authCfg,
	}

	handler := NewAuthHandler(
		f.users,
		f.jwt,
		&mocks.MockPasswordVerifier{},
		f.tokens,
		f.resetGen,
		f.enqueuer,
		authCfg,
		serverCfg,
	)

	r := chi.NewRouter()
	r.Post("/api/auth/register", handler.Register)
	r.Get("/api/auth/confirm_register", handler.ConfirmRegister)
	r.Post("/api/auth/repeat_confirm", handler.RepeatConfirm)
	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/refresh", handler.Refresh)
	r.Post("/api/auth/logout", handler.Logout)
	r.Post("/api/auth/reset_password", handler.ResetPassword)
	r.Post("/api/auth/change_password/{uid}/{token}", handler.ChangePassword)
	f.router = r

	return f
}

func (f *authFixture) activeUser(t *testing.T, username, email, password string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, email, password)
	require.NoError(t, err)
	user.HashedPassword = mocks.MockHashPassword(password)
	user.Password = ""
	user.Active = true
	f.users.Add(user)
	return user
}

func (f *authFixture) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, uuid.Nil, resp.UserID)
	assert.NotEmpty(t, resp.Token, "debug mode echoes the verification token")

	created, err := f.users.GetByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.False(t, created.Active, "accounts start unconfirmed")
	assert.Empty(t, created.Password, "plaintext must not be retained")
	assert.NotEmpty(t, created.HashedPassword)

	jobs := f.enqueuer.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, mailer.KindRegisterConfirmation, jobs[0].Kind)
	assert.Equal(t, task.LaneHighPriority, jobs[0].Lane)
	assert.Equal(t, "new@example.com", jobs[0].To)
	assert.Contains(t, jobs[0].Data.Link, resp.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.activeUser(t, "existing", "taken@example.com", "password123")

	rec := f.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "another",
		Email:    "taken@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: "newuser",
		Email:    "new@example.com",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.enqueuer.Jobs())
}

func TestConfirmRegister(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "pending", "pending@example.com", "password123")
	user.Active = false

	issued, err := f.tokens.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/auth/confirm_register?token="+issued.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	confirmed, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.Active)

	// The link is single-use: a second click fails inside the TTL.
	rec = f.do(t, http.MethodGet, "/api/auth/confirm_register?token="+issued.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmRegisterMissingToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodGet, "/api/auth/confirm_register", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmRegisterUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodGet, "/api/auth/confirm_register?token="+uuid.NewString(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired verification token")
}

func TestRepeatConfirm(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "pending", "pending@example.com", "password123")
	user.Active = false

	rec := f.do(t, http.MethodPost, "/api/auth/repeat_confirm", RepeatConfirmRequest{
		Username: "pending",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	jobs := f.enqueuer.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, mailer.KindRepeatRegisterConfirmation, jobs[0].Kind)
	assert.Equal(t, task.LaneDefault, jobs[0].Lane)
	assert.Equal(t, "pending@example.com", jobs[0].To)
}

func TestRepeatConfirmRequiresCredentials(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "pending", "pending@example.com", "password123")
	user.Active = false

	tests := []struct {
		name string
		req  RepeatConfirmRequest
	}{
		{"wrong password", RepeatConfirmRequest{Username: "pending", Password: "wrongpass123"}},
		{"unknown username", RepeatConfirmRequest{Username: "nobody", Password: "password123"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/auth/repeat_confirm", tc.req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid credentials")
			assert.NotContains(t, rec.Body.String(), "token")
			assert.Empty(t, f.enqueuer.Jobs(), "no mail without valid credentials")
		})
	}
}

func TestRepeatConfirmAlreadyActive(t *testing.T) {
	f := newAuthFixture(t)
	f.activeUser(t, "done", "done@example.com", "password123")

	rec := f.do(t, http.MethodPost, "/api/auth/repeat_confirm", RepeatConfirmRequest{
		Username: "done",
		Password: "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.enqueuer.Jobs())
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "alice", "alice@example.com", "password123")

	rec := f.do(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Username: "alice",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	access := findCookie(t, rec, "access_token")
	assert.Equal(t, "mock-access-"+user.ID.String(), access.Value)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)
	assert.True(t, access.HttpOnly)

	refresh := findCookie(t, rec, "refresh_token")
	assert.Equal(t, "mock-refresh-"+user.ID.String(), refresh.Value)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.UserID)
	assert.NotEmpty(t, resp.AccessToken, "debug mode echoes tokens")
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.activeUser(t, "alice", "alice@example.com", "password123")

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Username: "alice", Password: "wrongpass123"}},
		{"unknown user", LoginRequest{Username: "nobody", Password: "password123"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/auth/login", tc.req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Invalid credentials")
		})
	}
}

func TestLoginUnconfirmedAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "pending", "pending@example.com", "password123")
	user.Active = false

	rec := f.do(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Username: "pending",
		Password: "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestLoginAlreadyAuthenticated(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "alice", "alice@example.com", "password123")

	rec := f.do(t, http.MethodPost, "/api/auth/login", LoginRequest{
		Username: "alice",
		Password: "password123",
	}, &http.Cookie{Name: "access_token", Value: "mock-access-" + user.ID.String()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Already authenticated")
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t)
	userID := uuid.New()
	refreshValue := "mock-refresh-" + userID.String()

	rec := f.do(t, http.MethodPost, "/api/auth/refresh", nil,
		&http.Cookie{Name: "refresh_token", Value: refreshValue})
	require.Equal(t, http.StatusOK, rec.Code)

	access := findCookie(t, rec, "access_token")
	assert.Equal(t, "mock-access-"+userID.String(), access.Value)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	// The same refresh token comes back, but only for the reissue window.
	refresh := findCookie(t, rec, "refresh_token")
	assert.Equal(t, refreshValue, refresh.Value)
	assert.Equal(t, int((24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestRefreshRejectsBadToken(t *testing.T) {
	f := newAuthFixture(t)

	t.Run("missing cookie", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/refresh", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/refresh", nil,
			&http.Cookie{Name: "refresh_token", Value: "garbage"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("access token in refresh cookie", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/refresh", nil,
			&http.Cookie{Name: "refresh_token", Value: "mock-access-" + uuid.NewString()})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	access := findCookie(t, rec, "access_token")
	assert.Less(t, access.MaxAge, 0)
	assert.Empty(t, access.Value)

	refresh := findCookie(t, rec, "refresh_token")
	assert.Less(t, refresh.MaxAge, 0)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/reset_password", ResetPasswordRequest{
		Email: "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), genericResetMessage)
	assert.Empty(t, f.enqueuer.Jobs(), "no email for unknown accounts")
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "alice", "alice@example.com", "password123")

	rec := f.do(t, http.MethodPost, "/api/auth/reset_password", ResetPasswordRequest{
		Email: "alice@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResetPasswordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, genericResetMessage, resp.Message)
	require.NotEmpty(t, resp.UID)
	require.NotEmpty(t, resp.Token)

	decoded, err := auth.DecodeUserID(resp.UID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, decoded)
	assert.True(t, f.resetGen.CheckToken(user, resp.Token))

	jobs := f.enqueuer.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, mailer.KindResetPasswordConfirmation, jobs[0].Kind)
	assert.Equal(t, task.LaneLowPriority, jobs[0].Lane)
	assert.Contains(t, jobs[0].Data.Link, resp.UID)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "alice", "alice@example.com", "password123")
	oldHash := user.HashedPassword

	token := f.resetGen.MakeToken(user)
	uid := auth.EncodeUserID(user.ID)

	rec := f.do(t, http.MethodPost, "/api/auth/change_password/"+uid+"/"+token,
		ChangePasswordRequest{Password: "newpassword456"})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, updated.HashedPassword)
	assert.Empty(t, updated.Password)

	// Changing the password invalidates every outstanding reset token.
	assert.False(t, f.resetGen.CheckToken(updated, token))
}

func TestChangePasswordRejectsBadLink(t *testing.T) {
	f := newAuthFixture(t)
	user := f.activeUser(t, "alice", "alice@example.com", "password123")
	uid := auth.EncodeUserID(user.ID)

	t.Run("garbage uid", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/change_password/%21%21/whatever",
			ChangePasswordRequest{Password: "newpassword456"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid password reset link")
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost := auth.EncodeUserID(uuid.New())
		rec := f.do(t, http.MethodPost, "/api/auth/change_password/"+ghost+"/"+f.resetGen.MakeToken(user),
			ChangePasswordRequest{Password: "newpassword456"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/change_password/"+uid+"/1abc-"+strings.Repeat("0", 32),
			ChangePasswordRequest{Password: "newpassword456"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired password reset token")
	})
}
