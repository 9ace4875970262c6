package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/platform/mailer"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/service/verification"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/internal/task"
)

// refreshCookieName is the cookie carrying the refresh token.
const refreshCookieName = "refresh_token"

// genericResetMessage is returned by the password reset endpoint whether
// or not the email is registered, so the endpoint cannot be used to
// probe for accounts.
const genericResetMessage = "If the email is registered, a password reset link has been sent"

// AuthHandler handles authentication-related API requests: registration
// with email confirmation, session management and password reset.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	tokenStore       *verification.TokenStore
	resetTokens      *auth.ResetTokenGenerator
	enqueuer         task.EmailEnqueuer
	authCfg          *config.AuthConfig
	serverCfg        *config.ServerConfig
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	tokenStore *verification.TokenStore,
	resetTokens *auth.ResetTokenGenerator,
	enqueuer task.EmailEnqueuer,
	authCfg *config.AuthConfig,
	serverCfg *config.ServerConfig,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		tokenStore:       tokenStore,
		resetTokens:      resetTokens,
		enqueuer:         enqueuer,
		authCfg:          authCfg,
		serverCfg:        serverCfg,
		validator:        validator.New(),
	}
}

// Register handles POST /api/auth/register. The account is created
// inactive; a single-use confirmation link goes out by email on the
// high priority lane.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := domain.NewUser(req.Username, req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data: "+err.Error())
		return
	}

	hashed, err := auth.HashPassword(user.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	issued, err := h.tokenStore.Issue(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to issue verification token", err)
		return
	}

	h.sendConfirmationEmail(r, user, issued, mailer.KindRegisterConfirmation)

	resp := RegisterResponse{
		UserID:  user.ID,
		Message: "Registration successful, check your email to confirm the account",
	}
	if h.serverCfg.Debug {
		resp.Token = issued.Token
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// ConfirmRegister handles GET /api/auth/confirm_register?token=...
// Consuming the token is the only read path, so a second click on the
// same link fails even inside the TTL.
func (h *AuthHandler) ConfirmRegister(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Verification token is missing")
		return
	}

	data, err := h.tokenStore.Consume(r.Context(), token)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	user, err := h.userStore.GetByID(r.Context(), data.SubjectID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if user.Active {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Account already confirmed")
		return
	}

	user.Active = true
	if err := h.userStore.Update(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to confirm account", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{
		Message: "Email confirmed, you can now log in",
	})
}

// RepeatConfirm handles POST /api/auth/repeat_confirm. The caller
// re-proves their credentials and receives a fresh confirmation token
// for an unconfirmed account; the previous token, if still alive, stays
// in the cache until its TTL but a fresh link supersedes it in the
// user's mailbox. Routine traffic, default lane.
func (h *AuthHandler) RepeatConfirm(w http.ResponseWriter, r *http.Request) {
	var req RepeatConfirmRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if store.IsNotFound(err) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to authenticate user", err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.Active {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Account already confirmed")
		return
	}

	issued, err := h.tokenStore.Issue(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to issue verification token", err)
		return
	}

	h.sendConfirmationEmail(r, user, issued, mailer.KindRepeatRegisterConfirmation)

	resp := RegisterResponse{
		UserID:  user.ID,
		Message: "Confirmation email sent",
	}
	if h.serverCfg.Debug {
		resp.Token = issued.Token
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Login handles POST /api/auth/login. A caller that already presents a
// valid session is rejected rather than silently re-authenticated.
// Success sets the access and refresh cookies.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.hasValidSession(r) {
		err := auth.ErrAlreadyAuthenticated
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if store.IsNotFound(err) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to authenticate user", err)
		return
	}

	// Unconfirmed accounts cannot log in; the response is identical to a
	// wrong password.
	if !user.Active {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate session", err)
		return
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate session", err)
		return
	}

	h.setSessionCookie(w, h.authCfg.AccessCookieName, accessToken, h.authCfg.AccessTokenLifetime())
	h.setSessionCookie(w, refreshCookieName, refreshToken, h.authCfg.RefreshTokenLifetime())

	resp := LoginResponse{
		UserID:  user.ID,
		Message: "Login successful",
	}
	if h.serverCfg.Debug {
		resp.AccessToken = accessToken
		resp.RefreshToken = refreshToken
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Refresh handles POST /api/auth/refresh. It exchanges a valid refresh
// cookie for a new access cookie. The same refresh token is re-emitted
// with the shorter reissue window rather than rotated; its embedded
// expiry still bounds the session absolutely.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		rerr := auth.ErrMissingRefreshToken
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(rerr), GetSafeErrorMessage(rerr), rerr)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), cookie.Value)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate session", err)
		return
	}

	h.setSessionCookie(w, h.authCfg.AccessCookieName, accessToken, h.authCfg.AccessTokenLifetime())
	h.setSessionCookie(w, refreshCookieName, cookie.Value, h.authCfg.RefreshReissueLifetime())

	resp := RefreshResponse{Message: "Token refreshed"}
	if h.serverCfg.Debug {
		resp.AccessToken = accessToken
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout. Tokens are self-contained and
// cannot be revoked server-side; logout clears the cookies so the
// browser stops presenting them.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w, h.authCfg.AccessCookieName)
	h.clearSessionCookie(w, refreshCookieName)

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Logged out"})
}

// ResetPassword handles POST /api/auth/reset_password. The response
// never reveals whether the email exists. Reset links ride the low
// priority lane.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !store.IsNotFound(err) {
			logger.FromContext(r.Context()).Error("failed to look up reset email",
				slog.Any("error", err))
		}
		shared.RespondWithJSON(w, r, http.StatusOK, ResetPasswordResponse{Message: genericResetMessage})
		return
	}

	token := h.resetTokens.MakeToken(user)
	uid := auth.EncodeUserID(user.ID)
	link := verification.BuildPasswordResetLink(h.serverCfg.BaseURL, uid, token)

	job := task.NewEmailJob(mailer.KindResetPasswordConfirmation, user.Email, mailer.TemplateData{
		Username: user.Username,
		Link:     link,
	})
	if err := h.enqueuer.EnqueueEmail(r.Context(), job); err != nil {
		logger.FromContext(r.Context()).Warn("failed to enqueue password reset email",
			slog.String("job_id", job.ID.String()),
			slog.Any("error", err))
	}

	resp := ResetPasswordResponse{Message: genericResetMessage}
	if h.serverCfg.Debug {
		resp.UID = uid
		resp.Token = token
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ChangePassword handles POST /api/auth/change_password/{uid}/{token}.
// The token binds to the user's current password hash, so a completed
// change invalidates every outstanding reset link.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := auth.DecodeUserID(chi.URLParam(r, "uid"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		if store.IsNotFound(err) {
			lerr := auth.ErrInvalidResetLink
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(lerr), GetSafeErrorMessage(lerr), lerr)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to change password", err)
		return
	}

	if !h.resetTokens.CheckToken(user, chi.URLParam(r, "token")) {
		terr := auth.ErrInvalidResetToken
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(terr), GetSafeErrorMessage(terr), terr)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to change password", err)
		return
	}

	user.HashedPassword = hashed
	user.Password = ""
	if err := h.userStore.Update(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to change password", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: "Password changed"})
}

// sendConfirmationEmail issues the verification email for user. Enqueue
// failures are logged, never surfaced: the account exists either way
// and the user can request a fresh link.
func (h *AuthHandler) sendConfirmationEmail(
	r *http.Request,
	user *domain.User,
	issued verification.IssuedToken,
	kind string,
) {
	link := verification.BuildVerificationLink(h.serverCfg.BaseURL, issued)

	job := task.NewEmailJob(kind, user.Email, mailer.TemplateData{
		Username:  user.Username,
		Link:      link,
		ExpiresAt: issued.ExpiresAt().Format(time.RFC3339),
	})
	if err := h.enqueuer.EnqueueEmail(r.Context(), job); err != nil {
		logger.FromContext(r.Context()).Warn("failed to enqueue confirmation email",
			slog.String("job_id", job.ID.String()),
			slog.String("kind", kind),
			slog.Any("error", err))
	}
}

// hasValidSession reports whether the request carries a valid access
// cookie.
func (h *AuthHandler) hasValidSession(r *http.Request) bool {
	cookie, err := r.Cookie(h.authCfg.AccessCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = h.jwtService.ValidateAccessToken(r.Context(), cookie.Value)
	return err == nil
}

// setSessionCookie writes an HTTP-only session cookie. Cookies are
// marked Secure outside debug mode.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   !h.serverCfg.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires a session cookie immediately.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.serverCfg.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}
