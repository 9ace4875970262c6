package auth

import "errors"

// Common authentication service errors.
var (
	// ErrInvalidCredentials indicates a failed username/password check.
	// Unknown principal and wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAlreadyAuthenticated indicates a login attempt from a caller
	// that already presents a valid session. Idempotent login is
	// rejected, not silently accepted.
	ErrAlreadyAuthenticated = errors.New("already authenticated")

	// ErrInvalidToken indicates the access token is malformed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates an access token was expected but not
	// provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates a token of one type (access/refresh)
	// was presented where the other was expected.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token is malformed,
	// expired, or carries a bad signature.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrMissingRefreshToken indicates no refresh token artifact was
	// presented.
	ErrMissingRefreshToken = errors.New("refresh token is missing")

	// ErrInvalidResetLink indicates the password reset link's uid segment
	// is undecodable or names an unknown user.
	ErrInvalidResetLink = errors.New("invalid password reset link")

	// ErrInvalidResetToken indicates the uid was valid but the reset
	// token did not verify against the user's current state.
	ErrInvalidResetToken = errors.New("invalid password reset token")
)
