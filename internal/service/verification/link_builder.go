package verification

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Paths the links point at, relative to the server base URL.
const (
	confirmRegisterPath = "/api/auth/confirm_register"
	changePasswordPath  = "/api/auth/change_password"
)

// BuildVerificationLink composes the email confirmation URL for an issued
// token. The embedded expires_at timestamp is informational only, so the
// recipient can see how long the link is good for; the server enforces
// expiry through the token cache, never by parsing this parameter.
func BuildVerificationLink(baseURL string, token IssuedToken) string {
	params := url.Values{}
	params.Set("token", token.Token)
	params.Set("expires_at", token.ExpiresAt().Format(time.RFC3339))

	return fmt.Sprintf("%s%s?%s",
		strings.TrimSuffix(baseURL, "/"), confirmRegisterPath, params.Encode())
}

// BuildPasswordResetLink composes the password reset URL embedding the
// base64 user id and the stateless reset token as path segments.
func BuildPasswordResetLink(baseURL, uid, token string) string {
	return fmt.Sprintf("%s%s/%s/%s/",
		strings.TrimSuffix(baseURL, "/"), changePasswordPath,
		url.PathEscape(uid), url.PathEscape(token))
}
