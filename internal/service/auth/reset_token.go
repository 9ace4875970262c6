package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// ResetTokenGenerator produces stateless password reset tokens. A token
// is an HMAC over the user's id, current password hash and an issue
// timestamp, so it needs no server-side storage and is implicitly
// invalidated the moment the password changes. The timestamp bounds the
// token's lifetime.
type ResetTokenGenerator struct {
	secret   []byte
	lifetime time.Duration
	timeFunc func() time.Time
}

// NewResetTokenGenerator creates a generator signing with secret and
// accepting tokens up to lifetime old.
func NewResetTokenGenerator(secret string, lifetime time.Duration) *ResetTokenGenerator {
	return &ResetTokenGenerator{
		secret:   []byte(secret),
		lifetime: lifetime,
		timeFunc: time.Now,
	}
}

// SetTimeFunc overrides the generator's time source. Test helper.
func (g *ResetTokenGenerator) SetTimeFunc(f func() time.Time) {
	g.timeFunc = f
}

// MakeToken issues a reset token for the user's current state. Format:
// "<timestamp-base36>-<hmac-hex>".
func (g *ResetTokenGenerator) MakeToken(user *domain.User) string {
	ts := strconv.FormatInt(g.timeFunc().Unix(), 36)
	return ts + "-" + g.signature(user, ts)
}

// CheckToken verifies that token was issued by MakeToken for this user's
// current password hash and has not outlived the configured lifetime.
func (g *ResetTokenGenerator) CheckToken(user *domain.User, token string) bool {
	ts, sig, ok := strings.Cut(token, "-")
	if !ok {
		return false
	}

	issuedUnix, err := strconv.ParseInt(ts, 36, 64)
	if err != nil {
		return false
	}

	if !hmac.Equal([]byte(sig), []byte(g.signature(user, ts))) {
		return false
	}

	age := g.timeFunc().Sub(time.Unix(issuedUnix, 0))
	return age >= 0 && age <= g.lifetime
}

// signature computes the HMAC binding the token to the user's identity
// and current password hash.
func (g *ResetTokenGenerator) signature(user *domain.User, ts string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(user.ID.String()))
	mac.Write([]byte("|"))
	mac.Write([]byte(user.HashedPassword))
	mac.Write([]byte("|"))
	mac.Write([]byte(ts))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// EncodeUserID encodes a user id into the URL-safe form embedded in reset
// links.
func EncodeUserID(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// DecodeUserID reverses EncodeUserID. Returns ErrInvalidResetLink when
// the value is not a valid encoded user id.
func DecodeUserID(encoded string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return uuid.Nil, ErrInvalidResetLink
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidResetLink
	}
	return id, nil
}
