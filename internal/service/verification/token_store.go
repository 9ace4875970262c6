// Package verification implements the email verification token protocol:
// opaque single-use tokens with a short TTL, stored in an expiring cache,
// and the links that embed them.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/platform/cache"
)

// keyPrefix namespaces verification tokens inside the shared cache.
const keyPrefix = "email_verification_token_"

// ErrTokenNotFound is returned by Consume when the token is absent from
// the cache. A caller cannot tell whether the token was never issued,
// already consumed, or expired; all three must be answered the same way.
var ErrTokenNotFound = errors.New("verification token not found")

// IssuedToken is the result of issuing a verification token. IssuedAt and
// TTL exist so callers can render a human-readable expiry into the
// verification link; actual expiry is enforced by the cache.
type IssuedToken struct {
	Token    string
	IssuedAt time.Time
	TTL      time.Duration
}

// ExpiresAt is the absolute expiry of the token.
func (t IssuedToken) ExpiresAt() time.Time {
	return t.IssuedAt.Add(t.TTL)
}

// TokenData is what a successfully consumed token resolves to.
type TokenData struct {
	SubjectID uuid.UUID `json:"subject_id"`
	IssuedAt  time.Time `json:"issued_at"`
}

// TokenStore issues and consumes single-use email verification tokens
// backed by an expiring cache.
type TokenStore struct {
	cache    cache.Cache
	ttl      time.Duration
	timeFunc func() time.Time
}

// NewTokenStore creates a TokenStore with the given cache and token TTL.
func NewTokenStore(c cache.Cache, ttl time.Duration) *TokenStore {
	return &TokenStore{
		cache:    c,
		ttl:      ttl,
		timeFunc: time.Now,
	}
}

// SetTimeFunc overrides the store's time source. Test helper.
func (s *TokenStore) SetTimeFunc(f func() time.Time) {
	s.timeFunc = f
}

// Issue generates a fresh opaque token for subjectID and stores it in the
// cache with the configured TTL. The token carries no decodable payload;
// it is valid only via Consume.
func (s *TokenStore) Issue(ctx context.Context, subjectID uuid.UUID) (IssuedToken, error) {
	token := uuid.NewString()
	issuedAt := s.timeFunc().UTC()

	data, err := json.Marshal(TokenData{
		SubjectID: subjectID,
		IssuedAt:  issuedAt,
	})
	if err != nil {
		return IssuedToken{}, fmt.Errorf("failed to marshal token data: %w", err)
	}

	if err := s.cache.Set(ctx, keyPrefix+token, data, s.ttl); err != nil {
		return IssuedToken{}, fmt.Errorf("failed to store verification token: %w", err)
	}

	return IssuedToken{
		Token:    token,
		IssuedAt: issuedAt,
		TTL:      s.ttl,
	}, nil
}

// Consume atomically retrieves and deletes the token, guaranteeing
// at-most-one use even under concurrent consumption attempts. Returns
// ErrTokenNotFound for anything that is not a live token. There is no
// non-destructive lookup: consumption is the only read path.
func (s *TokenStore) Consume(ctx context.Context, token string) (*TokenData, error) {
	raw, err := s.cache.GetDel(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume verification token: %w", err)
	}

	var data TokenData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token data: %w", err)
	}

	return &data, nil
}
