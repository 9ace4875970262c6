package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	// Function fields for customizable behavior
	GenerateAccessTokenFn  func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateAccessTokenFn  func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// GenerateAccessToken implements the JWTService interface.
func (m *MockJWTService) GenerateAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateAccessTokenFn != nil {
		return m.GenerateAccessTokenFn(ctx, userID)
	}
	return "mock-access-" + userID.String(), nil
}

// ValidateAccessToken implements the JWTService interface.
func (m *MockJWTService) ValidateAccessToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateAccessTokenFn != nil {
		return m.ValidateAccessTokenFn(ctx, tokenString)
	}

	userID, ok := parseMockToken(tokenString, "mock-access-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return mockClaims(userID, "access"), nil
}

// GenerateRefreshToken implements the JWTService interface.
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return "mock-refresh-" + userID.String(), nil
}

// ValidateRefreshToken implements the JWTService interface.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}

	userID, ok := parseMockToken(tokenString, "mock-refresh-")
	if !ok {
		return nil, auth.ErrInvalidRefreshToken
	}
	return mockClaims(userID, "refresh"), nil
}

func parseMockToken(tokenString, prefix string) (uuid.UUID, bool) {
	if len(tokenString) <= len(prefix) || tokenString[:len(prefix)] != prefix {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(tokenString[len(prefix):])
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

func mockClaims(userID uuid.UUID, tokenType string) *auth.Claims {
	now := time.Now()
	return &auth.Claims{
		UserID:    userID,
		TokenType: tokenType,
		Subject:   userID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		ID:        uuid.NewString(),
	}
}
