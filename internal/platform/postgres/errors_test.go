package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	emailErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}

	assert.True(t, isUniqueViolation(emailErr, "users_email_key"))
	assert.True(t, isUniqueViolation(emailErr, ""), "empty constraint matches any unique violation")
	assert.False(t, isUniqueViolation(emailErr, "users_username_key"))

	// Wrapped errors are still recognized.
	wrapped := fmt.Errorf("insert failed: %w", emailErr)
	assert.True(t, isUniqueViolation(wrapped, "users_email_key"))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(errors.New("boom"), ""))
	assert.False(t, isUniqueViolation(nil, ""))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(sql.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("query: %w", sql.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("boom")))
}
