package mocks

import (
	"github.com/taskflow/taskflow-api/internal/service/auth"
)

// MockPasswordVerifier implements auth.PasswordVerifier for testing
// without paying bcrypt cost. By default it treats a hash as matching
// when it equals "hashed:" + password.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
}

// Compare implements the PasswordVerifier interface.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword == "hashed:"+password {
		return nil
	}
	return auth.ErrInvalidCredentials
}

// MockHashPassword returns the hash format MockPasswordVerifier accepts.
func MockHashPassword(password string) string {
	return "hashed:" + password
}
