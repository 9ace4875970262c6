package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the single authoritative role a user holds. A user always has
// exactly one role; accounts created without an explicit role default to
// RoleUser.
type Role string

// Known roles, in order of precedence.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// ResolveRole collapses a list of assigned roles into the single role the
// permission engine uses. Legacy data may carry multiple role assignments
// per user; when that happens the highest-precedence role wins
// (admin > manager > user). An empty list resolves to RoleUser.
func ResolveRole(assigned []Role) Role {
	if len(assigned) == 0 {
		return RoleUser
	}
	for _, want := range []Role{RoleAdmin, RoleManager, RoleUser} {
		for _, r := range assigned {
			if r == want {
				return want
			}
		}
	}
	return RoleUser
}

// User represents a registered account.
//
// Password holds a plaintext value only transiently during registration or
// password changes; HashedPassword is what gets persisted. Active is false
// until the user confirms their email address.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID and the given credentials. The
// account starts inactive (email unconfirmed) with RoleUser. The caller is
// responsible for hashing the password before persisting.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  password,
		Role:      RoleUser,
		Active:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks that the user's fields are consistent. Either a plaintext
// password (pre-hash) or a hashed password (post-load) must be present.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) < 3 {
		return ErrUsernameTooShort
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt silently truncates beyond 72 bytes
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// validEmailFormat performs a minimal structural check: a local part, an
// @, and a dot somewhere in the domain part.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
