package identity

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrUserExists         = errors.New("identity: user already exists")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrInvalidUser        = errors.New("identity: invalid user")
)

// MinPasswordLength is enforced on registration.
const MinPasswordLength = 8

// User is a registered account holder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Registration is the register payload.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the username and lowercases the email.
func (r Registration) Normalize() Registration {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return r
}

// Validate checks the registration fields.
func (r Registration) Validate() error {
	if r.Username == "" || strings.ContainsAny(r.Username, " \t\n") {
		return errors.Join(ErrInvalidUser, errors.New("username is required and must not contain spaces"))
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return errors.Join(ErrInvalidUser, errors.New("email must be a valid address"))
	}
	if len(r.Password) < MinPasswordLength {
		return errors.Join(ErrInvalidUser, errors.New("password is too short"))
	}
	return nil
}
