package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"blogdesk/internal/models"
)

// ErrInvalidCredentials is returned when no account matches.
var ErrInvalidCredentials = errors.New("invalid email or password")

// FallbackUser is one entry of the local users file.
type FallbackUser struct {
	models.Profile
	PasswordHash string `json:"password_hash"`
}

// FallbackDirectory authenticates against a local JSON users file when the
// remote login service cannot be reached.
type FallbackDirectory struct {
	users []FallbackUser
}

// LoadFallbackDirectory reads a JSON array of users. A missing file yields
// an empty directory.
func LoadFallbackDirectory(path string) (*FallbackDirectory, error) {
	if path == "" {
		return &FallbackDirectory{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FallbackDirectory{}, nil
		}
		return nil, err
	}
	var users []FallbackUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return &FallbackDirectory{users: users}, nil
}

// NewFallbackDirectory builds a directory from in-memory users.
func NewFallbackDirectory(users []FallbackUser) *FallbackDirectory {
	return &FallbackDirectory{users: users}
}

// Len returns the number of known users.
func (d *FallbackDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.users)
}

// Authenticate returns the profile matching email and password.
func (d *FallbackDirectory) Authenticate(email, password string) (models.Profile, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil || password == "" || d == nil {
		return models.Profile{}, ErrInvalidCredentials
	}
	for _, u := range d.users {
		candidate, err := NormalizeEmail(u.Email)
		if err != nil || candidate != normalized {
			continue
		}
		if VerifyPassword(u.PasswordHash, password) {
			return u.Profile, nil
		}
		return models.Profile{}, ErrInvalidCredentials
	}
	return models.Profile{}, ErrInvalidCredentials
}
