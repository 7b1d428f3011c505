package domain

import (
	"strings"
	"time"
)

const (
	MinPasswordLength = 6
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// PasswordHasher turns plaintext passwords into one-way hashes and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// User represents a registered account.
type User struct {
	ID                   string
	Name                 string
	Email                string
	PasswordHash         string
	IsVerified           bool
	ResetPasswordToken   *string
	ResetPasswordExpire  *time.Time
	LastLogin            *time.Time
	NotificationSettings map[string]bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SetPassword validates the plaintext password and replaces the stored hash.
// It is the only place a hash is produced, so unrelated updates never re-hash.
func (u *User) SetPassword(hasher PasswordHasher, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(hasher PasswordHasher, password string) (bool, error) {
	if u.PasswordHash == "" {
		return false, nil
	}
	return hasher.Verify(password, u.PasswordHash)
}

// ValidatePassword enforces the password length policy.
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password is required")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password must be at most 72 bytes")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email so lookups and the unique index agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Sanitized returns a copy of the user without credential material.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	settings := make(map[string]bool, len(u.NotificationSettings))
	for k, v := range u.NotificationSettings {
		settings[k] = v
	}
	return &User{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		IsVerified:           u.IsVerified,
		LastLogin:            u.LastLogin,
		NotificationSettings: settings,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
