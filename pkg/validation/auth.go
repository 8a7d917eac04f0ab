package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// AuthRequestValidator validates authentication-related requests
type AuthRequestValidator struct{}

// NewAuthRequestValidator creates a new AuthRequestValidator
func NewAuthRequestValidator() *AuthRequestValidator {
	return &AuthRequestValidator{}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail validates an email address (basic validation)
func (v *AuthRequestValidator) ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must be at most 254 characters long, got %d", len(email))
	}

	if !emailPattern.MatchString(email) {
		return errors.New("email format is invalid")
	}

	return nil
}

// ValidatePassword validates a password
func (v *AuthRequestValidator) ValidatePassword(password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long, got %d", len(password))
	}

	if len(password) > 128 {
		return fmt.Errorf("password must be at most 128 characters long, got %d", len(password))
	}

	return nil
}

// ValidateDisplayName validates an optional display name
func (v *AuthRequestValidator) ValidateDisplayName(name string) error {
	// Display name is optional
	if name == "" {
		return nil
	}

	if len(name) > 100 {
		return fmt.Errorf("display name must be at most 100 characters long, got %d", len(name))
	}

	return nil
}
