package validation

import (
	"strings"
	"testing"
)

func TestAuthRequestValidator_ValidateEmail(t *testing.T) {
	validator := NewAuthRequestValidator()

	tests := []struct {
		name    string
		email   string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid email",
			email:   "user@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.co.uk",
			wantErr: false,
		},
		{
			name:    "empty email",
			email:   "",
			wantErr: true,
			errMsg:  "email cannot be empty",
		},
		{
			name:    "missing at sign",
			email:   "userexample.com",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "missing domain",
			email:   "user@",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "missing tld",
			email:   "user@example",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "email with spaces",
			email:   "us er@example.com",
			wantErr: true,
			errMsg:  "email format is invalid",
		},
		{
			name:    "email too long",
			email:   strings.Repeat("a", 250) + "@x.com",
			wantErr: true,
			errMsg:  "email must be at most 254 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEmail(tt.email)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthRequestValidator_ValidatePassword(t *testing.T) {
	validator := NewAuthRequestValidator()

	tests := []struct {
		name     string
		password string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid password",
			password: "secret123",
			wantErr:  false,
		},
		{
			name:     "minimum length password",
			password: "123456",
			wantErr:  false,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
			errMsg:   "password cannot be empty",
		},
		{
			name:     "password too short",
			password: "12345",
			wantErr:  true,
			errMsg:   "password must be at least 6 characters long",
		},
		{
			name:     "password too long",
			password: strings.Repeat("a", 129),
			wantErr:  true,
			errMsg:   "password must be at most 128 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePassword(tt.password)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthRequestValidator_ValidateDisplayName(t *testing.T) {
	validator := NewAuthRequestValidator()

	if err := validator.ValidateDisplayName(""); err != nil {
		t.Errorf("display name is optional, got %v", err)
	}
	if err := validator.ValidateDisplayName("Ada Lovelace"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validator.ValidateDisplayName(strings.Repeat("a", 101)); err == nil {
		t.Error("expected error for overlong display name")
	}
}
