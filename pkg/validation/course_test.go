package validation

import (
	"strings"
	"testing"
)

func TestCourseRequestValidator_ValidateTopic(t *testing.T) {
	validator := NewCourseRequestValidator()

	tests := []struct {
		name    string
		topic   string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid topic",
			topic:   "Intro to Generative AI",
			wantErr: false,
		},
		{
			name:    "single word topic",
			topic:   "Photosynthesis",
			wantErr: false,
		},
		{
			name:    "empty topic",
			topic:   "",
			wantErr: true,
			errMsg:  "topic cannot be empty",
		},
		{
			name:    "whitespace only topic",
			topic:   "   ",
			wantErr: true,
			errMsg:  "topic cannot be empty",
		},
		{
			name:    "topic too long",
			topic:   strings.Repeat("a", 301),
			wantErr: true,
			errMsg:  "topic must be at most 300 characters long",
		},
		{
			name:    "topic at maximum length",
			topic:   strings.Repeat("a", 300),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTopic(tt.topic)
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

func TestCourseRequestValidator_ValidateCourseID(t *testing.T) {
	validator := NewCourseRequestValidator()

	tests := []struct {
		name     string
		courseID string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid course id",
			courseID: "course_1700000000000_user-1",
			wantErr:  false,
		},
		{
			name:     "empty course id",
			courseID: "",
			wantErr:  true,
			errMsg:   "course id cannot be empty",
		},
		{
			name:     "course id with slash",
			courseID: "users/abc",
			wantErr:  true,
			errMsg:   "course id cannot contain slashes or spaces",
		},
		{
			name:     "course id with space",
			courseID: "course 1",
			wantErr:  true,
			errMsg:   "course id cannot contain slashes or spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateCourseID(tt.courseID)
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

func TestCourseRequestValidator_ValidateUserID(t *testing.T) {
	validator := NewCourseRequestValidator()

	if err := validator.ValidateUserID("user-123"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validator.ValidateUserID(""); err == nil {
		t.Error("expected error for empty user id")
	}
	if err := validator.ValidateUserID("a/b"); err == nil {
		t.Error("expected error for user id with slash")
	}
}
