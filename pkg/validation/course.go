package validation

import (
	"errors"
	"fmt"
	"strings"
)

const maxTopicLength = 300

// CourseRequestValidator validates course-related requests
type CourseRequestValidator struct{}

// NewCourseRequestValidator creates a new CourseRequestValidator
func NewCourseRequestValidator() *CourseRequestValidator {
	return &CourseRequestValidator{}
}

// ValidateTopic validates a course generation topic
func (v *CourseRequestValidator) ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return errors.New("topic cannot be empty")
	}

	if len(topic) > maxTopicLength {
		return fmt.Errorf("topic must be at most %d characters long, got %d", maxTopicLength, len(topic))
	}

	return nil
}

// ValidateCourseID validates a course identifier
func (v *CourseRequestValidator) ValidateCourseID(courseID string) error {
	if courseID == "" {
		return errors.New("course id cannot be empty")
	}

	if strings.ContainsAny(courseID, "/ ") {
		return errors.New("course id cannot contain slashes or spaces")
	}

	return nil
}

// ValidateUserID validates a user identifier
func (v *CourseRequestValidator) ValidateUserID(userID string) error {
	if userID == "" {
		return errors.New("user id cannot be empty")
	}

	if strings.ContainsAny(userID, "/ ") {
		return errors.New("user id cannot contain slashes or spaces")
	}

	return nil
}
