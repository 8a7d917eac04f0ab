package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("document not found")

// Store defines the document store operations used by the services.
// This allows for easier testing through mocking and decouples the
// services from the Firestore client.
type Store interface {
	// Courses
	GetCourse(ctx context.Context, userID, courseID string) (*CourseRecord, error)
	SaveCourse(ctx context.Context, course *CourseRecord) error
	DeleteCourse(ctx context.Context, userID, courseID string) error
	ListCourses(ctx context.Context, userID string) ([]CourseRecord, error)
	CountCourses(ctx context.Context, userID string) (int, error)

	// User profiles
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	GetProfileByEmail(ctx context.Context, email string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, userID string, fields map[string]interface{}) error
	IncrementChatsRemaining(ctx context.Context, userID string) error
	DecrementChatsRemaining(ctx context.Context, userID string) error
	SetChatsRemaining(ctx context.Context, userID string, count int) error

	// Chat history mirror
	ListMirrorEntries(ctx context.Context, userID string) ([]ChatMirrorEntry, error)
	AddMirrorEntry(ctx context.Context, entry *ChatMirrorEntry) error
	DeleteMirrorByText(ctx context.Context, userID, text string) (int, error)
	DeleteMirrorRawChats(ctx context.Context, userID string) (int, error)

	Close() error
}
