package testutil

import (
	"context"
	"errors"

	"vibelearner/internal/cache"
	"vibelearner/internal/service/generator"
	"vibelearner/internal/store"
)

// MockStore is a mock implementation of store.Store for testing
type MockStore struct {
	// Course mocks
	GetCourseFunc    func(ctx context.Context, userID, courseID string) (*store.CourseRecord, error)
	SaveCourseFunc   func(ctx context.Context, course *store.CourseRecord) error
	DeleteCourseFunc func(ctx context.Context, userID, courseID string) error
	ListCoursesFunc  func(ctx context.Context, userID string) ([]store.CourseRecord, error)
	CountCoursesFunc func(ctx context.Context, userID string) (int, error)

	// Profile mocks
	GetProfileFunc              func(ctx context.Context, userID string) (*store.UserProfile, error)
	GetProfileByEmailFunc       func(ctx context.Context, email string) (*store.UserProfile, error)
	UpsertProfileFunc           func(ctx context.Context, userID string, fields map[string]interface{}) error
	IncrementChatsRemainingFunc func(ctx context.Context, userID string) error
	DecrementChatsRemainingFunc func(ctx context.Context, userID string) error
	SetChatsRemainingFunc       func(ctx context.Context, userID string, count int) error

	// Mirror mocks
	ListMirrorEntriesFunc    func(ctx context.Context, userID string) ([]store.ChatMirrorEntry, error)
	AddMirrorEntryFunc       func(ctx context.Context, entry *store.ChatMirrorEntry) error
	DeleteMirrorByTextFunc   func(ctx context.Context, userID, text string) (int, error)
	DeleteMirrorRawChatsFunc func(ctx context.Context, userID string) (int, error)
}

func (m *MockStore) GetCourse(ctx context.Context, userID, courseID string) (*store.CourseRecord, error) {
	if m.GetCourseFunc != nil {
		return m.GetCourseFunc(ctx, userID, courseID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) SaveCourse(ctx context.Context, course *store.CourseRecord) error {
	if m.SaveCourseFunc != nil {
		return m.SaveCourseFunc(ctx, course)
	}
	return errors.New("not implemented")
}

func (m *MockStore) DeleteCourse(ctx context.Context, userID, courseID string) error {
	if m.DeleteCourseFunc != nil {
		return m.DeleteCourseFunc(ctx, userID, courseID)
	}
	return errors.New("not implemented")
}

func (m *MockStore) ListCourses(ctx context.Context, userID string) ([]store.CourseRecord, error) {
	if m.ListCoursesFunc != nil {
		return m.ListCoursesFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) CountCourses(ctx context.Context, userID string) (int, error) {
	if m.CountCoursesFunc != nil {
		return m.CountCoursesFunc(ctx, userID)
	}
	return 0, errors.New("not implemented")
}

func (m *MockStore) GetProfile(ctx context.Context, userID string) (*store.UserProfile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) GetProfileByEmail(ctx context.Context, email string) (*store.UserProfile, error) {
	if m.GetProfileByEmailFunc != nil {
		return m.GetProfileByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) UpsertProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, userID, fields)
	}
	return errors.New("not implemented")
}

func (m *MockStore) IncrementChatsRemaining(ctx context.Context, userID string) error {
	if m.IncrementChatsRemainingFunc != nil {
		return m.IncrementChatsRemainingFunc(ctx, userID)
	}
	return errors.New("not implemented")
}

func (m *MockStore) DecrementChatsRemaining(ctx context.Context, userID string) error {
	if m.DecrementChatsRemainingFunc != nil {
		return m.DecrementChatsRemainingFunc(ctx, userID)
	}
	return errors.New("not implemented")
}

func (m *MockStore) SetChatsRemaining(ctx context.Context, userID string, count int) error {
	if m.SetChatsRemainingFunc != nil {
		return m.SetChatsRemainingFunc(ctx, userID, count)
	}
	return errors.New("not implemented")
}

func (m *MockStore) ListMirrorEntries(ctx context.Context, userID string) ([]store.ChatMirrorEntry, error) {
	if m.ListMirrorEntriesFunc != nil {
		return m.ListMirrorEntriesFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *MockStore) AddMirrorEntry(ctx context.Context, entry *store.ChatMirrorEntry) error {
	if m.AddMirrorEntryFunc != nil {
		return m.AddMirrorEntryFunc(ctx, entry)
	}
	return errors.New("not implemented")
}

func (m *MockStore) DeleteMirrorByText(ctx context.Context, userID, text string) (int, error) {
	if m.DeleteMirrorByTextFunc != nil {
		return m.DeleteMirrorByTextFunc(ctx, userID, text)
	}
	return 0, errors.New("not implemented")
}

func (m *MockStore) DeleteMirrorRawChats(ctx context.Context, userID string) (int, error) {
	if m.DeleteMirrorRawChatsFunc != nil {
		return m.DeleteMirrorRawChatsFunc(ctx, userID)
	}
	return 0, errors.New("not implemented")
}

func (m *MockStore) Close() error { return nil }

// MockCache is an in-memory implementation of cache.Cache for testing
type MockCache struct {
	Entries []cache.Entry

	LoadErr error
	SaveErr error
}

func (m *MockCache) Load() ([]cache.Entry, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]cache.Entry, len(m.Entries))
	copy(out, m.Entries)
	return out, nil
}

func (m *MockCache) Save(entries []cache.Entry) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if len(entries) > cache.MaxEntries {
		entries = entries[:cache.MaxEntries]
	}
	m.Entries = make([]cache.Entry, len(entries))
	copy(m.Entries, entries)
	return nil
}

func (m *MockCache) Close() error { return nil }

// MockGenerator is a mock implementation of generator.Client for testing
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, userID, topic string) (*generator.GenerateResponse, error)
}

func (m *MockGenerator) Generate(ctx context.Context, userID, topic string) (*generator.GenerateResponse, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, userID, topic)
	}
	return nil, errors.New("not implemented")
}
