package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vibelearner/internal/config"
	"vibelearner/internal/logger"
)

const (
	usersCollection       = "users"
	coursesCollection     = "courses"
	chatHistoryCollection = "chat_history"
)

// FirestoreStore implements Store on top of Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore connects to Firestore using the configured project
// and optional credentials file
func NewFirestoreStore(ctx context.Context, cfg *config.FirestoreConfig) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) courseDoc(userID, courseID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(coursesCollection).Doc(courseID)
}

func (s *FirestoreStore) profileDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(userID)
}

// Courses

func (s *FirestoreStore) GetCourse(ctx context.Context, userID, courseID string) (*CourseRecord, error) {
	snap, err := s.courseDoc(userID, courseID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read course %s: %w", courseID, err)
	}

	var course CourseRecord
	if err := snap.DataTo(&course); err != nil {
		return nil, fmt.Errorf("failed to decode course %s: %w", courseID, err)
	}
	if course.CourseID == "" {
		course.CourseID = snap.Ref.ID
	}
	return &course, nil
}

func (s *FirestoreStore) SaveCourse(ctx context.Context, course *CourseRecord) error {
	if _, err := s.courseDoc(course.UserID, course.CourseID).Set(ctx, course); err != nil {
		return fmt.Errorf("failed to save course %s: %w", course.CourseID, err)
	}
	return nil
}

// DeleteCourse removes a course document. Deleting a course that does
// not exist returns ErrNotFound so callers can skip the counter update.
func (s *FirestoreStore) DeleteCourse(ctx context.Context, userID, courseID string) error {
	doc := s.courseDoc(userID, courseID)
	if _, err := doc.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read course %s before delete: %w", courseID, err)
	}
	if _, err := doc.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete course %s: %w", courseID, err)
	}
	return nil
}

func (s *FirestoreStore) ListCourses(ctx context.Context, userID string) ([]CourseRecord, error) {
	iter := s.client.Collection(usersCollection).Doc(userID).Collection(coursesCollection).Documents(ctx)
	defer iter.Stop()

	var courses []CourseRecord
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list courses for user %s: %w", userID, err)
		}

		var course CourseRecord
		if err := snap.DataTo(&course); err != nil {
			logger.Log.WithField("doc_id", snap.Ref.ID).Warnf("Skipping undecodable course document: %v", err)
			continue
		}
		if course.CourseID == "" {
			course.CourseID = snap.Ref.ID
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func (s *FirestoreStore) CountCourses(ctx context.Context, userID string) (int, error) {
	snaps, err := s.client.Collection(usersCollection).Doc(userID).Collection(coursesCollection).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count courses for user %s: %w", userID, err)
	}
	return len(snaps), nil
}

// User profiles

func (s *FirestoreStore) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	snap, err := s.profileDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", userID, err)
	}

	var profile UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", userID, err)
	}
	if profile.UID == "" {
		profile.UID = snap.Ref.ID
	}
	return &profile, nil
}

func (s *FirestoreStore) GetProfileByEmail(ctx context.Context, email string) (*UserProfile, error) {
	iter := s.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile by email: %w", err)
	}

	var profile UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", snap.Ref.ID, err)
	}
	if profile.UID == "" {
		profile.UID = snap.Ref.ID
	}
	return &profile, nil
}

// UpsertProfile merge-writes the given fields, leaving unspecified
// fields of an existing profile untouched
func (s *FirestoreStore) UpsertProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	if _, err := s.profileDoc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", userID, err)
	}
	return nil
}

// IncrementChatsRemaining bumps the owned-course counter atomically.
// A missing profile document is created holding 1.
func (s *FirestoreStore) IncrementChatsRemaining(ctx context.Context, userID string) error {
	_, err := s.profileDoc(userID).Set(ctx, map[string]interface{}{
		"uid":            userID,
		"chatsRemaining": firestore.Increment(1),
		"updatedAt":      time.Now().UTC().Format(time.RFC3339),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to increment chatsRemaining for user %s: %w", userID, err)
	}
	return nil
}

// nextChatsRemaining computes the counter value after a course delete.
// The second return is false when nothing should be written: the
// profile does not exist or the counter is already at the zero floor.
func nextChatsRemaining(profile *UserProfile) (int, bool) {
	if profile == nil || profile.ChatsRemaining <= 0 {
		return 0, false
	}
	return profile.ChatsRemaining - 1, true
}

// DecrementChatsRemaining lowers the owned-course counter by one,
// floored at zero. Runs in a transaction so concurrent deletions cannot
// drive the counter negative. A missing profile is a no-op.
func (s *FirestoreStore) DecrementChatsRemaining(ctx context.Context, userID string) error {
	doc := s.profileDoc(userID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var profile *UserProfile
		snap, err := tx.Get(doc)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		if err == nil {
			profile = &UserProfile{}
			if err := snap.DataTo(profile); err != nil {
				return err
			}
		}

		next, ok := nextChatsRemaining(profile)
		if !ok {
			logger.Log.WithField("user_id", userID).Warn("chatsRemaining missing or already at 0, nothing to decrease")
			return nil
		}

		return tx.Update(doc, []firestore.Update{
			{Path: "chatsRemaining", Value: next},
			{Path: "updatedAt", Value: time.Now().UTC().Format(time.RFC3339)},
		})
	})
	if err != nil {
		return fmt.Errorf("failed to decrement chatsRemaining for user %s: %w", userID, err)
	}
	return nil
}

// SetChatsRemaining overwrites the counter unconditionally, used by the
// resync path
func (s *FirestoreStore) SetChatsRemaining(ctx context.Context, userID string, count int) error {
	_, err := s.profileDoc(userID).Set(ctx, map[string]interface{}{
		"uid":            userID,
		"chatsRemaining": count,
		"updatedAt":      time.Now().UTC().Format(time.RFC3339),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set chatsRemaining for user %s: %w", userID, err)
	}
	return nil
}

// Chat history mirror

func (s *FirestoreStore) ListMirrorEntries(ctx context.Context, userID string) ([]ChatMirrorEntry, error) {
	iter := s.client.Collection(chatHistoryCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var entries []ChatMirrorEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list chat mirror entries for user %s: %w", userID, err)
		}

		var entry ChatMirrorEntry
		if err := snap.DataTo(&entry); err != nil {
			logger.Log.WithField("doc_id", snap.Ref.ID).Warnf("Skipping undecodable chat mirror document: %v", err)
			continue
		}
		entry.ID = snap.Ref.ID
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *FirestoreStore) AddMirrorEntry(ctx context.Context, entry *ChatMirrorEntry) error {
	doc := s.client.Collection(chatHistoryCollection).NewDoc()
	if _, err := doc.Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to add chat mirror entry: %w", err)
	}
	entry.ID = doc.ID
	return nil
}

// DeleteMirrorByText removes every mirror entry for the user whose text
// matches exactly, returning the number of deleted documents
func (s *FirestoreStore) DeleteMirrorByText(ctx context.Context, userID, text string) (int, error) {
	query := s.client.Collection(chatHistoryCollection).
		Where("userId", "==", userID).
		Where("text", "==", text)
	return s.deleteMatching(ctx, query)
}

// DeleteMirrorRawChats removes every non-course mirror entry for the user
func (s *FirestoreStore) DeleteMirrorRawChats(ctx context.Context, userID string) (int, error) {
	query := s.client.Collection(chatHistoryCollection).
		Where("userId", "==", userID).
		Where("isApiResponse", "==", false)
	return s.deleteMatching(ctx, query)
}

func (s *FirestoreStore) deleteMatching(ctx context.Context, query firestore.Query) (int, error) {
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to query chat mirror entries: %w", err)
	}

	deleted := 0
	for _, snap := range snaps {
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return deleted, fmt.Errorf("failed to delete chat mirror entry %s: %w", snap.Ref.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
