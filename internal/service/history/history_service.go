package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"vibelearner/internal/cache"
	"vibelearner/internal/logger"
	"vibelearner/internal/store"
)

// HistoryService merges the on-device history with the user's remote
// course records and keeps both stores and the usage counter consistent
// under create/delete/clear operations
type HistoryService struct {
	store store.Store
	cache cache.Cache
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(st store.Store, c cache.Cache) *HistoryService {
	return &HistoryService{
		store: st,
		cache: c,
	}
}

// ListCombined returns the unified history view: course rows first,
// sorted newest to oldest, then the raw chat rows from the local cache,
// then raw rows that exist only in the remote mirror (recorded from
// another device). The course block is never interleaved with the raw
// rows. Read failures are logged and an empty (or partial) list is
// returned; this path never fails.
func (s *HistoryService) ListCombined(ctx context.Context, userID string) []cache.Entry {
	combined := []cache.Entry{}

	courses, err := s.store.ListCourses(ctx, userID)
	if err != nil {
		logger.Log.WithField("user_id", userID).Warnf("Failed to list courses for history: %v", err)
	} else {
		// Descending by generation time; fetch order breaks ties
		sort.SliceStable(courses, func(i, j int) bool {
			return courses[i].Timestamp > courses[j].Timestamp
		})
		for _, c := range courses {
			combined = append(combined, cache.Entry{
				ID:              c.CourseID,
				Text:            courseLabel(&c),
				Time:            c.CreatedAt,
				CourseGenerated: true,
				CourseID:        c.CourseID,
				UserID:          c.UserID,
			})
		}
	}

	entries, err := s.cache.Load()
	if err != nil {
		logger.Log.WithField("user_id", userID).Warnf("Failed to load history cache: %v", err)
		entries = nil
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		if !e.CourseGenerated {
			combined = append(combined, e)
			seen[e.Text] = true
		}
	}

	// Rows share no id across the cache and the mirror, so text is the
	// join key; a locally cached row wins over its mirrored copy
	remote, err := s.store.ListMirrorEntries(ctx, userID)
	if err != nil {
		logger.Log.WithField("user_id", userID).Warnf("Failed to list mirrored history: %v", err)
		return combined
	}
	for _, m := range remote {
		if m.CourseGenerated || seen[m.Text] {
			continue
		}
		combined = append(combined, cache.Entry{
			ID:     m.ID,
			Text:   m.Text,
			Time:   m.Time,
			UserID: m.UserID,
		})
		seen[m.Text] = true
	}

	return combined
}

func courseLabel(c *store.CourseRecord) string {
	if c.Topic != "" {
		return c.Topic
	}
	if c.Meta.Title != "" {
		return c.Meta.Title
	}
	return c.CourseID
}

// DeleteItem removes a single history row. For a course-derived row the
// course document is deleted and the usage counter lowered; the two
// writes are not transactional, so a failed decrement leaves the counter
// stale until the next resync. For a raw row the local cache and the
// remote mirror are cleaned up by exact text match, duplicates included.
func (s *HistoryService) DeleteItem(ctx context.Context, userID string, entry cache.Entry) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"entry_id": entry.ID,
	})

	if entry.CourseGenerated {
		courseID := entry.CourseID
		if courseID == "" {
			courseID = entry.ID
		}

		if err := s.store.DeleteCourse(ctx, userID, courseID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Nothing to delete, leave the counter alone
				log.WithField("course_id", courseID).Warn("Course already gone, skipping counter update")
				s.removeCachedEntry(entry.ID)
				return nil
			}
			return fmt.Errorf("failed to delete course %s: %w", courseID, err)
		}

		if err := s.store.DecrementChatsRemaining(ctx, userID); err != nil {
			log.Warnf("Failed to decrement chatsRemaining after course delete: %v", err)
		}

		s.removeCachedEntry(entry.ID)
		if _, err := s.store.DeleteMirrorByText(ctx, userID, entry.Text); err != nil {
			log.Warnf("Failed to delete mirrored entries: %v", err)
		}

		log.WithField("course_id", courseID).Info("Course deleted")
		return nil
	}

	if err := s.removeCachedEntry(entry.ID); err != nil {
		return fmt.Errorf("failed to remove cached entry %s: %w", entry.ID, err)
	}

	if deleted, err := s.store.DeleteMirrorByText(ctx, userID, entry.Text); err != nil {
		log.Warnf("Failed to delete mirrored entries: %v", err)
	} else if deleted > 0 {
		log.WithField("deleted", deleted).Debug("Mirrored entries removed")
	}

	return nil
}

func (s *HistoryService) removeCachedEntry(id string) error {
	entries, err := s.cache.Load()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	return s.cache.Save(kept)
}

// ClearRawChats purges every non-course entry from the local cache and
// the remote mirror. Course records and course-derived rows survive.
func (s *HistoryService) ClearRawChats(ctx context.Context, userID string) error {
	entries, err := s.cache.Load()
	if err != nil {
		return fmt.Errorf("failed to load history cache: %w", err)
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.CourseGenerated {
			kept = append(kept, e)
		}
	}
	if err := s.cache.Save(kept); err != nil {
		return fmt.Errorf("failed to save history cache: %w", err)
	}

	if deleted, err := s.store.DeleteMirrorRawChats(ctx, userID); err != nil {
		logger.Log.WithField("user_id", userID).Warnf("Failed to clear mirrored raw chats: %v", err)
	} else if deleted > 0 {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"deleted": deleted,
		}).Info("Cleared mirrored raw chats")
	}

	return nil
}

// ResyncUsageCounter recomputes chatsRemaining from the live course
// count and overwrites the stored value unconditionally. Running it
// twice without intervening mutation is a no-op the second time.
func (s *HistoryService) ResyncUsageCounter(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountCourses(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count courses for user %s: %w", userID, err)
	}

	if err := s.store.SetChatsRemaining(ctx, userID, count); err != nil {
		return 0, fmt.Errorf("failed to resync chatsRemaining for user %s: %w", userID, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":         userID,
		"chats_remaining": count,
	}).Info("Usage counter resynced")

	return count, nil
}

// AddEntry records a new history row in the local cache and the remote
// mirror. When the entry carries generated course content, the course
// document is persisted under the user's namespace and the usage counter
// bumped, the same writes the submission path performs.
func (s *HistoryService) AddEntry(ctx context.Context, userID string, entry cache.Entry, course *store.CourseRecord) (*cache.Entry, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if entry.Time == "" {
		entry.Time = now
	}
	entry.UserID = userID

	if entry.CourseGenerated && course != nil {
		if course.CourseID == "" {
			course.CourseID = store.NewCourseID(userID)
		}
		course.UserID = userID
		if course.CreatedAt == "" {
			course.CreatedAt = now
		}
		course.UpdatedAt = now
		if course.Timestamp == 0 {
			course.Timestamp = time.Now().UnixMilli()
		}

		if err := s.store.SaveCourse(ctx, course); err != nil {
			return nil, fmt.Errorf("failed to save course: %w", err)
		}
		entry.CourseID = course.CourseID

		if err := s.store.IncrementChatsRemaining(ctx, userID); err != nil {
			logger.Log.WithField("user_id", userID).Warnf("Failed to increment chatsRemaining: %v", err)
		}
	}

	current, err := s.cache.Load()
	if err != nil {
		logger.Log.Warnf("Failed to load history cache: %v", err)
	} else if err := s.cache.Save(append([]cache.Entry{entry}, current...)); err != nil {
		logger.Log.Warnf("Failed to save history cache: %v", err)
	}

	mirror := &store.ChatMirrorEntry{
		Text:            entry.Text,
		Time:            entry.Time,
		CourseGenerated: entry.CourseGenerated,
		CourseID:        entry.CourseID,
		UserID:          userID,
		CreatedAt:       now,
	}
	if err := s.store.AddMirrorEntry(ctx, mirror); err != nil {
		logger.Log.Warnf("Failed to mirror history entry: %v", err)
	}

	return &entry, nil
}
