package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vibelearner/internal/cache"
	"vibelearner/internal/config"
	"vibelearner/internal/logger"
	"vibelearner/internal/service/generator"
	"vibelearner/internal/store"
)

var (
	// ErrMissingParameters means a required identifier was absent; the
	// caller gets an immediate failure, retrying cannot help
	ErrMissingParameters = errors.New("course id and user id are required")

	// ErrNotFoundAfterRetries means the course record never became
	// readable within the retry budget. Callers treat this as a soft
	// condition, not a fatal error.
	ErrNotFoundAfterRetries = errors.New("course not found after retries")

	// ErrGenerationFailed means the remote generator rejected the
	// request or returned a malformed payload; no record was created
	ErrGenerationFailed = errors.New("course generation failed")
)

// SubmissionResult is handed back to the caller on a successful
// submission so the result screen can be reached without any ambient
// shared state
type SubmissionResult struct {
	Topic       string    `json:"topic"`
	CourseID    string    `json:"course_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// CourseService owns the submission workflow and the fetch-with-retry
// read path for generated courses
type CourseService struct {
	store     store.Store
	cache     cache.Cache
	generator generator.Client
	attempts  int
	delay     time.Duration

	// wait is swapped out in tests to observe the retry spacing
	wait func(ctx context.Context, d time.Duration) error
}

// NewCourseService creates a CourseService with the configured retry policy
func NewCourseService(st store.Store, c cache.Cache, gen generator.Client, cfg *config.CourseConfig) *CourseService {
	return &CourseService{
		store:     st,
		cache:     c,
		generator: gen,
		attempts:  cfg.FetchAttempts,
		delay:     cfg.FetchDelay,
		wait:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fetch reads a generated course from the document store, retrying with
// a fixed delay while the record has not landed yet. The generator
// persists content out-of-band, so a read shortly after submission can
// legitimately miss. Cancelling the context aborts the loop.
//
// A transport failure is treated the same as "not found" for retry
// purposes; the distinction is preserved in the logs.
func (s *CourseService) Fetch(ctx context.Context, userID, courseID string) (*store.CourseRecord, error) {
	if userID == "" || courseID == "" {
		return nil, ErrMissingParameters
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"course_id": courseID,
	})

	for attempt := 1; attempt <= s.attempts; attempt++ {
		record, err := s.store.GetCourse(ctx, userID, courseID)
		if err == nil {
			log.WithField("attempt", attempt).Debug("Course record fetched")
			return record, nil
		}

		if errors.Is(err, store.ErrNotFound) {
			log.WithField("attempt", attempt).Debug("Course record not yet visible")
		} else {
			log.WithField("attempt", attempt).Warnf("Course read failed, treating as not found: %v", err)
		}

		if attempt < s.attempts {
			if err := s.wait(ctx, s.delay); err != nil {
				return nil, fmt.Errorf("course fetch cancelled: %w", err)
			}
		}
	}

	log.WithField("attempts", s.attempts).Info("Course record not found after retries")
	return nil, ErrNotFoundAfterRetries
}

// Submit asks the remote generator to build a course for the topic. On
// success the usage counter is bumped (creating the profile at 1 when it
// does not exist yet), a course-generated history entry is recorded, and
// a typed result is returned for the navigation boundary. On failure
// nothing is written.
func (s *CourseService) Submit(ctx context.Context, userID, topic string) (*SubmissionResult, error) {
	if userID == "" || topic == "" {
		return nil, ErrMissingParameters
	}

	resp, err := s.generator.Generate(ctx, userID, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if !resp.Success || resp.CourseID == "" {
		return nil, fmt.Errorf("%w: response missing success or course_id", ErrGenerationFailed)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":   userID,
		"course_id": resp.CourseID,
	})

	// Best-effort bookkeeping from here on: the course exists server-side
	// already, so a failed counter or history write must not fail the
	// submission. The resync path repairs counter drift.
	if err := s.store.IncrementChatsRemaining(ctx, userID); err != nil {
		log.Warnf("Failed to increment chatsRemaining: %v", err)
	}

	submittedAt := time.Now().UTC()
	s.recordHistoryEntry(ctx, cache.Entry{
		ID:              uuid.NewString(),
		Text:            topic,
		Time:            submittedAt.Format(time.RFC3339),
		CourseGenerated: true,
		CourseID:        resp.CourseID,
		UserID:          userID,
	})

	log.Info("Course submission succeeded")

	return &SubmissionResult{
		Topic:       topic,
		CourseID:    resp.CourseID,
		SubmittedAt: submittedAt,
	}, nil
}

// recordHistoryEntry prepends the entry to the local cache and mirrors
// it remotely, both best-effort
func (s *CourseService) recordHistoryEntry(ctx context.Context, entry cache.Entry) {
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
		UserID:          entry.UserID,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.AddMirrorEntry(ctx, mirror); err != nil {
		logger.Log.Warnf("Failed to mirror history entry: %v", err)
	}
}
