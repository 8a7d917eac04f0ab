package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vibelearner/internal/auth"
	"vibelearner/internal/cache"
	"vibelearner/internal/logger"
	courseService "vibelearner/internal/service/course"
	historyService "vibelearner/internal/service/history"
	"vibelearner/internal/store"
	"vibelearner/pkg/validation"
)

// Request/Response types

type SubmitCourseRequest struct {
	Topic string `json:"topic"`
}

type SubmitCourseResponse struct {
	Topic       string    `json:"topic"`
	CourseID    string    `json:"course_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// PendingCourseResponse is returned when the generated record has not
// landed in the document store within the retry budget. The course is
// expected to show up in the history shortly; this is not an error.
type PendingCourseResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type HistoryResponse struct {
	Items []cache.Entry `json:"items"`
}

type AddHistoryRequest struct {
	Text   string              `json:"text"`
	Course *store.CourseRecord `json:"course,omitempty"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProfileResponse struct {
	Profile     *store.UserProfile `json:"profile"`
	CourseCount int                `json:"course_count"`
	CourseIDs   []string           `json:"course_ids"`
}

type SyncResponse struct {
	ChatsRemaining int `json:"chatsRemaining"`
}

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends a standardized JSON error response
func sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

func sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func newEntryID() string {
	return uuid.NewString()
}

// Handlers wires the HTTP surface to the course and history services
type Handlers struct {
	courses   *courseService.CourseService
	history   *historyService.HistoryService
	store     store.Store
	validator *validation.CourseRequestValidator
}

// NewHandlers creates a new Handlers with the service layer
func NewHandlers(courses *courseService.CourseService, history *historyService.HistoryService, st store.Store) *Handlers {
	return &Handlers{
		courses:   courses,
		history:   history,
		store:     st,
		validator: validation.NewCourseRequestValidator(),
	}
}

// SubmitCourseHandler asks the generator to build a course for a topic.
// Callers are expected to disable re-entry while a submission is in
// flight; the server does not queue duplicates.
func (h *Handlers) SubmitCourseHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req SubmitCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateTopic(req.Topic); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid topic", err)
		return
	}

	result, err := h.courses.Submit(r.Context(), userID, req.Topic)
	if err != nil {
		switch {
		case errors.Is(err, courseService.ErrMissingParameters):
			sendError(w, http.StatusBadRequest, "Missing parameters", err)
		case errors.Is(err, courseService.ErrGenerationFailed):
			logger.Log.WithField("user_id", userID).Warnf("Course generation failed: %v", err)
			sendError(w, http.StatusBadGateway, "Course generation failed", err)
		default:
			sendError(w, http.StatusInternalServerError, "Failed to submit course", err)
		}
		return
	}

	sendJSON(w, http.StatusCreated, SubmitCourseResponse{
		Topic:       result.Topic,
		CourseID:    result.CourseID,
		SubmittedAt: result.SubmittedAt,
	})
}

// GetCourseHandler reads a generated course, retrying while the record
// has not landed yet
func (h *Handlers) GetCourseHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	courseID := r.PathValue("id")

	if err := h.validator.ValidateCourseID(courseID); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid course id", err)
		return
	}

	record, err := h.courses.Fetch(r.Context(), userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, courseService.ErrMissingParameters):
			sendError(w, http.StatusBadRequest, "Missing parameters", err)
		case errors.Is(err, courseService.ErrNotFoundAfterRetries):
			// Soft condition: the course was generated but is not yet
			// visible, the client shows a success screen and redirects
			sendJSON(w, http.StatusAccepted, PendingCourseResponse{
				Status:  "pending",
				Message: "Your course has been created and saved. You can find it in the chat history.",
			})
		default:
			sendError(w, http.StatusInternalServerError, "Failed to fetch course", err)
		}
		return
	}

	sendJSON(w, http.StatusOK, record)
}

// GetHistoryHandler returns the merged course/raw-chat history view
func (h *Handlers) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	items := h.history.ListCombined(r.Context(), userID)
	sendJSON(w, http.StatusOK, HistoryResponse{Items: items})
}

// AddHistoryHandler records a new history entry; when the payload
// carries course content the course document is persisted as well
func (h *Handlers) AddHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req AddHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Text == "" {
		sendError(w, http.StatusBadRequest, "Text is required", nil)
		return
	}

	entry := cache.Entry{
		ID:              newEntryID(),
		Text:            req.Text,
		CourseGenerated: req.Course != nil,
	}

	saved, err := h.history.AddEntry(r.Context(), userID, entry, req.Course)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to add history entry", err)
		return
	}

	sendJSON(w, http.StatusCreated, saved)
}

// DeleteHistoryItemHandler removes one history row, course record and
// counter included when the row is course-derived
func (h *Handlers) DeleteHistoryItemHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	entryID := r.PathValue("id")
	if entryID == "" {
		sendError(w, http.StatusBadRequest, "Entry id is required", nil)
		return
	}

	var target *cache.Entry
	for _, item := range h.history.ListCombined(r.Context(), userID) {
		if item.ID == entryID {
			target = &item
			break
		}
	}
	if target == nil {
		sendError(w, http.StatusNotFound, "History entry not found", nil)
		return
	}

	if err := h.history.DeleteItem(r.Context(), userID, *target); err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to delete history entry", err)
		return
	}

	sendJSON(w, http.StatusOK, DeleteResponse{
		Success: true,
		Message: "History entry deleted",
	})
}

// ClearHistoryHandler purges the raw (non-course) history entries
func (h *Handlers) ClearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.history.ClearRawChats(r.Context(), userID); err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to clear history", err)
		return
	}

	sendJSON(w, http.StatusOK, DeleteResponse{
		Success: true,
		Message: "Raw chat history cleared",
	})
}

// GetProfileHandler returns the profile document together with the live
// course count and owned course ids
func (h *Handlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	profile, err := h.store.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusNotFound, "Profile not found", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}

	courseIDs := []string{}
	courses, err := h.store.ListCourses(r.Context(), userID)
	if err != nil {
		logger.Log.WithField("user_id", userID).Warnf("Failed to list courses for profile: %v", err)
	} else {
		for _, c := range courses {
			courseIDs = append(courseIDs, c.CourseID)
		}
	}

	sendJSON(w, http.StatusOK, ProfileResponse{
		Profile:     profile,
		CourseCount: len(courseIDs),
		CourseIDs:   courseIDs,
	})
}

// SyncProfileHandler recomputes the usage counter from the live course
// count
func (h *Handlers) SyncProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	count, err := h.history.ResyncUsageCounter(r.Context(), userID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to resync usage counter", err)
		return
	}

	sendJSON(w, http.StatusOK, SyncResponse{ChatsRemaining: count})
}
