package store

import (
	"fmt"
	"time"
)

// QuizQuestion is one generated multiple-choice question
type QuizQuestion struct {
	ModuleTitle   string   `firestore:"module_title" json:"module_title"`
	Kind          string   `firestore:"kind" json:"kind"`
	Question      string   `firestore:"question" json:"question"`
	Options       []string `firestore:"options" json:"options"`
	CorrectAnswer string   `firestore:"correct_answer" json:"correct_answer"`
	Rationale     string   `firestore:"rationale" json:"rationale"`
}

// Flashcard is a generated term/definition pair, optionally tagged with
// the module it came from
type Flashcard struct {
	ModuleTitle string `firestore:"module_title" json:"module_title"`
	Term        string `firestore:"term" json:"term"`
	Definition  string `firestore:"definition" json:"definition"`
}

// ConceptExplanation pairs a core concept with its explanation inside a module
type ConceptExplanation struct {
	Concept     string `firestore:"concept" json:"concept"`
	Explanation string `firestore:"explanation" json:"explanation"`
}

// OutlineQA is an embedded question/answer pair inside an outline module
type OutlineQA struct {
	Question string `firestore:"question" json:"question"`
	Answer   string `firestore:"answer" json:"answer"`
}

// OutlineModule is one chapter of the long-form notes
type OutlineModule struct {
	ModuleTitle      string               `firestore:"module_title" json:"module_title"`
	LearningOutcomes []string             `firestore:"module_learning_outcomes" json:"module_learning_outcomes"`
	Keywords         []string             `firestore:"keywords" json:"keywords"`
	CoreConcepts     []ConceptExplanation `firestore:"core_concepts" json:"core_concepts"`
	SummaryPoints    []string             `firestore:"summary_points" json:"summary_points"`
	QuizQA           []OutlineQA          `firestore:"quiz_qa" json:"quiz_qa"`
}

// CourseOutline is the nested notes structure rendered by the client
type CourseOutline struct {
	Title              string          `firestore:"title" json:"title"`
	LearningObjectives []string        `firestore:"learning_objectives" json:"learning_objectives"`
	Introduction       string          `firestore:"introduction" json:"introduction"`
	Modules            []OutlineModule `firestore:"modules" json:"modules"`
}

// CourseMeta carries display metadata for a generated course
type CourseMeta struct {
	Topic           string `firestore:"topic" json:"topic"`
	Title           string `firestore:"title" json:"title"`
	GeneratedAt     string `firestore:"generated_at" json:"generated_at"`
	Duration        string `firestore:"duration" json:"duration"`
	Level           string `firestore:"level" json:"level"`
	Modules         int    `firestore:"modules" json:"modules"`
	TotalFlashcards int    `firestore:"total_flashcards" json:"total_flashcards"`
	TotalQuizzes    int    `firestore:"total_quizzes" json:"total_quizzes"`
}

// CourseRecord is a generated course owned by exactly one user, stored
// under users/{userId}/courses/{courseId}. Field names match the
// documents the mobile client already writes.
type CourseRecord struct {
	CourseID    string         `firestore:"courseId" json:"courseId"`
	UserID      string         `firestore:"userId" json:"userId"`
	Topic       string         `firestore:"topic" json:"topic"`
	Quiz        []QuizQuestion `firestore:"quiz" json:"quiz"`
	Flashcards  []Flashcard    `firestore:"flashcards" json:"flashcards"`
	Outline     *CourseOutline `firestore:"course_outline" json:"course_outline"`
	OutlineHTML string         `firestore:"course_outline_html" json:"course_outline_html"`
	Meta        CourseMeta     `firestore:"meta" json:"meta"`
	Timestamp   int64          `firestore:"timestamp" json:"timestamp"`
	CreatedAt   string         `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   string         `firestore:"updatedAt" json:"updatedAt"`
}

// UserProfile is the users/{userId} document. ChatsRemaining tracks the
// number of courses the user currently owns.
type UserProfile struct {
	UID            string `firestore:"uid" json:"uid"`
	Email          string `firestore:"email" json:"email"`
	DisplayName    string `firestore:"displayName" json:"displayName"`
	PasswordHash   string `firestore:"passwordHash" json:"-"`
	ChatsRemaining int    `firestore:"chatsRemaining" json:"chatsRemaining"`
	CreatedAt      string `firestore:"createdAt" json:"createdAt"`
	LastLoginAt    string `firestore:"lastLoginAt" json:"lastLoginAt"`
	UpdatedAt      string `firestore:"updatedAt" json:"updatedAt"`
}

// ChatMirrorEntry is a row in the flat chat_history collection that
// mirrors the on-device history for a signed-in user.
type ChatMirrorEntry struct {
	ID              string `firestore:"-" json:"id"`
	Text            string `firestore:"text" json:"text"`
	Time            string `firestore:"time" json:"time"`
	CourseGenerated bool   `firestore:"isApiResponse" json:"isApiResponse"`
	CourseID        string `firestore:"courseId" json:"courseId"`
	UserID          string `firestore:"userId" json:"userId"`
	CreatedAt       string `firestore:"createdAt" json:"createdAt"`
}

// NewCourseID derives a course identifier from the current time and the
// owning user. Collisions are treated as negligible, this is not a
// cryptographic guarantee.
func NewCourseID(userID string) string {
	return fmt.Sprintf("course_%d_%s", time.Now().UnixMilli(), userID)
}
