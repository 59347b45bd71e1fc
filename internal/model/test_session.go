package model

import (
	"time"

	"github.com/google/uuid"
)

// NoAnswer is the sentinel for "no answer selected yet".
const NoAnswer = -1

// TestSession is one user's single attempt at a question set. Responses are
// snapshotted at creation (one per question, in set order) and their
// cardinality never changes. Once IsSubmitted flips to true the session is
// frozen.
type TestSession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          int        `json:"user_id"`
	QuestionSetID   uuid.UUID  `json:"question_set_id"`
	IsExam          bool       `json:"is_exam"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	IsSubmitted     bool       `json:"is_submitted"`
	CreatedAt       time.Time  `json:"created_at"`
	Responses       []Response `json:"responses,omitempty"`
}

// Expired reports whether the exam deadline has passed at the given instant.
// Practice sessions never expire.
func (s *TestSession) Expired(now time.Time) bool {
	return s.IsExam && s.EndsAt != nil && now.After(*s.EndsAt)
}

// Response is the per-question answer state embedded in a test session.
type Response struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedAnswer int       `json:"selected_answer"`
	MarkedForLater bool      `json:"marked_for_later"`
	IsAttempted    bool      `json:"is_attempted"`
}

// SessionSummary is the list projection of a session with catalog names
// joined in for history views.
type SessionSummary struct {
	ID              uuid.UUID `json:"id"`
	QuestionSetID   uuid.UUID `json:"question_set_id"`
	QuestionSetName string    `json:"question_set_name"`
	CourseName      string    `json:"course_name"`
	IsExam          bool      `json:"is_exam"`
	IsSubmitted     bool      `json:"is_submitted"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionCreated is the minimal projection returned on creation. Responses
// are deliberately not echoed back.
type SessionCreated struct {
	ID              uuid.UUID  `json:"id"`
	IsExam          bool       `json:"is_exam"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
}

// SessionState is the lightweight live view used by the clock stream.
type SessionState struct {
	IsExam           bool    `json:"is_exam"`
	IsSubmitted      bool    `json:"is_submitted"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// CreateSessionRequest is the payload for starting a practice or exam attempt.
// IsExam is a pointer so that a missing field fails validation instead of
// silently defaulting to practice mode.
type CreateSessionRequest struct {
	QuestionSetID   string `json:"question_set_id" binding:"required,uuid"`
	IsExam          *bool  `json:"is_exam" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"min=0,max=600"`
}

// PatchResponseRequest is the partial-update payload for a single response.
// Absent fields leave the stored value untouched.
type PatchResponseRequest struct {
	QuestionID     string `json:"question_id" binding:"required,uuid"`
	SelectedAnswer *int   `json:"selected_answer" binding:"omitempty,min=-1"`
	MarkedForLater *bool  `json:"marked_for_later"`
}

// ResponsePatch is the validated form of PatchResponseRequest handed to the
// store. Exactly one response row is touched.
type ResponsePatch struct {
	SelectedAnswer *int
	MarkedForLater *bool
}

// AttemptSignal reports whether applying this patch marks the response as
// attempted: any selection counts, and marking for later counts too
// (un-marking alone does not).
func (p ResponsePatch) AttemptSignal() bool {
	return p.SelectedAnswer != nil || (p.MarkedForLater != nil && *p.MarkedForLater)
}

// ReviewResponse is one entry of the review/solutions view: the question
// joined with the user's recorded response. CorrectAnswer is populated only
// after submission.
type ReviewResponse struct {
	QuestionID     uuid.UUID `json:"question_id"`
	Body           string    `json:"body"`
	Answers        []string  `json:"answers"`
	SelectedAnswer int       `json:"selected_answer"`
	MarkedForLater bool      `json:"marked_for_later"`
	IsAttempted    bool      `json:"is_attempted"`
	CorrectAnswer  *int      `json:"correct_answer,omitempty"`
}

// SessionReview is the full session joined with question detail.
type SessionReview struct {
	ID              uuid.UUID        `json:"id"`
	QuestionSetID   uuid.UUID        `json:"question_set_id"`
	IsExam          bool             `json:"is_exam"`
	IsSubmitted     bool             `json:"is_submitted"`
	DurationMinutes int              `json:"duration_minutes"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	EndsAt          *time.Time       `json:"ends_at,omitempty"`
	Responses       []ReviewResponse `json:"responses"`
}
