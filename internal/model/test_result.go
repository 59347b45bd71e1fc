package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoreSummary holds the counts computed at submission time.
type ScoreSummary struct {
	TotalQuestions int `json:"total_questions"`
	Attempted      int `json:"attempted"`
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
}

// TestResult is the immutable scoring record, exactly one per submitted
// session (unique on TestSessionID).
type TestResult struct {
	ID            uuid.UUID `json:"id"`
	TestSessionID uuid.UUID `json:"test_session_id"`
	UserID        int       `json:"user_id"`
	QuestionSetID uuid.UUID `json:"question_set_id"`

	TotalQuestions int `json:"total_questions"`
	Attempted      int `json:"attempted"`
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`

	Percentage float64 `json:"percentage"`
	Accuracy   float64 `json:"accuracy"`

	SubmittedAt time.Time `json:"submitted_at"`
}
