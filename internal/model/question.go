package model

import (
	"time"

	"github.com/google/uuid"
)

// Question is a multiple-choice question. CorrectAnswer is an index into
// Answers and must never leak to clients before submission.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Body          string    `json:"body"`
	Answers       []string  `json:"answers"`
	CorrectAnswer int       `json:"correct_answer"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AddQuestionRequest is the payload for creating a question.
type AddQuestionRequest struct {
	Body          string   `json:"body" binding:"required,min=1,max=5000"`
	Answers       []string `json:"answers" binding:"required,min=2,max=10,dive,required,max=2000"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0"`
}

// BulkAddQuestionsRequest is the payload for creating several questions at once.
type BulkAddQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}
