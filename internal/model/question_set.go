package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionSet is an ordered, fixed collection of questions with a default
// duration, grouped under a category. CourseID is resolved through the
// category and denormalized here for enrollment checks.
type QuestionSet struct {
	ID              uuid.UUID   `json:"id"`
	CategoryID      uuid.UUID   `json:"category_id"`
	CourseID        uuid.UUID   `json:"course_id"`
	Name            string      `json:"name"`
	DurationMinutes int         `json:"duration_minutes"`
	QuestionIDs     []uuid.UUID `json:"question_ids,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// UpsertQuestionSetRequest is the payload for creating or updating a question set.
type UpsertQuestionSetRequest struct {
	CategoryID      string   `json:"category_id" binding:"required,uuid"`
	Name            string   `json:"name" binding:"required,min=2,max=200"`
	DurationMinutes int      `json:"duration_minutes" binding:"min=0,max=600"`
	QuestionIDs     []string `json:"question_ids" binding:"dive,uuid"`
}
