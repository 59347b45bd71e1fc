package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is the top-level unit students enroll into. Categories group its
// question sets.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category groups question sets under a course.
type Category struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertCourseRequest is the payload for creating or updating a course.
type UpsertCourseRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpsertCategoryRequest is the payload for creating or updating a category.
type UpsertCategoryRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
	Name     string `json:"name" binding:"required,min=2,max=200"`
}
