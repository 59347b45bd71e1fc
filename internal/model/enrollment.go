package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates the states of an enrollment request.
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentApproved EnrollmentStatus = "APPROVED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
)

// EnrollmentRequest is a user's request to join a course. Only APPROVED
// requests grant access to the course's question sets.
type EnrollmentRequest struct {
	ID          uuid.UUID        `json:"id"`
	UserID      int              `json:"user_id"`
	CourseID    uuid.UUID        `json:"course_id"`
	Status      EnrollmentStatus `json:"status"`
	RequestedAt time.Time        `json:"requested_at"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`

	// Joined for admin listings.
	UserName   string `json:"user_name,omitempty"`
	CourseName string `json:"course_name,omitempty"`
}

// RequestEnrollmentRequest is the payload for requesting course enrollment.
type RequestEnrollmentRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}
