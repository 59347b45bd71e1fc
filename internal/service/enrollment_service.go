package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/repository"
)

// EnrollmentService handles the request / approve / reject workflow that
// gates access to a course's question sets.
type EnrollmentService struct {
	enrollRepo *repository.EnrollmentRepository
	courseRepo *repository.CourseRepository
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(enrollRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository) *EnrollmentService {
	return &EnrollmentService{enrollRepo: enrollRepo, courseRepo: courseRepo}
}

// Request files a PENDING enrollment request for the user. A user gets at
// most one request per course regardless of outcome.
func (s *EnrollmentService) Request(ctx context.Context, userID int, courseID uuid.UUID) (*model.EnrollmentRequest, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, mapNoRows(err)
	}

	req := &model.EnrollmentRequest{UserID: userID, CourseID: courseID}
	if err := s.enrollRepo.Create(ctx, req); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEnrollmentExists
		}
		return nil, fmt.Errorf("create enrollment request: %w", err)
	}
	return req, nil
}

// ListMine returns the user's enrollment requests, newest first.
func (s *EnrollmentService) ListMine(ctx context.Context, userID int) ([]model.EnrollmentRequest, error) {
	return s.enrollRepo.ListByUser(ctx, userID)
}

// ListPending returns the admin approval queue, oldest first.
func (s *EnrollmentService) ListPending(ctx context.Context) ([]model.EnrollmentRequest, error) {
	return s.enrollRepo.ListByStatus(ctx, model.EnrollmentPending)
}

// Decide resolves a pending request to APPROVED or REJECTED.
func (s *EnrollmentService) Decide(ctx context.Context, id uuid.UUID, approve bool) error {
	status := model.EnrollmentRejected
	if approve {
		status = model.EnrollmentApproved
	}

	decided, err := s.enrollRepo.Decide(ctx, id, status)
	if err != nil {
		return fmt.Errorf("decide enrollment: %w", err)
	}
	if !decided {
		return ErrEnrollmentDecided
	}
	return nil
}

// IsEnrolled reports whether the user holds an APPROVED enrollment for the
// course. The session engine consults this before creating attempts.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID int, courseID uuid.UUID) (bool, error) {
	return s.enrollRepo.IsEnrolled(ctx, userID, courseID)
}
