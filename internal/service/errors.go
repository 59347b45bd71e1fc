package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto response
// codes; services wrap them with context via fmt.Errorf("...: %w", err).
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("resource belongs to another user")
	ErrNotEnrolled       = errors.New("user is not enrolled in the course")
	ErrInvalidDuration   = errors.New("duration must be a positive number of minutes")
	ErrSessionSubmitted  = errors.New("session is already submitted")
	ErrSessionExpired    = errors.New("session deadline has passed")
	ErrResponseNotFound  = errors.New("question is not part of the session")
	ErrResultNotReady    = errors.New("session has not been submitted yet")
	ErrSolutionsLocked   = errors.New("solutions are available after submission")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrEnrollmentExists  = errors.New("enrollment request already exists for the course")
	ErrEnrollmentDecided = errors.New("enrollment request was already decided")
	ErrEmptyQuestionSet  = errors.New("question set has no questions")
)
