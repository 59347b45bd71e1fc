package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// EnrollmentRepository handles enrollment request data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts a PENDING enrollment request. The unique (user_id,
// course_id) constraint rejects duplicates.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.EnrollmentRequest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO enrollment_requests (user_id, course_id)
		 VALUES ($1, $2)
		 RETURNING id, status, requested_at`,
		e.UserID, e.CourseID,
	).Scan(&e.ID, &e.Status, &e.RequestedAt)
}

// IsEnrolled reports whether the user has an APPROVED enrollment for the
// course. This is the Enrollment Authority check the session engine uses.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, userID int, courseID uuid.UUID) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM enrollment_requests
			WHERE user_id = $1 AND course_id = $2 AND status = 'APPROVED'
		 )`, userID, courseID,
	).Scan(&enrolled)
	return enrolled, err
}

// ListByUser retrieves the user's enrollment requests with course names.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int) ([]model.EnrollmentRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.user_id, e.course_id, e.status, e.requested_at, e.decided_at, c.name
		 FROM enrollment_requests e
		 JOIN courses c ON e.course_id = c.id
		 WHERE e.user_id = $1
		 ORDER BY e.requested_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.EnrollmentRequest
	for rows.Next() {
		var e model.EnrollmentRequest
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.RequestedAt, &e.DecidedAt, &e.CourseName); err != nil {
			return nil, err
		}
		requests = append(requests, e)
	}
	return requests, rows.Err()
}

// ListByStatus retrieves enrollment requests for the admin queue, joined
// with user and course names.
func (r *EnrollmentRepository) ListByStatus(ctx context.Context, status model.EnrollmentStatus) ([]model.EnrollmentRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.user_id, e.course_id, e.status, e.requested_at, e.decided_at, u.name, c.name
		 FROM enrollment_requests e
		 JOIN users u ON e.user_id = u.id
		 JOIN courses c ON e.course_id = c.id
		 WHERE e.status = $1
		 ORDER BY e.requested_at ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.EnrollmentRequest
	for rows.Next() {
		var e model.EnrollmentRequest
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.RequestedAt, &e.DecidedAt, &e.UserName, &e.CourseName); err != nil {
			return nil, err
		}
		requests = append(requests, e)
	}
	return requests, rows.Err()
}

// Decide flips a PENDING request to APPROVED or REJECTED. Returns false when
// the request does not exist or was already decided.
func (r *EnrollmentRepository) Decide(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE enrollment_requests
		 SET status = $1, decided_at = $2
		 WHERE id = $3 AND status = 'PENDING'`,
		status, time.Now(), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
