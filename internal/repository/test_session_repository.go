package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// TestSessionRepository handles test session data access. Responses live in
// their own table keyed by (session_id, question_id) so a patch touches
// exactly one row and concurrent patches to different questions never
// interfere.
type TestSessionRepository struct {
	pool *pgxpool.Pool
}

// NewTestSessionRepository creates a new TestSessionRepository.
func NewTestSessionRepository(pool *pgxpool.Pool) *TestSessionRepository {
	return &TestSessionRepository{pool: pool}
}

// Create inserts a session and its snapshotted responses in one transaction.
func (r *TestSessionRepository) Create(ctx context.Context, s *model.TestSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO test_sessions (user_id, question_set_id, is_exam, duration_minutes, started_at, ends_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.UserID, s.QuestionSetID, s.IsExam, s.DurationMinutes, s.StartedAt, s.EndsAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, resp := range s.Responses {
		batch.Queue(
			`INSERT INTO test_responses (session_id, question_id, position, selected_answer, marked_for_later, is_attempted)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, resp.QuestionID, i, resp.SelectedAnswer, resp.MarkedForLater, resp.IsAttempted)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a session with its responses in snapshot order.
func (r *TestSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, question_set_id, is_exam, duration_minutes, started_at, ends_at, is_submitted, created_at
		 FROM test_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.QuestionSetID, &s.IsExam, &s.DurationMinutes, &s.StartedAt, &s.EndsAt, &s.IsSubmitted, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id, selected_answer, marked_for_later, is_attempted
		 FROM test_responses WHERE session_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.QuestionID, &resp.SelectedAnswer, &resp.MarkedForLater, &resp.IsAttempted); err != nil {
			return nil, err
		}
		s.Responses = append(s.Responses, resp)
	}
	return s, rows.Err()
}

// ListByUser retrieves the user's sessions newest-first, with catalog names
// joined in for the history view.
func (r *TestSessionRepository) ListByUser(ctx context.Context, userID int) ([]model.SessionSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.question_set_id, qs.name, co.name, s.is_exam, s.is_submitted, s.duration_minutes, s.created_at
		 FROM test_sessions s
		 JOIN question_sets qs ON s.question_set_id = qs.id
		 JOIN categories ca ON qs.category_id = ca.id
		 JOIN courses co ON ca.course_id = co.id
		 WHERE s.user_id = $1
		 ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.SessionSummary
	for rows.Next() {
		var s model.SessionSummary
		if err := rows.Scan(&s.ID, &s.QuestionSetID, &s.QuestionSetName, &s.CourseName, &s.IsExam, &s.IsSubmitted, &s.DurationMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpdateResponse applies a partial update to a single response row. Only the
// supplied fields change; is_attempted latches to true when the patch
// carries an attempt signal. Returns false when no response exists for the
// (session, question) pair. The submitted re-check keeps the snapshot frozen
// even when a patch races the expiry worker's flip.
func (r *TestSessionRepository) UpdateResponse(ctx context.Context, sessionID, questionID uuid.UUID, patch model.ResponsePatch) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_responses SET
			selected_answer  = COALESCE($3, selected_answer),
			marked_for_later = COALESCE($4, marked_for_later),
			is_attempted     = is_attempted OR $5,
			updated_at       = NOW()
		 WHERE session_id = $1 AND question_id = $2
		   AND NOT EXISTS (SELECT 1 FROM test_sessions WHERE id = $1 AND is_submitted)`,
		sessionID, questionID, patch.SelectedAnswer, patch.MarkedForLater, patch.AttemptSignal())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FinalizeSubmission flips the session to submitted and inserts its result
// in one transaction. Returns false without error when the session was
// already submitted (the flip matched no row, or the result's uniqueness
// constraint fired on a racing submit).
func (r *TestSessionRepository) FinalizeSubmission(ctx context.Context, sessionID uuid.UUID, res *model.TestResult) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE test_sessions SET is_submitted = TRUE, updated_at = NOW()
		 WHERE id = $1 AND is_submitted = FALSE`, sessionID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO test_results
			(test_session_id, user_id, question_set_id, total_questions, attempted, correct, incorrect, percentage, accuracy, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		res.TestSessionID, res.UserID, res.QuestionSetID,
		res.TotalQuestions, res.Attempted, res.Correct, res.Incorrect,
		res.Percentage, res.Accuracy, res.SubmittedAt,
	).Scan(&res.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ListExpired returns ids of exam sessions whose deadline has passed but
// which were never submitted. Used by the expiry worker's DB sweep.
func (r *TestSessionRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM test_sessions
		 WHERE is_exam AND NOT is_submitted AND ends_at < $1
		 ORDER BY ends_at ASC
		 LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
