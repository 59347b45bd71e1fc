package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// TestResultRepository handles read access to test results. Results are
// written only by TestSessionRepository.FinalizeSubmission and never
// mutated afterwards.
type TestResultRepository struct {
	pool *pgxpool.Pool
}

// NewTestResultRepository creates a new TestResultRepository.
func NewTestResultRepository(pool *pgxpool.Pool) *TestResultRepository {
	return &TestResultRepository{pool: pool}
}

// GetBySessionID retrieves the result for a submitted session.
func (r *TestResultRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	res := &model.TestResult{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_session_id, user_id, question_set_id,
		        total_questions, attempted, correct, incorrect,
		        percentage, accuracy, submitted_at
		 FROM test_results WHERE test_session_id = $1`, sessionID,
	).Scan(&res.ID, &res.TestSessionID, &res.UserID, &res.QuestionSetID,
		&res.TotalQuestions, &res.Attempted, &res.Correct, &res.Incorrect,
		&res.Percentage, &res.Accuracy, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByUser retrieves the user's results newest-first for the reporting view.
func (r *TestResultRepository) ListByUser(ctx context.Context, userID int) ([]model.TestResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_session_id, user_id, question_set_id,
		        total_questions, attempted, correct, incorrect,
		        percentage, accuracy, submitted_at
		 FROM test_results
		 WHERE user_id = $1
		 ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		var res model.TestResult
		if err := rows.Scan(&res.ID, &res.TestSessionID, &res.UserID, &res.QuestionSetID,
			&res.TotalQuestions, &res.Attempted, &res.Correct, &res.Incorrect,
			&res.Percentage, &res.Accuracy, &res.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
