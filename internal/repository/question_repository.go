package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a single question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (body, answers, correct_answer)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		q.Body, q.Answers, q.CorrectAnswer,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// BulkCreate inserts several questions in one transaction and fills in their
// generated ids in order.
func (r *QuestionRepository) BulkCreate(ctx context.Context, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		batch.Queue(
			`INSERT INTO questions (body, answers, correct_answer)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			q.Body, q.Answers, q.CorrectAnswer)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range questions {
		q := &questions[i]
		if err := br.QueryRow().Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, body, answers, correct_answer, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Body, &q.Answers, &q.CorrectAnswer, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByIDs retrieves the questions for the given ids, keyed by id.
// Missing ids are simply absent from the map.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	questions := make(map[uuid.UUID]model.Question, len(ids))
	if len(ids) == 0 {
		return questions, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, body, answers, correct_answer, created_at, updated_at
		 FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Body, &q.Answers, &q.CorrectAnswer, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions[q.ID] = q
	}
	return questions, rows.Err()
}

// AnswerKey retrieves only the correct-answer index for the given ids.
func (r *QuestionRepository) AnswerKey(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	key := make(map[uuid.UUID]int, len(ids))
	if len(ids) == 0 {
		return key, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, correct_answer FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var correct int
		if err := rows.Scan(&id, &correct); err != nil {
			return nil, err
		}
		key[id] = correct
	}
	return key, rows.Err()
}

// Update changes a question's body, answers, and correct answer.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET body = $1, answers = $2, correct_answer = $3, updated_at = NOW()
		 WHERE id = $4`,
		q.Body, q.Answers, q.CorrectAnswer, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// Delete removes a question. Fails if the question is referenced by a
// session snapshot (test_responses keeps history intact).
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
