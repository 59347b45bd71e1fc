package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// QuestionSetRepository handles question set data access, including the
// ordered question membership.
type QuestionSetRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionSetRepository creates a new QuestionSetRepository.
func NewQuestionSetRepository(pool *pgxpool.Pool) *QuestionSetRepository {
	return &QuestionSetRepository{pool: pool}
}

// Create inserts a question set and its ordered question links in one
// transaction.
func (r *QuestionSetRepository) Create(ctx context.Context, qs *model.QuestionSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO question_sets (category_id, name, duration_minutes)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		qs.CategoryID, qs.Name, qs.DurationMinutes,
	).Scan(&qs.ID, &qs.CreatedAt, &qs.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuestionLinks(ctx, tx, qs.ID, qs.QuestionIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Resolve retrieves a question set with its course (via the category) and
// the ordered question ids. This is the projection the session engine needs.
func (r *QuestionSetRepository) Resolve(ctx context.Context, id uuid.UUID) (*model.QuestionSet, error) {
	qs := &model.QuestionSet{}
	err := r.pool.QueryRow(ctx,
		`SELECT qs.id, qs.category_id, c.course_id, qs.name, qs.duration_minutes, qs.created_at, qs.updated_at
		 FROM question_sets qs
		 JOIN categories c ON qs.category_id = c.id
		 WHERE qs.id = $1`, id,
	).Scan(&qs.ID, &qs.CategoryID, &qs.CourseID, &qs.Name, &qs.DurationMinutes, &qs.CreatedAt, &qs.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM question_set_questions
		 WHERE question_set_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var qid uuid.UUID
		if err := rows.Scan(&qid); err != nil {
			return nil, err
		}
		qs.QuestionIDs = append(qs.QuestionIDs, qid)
	}
	return qs, rows.Err()
}

// ListByCategory retrieves the sets of a category with their question counts.
func (r *QuestionSetRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.QuestionSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT qs.id, qs.category_id, c.course_id, qs.name, qs.duration_minutes, qs.created_at, qs.updated_at
		 FROM question_sets qs
		 JOIN categories c ON qs.category_id = c.id
		 WHERE qs.category_id = $1
		 ORDER BY qs.name ASC`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []model.QuestionSet
	for rows.Next() {
		var qs model.QuestionSet
		if err := rows.Scan(&qs.ID, &qs.CategoryID, &qs.CourseID, &qs.Name, &qs.DurationMinutes, &qs.CreatedAt, &qs.UpdatedAt); err != nil {
			return nil, err
		}
		sets = append(sets, qs)
	}
	return sets, rows.Err()
}

// Update changes a set's metadata and, when QuestionIDs is non-nil, replaces
// the ordered membership.
func (r *QuestionSetRepository) Update(ctx context.Context, qs *model.QuestionSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE question_sets SET name = $1, duration_minutes = $2, updated_at = NOW()
		 WHERE id = $3`,
		qs.Name, qs.DurationMinutes, qs.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}

	if qs.QuestionIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM question_set_questions WHERE question_set_id = $1`, qs.ID); err != nil {
			return err
		}
		if err := insertQuestionLinks(ctx, tx, qs.ID, qs.QuestionIDs); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListIDsByQuestion returns the ids of every set containing the question.
func (r *QuestionSetRepository) ListIDsByQuestion(ctx context.Context, questionID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_set_id FROM question_set_questions
		 WHERE question_id = $1`, questionID)
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

// Delete removes a question set.
func (r *QuestionSetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM question_sets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func insertQuestionLinks(ctx context.Context, tx pgx.Tx, setID uuid.UUID, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, qid := range questionIDs {
		batch.Queue(
			`INSERT INTO question_set_questions (question_set_id, question_id, position)
			 VALUES ($1, $2, $3)`,
			setID, qid, i)
	}
	return tx.SendBatch(ctx, batch).Close()
}
