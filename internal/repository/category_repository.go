package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepdesk/prepdesk-backend/internal/model"
)

// CategoryRepository handles category data access.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category under a course.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO categories (course_id, name)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		c.CourseID, c.Name,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID retrieves a category by its UUID.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c := &model.Category{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, name, created_at, updated_at
		 FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.CourseID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByCourse retrieves all categories of a course ordered by name.
func (r *CategoryRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, name, created_at, updated_at
		 FROM categories WHERE course_id = $1 ORDER BY name ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.CourseID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update renames a category.
func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $1, updated_at = NOW() WHERE id = $2`,
		c.Name, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// Delete removes a category and its question sets via cascade.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}
