package repositories

import (
	"context"

	"mesa/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Category, error)
}

type categoryRepo struct {
	db DB
}

func NewCategoryRepo(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, business_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (business_id, name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.BusinessID, category.Name, category.Description)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT id, business_id, name, description, created_at, updated_at
		FROM categories
		WHERE business_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, businessID, id).Scan(&category.ID, &category.BusinessID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = NOW()
		WHERE business_id = $3 AND id = $4
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.Description, category.BusinessID, category.ID)
	return err
}

func (r *categoryRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE business_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, businessID, id)
	return err
}

func (r *categoryRepo) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Category, error) {
	query := `
		SELECT id, business_id, name, description, created_at, updated_at
		FROM categories
		WHERE business_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.BusinessID, &category.Name, &category.Description, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}
