package repositories

import (
	"context"

	"mesa/internal/models"

	"github.com/google/uuid"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *models.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Business, error)
	Update(ctx context.Context, business *models.Business) error
	List(ctx context.Context, limit, offset int) ([]*models.Business, error)
}

type businessRepo struct {
	db DB
}

func NewBusinessRepo(db DB) BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) Create(ctx context.Context, business *models.Business) error {
	query := `
		INSERT INTO businesses (id, name, subdomain, timezone, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, business.ID, business.Name, business.Subdomain, business.Timezone, business.Status)
	return err
}

func (r *businessRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	business := &models.Business{}
	query := `
		SELECT id, name, subdomain, timezone, status, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&business.ID, &business.Name, &business.Subdomain, &business.Timezone, &business.Status, &business.CreatedAt, &business.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return business, nil
}

func (r *businessRepo) GetBySubdomain(ctx context.Context, subdomain string) (*models.Business, error) {
	business := &models.Business{}
	query := `
		SELECT id, name, subdomain, timezone, status, created_at, updated_at
		FROM businesses
		WHERE subdomain = $1
	`
	err := r.db.QueryRow(ctx, query, subdomain).Scan(&business.ID, &business.Name, &business.Subdomain, &business.Timezone, &business.Status, &business.CreatedAt, &business.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return business, nil
}

func (r *businessRepo) Update(ctx context.Context, business *models.Business) error {
	query := `
		UPDATE businesses
		SET name = $1, timezone = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, business.Name, business.Timezone, business.Status, business.ID)
	return err
}

func (r *businessRepo) List(ctx context.Context, limit, offset int) ([]*models.Business, error) {
	query := `
		SELECT id, name, subdomain, timezone, status, created_at, updated_at
		FROM businesses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []*models.Business
	for rows.Next() {
		business := &models.Business{}
		if err := rows.Scan(&business.ID, &business.Name, &business.Subdomain, &business.Timezone, &business.Status, &business.CreatedAt, &business.UpdatedAt); err != nil {
			return nil, err
		}
		businesses = append(businesses, business)
	}
	return businesses, nil
}
