package repositories

import (
	"context"
	"fmt"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const staffColumns = `id, business_id, user_id, first_name, last_name, email, phone,
		position, hire_date, is_active, created_at, updated_at`

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Staff, error)
	Update(ctx context.Context, staff *models.Staff) error
	Deactivate(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*models.Staff, error)
}

type staffRepo struct {
	db DB
}

func NewStaffRepo(db DB) StaffRepository {
	return &staffRepo{db: db}
}

func (r *staffRepo) Create(ctx context.Context, staff *models.Staff) error {
	query := `
		INSERT INTO staff (id, business_id, user_id, first_name, last_name, email, phone,
			position, hire_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, staff.ID, staff.BusinessID, staff.UserID, staff.FirstName,
		staff.LastName, staff.Email, staff.Phone, staff.Position, staff.HireDate, staff.IsActive)
	return err
}

func (r *staffRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Staff, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM staff
		WHERE business_id = $1 AND id = $2
	`, staffColumns)
	return scanStaff(r.db.QueryRow(ctx, query, businessID, id))
}

func (r *staffRepo) Update(ctx context.Context, staff *models.Staff) error {
	query := `
		UPDATE staff
		SET first_name = $1, last_name = $2, email = $3, phone = $4, position = $5,
			hire_date = $6, is_active = $7, updated_at = NOW()
		WHERE business_id = $8 AND id = $9
	`
	tag, err := r.db.Exec(ctx, query, staff.FirstName, staff.LastName, staff.Email, staff.Phone,
		staff.Position, staff.HireDate, staff.IsActive, staff.BusinessID, staff.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepo) Deactivate(ctx context.Context, businessID, id uuid.UUID) error {
	query := `
		UPDATE staff
		SET is_active = false, updated_at = NOW()
		WHERE business_id = $1 AND id = $2
	`
	tag, err := r.db.Exec(ctx, query, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepo) List(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*models.Staff, error) {
	queryBase := fmt.Sprintf(`
		SELECT %s
		FROM staff
		WHERE business_id = $1
	`, staffColumns)
	args := []any{businessID}
	conditionCount := 1

	if activeOnly {
		queryBase += ` AND is_active = true`
	}

	queryBase += fmt.Sprintf(` ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Staff
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func scanStaff(row pgx.Row) (*models.Staff, error) {
	staff := &models.Staff{}
	err := row.Scan(&staff.ID, &staff.BusinessID, &staff.UserID, &staff.FirstName, &staff.LastName,
		&staff.Email, &staff.Phone, &staff.Position, &staff.HireDate, &staff.IsActive,
		&staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return staff, nil
}
