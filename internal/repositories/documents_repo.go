package repositories

import (
	"context"
	"fmt"

	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const documentColumns = `id, business_id, staff_id, document_type, file_name, object_key,
		content_type, expiration_date, is_required, uploaded_by, created_at, updated_at`

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.StaffDocument) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.StaffDocument, error)
	Update(ctx context.Context, doc *models.StaffDocument) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	ListByStaff(ctx context.Context, businessID, staffID uuid.UUID) ([]models.StaffDocument, error)
}

type documentRepo struct {
	db DB
}

func NewDocumentRepo(db DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *models.StaffDocument) error {
	query := `
		INSERT INTO staff_documents (id, business_id, staff_id, document_type, file_name,
			object_key, content_type, expiration_date, is_required, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, doc.ID, doc.BusinessID, doc.StaffID, doc.Type, doc.FileName,
		doc.ObjectKey, doc.ContentType, doc.ExpirationDate, doc.IsRequired, doc.UploadedBy)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.StaffDocument, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM staff_documents
		WHERE business_id = $1 AND id = $2
	`, documentColumns)
	return scanDocument(r.db.QueryRow(ctx, query, businessID, id))
}

func (r *documentRepo) Update(ctx context.Context, doc *models.StaffDocument) error {
	query := `
		UPDATE staff_documents
		SET document_type = $1, file_name = $2, expiration_date = $3, is_required = $4, updated_at = NOW()
		WHERE business_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, doc.Type, doc.FileName, doc.ExpirationDate, doc.IsRequired,
		doc.BusinessID, doc.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	query := `DELETE FROM staff_documents WHERE business_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, businessID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepo) ListByStaff(ctx context.Context, businessID, staffID uuid.UUID) ([]models.StaffDocument, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM staff_documents
		WHERE business_id = $1 AND staff_id = $2
		ORDER BY created_at DESC
	`, documentColumns)
	rows, err := r.db.Query(ctx, query, businessID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.StaffDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (*models.StaffDocument, error) {
	doc := &models.StaffDocument{}
	err := row.Scan(&doc.ID, &doc.BusinessID, &doc.StaffID, &doc.Type, &doc.FileName,
		&doc.ObjectKey, &doc.ContentType, &doc.ExpirationDate, &doc.IsRequired,
		&doc.UploadedBy, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
