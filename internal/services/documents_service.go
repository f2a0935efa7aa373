package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const presignedURLTTL = 15 * time.Minute

// DocumentService manages staff compliance documents. The database record is
// the authoritative compliance input; the object store holds the file bytes.
type DocumentService interface {
	Upload(ctx context.Context, businessID uuid.UUID, doc *models.StaffDocument, reader io.Reader, size int64) error
	Get(ctx context.Context, businessID, id uuid.UUID) (*models.StaffDocument, error)
	GetDownloadURL(ctx context.Context, businessID, id uuid.UUID) (string, error)
	UpdateMetadata(ctx context.Context, businessID uuid.UUID, doc *models.StaffDocument) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	ListByStaff(ctx context.Context, businessID, staffID uuid.UUID) ([]models.StaffDocument, error)
}

type documentService struct {
	docRepo   repositories.DocumentRepository
	staffRepo repositories.StaffRepository
	storage   StorageService
	bucket    string
	logger    *zap.Logger
}

func NewDocumentService(docRepo repositories.DocumentRepository, staffRepo repositories.StaffRepository, storage StorageService, bucket string, logger *zap.Logger) DocumentService {
	return &documentService{
		docRepo:   docRepo,
		staffRepo: staffRepo,
		storage:   storage,
		bucket:    bucket,
		logger:    logger,
	}
}

func (s *documentService) Upload(ctx context.Context, businessID uuid.UUID, doc *models.StaffDocument, reader io.Reader, size int64) error {
	if !doc.Type.Valid() {
		return common.NewValidationError("document_type", "is not a recognized type")
	}
	if doc.FileName == "" {
		return common.NewValidationError("file_name", "is required")
	}

	if _, err := s.staffRepo.GetByID(ctx, businessID, doc.StaffID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("staff member")
		}
		return common.NewPersistenceError("get staff", err)
	}

	doc.ID = uuid.New()
	doc.BusinessID = businessID
	doc.ObjectKey = fmt.Sprintf("%s/%s/%s/%s", businessID, doc.StaffID, doc.ID, doc.FileName)
	for _, required := range models.RequiredDocumentTypes {
		if doc.Type == required {
			doc.IsRequired = true
		}
	}

	if err := s.storage.UploadDocument(ctx, s.bucket, doc.ObjectKey, reader, size, doc.ContentType); err != nil {
		return common.NewPersistenceError("upload document file", err)
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		// The record is authoritative; without it the uploaded object is an
		// orphan, so clean it up.
		if delErr := s.storage.DeleteDocument(ctx, s.bucket, doc.ObjectKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned document object",
				zap.String("object_key", doc.ObjectKey), zap.Error(delErr))
		}
		return common.NewPersistenceError("create document record", err)
	}
	return nil
}

func (s *documentService) Get(ctx context.Context, businessID, id uuid.UUID) (*models.StaffDocument, error) {
	doc, err := s.docRepo.GetByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("document")
		}
		return nil, common.NewPersistenceError("get document", err)
	}
	return doc, nil
}

func (s *documentService) GetDownloadURL(ctx context.Context, businessID, id uuid.UUID) (string, error) {
	doc, err := s.Get(ctx, businessID, id)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, doc.ObjectKey, presignedURLTTL)
	if err != nil {
		return "", common.NewPersistenceError("presign document url", err)
	}
	return url, nil
}

func (s *documentService) UpdateMetadata(ctx context.Context, businessID uuid.UUID, doc *models.StaffDocument) error {
	if !doc.Type.Valid() {
		return common.NewValidationError("document_type", "is not a recognized type")
	}
	doc.BusinessID = businessID
	err := s.docRepo.Update(ctx, doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError("document")
	}
	if err != nil {
		return common.NewPersistenceError("update document", err)
	}
	return nil
}

// Delete removes the record first, then the file best-effort. A leftover
// object never affects compliance since status reads only the records.
func (s *documentService) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	doc, err := s.Get(ctx, businessID, id)
	if err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, businessID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("document")
		}
		return common.NewPersistenceError("delete document", err)
	}

	if delErr := s.storage.DeleteDocument(ctx, s.bucket, doc.ObjectKey); delErr != nil {
		s.logger.Warn("best-effort file deletion failed",
			zap.String("object_key", doc.ObjectKey), zap.Error(delErr))
	}
	return nil
}

func (s *documentService) ListByStaff(ctx context.Context, businessID, staffID uuid.UUID) ([]models.StaffDocument, error) {
	return s.docRepo.ListByStaff(ctx, businessID, staffID)
}
