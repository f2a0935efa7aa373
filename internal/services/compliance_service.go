package services

import (
	"context"
	"errors"
	"time"

	"mesa/internal/common"
	"mesa/internal/config"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ComplianceService derives staff document compliance on read. Status is a
// pure function of the live document set and today's date; nothing is stored.
type ComplianceService interface {
	GetStaffComplianceStatus(ctx context.Context, businessID, staffID uuid.UUID) (*models.ComplianceStatus, error)
	GetBusinessComplianceOverview(ctx context.Context, businessID uuid.UUID) (*models.ComplianceOverview, error)
}

type complianceService struct {
	staffRepo repositories.StaffRepository
	docRepo   repositories.DocumentRepository
	cfg       config.AlertConfig
}

func NewComplianceService(staffRepo repositories.StaffRepository, docRepo repositories.DocumentRepository, cfg config.AlertConfig) ComplianceService {
	return &complianceService{
		staffRepo: staffRepo,
		docRepo:   docRepo,
		cfg:       cfg,
	}
}

// CalculateStatus classifies a document set against today. Deterministic for
// a fixed today, so two calls on the same day agree.
func CalculateStatus(staffID uuid.UUID, docs []models.StaffDocument, today time.Time, warningDays int) *models.ComplianceStatus {
	day := today.Truncate(24 * time.Hour)
	warnUntil := day.AddDate(0, 0, warningDays)

	status := &models.ComplianceStatus{
		StaffID: staffID,
	}

	presentTypes := make(map[models.DocumentType]bool, len(docs))
	for _, doc := range docs {
		presentTypes[doc.Type] = true
		if doc.ExpirationDate == nil {
			continue
		}
		expiry := doc.ExpirationDate.Truncate(24 * time.Hour)
		switch {
		case expiry.Before(day):
			status.ExpiredDocuments = append(status.ExpiredDocuments, doc)
		case !expiry.After(warnUntil):
			status.ExpiringSoonDocuments = append(status.ExpiringSoonDocuments, doc)
		}
	}

	for _, required := range models.RequiredDocumentTypes {
		if !presentTypes[required] {
			status.MissingRequiredTypes = append(status.MissingRequiredTypes, required)
		}
	}

	switch {
	case len(status.ExpiredDocuments) > 0 || len(status.MissingRequiredTypes) > 0:
		status.Status = models.NonCompliant
	case len(status.ExpiringSoonDocuments) > 0:
		status.Status = models.NeedsAttention
	default:
		status.Status = models.Compliant
	}
	return status
}

func (s *complianceService) GetStaffComplianceStatus(ctx context.Context, businessID, staffID uuid.UUID) (*models.ComplianceStatus, error) {
	if _, err := s.staffRepo.GetByID(ctx, businessID, staffID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("staff member")
		}
		return nil, common.NewPersistenceError("get staff", err)
	}

	docs, err := s.docRepo.ListByStaff(ctx, businessID, staffID)
	if err != nil {
		return nil, common.NewPersistenceError("list staff documents", err)
	}

	return CalculateStatus(staffID, docs, time.Now(), s.cfg.ComplianceWarningDays), nil
}

// GetBusinessComplianceOverview aggregates per-staff status across active
// staff. Zero staff reads as fully compliant.
func (s *complianceService) GetBusinessComplianceOverview(ctx context.Context, businessID uuid.UUID) (*models.ComplianceOverview, error) {
	const pageSize = 200
	overview := &models.ComplianceOverview{}
	now := time.Now()
	offset := 0

	for {
		members, err := s.staffRepo.List(ctx, businessID, true, pageSize, offset)
		if err != nil {
			return nil, common.NewPersistenceError("list staff", err)
		}
		for _, member := range members {
			docs, err := s.docRepo.ListByStaff(ctx, businessID, member.ID)
			if err != nil {
				return nil, common.NewPersistenceError("list staff documents", err)
			}
			status := CalculateStatus(member.ID, docs, now, s.cfg.ComplianceWarningDays)

			overview.TotalStaff++
			switch status.Status {
			case models.Compliant:
				overview.CompliantStaff++
			case models.NeedsAttention:
				overview.NeedsAttentionStaff++
			case models.NonCompliant:
				overview.NonCompliantStaff++
			}
		}
		if len(members) < pageSize {
			break
		}
		offset += pageSize
	}

	if overview.TotalStaff == 0 {
		overview.CompliancePercentage = 100
	} else {
		overview.CompliancePercentage = float64(overview.CompliantStaff) / float64(overview.TotalStaff) * 100
	}
	return overview, nil
}
