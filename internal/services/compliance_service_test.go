package services

import (
	"context"
	"testing"
	"time"

	"mesa/internal/config"
	"mesa/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Staff, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Staff), args.Error(1)
}

func (m *MockStaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) Deactivate(ctx context.Context, businessID, id uuid.UUID) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *MockStaffRepository) List(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*models.Staff, error) {
	args := m.Called(ctx, businessID, activeOnly, limit, offset)
	return args.Get(0).([]*models.Staff), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *models.StaffDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.StaffDocument, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StaffDocument), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, doc *models.StaffDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByStaff(ctx context.Context, businessID, staffID uuid.UUID) ([]models.StaffDocument, error) {
	args := m.Called(ctx, businessID, staffID)
	return args.Get(0).([]models.StaffDocument), args.Error(1)
}

func docWithExpiry(docType models.DocumentType, expiry *time.Time) models.StaffDocument {
	return models.StaffDocument{
		ID:             uuid.New(),
		Type:           docType,
		FileName:       string(docType) + ".pdf",
		ExpirationDate: expiry,
	}
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestCalculateStatus(t *testing.T) {
	staffID := uuid.New()
	today := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	const warningDays = 30

	valid := datePtr(today.AddDate(1, 0, 0))
	expired := datePtr(today.AddDate(0, 0, -1))
	expiringSoon := datePtr(today.AddDate(0, 0, 10))
	windowEdge := datePtr(today.AddDate(0, 0, warningDays))

	cases := []struct {
		name            string
		docs            []models.StaffDocument
		expected        models.ComplianceState
		expiredCount    int
		expiringCount   int
		missingRequired []models.DocumentType
	}{
		{
			name:            "no documents at all",
			docs:            nil,
			expected:        models.NonCompliant,
			missingRequired: []models.DocumentType{models.DocumentContract, models.DocumentID},
		},
		{
			name: "all required documents valid",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, valid),
				docWithExpiry(models.DocumentID, valid),
			},
			expected: models.Compliant,
		},
		{
			name: "required document without expiry counts as present",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, nil),
				docWithExpiry(models.DocumentID, nil),
			},
			expected: models.Compliant,
		},
		{
			name: "expiring soon needs attention",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, expiringSoon),
				docWithExpiry(models.DocumentID, valid),
			},
			expected:      models.NeedsAttention,
			expiringCount: 1,
		},
		{
			name: "warning window edge still flags",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, windowEdge),
				docWithExpiry(models.DocumentID, valid),
			},
			expected:      models.NeedsAttention,
			expiringCount: 1,
		},
		{
			name: "expired document dominates expiring soon",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, expired),
				docWithExpiry(models.DocumentID, expiringSoon),
			},
			expected:      models.NonCompliant,
			expiredCount:  1,
			expiringCount: 1,
		},
		{
			name: "missing required dominates expiring soon",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, expiringSoon),
			},
			expected:        models.NonCompliant,
			expiringCount:   1,
			missingRequired: []models.DocumentType{models.DocumentID},
		},
		{
			name: "expired optional document still flags",
			docs: []models.StaffDocument{
				docWithExpiry(models.DocumentContract, valid),
				docWithExpiry(models.DocumentID, valid),
				docWithExpiry(models.DocumentCertification, expired),
			},
			expected:     models.NonCompliant,
			expiredCount: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := CalculateStatus(staffID, tc.docs, today, warningDays)

			assert.Equal(t, staffID, status.StaffID)
			assert.Equal(t, tc.expected, status.Status)
			assert.Len(t, status.ExpiredDocuments, tc.expiredCount)
			assert.Len(t, status.ExpiringSoonDocuments, tc.expiringCount)
			assert.Equal(t, tc.missingRequired, status.MissingRequiredTypes)
		})
	}
}

func TestCalculateStatusSameDayDeterminism(t *testing.T) {
	staffID := uuid.New()
	morning := time.Date(2026, 3, 15, 0, 5, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 15, 23, 55, 0, 0, time.UTC)

	docs := []models.StaffDocument{
		docWithExpiry(models.DocumentContract, datePtr(time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC))),
		docWithExpiry(models.DocumentID, datePtr(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))),
	}

	first := CalculateStatus(staffID, docs, morning, 30)
	second := CalculateStatus(staffID, docs, evening, 30)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, len(first.ExpiringSoonDocuments), len(second.ExpiringSoonDocuments))
}

func newTestComplianceService(staffRepo *MockStaffRepository, docRepo *MockDocumentRepository) ComplianceService {
	return NewComplianceService(staffRepo, docRepo, config.AlertConfig{ComplianceWarningDays: 30})
}

func TestOverviewZeroStaffIsFullyCompliant(t *testing.T) {
	staffRepo := new(MockStaffRepository)
	docRepo := new(MockDocumentRepository)
	svc := newTestComplianceService(staffRepo, docRepo)
	businessID := uuid.New()

	staffRepo.On("List", mock.Anything, businessID, true, 200, 0).Return([]*models.Staff{}, nil)

	overview, err := svc.GetBusinessComplianceOverview(context.Background(), businessID)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.TotalStaff)
	assert.Equal(t, float64(100), overview.CompliancePercentage)
}

func TestOverviewCountsPerStatus(t *testing.T) {
	staffRepo := new(MockStaffRepository)
	docRepo := new(MockDocumentRepository)
	svc := newTestComplianceService(staffRepo, docRepo)
	businessID := uuid.New()

	compliant := &models.Staff{ID: uuid.New(), IsActive: true}
	attention := &models.Staff{ID: uuid.New(), IsActive: true}
	missing := &models.Staff{ID: uuid.New(), IsActive: true}

	validExpiry := datePtr(time.Now().AddDate(1, 0, 0))
	soonExpiry := datePtr(time.Now().AddDate(0, 0, 5))

	staffRepo.On("List", mock.Anything, businessID, true, 200, 0).
		Return([]*models.Staff{compliant, attention, missing}, nil)
	docRepo.On("ListByStaff", mock.Anything, businessID, compliant.ID).Return([]models.StaffDocument{
		docWithExpiry(models.DocumentContract, validExpiry),
		docWithExpiry(models.DocumentID, validExpiry),
	}, nil)
	docRepo.On("ListByStaff", mock.Anything, businessID, attention.ID).Return([]models.StaffDocument{
		docWithExpiry(models.DocumentContract, soonExpiry),
		docWithExpiry(models.DocumentID, validExpiry),
	}, nil)
	docRepo.On("ListByStaff", mock.Anything, businessID, missing.ID).Return([]models.StaffDocument{}, nil)

	overview, err := svc.GetBusinessComplianceOverview(context.Background(), businessID)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalStaff)
	assert.Equal(t, 1, overview.CompliantStaff)
	assert.Equal(t, 1, overview.NeedsAttentionStaff)
	assert.Equal(t, 1, overview.NonCompliantStaff)
	assert.InDelta(t, 33.3, overview.CompliancePercentage, 0.1)
}

func TestStaffComplianceStatusUnknownStaff(t *testing.T) {
	staffRepo := new(MockStaffRepository)
	docRepo := new(MockDocumentRepository)
	svc := newTestComplianceService(staffRepo, docRepo)
	businessID := uuid.New()
	staffID := uuid.New()

	staffRepo.On("GetByID", mock.Anything, businessID, staffID).Return(nil, pgx.ErrNoRows)

	_, err := svc.GetStaffComplianceStatus(context.Background(), businessID, staffID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
