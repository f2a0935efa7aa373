package services

import (
	"context"
	"errors"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StaffService interface {
	Create(ctx context.Context, businessID uuid.UUID, staff *models.Staff) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Staff, error)
	Update(ctx context.Context, businessID uuid.UUID, staff *models.Staff) error
	Deactivate(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*models.Staff, error)
}

type staffService struct {
	staffRepo repositories.StaffRepository
}

func NewStaffService(staffRepo repositories.StaffRepository) StaffService {
	return &staffService{staffRepo: staffRepo}
}

func validateStaff(staff *models.Staff) error {
	for field, value := range map[string]string{
		"first_name": staff.FirstName,
		"last_name":  staff.LastName,
		"email":      staff.Email,
		"position":   staff.Position,
	} {
		if err := common.ValidateRequiredString(value, field); err != nil {
			return err
		}
	}
	return nil
}

func (s *staffService) Create(ctx context.Context, businessID uuid.UUID, staff *models.Staff) error {
	staff.ID = uuid.New()
	staff.BusinessID = businessID
	staff.IsActive = true

	if err := validateStaff(staff); err != nil {
		return err
	}
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return common.NewPersistenceError("create staff", err)
	}
	return nil
}

func (s *staffService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("staff member")
		}
		return nil, common.NewPersistenceError("get staff", err)
	}
	return staff, nil
}

func (s *staffService) Update(ctx context.Context, businessID uuid.UUID, staff *models.Staff) error {
	staff.BusinessID = businessID
	if err := validateStaff(staff); err != nil {
		return err
	}
	err := s.staffRepo.Update(ctx, staff)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError("staff member")
	}
	if err != nil {
		return common.NewPersistenceError("update staff", err)
	}
	return nil
}

func (s *staffService) Deactivate(ctx context.Context, businessID, id uuid.UUID) error {
	err := s.staffRepo.Deactivate(ctx, businessID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError("staff member")
	}
	if err != nil {
		return common.NewPersistenceError("deactivate staff", err)
	}
	return nil
}

func (s *staffService) List(ctx context.Context, businessID uuid.UUID, activeOnly bool, limit, offset int) ([]*models.Staff, error) {
	return s.staffRepo.List(ctx, businessID, activeOnly, limit, offset)
}
