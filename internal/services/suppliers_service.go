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

type SupplierService interface {
	Create(ctx context.Context, businessID uuid.UUID, supplier *models.Supplier) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Supplier, error)
	Update(ctx context.Context, businessID uuid.UUID, supplier *models.Supplier) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Supplier, error)
}

type supplierService struct {
	supplierRepo repositories.SupplierRepository
}

func NewSupplierService(supplierRepo repositories.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

func (s *supplierService) Create(ctx context.Context, businessID uuid.UUID, supplier *models.Supplier) error {
	if err := common.ValidateRequiredString(supplier.Name, "name"); err != nil {
		return err
	}
	supplier.ID = uuid.New()
	supplier.BusinessID = businessID
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return common.NewPersistenceError("create supplier", err)
	}
	return nil
}

func (s *supplierService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, businessID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("supplier")
		}
		return nil, common.NewPersistenceError("get supplier", err)
	}
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, businessID uuid.UUID, supplier *models.Supplier) error {
	if err := common.ValidateRequiredString(supplier.Name, "name"); err != nil {
		return err
	}
	supplier.BusinessID = businessID
	err := s.supplierRepo.Update(ctx, supplier)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError("supplier")
	}
	if err != nil {
		return common.NewPersistenceError("update supplier", err)
	}
	return nil
}

func (s *supplierService) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	err := s.supplierRepo.Delete(ctx, businessID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError("supplier")
	}
	if err != nil {
		return common.NewPersistenceError("delete supplier", err)
	}
	return nil
}

func (s *supplierService) List(ctx context.Context, businessID uuid.UUID, limit, offset int) ([]*models.Supplier, error) {
	return s.supplierRepo.List(ctx, businessID, limit, offset)
}
