package handlers

import (
	"net/http"
	"strconv"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CategoryHandlers struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryHandlers(categoryRepo repositories.CategoryRepository) *CategoryHandlers {
	return &CategoryHandlers{categoryRepo: categoryRepo}
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "is required")
	}

	category := &models.Category{
		ID:          uuid.New(),
		BusinessID:  businessID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.categoryRepo.Create(ctx, category); err != nil {
		return common.SendServerError(c, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	categoryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	category, err := h.categoryRepo.GetByID(ctx, businessID, categoryID)
	if err != nil {
		return common.SendNotFoundError(c, "category")
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	categoryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Name == "" {
		return common.SendValidationError(c, "name", "is required")
	}

	category := &models.Category{
		ID:          categoryID,
		BusinessID:  businessID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.categoryRepo.Update(ctx, category); err != nil {
		return common.SendNotFoundError(c, "category")
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	categoryID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.categoryRepo.Delete(ctx, businessID, categoryID); err != nil {
		return common.SendNotFoundError(c, "category")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	categories, err := h.categoryRepo.List(ctx, businessID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
		"limit":      limit,
		"offset":     offset,
	})
}
