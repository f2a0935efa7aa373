package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type StaffHandlers struct {
	staffService      services.StaffService
	complianceService services.ComplianceService
}

func NewStaffHandlers(staffService services.StaffService, complianceService services.ComplianceService) *StaffHandlers {
	return &StaffHandlers{
		staffService:      staffService,
		complianceService: complianceService,
	}
}

type StaffRequest struct {
	UserID    *uuid.UUID `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	Position  string     `json:"position"`
	HireDate  string     `json:"hire_date"`
	IsActive  *bool      `json:"is_active"`
}

func (r *StaffRequest) toModel() (*models.Staff, error) {
	staff := &models.Staff{
		UserID:    r.UserID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Position:  r.Position,
		IsActive:  true,
	}
	if r.HireDate != "" {
		hireDate, err := time.Parse("2006-01-02", r.HireDate)
		if err != nil {
			return nil, common.NewValidationError("hire_date", "must be YYYY-MM-DD")
		}
		staff.HireDate = hireDate
	}
	if r.IsActive != nil {
		staff.IsActive = *r.IsActive
	}
	return staff, nil
}

func (h *StaffHandlers) CreateStaff(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req StaffRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	staff, err := req.toModel()
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if err := h.staffService.Create(ctx, businessID, staff); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, staff)
}

func (h *StaffHandlers) GetStaff(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	staff, err := h.staffService.GetByID(ctx, businessID, staffID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, staff)
}

func (h *StaffHandlers) UpdateStaff(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req StaffRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	staff, err := req.toModel()
	if err != nil {
		return common.SendDomainError(c, err)
	}
	staff.ID = staffID
	if err := h.staffService.Update(ctx, businessID, staff); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, staff)
}

// DeleteStaff deactivates the staff member; documents and history remain.
func (h *StaffHandlers) DeleteStaff(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	if err := h.staffService.Deactivate(ctx, businessID, staffID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *StaffHandlers) ListStaff(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	activeOnly := c.QueryParam("active_only") != "false"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = common.ValidatePaginationParams(limit, offset)

	members, err := h.staffService.List(ctx, businessID, activeOnly, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list staff")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"staff":  members,
		"limit":  limit,
		"offset": offset,
	})
}

// GetStaffCompliance derives the document compliance status for one staff
// member as of today.
func (h *StaffHandlers) GetStaffCompliance(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	staffID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	status, err := h.complianceService.GetStaffComplianceStatus(ctx, businessID, staffID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// GetComplianceOverview aggregates compliance across active staff.
func (h *StaffHandlers) GetComplianceOverview(c echo.Context) error {
	ctx := c.Request().Context()

	businessID, ok := common.GetBusinessIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	overview, err := h.complianceService.GetBusinessComplianceOverview(ctx, businessID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, overview)
}
