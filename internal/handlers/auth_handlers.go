package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"
	"mesa/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService  services.AuthService
	userRepo     repositories.UserRepository
	businessRepo repositories.BusinessRepository
}

func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository, businessRepo repositories.BusinessRepository) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		userRepo:     userRepo,
		businessRepo: businessRepo,
	}
}

type SignupRequest struct {
	BusinessName string `json:"business_name"`
	Subdomain    string `json:"subdomain"`
	Timezone     string `json:"timezone"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

// Signup provisions a business and its first (owner) user.
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.BusinessName == "" || req.Subdomain == "" {
		return common.SendValidationError(c, "business_name", "business name and subdomain are required")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "email", "email and password are required")
	}

	if existing, err := h.businessRepo.GetBySubdomain(ctx, strings.ToLower(req.Subdomain)); err == nil && existing != nil {
		return common.SendValidationError(c, "subdomain", "is already taken")
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	business := &models.Business{
		ID:        uuid.New(),
		Name:      req.BusinessName,
		Subdomain: strings.ToLower(req.Subdomain),
		Timezone:  timezone,
		Status:    "active",
	}
	if err := h.businessRepo.Create(ctx, business); err != nil {
		return common.SendServerError(c, "Failed to create business")
	}

	user, err := h.authService.Register(ctx, business.ID, req.Email, req.Password, req.FirstName, req.LastName, "owner")
	if err != nil {
		return common.SendDomainError(c, err)
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, business.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to issue tokens")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"business": business,
		"user":     user,
		"tokens":   tokens,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tokens, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, c.RealIP())
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return common.SendDomainError(c, err)
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	return c.JSON(http.StatusOK, tokens)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "is required")
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandlers) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.RefreshToken != "" {
		if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
			return common.SendServerError(c, "Failed to revoke token")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.SendNotFoundError(c, "user")
	}
	return c.JSON(http.StatusOK, user)
}
