package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mesa/internal/caching"
	"mesa/internal/common"
	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and refreshes JWT access tokens. Refresh tokens are
// opaque random strings stored hashed in the cache.
type AuthService interface {
	Register(ctx context.Context, businessID uuid.UUID, email, password, firstName, lastName, role string) (*models.User, error)
	Login(ctx context.Context, email, password, clientIP string) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GenerateTokens(ctx context.Context, userID, businessID uuid.UUID) (*models.TokenResponse, error)
	CleanupExpiredTokens(ctx context.Context) error
}

type TokenClaims struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repositories.UserRepository
	cacheSvc   caching.CacheService
	logger     *zap.Logger
	jwtSecret  []byte
	tokenTTL   int
	refreshTTL int
}

func NewAuthService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, logger *zap.Logger, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) AuthService {
	return &authService{
		userRepo:   userRepo,
		cacheSvc:   cacheSvc,
		logger:     logger,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *authService) Register(ctx context.Context, businessID uuid.UUID, email, password, firstName, lastName, role string) (*models.User, error) {
	if len(password) < 8 {
		return nil, common.NewValidationError("password", "must be at least 8 characters")
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, common.NewValidationError("email", "already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, common.NewPersistenceError("create user", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password, clientIP string) (*models.TokenResponse, error) {
	limited, err := s.cacheSvc.IsRateLimited(ctx, fmt.Sprintf("login:%s", clientIP), 10, time.Minute)
	if err != nil {
		s.logger.Warn("rate limit check failed", zap.Error(err))
	}
	if limited {
		return nil, common.NewValidationError("login", "too many attempts, try again later")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	return s.GenerateTokens(ctx, user.ID, user.BusinessID)
}

func (s *authService) GenerateTokens(ctx context.Context, userID, businessID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:     userID.String(),
		BusinessID: businessID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mesa-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"mesa-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken := generateSecureToken()
	refreshTokenHash := hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%s:%d", userID.String(), businessID.String(), now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	refreshTokenHash := hashToken(refreshToken)
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)

	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, fmt.Errorf("invalid refresh token")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid refresh token")
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, fmt.Errorf("refresh token expired")
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	businessID, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	// Rotate: the old refresh token is single use.
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		s.logger.Warn("failed to delete rotated refresh token", zap.Error(err))
	}

	return s.GenerateTokens(ctx, userID, businessID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	cacheKey := fmt.Sprintf("refresh_token:%s", hashToken(refreshToken))
	return s.cacheSvc.Delete(ctx, cacheKey)
}

// CleanupExpiredTokens is a no-op for the cache backend since keys carry a
// TTL. It exists so the scheduler has a stable hook if storage changes.
func (s *authService) CleanupExpiredTokens(ctx context.Context) error {
	s.logger.Debug("token cleanup tick")
	return nil
}

func generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
