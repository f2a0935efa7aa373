package middleware

import (
	"context"
	"net/http"

	"mesa/internal/common"
	"mesa/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTMiddleware validates bearer tokens and puts the caller's user and
// business IDs on the request context. Two verification modes: HMAC with the
// shared secret for locally issued tokens, or JWKS when an external identity
// provider issues them (jwksURL non-empty).
func JWTMiddleware(userRepo repositories.UserRepository, jwtSecret, jwksURL string) (echo.MiddlewareFunc, error) {
	var keyFn jwt.Keyfunc
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			return nil, err
		}
		keyFn = jwks.Keyfunc
	} else {
		keyFn = func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		}
	}

	verifier := echojwt.WithConfig(echojwt.Config{
		KeyFunc: keyFn,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	})

	loader := identityLoader(userRepo)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verifier(loader(next))
	}, nil
}

// identityLoader reads the verified token placed on the echo context by the
// JWT verifier and resolves the caller's business.
func identityLoader(userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject format")
			}

			// Prefer the business claim when present; otherwise resolve it
			// from the user record (external providers do not know our IDs).
			var businessID uuid.UUID
			if bid, ok := claims["business_id"].(string); ok {
				businessID, err = uuid.Parse(bid)
			} else {
				businessID, err = userRepo.GetBusinessIDByUserID(c.Request().Context(), userID)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not associated with a business")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.BusinessIDKey, businessID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
