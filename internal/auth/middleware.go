package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
)

// contextKey is where echo-jwt stores the parsed token.
const contextKey = "user"

// Middleware validates bearer access tokens into *Claims. Refresh tokens are rejected.
func Middleware(s *JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  contextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return s.ParseAccessToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Message: "not authorized to access this route",
				Code:    "UNAUTHENTICATED",
			})
		},
	})
}

// IdentityFrom returns the caller resolved by Middleware.
func IdentityFrom(c echo.Context) (Identity, bool) {
	token, ok := c.Get(contextKey).(*jwt.Token)
	if !ok {
		return Identity{}, false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Identity{}, false
	}
	return claims.Identity(), true
}

// RequireRole rejects callers whose role is not in roles. It must run after Middleware.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			for _, role := range roles {
				if id.Role == role {
					return next(c)
				}
			}
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
	}
}
