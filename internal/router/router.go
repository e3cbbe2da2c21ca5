package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"campusvote/internal/auth"
	"campusvote/internal/config"
	apperrors "campusvote/internal/errors"
	"campusvote/internal/handler"
	"campusvote/internal/model"
)

// Handlers groups every HTTP handler the router mounts. Seed may be nil.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Elections  *handler.ElectionHandler
	Candidates *handler.CandidateHandler
	Votes      *handler.VoteHandler
	Live       *handler.LiveHandler
	Seed       *handler.SeedHandler
}

const livePath = "/api/ws"

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, jwtService *auth.JWTService, h Handlers) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.MaxUploadBytes>>10+1024)))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		// the live socket outlives any request deadline
		Skipper: func(c echo.Context) bool { return c.Path() == livePath },
		Timeout: cfg.RequestTimeout,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	api := e.Group("/api")

	authenticated := auth.Middleware(jwtService)
	adminOnly := []echo.MiddlewareFunc{authenticated, auth.RequireRole(model.RoleAdmin)}
	otpLimit := otpRateLimiter(cfg.OTPRateLimit)

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/auth/request-otp", h.Auth.RequestOTP, otpLimit)
	api.POST("/auth/verify-otp", h.Auth.VerifyOTP, otpLimit)
	api.GET("/elections", h.Elections.List)
	api.GET("/elections/:id", h.Elections.Get)
	api.GET("/votes/results/:electionId", h.Votes.Results)
	api.GET("/ws", h.Live.Stream)

	api.GET("/auth/me", h.Auth.Me, authenticated)
	api.POST("/votes", h.Votes.CastVote, authenticated, auth.RequireRole(model.RoleVoter))

	// Admin routes
	api.GET("/auth/users", h.Users.ListVoters, adminOnly...)
	api.DELETE("/auth/users/:id", h.Users.DeleteVoter, adminOnly...)

	api.POST("/elections", h.Elections.Create, adminOnly...)
	api.PUT("/elections/:id", h.Elections.Update, adminOnly...)
	api.DELETE("/elections/:id", h.Elections.Delete, adminOnly...)
	api.PUT("/elections/:id/certify", h.Elections.Certify, adminOnly...)

	api.POST("/elections/:electionId/candidates", h.Candidates.Add, adminOnly...)
	api.PUT("/candidates/:id", h.Candidates.Update, adminOnly...)
	api.DELETE("/candidates/:id", h.Candidates.Delete, adminOnly...)

	api.GET("/votes/stats", h.Votes.Stats, adminOnly...)
	api.GET("/votes/reconcile/:electionId", h.Votes.Reconcile, adminOnly...)

	if cfg.IsDevelopment() && h.Seed != nil {
		api.POST("/seed", h.Seed.Seed, adminOnly...)
	}
}

// otpRateLimiter throttles OTP requests per client IP; codes are short and
// each request may send an SMS.
func otpRateLimiter(perSecond float64) echo.MiddlewareFunc {
	limited := echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
		Message: "too many requests, please retry later",
		Code:    "RATE_LIMITED",
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(perSecond),
			Burst: 3,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return limited
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return limited
		},
	})
}

// ErrorHandler renders every error in the {"success":false,...} envelope,
// including framework errors such as unknown routes and oversized bodies.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var body apperrors.ErrorResponse
	status := http.StatusInternalServerError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch msg := he.Message.(type) {
		case apperrors.ErrorResponse:
			body = msg
		case string:
			body = apperrors.ErrorResponse{Message: msg, Code: codeForStatus(status)}
		default:
			body = apperrors.ErrorResponse{Message: http.StatusText(status), Code: codeForStatus(status)}
		}
	} else {
		httpErr := apperrors.MapErrorToHTTP(err)
		status = httpErr.StatusCode
		body = httpErr.ToErrorResponse()
		if status >= http.StatusInternalServerError {
			slog.Error("unhandled error", "path", c.Path(), "error", err)
		}
	}
	body.Success = false

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("write error response", "error", err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "FILE_TOO_LARGE"
	case http.StatusServiceUnavailable:
		return "TIMEOUT"
	default:
		return "INTERNAL_ERROR"
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by every handler.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
