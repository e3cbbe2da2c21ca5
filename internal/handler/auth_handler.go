package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusvote/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	otpService  service.OTPService
	userService service.UserService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, otpService service.OTPService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, otpService: otpService, userService: userService}
}

// RegisterRequest represents a voter registration request.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=9"`
	Password  string `json:"password" validate:"required,min=6"`
	StudentID string `json:"studentId"`
}

// LoginRequest accepts either an email or a student id.
type LoginRequest struct {
	Email     string `json:"email" validate:"required_without=StudentID"`
	StudentID string `json:"studentId" validate:"required_without=Email"`
	Password  string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh or logout request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// OTPRequest asks for a verification code.
type OTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// VerifyOTPRequest submits a verification code.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"otp" validate:"required"`
}

// Register godoc
// @Summary Register a new voter
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} errors.Response{data=service.AuthResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if req.StudentID != "" {
		in.StudentID = &req.StudentID
	}

	result, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "User registered successfully.", result)
}

// Login godoc
// @Summary Login with email or student id
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} errors.Response{data=service.AuthResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.StudentID, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Logged in successfully", result)
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} errors.Response{data=service.AuthResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Token refreshed", service.AuthResult{AccessToken: accessToken})
}

// Logout godoc
// @Summary Logout and revoke the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// RequestOTP godoc
// @Summary Send a phone verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body OTPRequest true "Phone number"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/request-otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req OTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.otpService.RequestOTP(c.Request().Context(), req.Phone); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "OTP sent successfully", nil)
}

// VerifyOTP godoc
// @Summary Verify a phone number
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Phone and code"
// @Success 200 {object} errors.Response{data=service.AuthResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.VerifyPhone(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Phone verified successfully", result)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response{data=model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), id.ID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "", user)
}
