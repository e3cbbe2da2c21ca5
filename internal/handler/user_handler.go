package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"campusvote/internal/service"
)

// UserHandler serves voter administration.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ListVoters godoc
// @Summary List voters, newest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response{data=[]model.User}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/users [get]
func (h *UserHandler) ListVoters(c echo.Context) error {
	users, err := h.svc.ListVoters(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "", users)
}

// DeleteVoter godoc
// @Summary Delete a voter
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/users/{id} [delete]
func (h *UserHandler) DeleteVoter(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVoter(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Student deleted successfully", nil)
}
