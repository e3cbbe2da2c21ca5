package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"campusvote/internal/model"
	"campusvote/internal/service"
)

// ElectionHandler handles election lifecycle endpoints.
type ElectionHandler struct {
	elections service.ElectionService
}

// NewElectionHandler creates a new election handler.
func NewElectionHandler(elections service.ElectionService) *ElectionHandler {
	return &ElectionHandler{elections: elections}
}

// CreateElectionRequest represents a new election.
type CreateElectionRequest struct {
	Title     string    `json:"title" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// UpdateElectionRequest carries the fields to change; absent fields are kept.
type UpdateElectionRequest struct {
	Title     *string               `json:"title"`
	Status    *model.ElectionStatus `json:"status"`
	StartDate *time.Time            `json:"startDate"`
	EndDate   *time.Time            `json:"endDate"`
}

// CertifyResponse is the payload of a successful certification.
type CertifyResponse struct {
	Election *model.Election  `json:"election"`
	Winner   *model.Candidate `json:"winner"`
}

// List godoc
// @Summary List elections
// @Tags elections
// @Produce json
// @Param status query string false "pending, active or ended"
// @Success 200 {object} errors.Response{data=[]model.Election}
// @Failure 400 {object} errors.ErrorResponse
// @Router /elections [get]
func (h *ElectionHandler) List(c echo.Context) error {
	elections, err := h.elections.List(c.Request().Context(), model.ElectionStatus(c.QueryParam("status")))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "", elections)
}

// Get godoc
// @Summary Get an election with its candidates
// @Tags elections
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} errors.Response{data=model.Election}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /elections/{id} [get]
func (h *ElectionHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	election, err := h.elections.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "", election)
}

// Create godoc
// @Summary Create an election
// @Tags elections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateElectionRequest true "Election"
// @Success 201 {object} errors.Response{data=model.Election}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /elections [post]
func (h *ElectionHandler) Create(c echo.Context) error {
	var req CreateElectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	election, err := h.elections.Create(c.Request().Context(), req.Title, req.StartDate, req.EndDate)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Election created", election)
}

// Update godoc
// @Summary Update election fields or status
// @Tags elections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Election ID"
// @Param request body UpdateElectionRequest true "Fields to change"
// @Success 200 {object} errors.Response{data=model.Election}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /elections/{id} [put]
func (h *ElectionHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateElectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	election, err := h.elections.Update(c.Request().Context(), id, service.ElectionPatch{
		Title:     req.Title,
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Election updated", election)
}

// Delete godoc
// @Summary Delete an election, its candidates and every cast vote
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Election ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /elections/{id} [delete]
func (h *ElectionHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.elections.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Election deleted and voter statuses reset", nil)
}

// Certify godoc
// @Summary Certify an ended election
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param id path string true "Election ID"
// @Success 200 {object} errors.Response{data=CertifyResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /elections/{id}/certify [put]
func (h *ElectionHandler) Certify(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	election, winner, err := h.elections.Certify(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Election certified! Winner: "+winner.Name, CertifyResponse{
		Election: election,
		Winner:   winner,
	})
}
