package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campusvote/internal/service"
)

// VoteHandler handles vote casting, results and tally maintenance.
type VoteHandler struct {
	votes     service.VoteService
	results   service.ResultService
	reconcile service.ReconcileService
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(votes service.VoteService, results service.ResultService, reconcile service.ReconcileService) *VoteHandler {
	return &VoteHandler{votes: votes, results: results, reconcile: reconcile}
}

// CastVoteRequest represents a vote.
type CastVoteRequest struct {
	ElectionID  string `json:"electionId" validate:"required,uuid"`
	CandidateID string `json:"candidateId" validate:"required,uuid"`
}

// CastVote godoc
// @Summary Cast the caller's vote
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CastVoteRequest true "Vote"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /votes [post]
func (h *VoteHandler) CastVote(c echo.Context) error {
	voter, err := identity(c)
	if err != nil {
		return err
	}
	var req CastVoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	// validated above
	electionID := uuid.MustParse(req.ElectionID)
	candidateID := uuid.MustParse(req.CandidateID)

	if err := h.votes.CastVote(c.Request().Context(), voter.ID, electionID, candidateID); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Your vote has been recorded successfully", nil)
}

// Results godoc
// @Summary Tallies and turnout for an election
// @Tags votes
// @Produce json
// @Param electionId path string true "Election ID"
// @Success 200 {object} errors.Response{data=service.ElectionResults}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /votes/results/{electionId} [get]
func (h *VoteHandler) Results(c echo.Context) error {
	electionID, err := uuidParam(c, "electionId")
	if err != nil {
		return err
	}
	results, err := h.results.GetResults(c.Request().Context(), electionID)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "", results)
}

// Stats godoc
// @Summary System wide participation
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response{data=service.AdminStats}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /votes/stats [get]
func (h *VoteHandler) Stats(c echo.Context) error {
	stats, err := h.results.GetAdminStats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "", stats)
}

// Reconcile godoc
// @Summary Compare candidate counters with recorded votes
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param electionId path string true "Election ID"
// @Param fix query bool false "Raise undercounted candidates"
// @Success 200 {object} errors.Response{data=service.ReconcileReport}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /votes/reconcile/{electionId} [get]
func (h *VoteHandler) Reconcile(c echo.Context) error {
	electionID, err := uuidParam(c, "electionId")
	if err != nil {
		return err
	}
	fix := false
	if raw := c.QueryParam("fix"); raw != "" {
		if fix, err = strconv.ParseBool(raw); err != nil {
			return badRequest("fix must be a boolean", "INVALID_REQUEST")
		}
	}

	report, err := h.reconcile.Reconcile(c.Request().Context(), electionID, fix)
	if err != nil {
		return respondError(c, err)
	}
	message := "Tallies are consistent"
	if !report.Consistent {
		message = "Tally drift detected"
	}
	return respond(c, http.StatusOK, message, report)
}
