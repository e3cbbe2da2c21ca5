package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"campusvote/internal/seed"
)

// SeedHandler loads fixture data over HTTP. Only routed in development.
type SeedHandler struct {
	seeder *seed.Seeder
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(seeder *seed.Seeder) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

// Seed godoc
// @Summary Apply a YAML fixture
// @Tags seed
// @Accept application/x-yaml
// @Produce json
// @Security BearerAuth
// @Param fixture body string true "YAML fixture"
// @Success 200 {object} errors.Response{data=seed.Summary}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest("failed to read fixture", "INVALID_REQUEST")
	}

	fixture, err := seed.Parse(body)
	if err != nil {
		return badRequest(err.Error(), "INVALID_FIXTURE")
	}

	summary, err := h.seeder.Apply(c.Request().Context(), fixture)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Fixture applied", summary)
}
