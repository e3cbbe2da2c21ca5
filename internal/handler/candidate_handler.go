package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "campusvote/internal/errors"
	"campusvote/internal/service"
)

// CandidateHandler handles candidate endpoints. Requests are either
// multipart/form-data (name plus optional image file) or JSON.
type CandidateHandler struct {
	candidates     service.CandidateService
	maxUploadBytes int64
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(candidates service.CandidateService, maxUploadBytes int64) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, maxUploadBytes: maxUploadBytes}
}

// CandidateRequest is the JSON form of a candidate payload.
type CandidateRequest struct {
	Name *string `json:"name"`
}

// Add godoc
// @Summary Add a candidate to an election
// @Tags candidates
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param electionId path string true "Election ID"
// @Param name formData string true "Candidate name"
// @Param image formData file false "Party logo"
// @Success 201 {object} errors.Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /elections/{electionId}/candidates [post]
func (h *CandidateHandler) Add(c echo.Context) error {
	electionID, err := uuidParam(c, "electionId")
	if err != nil {
		return err
	}
	name, upload, err := h.readPayload(c)
	if err != nil {
		return err
	}
	if name == nil {
		return respondError(c, apperrors.ErrInvalidCandidate)
	}

	candidate, err := h.candidates.Add(c.Request().Context(), electionID, *name, upload)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, "Candidate added", candidate)
}

// Update godoc
// @Summary Rename a candidate or replace its image
// @Tags candidates
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Param name formData string false "Candidate name"
// @Param image formData file false "Party logo"
// @Success 200 {object} errors.Response{data=model.Candidate}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /candidates/{id} [put]
func (h *CandidateHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	name, upload, err := h.readPayload(c)
	if err != nil {
		return err
	}

	candidate, err := h.candidates.Update(c.Request().Context(), id, name, upload)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Candidate updated", candidate)
}

// Delete godoc
// @Summary Delete a candidate
// @Tags candidates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /candidates/{id} [delete]
func (h *CandidateHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.candidates.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, "Candidate deleted", nil)
}

func (h *CandidateHandler) readPayload(c echo.Context) (*string, *service.Upload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var req CandidateRequest
		if err := bind(c, &req); err != nil {
			return nil, nil, err
		}
		return req.Name, nil, nil
	}

	var name *string
	if form, err := c.MultipartForm(); err != nil {
		return nil, nil, badRequest("invalid multipart form", "INVALID_REQUEST")
	} else if values, ok := form.Value["name"]; ok && len(values) > 0 {
		name = &values[0]
	}

	fh, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return name, nil, nil
	}
	if err != nil {
		return nil, nil, badRequest("invalid image upload", "INVALID_REQUEST")
	}
	if fh.Size > h.maxUploadBytes {
		return nil, nil, respondError(c, apperrors.ErrFileTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, respondError(c, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, nil, respondError(c, err)
	}
	if int64(len(content)) > h.maxUploadBytes {
		return nil, nil, respondError(c, apperrors.ErrFileTooLarge)
	}
	return name, &service.Upload{Filename: fh.Filename, Content: content}, nil
}
