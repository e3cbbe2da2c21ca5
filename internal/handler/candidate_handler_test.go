package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "campusvote/internal/errors"
	"campusvote/internal/model"
	"campusvote/internal/service"
)

type structValidator struct{ v *validator.Validate }

func (s structValidator) Validate(i interface{}) error { return s.v.Struct(i) }

// MockCandidateService is a mock implementation of service.CandidateService.
type MockCandidateService struct {
	mock.Mock
}

func (m *MockCandidateService) Add(ctx context.Context, electionID uuid.UUID, name string, image *service.Upload) (*model.Candidate, error) {
	args := m.Called(ctx, electionID, name, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Update(ctx context.Context, id uuid.UUID, name *string, image *service.Upload) (*model.Candidate, error) {
	args := m.Called(ctx, id, name, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candidate), args.Error(1)
}

func (m *MockCandidateService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newCandidateContext(body *bytes.Buffer, contentType, electionID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = structValidator{v: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/api/elections/"+electionID+"/candidates", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("electionId")
	c.SetParamValues(electionID)
	return c, rec
}

func multipartBody(t *testing.T, name string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", name))
	if image != nil {
		part, err := w.CreateFormFile("image", "logo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCandidateHandler_AddMultipart(t *testing.T) {
	electionID := uuid.New()
	image := []byte("\x89PNG\r\n\x1a\nnot-really-a-png")
	body, contentType := multipartBody(t, "Alice", image)

	svc := new(MockCandidateService)
	svc.On("Add", mock.Anything, electionID, "Alice", mock.MatchedBy(func(u *service.Upload) bool {
		return u != nil && u.Filename == "logo.png" && bytes.Equal(u.Content, image)
	})).Return(&model.Candidate{ID: uuid.New(), Name: "Alice", ElectionID: electionID}, nil)

	c, rec := newCandidateContext(body, contentType, electionID.String())
	require.NoError(t, NewCandidateHandler(svc, 1<<20).Add(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp apperrors.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestCandidateHandler_AddJSON(t *testing.T) {
	electionID := uuid.New()
	svc := new(MockCandidateService)
	svc.On("Add", mock.Anything, electionID, "Bob", (*service.Upload)(nil)).
		Return(&model.Candidate{ID: uuid.New(), Name: "Bob", ElectionID: electionID}, nil)

	c, rec := newCandidateContext(bytes.NewBufferString(`{"name":"Bob"}`), echo.MIMEApplicationJSON, electionID.String())
	require.NoError(t, NewCandidateHandler(svc, 1<<20).Add(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCandidateHandler_AddRejects(t *testing.T) {
	electionID := uuid.New()

	tests := []struct {
		name        string
		body        func() (*bytes.Buffer, string)
		maxBytes    int64
		serviceErr  error
		expectCode  string
		expectHTTP  int
		callService bool
	}{
		{
			name: "missing name",
			body: func() (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{}`), echo.MIMEApplicationJSON
			},
			maxBytes:   1 << 20,
			expectCode: "INVALID_CANDIDATE",
			expectHTTP: http.StatusBadRequest,
		},
		{
			name: "image over the limit",
			body: func() (*bytes.Buffer, string) {
				return multipartBody(t, "Carol", []byte(strings.Repeat("x", 64)))
			},
			maxBytes:   16,
			expectCode: "FILE_TOO_LARGE",
			expectHTTP: http.StatusRequestEntityTooLarge,
		},
		{
			name: "not an image",
			body: func() (*bytes.Buffer, string) {
				return multipartBody(t, "Dave", []byte("plain text"))
			},
			maxBytes:    1 << 20,
			serviceErr:  apperrors.ErrInvalidFileType,
			expectCode:  "INVALID_FILE_TYPE",
			expectHTTP:  http.StatusBadRequest,
			callService: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCandidateService)
			if tt.callService {
				svc.On("Add", mock.Anything, electionID, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			}

			body, contentType := tt.body()
			c, _ := newCandidateContext(body, contentType, electionID.String())
			err := NewCandidateHandler(svc, tt.maxBytes).Add(c)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.expectHTTP, he.Code)
			resp, ok := he.Message.(apperrors.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.expectCode, resp.Code)
			svc.AssertExpectations(t)
		})
	}
}
