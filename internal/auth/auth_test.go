package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvote/internal/model"
)

func TestJWTService_RoundTrip(t *testing.T) {
	s := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := s.GenerateAccessToken(userID, model.RoleAdmin)
	require.NoError(t, err)

	claims, err := s.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, Identity{ID: userID, Role: model.RoleAdmin}, claims.Identity())
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("other-secret").GenerateAccessToken(uuid.New(), model.RoleVoter)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTService_RefreshTokenID(t *testing.T) {
	s := NewJWTService("test-secret")

	tokenID, token, err := s.GenerateRefreshToken(uuid.New(), model.RoleVoter)
	require.NoError(t, err)

	got, err := s.ExtractTokenID(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, got)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	s := NewJWTService("test-secret")
	userID := uuid.New()

	access, err := s.GenerateAccessToken(userID, model.RoleAdmin)
	require.NoError(t, err)
	_, refresh, err := s.GenerateRefreshToken(userID, model.RoleAdmin)
	require.NoError(t, err)

	_, err = s.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = s.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = s.ExtractTokenID(access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := s.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestRequireRole(t *testing.T) {
	s := NewJWTService("test-secret")
	voterToken, err := s.GenerateAccessToken(uuid.New(), model.RoleVoter)
	require.NoError(t, err)
	adminToken, err := s.GenerateAccessToken(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)
	_, adminRefresh, err := s.GenerateRefreshToken(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, string(id.Role))
	}, Middleware(s), RequireRole(model.RoleAdmin))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "no token", header: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "refresh token as bearer", header: "Bearer " + adminRefresh, wantStatus: http.StatusUnauthorized},
		{name: "voter forbidden", header: "Bearer " + voterToken, wantStatus: http.StatusForbidden},
		{name: "admin allowed", header: "Bearer " + adminToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
