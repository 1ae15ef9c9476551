package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

func newGateServer(t *testing.T) (*echo.Echo, *tokens.Issuer) {
	t.Helper()

	is := tokens.NewIssuer([]byte("test-jwt-secret"), 0)
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	g := e.Group("/api", Authenticate(is))
	g.GET("/me", func(c echo.Context) error {
		id := FromContext(c.Request().Context())
		return c.JSON(http.StatusOK, id)
	})
	g.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRole(models.RoleAdmin))

	return e, is
}

func do(e *echo.Echo, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	e, is := newGateServer(t)

	staffTok, _, err := is.Issue(&models.User{ID: 2, Name: "Staff User", Role: models.RoleStaff})
	require.NoError(t, err)

	rec := do(e, "/api/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	rec = do(e, "/api/me", "Basic abc")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	rec = do(e, "/api/me", "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error":"invalid or expired token"}`, rec.Body.String())

	rec = do(e, "/api/me", "Bearer "+staffTok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":2,"role":"staff","name":"Staff User"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e, is := newGateServer(t)

	staffTok, _, err := is.Issue(&models.User{ID: 2, Role: models.RoleStaff})
	require.NoError(t, err)
	adminTok, _, err := is.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	rec := do(e, "/api/admin", "Bearer "+staffTok)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error":"admin only"}`, rec.Body.String())

	rec = do(e, "/api/admin", "Bearer "+adminTok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, "/api/admin", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
