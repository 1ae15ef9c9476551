package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/sweetcrust/internal/hash"
	"github.com/Skotchmaster/sweetcrust/internal/logging"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/service"
	"github.com/Skotchmaster/sweetcrust/internal/storage"
	"github.com/Skotchmaster/sweetcrust/internal/testutil"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

type testServer struct {
	t         *testing.T
	e         *echo.Echo
	repo      *repo.GormRepo
	uploadDir string
}

func newTestServer(t *testing.T, tweak ...func(*Deps)) *testServer {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := repo.New(gdb)
	issuer := tokens.NewIssuer([]byte("test-jwt-secret"), 0)
	dir := t.TempDir()
	st, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	deps := &Deps{
		DB:     gdb,
		Tokens: issuer,
		Auth: &AuthHTTP{Svc: &service.AuthService{
			Repo:   r,
			Hasher: hash.Hasher{Cost: bcrypt.MinCost},
			Tokens: issuer,
		}},
		Catalog:         &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Images: st}, Storage: st},
		Orders:          &OrderHTTP{Svc: &service.OrderService{Repo: r}},
		Messages:        &MessageHTTP{Svc: &service.MessageService{Repo: r}},
		UploadDir:       dir,
		UploadURLPrefix: "/uploads",
	}
	for _, f := range tweak {
		f(deps)
	}

	return &testServer{
		t:         t,
		e:         New(logging.NewWithWriter("error", io.Discard), deps),
		repo:      r,
		uploadDir: dir,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(name, email, password, role string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": password, "role": role,
	})
}

// login registers the account first and returns a fresh token.
func (s *testServer) login(email, password, role string) string {
	s.t.Helper()

	rec := s.register(email, email, password, role)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &out)
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "loaf.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rec, &body)
	return body["error"]
}
