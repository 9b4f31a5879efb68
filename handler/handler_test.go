package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/disposition-api/config"
	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/db/dbtest"
	"github.com/Skryldev/disposition-api/handler"
	"github.com/Skryldev/disposition-api/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = []string{"http://localhost:5174"}
	return cfg
}

func newServer(t *testing.T) (*gin.Engine, *db.DB) {
	t.Helper()
	d := dbtest.Open(t)
	return handler.NewRouter(d, testConfig(), zerolog.Nop()), d
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// ─────────────────────────────────────────────────────────────────────────────
// Health / middleware
// ─────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode[string](t, w)
	assert.True(t, env.Success)
	require.NotNil(t, env.Data)
	assert.Equal(t, "OK", *env.Data)
}

func TestHealth_DatabaseDown(t *testing.T) {
	r, d := newServer(t)
	require.NoError(t, d.Close())

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, decode[string](t, w).Success)
}

func TestRequestID(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Len(t, w.Header().Get(handler.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(handler.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(handler.RequestIDHeader))
}

func TestCORS_Preflight(t *testing.T) {
	r, _ := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/user", nil)
	req.Header.Set("Origin", "http://localhost:5174")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5174", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	r, _ := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNoRoute(t *testing.T) {
	r, _ := newServer(t)

	w := do(t, r, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode[struct{}](t, w).Success)
}

func TestAcquireFailure(t *testing.T) {
	r, d := newServer(t)
	require.NoError(t, d.Close())

	w := do(t, r, http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode[[]models.User](t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "database connection failed")
	assert.Nil(t, env.Data)
}
