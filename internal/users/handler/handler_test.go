package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplytrack/internal/jwtauth"
	"supplytrack/internal/users/handler"
	usersvc "supplytrack/internal/users/service"
	userstore "supplytrack/internal/users/store/user"
	"supplytrack/pkg/testutil"
)

func newRouter(t *testing.T) (*chi.Mux, *jwtauth.Manager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := usersvc.New(userstore.NewInMemory(), usersvc.WithLogger(logger))
	tokens := jwtauth.New("test-key", time.Hour)

	router := chi.NewRouter()
	handler.New(users, tokens, logger, 5*time.Second).Register(router)
	return router, tokens
}

func do(t *testing.T, router *chi.Mux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, http.MethodPost, path, body))
	return rec
}

func TestRegister(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, "/api/register", map[string]string{
		"username": "alice",
		"password": "s3cret",
		"role":     "farmer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "ROLE_FARMER", body.Role)
}

func TestRegisterDuplicate(t *testing.T) {
	router, _ := newRouter(t)

	payload := map[string]string{"username": "alice", "password": "s3cret", "role": "farmer"}
	require.Equal(t, http.StatusCreated, do(t, router, "/api/register", payload).Code)
	assert.Equal(t, http.StatusConflict, do(t, router, "/api/register", payload).Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newRouter(t)

	rec := do(t, router, "/api/register", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	router, tokens := newRouter(t)

	require.Equal(t, http.StatusCreated, do(t, router, "/api/register", map[string]string{
		"username": "alice", "password": "s3cret", "role": "farmer",
	}).Code)

	rec := do(t, router, "/api/login", map[string]string{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Token    string `json:"token"`
		UserID   string `json:"userId"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, "ROLE_FARMER", body.Role)

	claims, err := tokens.ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, body.UserID, claims.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newRouter(t)

	require.Equal(t, http.StatusCreated, do(t, router, "/api/register", map[string]string{
		"username": "alice", "password": "s3cret", "role": "farmer",
	}).Code)

	rec := do(t, router, "/api/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, "/api/login", map[string]string{"username": "mallory", "password": "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
