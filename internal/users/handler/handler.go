// Package handler exposes user registration and login. Login resolves
// credentials into a bearer token; everything past that point identifies the
// caller by user id only.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"supplytrack/internal/platform/middleware"
	"supplytrack/internal/users/models"
	dErrors "supplytrack/pkg/domain-errors"
	"supplytrack/pkg/platform/httputil"
)

// Service defines the user operations the handler depends on.
type Service interface {
	Register(ctx context.Context, username, password, role string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	IssueToken(userID, username, role string) (string, error)
}

// Handler handles registration and login endpoints.
type Handler struct {
	logger  *slog.Logger
	users   Service
	tokens  TokenIssuer
	timeout time.Duration
}

// New creates a users Handler.
func New(users Service, tokens TokenIssuer, logger *slog.Logger, timeout time.Duration) *Handler {
	return &Handler{
		logger:  logger,
		users:   users,
		tokens:  tokens,
		timeout: timeout,
	}
}

// Register mounts the public user routes.
func (h *Handler) Register(r chi.Router) {
	ur := chi.NewRouter()
	ur.Use(middleware.Recovery(h.logger))
	ur.Use(middleware.RequestID)
	ur.Use(middleware.Logger(h.logger))
	ur.Use(middleware.Timeout(h.timeout))
	ur.Use(middleware.ContentTypeJSON)
	ur.Post("/register", h.handleRegister)
	ur.Post("/login", h.handleLogin)

	r.Mount("/api", ur)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "username and password are required"))
		return
	}

	user, err := h.users.Register(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		h.logError(ctx, "failed to register user", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.logError(ctx, "login rejected", err)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.IssueToken(user.ID.String(), user.Username, user.Role)
	if err != nil {
		h.logError(ctx, "failed to issue token", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to issue token"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
