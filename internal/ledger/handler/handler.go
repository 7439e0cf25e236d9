// Package handler exposes the ledger over HTTP. It is a thin shell: it
// resolves the caller into a user id, shapes requests and responses, and
// delegates everything else to the ledger service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"supplytrack/internal/ledger/models"
	"supplytrack/internal/platform/middleware"
	"supplytrack/pkg/domain"
	dErrors "supplytrack/pkg/domain-errors"
	"supplytrack/pkg/platform/httputil"
)

// Service defines the ledger operations the handler depends on.
type Service interface {
	CreateProduct(ctx context.Context, name, origin, initialLocation string, ownerUserID domain.UserID) (*models.Product, error)
	RecordEvent(ctx context.Context, productID domain.ProductID, eventType, description, location string, actorUserID domain.UserID) (*models.Event, error)
	GetTrace(ctx context.Context, productID domain.ProductID) (*models.Trace, error)
	ListProductsByOwner(ctx context.Context, ownerUserID domain.UserID) ([]*models.Product, error)
}

// Handler handles product and ledger endpoints.
type Handler struct {
	logger       *slog.Logger
	ledger       Service
	jwtValidator middleware.JWTValidator
	timeout      time.Duration
}

// New creates a ledger Handler.
func New(ledger Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, timeout time.Duration) *Handler {
	return &Handler{
		logger:       logger,
		ledger:       ledger,
		jwtValidator: jwtValidator,
		timeout:      timeout,
	}
}

// Register mounts the product routes. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	pr := chi.NewRouter()
	pr.Use(middleware.Recovery(h.logger))
	pr.Use(middleware.RequestID)
	pr.Use(middleware.Logger(h.logger))
	pr.Use(middleware.Timeout(h.timeout))
	pr.Use(middleware.ContentTypeJSON)
	pr.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	pr.Post("/", h.handleCreateProduct)
	pr.Get("/", h.handleListProducts)
	pr.Post("/{productID}/events", h.handleLogEvent)
	pr.Post("/{productID}/handover", h.handleHandover)
	pr.Get("/{productID}/trace", h.handleGetTrace)
	pr.Get("/{productID}/qrcode", h.handleQRCode)

	r.Mount("/api/products", pr)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	product, err := h.ledger.CreateProduct(ctx, req.Name, req.Origin, req.InitialLocation, caller)
	if err != nil {
		h.logError(ctx, "failed to create product", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	products, err := h.ledger.ListProductsByOwner(ctx, caller)
	if err != nil {
		h.logError(ctx, "failed to list products", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req logEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The authenticated caller is credited as the actor.
	event, err := h.ledger.RecordEvent(ctx, productID, req.EventType, req.EventDescription, req.Location, caller)
	if err != nil {
		h.logError(ctx, "failed to record event", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toEventResponse(*event))
}

func (h *Handler) handleHandover(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.caller(w, r); !ok {
		return
	}
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req handoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	newOwner, err := domain.ParseUserID(req.NewOwnerUserID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid newOwnerUserId"))
		return
	}

	// Handover convention: the new owner is passed as the event's actor,
	// which the engine records as both credited actor and resulting owner.
	event, err := h.ledger.RecordEvent(ctx, productID, models.EventTypeHandover, req.HandoverDescription, req.HandoverLocation, newOwner)
	if err != nil {
		h.logError(ctx, "failed to hand over product", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *Handler) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	trace, err := h.ledger.GetTrace(ctx, productID)
	if err != nil {
		h.logError(ctx, "failed to load trace", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTraceResponse(trace))
}

// handleQRCode returns the payload clients encode into a product QR label.
// The payload is just the product id; the trace endpoint resolves it.
func (h *Handler) handleQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	// Resolve the product so unknown ids still 404.
	if _, err := h.ledger.GetTrace(ctx, productID); err != nil {
		h.logError(ctx, "failed to resolve product for qrcode", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"qrCodeData": productID.String()})
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	ctx := r.Context()
	raw := middleware.GetUserID(ctx)
	if raw == "" {
		// Should never happen behind RequireAuth.
		h.logger.ErrorContext(ctx, "user id missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.UserID{}, false
	}
	userID, err := domain.ParseUserID(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid caller identity"))
		return domain.UserID{}, false
	}
	return userID, true
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (domain.ProductID, bool) {
	productID, err := domain.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid product id"))
		return domain.ProductID{}, false
	}
	return productID, true
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
