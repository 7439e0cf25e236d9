package handler_test

import (
	"context"
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
	"supplytrack/internal/ledger/handler"
	ledgerservice "supplytrack/internal/ledger/service"
	eventstore "supplytrack/internal/ledger/store/event"
	productstore "supplytrack/internal/ledger/store/product"
	usersvc "supplytrack/internal/users/service"
	userstore "supplytrack/internal/users/store/user"
	"supplytrack/pkg/testutil"
)

type fixture struct {
	router *chi.Mux
	users  *usersvc.Service
	tokens *jwtauth.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := usersvc.New(userstore.NewInMemory())
	ledger := ledgerservice.New(
		productstore.NewInMemory(),
		eventstore.NewInMemory(),
		users,
		ledgerservice.WithLogger(logger),
	)
	tokens := jwtauth.New("test-key", time.Hour)

	router := chi.NewRouter()
	handler.New(ledger, logger, tokens, 5*time.Second).Register(router)
	return &fixture{router: router, users: users, tokens: tokens}
}

// registerUser creates a user and returns a bearer token for it.
func (f *fixture) registerUser(t *testing.T, username, role string) (string, string) {
	t.Helper()

	user, err := f.users.Register(context.Background(), username, "s3cret", role)
	require.NoError(t, err)
	token, err := f.tokens.IssueToken(user.ID.String(), user.Username, user.Role)
	require.NoError(t, err)
	return user.ID.String(), token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.NewJSONRequest(t, method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type productBody struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Origin          string `json:"origin"`
	CurrentStatus   string `json:"currentStatus"`
	CurrentLocation string `json:"currentLocation"`
	OwnerUserID     string `json:"ownerUserId"`
}

type eventBody struct {
	ID          int64  `json:"id"`
	ProductID   string `json:"productId"`
	EventType   string `json:"eventType"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ActorUserID string `json:"actorUserId"`
}

type traceBody struct {
	Product      productBody `json:"product"`
	EventHistory []eventBody `json:"eventHistory"`
}

func (f *fixture) createProduct(t *testing.T, token string) productBody {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/products", token, map[string]string{
		"name":            "Coffee Lot 7",
		"origin":          "Farm A",
		"initialLocation": "Farm A",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var product productBody
	testutil.DecodeJSON(t, rec, &product)
	return product
}

func TestRequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/products", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	farmerID, token := f.registerUser(t, "farmer", "farmer")

	product := f.createProduct(t, token)
	assert.Equal(t, "Coffee Lot 7", product.Name)
	assert.Equal(t, "HARVESTED", product.CurrentStatus)
	assert.Equal(t, "Farm A", product.CurrentLocation)
	assert.Equal(t, farmerID, product.OwnerUserID, "creator becomes the initial owner")
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	_, token := f.registerUser(t, "farmer", "farmer")

	rec := f.do(t, http.MethodPost, "/api/products", token, map[string]string{
		"origin": "Farm A",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	_, token := f.registerUser(t, "farmer", "farmer")
	f.createProduct(t, token)

	rec := f.do(t, http.MethodGet, "/api/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []productBody
	testutil.DecodeJSON(t, rec, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "Coffee Lot 7", products[0].Name)
}

func TestLogEventAndTrace(t *testing.T) {
	f := newFixture(t)
	farmerID, token := f.registerUser(t, "farmer", "farmer")
	product := f.createProduct(t, token)

	rec := f.do(t, http.MethodPost, "/api/products/"+product.ID+"/events", token, map[string]string{
		"eventType":        "SHIPPED",
		"eventDescription": "Left the farm",
		"location":         "Port B",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event eventBody
	testutil.DecodeJSON(t, rec, &event)
	assert.Equal(t, "SHIPPED", event.EventType)
	assert.Equal(t, farmerID, event.ActorUserID, "caller is credited as the actor")

	rec = f.do(t, http.MethodGet, "/api/products/"+product.ID+"/trace", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trace traceBody
	testutil.DecodeJSON(t, rec, &trace)
	assert.Equal(t, "SHIPPED", trace.Product.CurrentStatus)
	assert.Equal(t, "Port B", trace.Product.CurrentLocation)
	require.Len(t, trace.EventHistory, 2, "creation event plus the logged one")
	assert.Equal(t, "HARVESTED", trace.EventHistory[0].EventType)
	assert.Equal(t, "SHIPPED", trace.EventHistory[1].EventType)
}

func TestHandover(t *testing.T) {
	f := newFixture(t)
	_, farmerToken := f.registerUser(t, "farmer", "farmer")
	distributorID, distributorToken := f.registerUser(t, "distributor", "distributor")
	product := f.createProduct(t, farmerToken)

	rec := f.do(t, http.MethodPost, "/api/products/"+product.ID+"/handover", farmerToken, map[string]string{
		"newOwnerUserId":      distributorID,
		"handoverLocation":    "Warehouse C",
		"handoverDescription": "Handed to distributor",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var event eventBody
	testutil.DecodeJSON(t, rec, &event)
	assert.Equal(t, "HANDOVER", event.EventType)
	assert.Equal(t, distributorID, event.ActorUserID)

	rec = f.do(t, http.MethodGet, "/api/products/"+product.ID+"/trace", farmerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trace traceBody
	testutil.DecodeJSON(t, rec, &trace)
	assert.Equal(t, distributorID, trace.Product.OwnerUserID)
	assert.Equal(t, "Warehouse C", trace.Product.CurrentLocation)

	// The product now lists under the new owner.
	rec = f.do(t, http.MethodGet, "/api/products", distributorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []productBody
	testutil.DecodeJSON(t, rec, &products)
	require.Len(t, products, 1)

	rec = f.do(t, http.MethodGet, "/api/products", farmerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products = nil
	testutil.DecodeJSON(t, rec, &products)
	assert.Empty(t, products)
}

func TestHandoverRejectsBadNewOwner(t *testing.T) {
	f := newFixture(t)
	_, token := f.registerUser(t, "farmer", "farmer")
	product := f.createProduct(t, token)

	rec := f.do(t, http.MethodPost, "/api/products/"+product.ID+"/handover", token, map[string]string{
		"newOwnerUserId":   "not-a-uuid",
		"handoverLocation": "Warehouse C",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "malformed id")

	rec = f.do(t, http.MethodPost, "/api/products/"+product.ID+"/handover", token, map[string]string{
		"newOwnerUserId":   "0a61d9ab-6d46-4d4b-8298-9f31a6a6b383",
		"handoverLocation": "Warehouse C",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unregistered new owner")
}

func TestTraceUnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, token := f.registerUser(t, "farmer", "farmer")

	rec := f.do(t, http.MethodGet, "/api/products/0a61d9ab-6d46-4d4b-8298-9f31a6a6b383/trace", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/products/not-a-uuid/trace", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQRCode(t *testing.T) {
	f := newFixture(t)
	_, token := f.registerUser(t, "farmer", "farmer")
	product := f.createProduct(t, token)

	rec := f.do(t, http.MethodGet, "/api/products/"+product.ID+"/qrcode", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, product.ID, body["qrCodeData"])

	rec = f.do(t, http.MethodGet, "/api/products/0a61d9ab-6d46-4d4b-8298-9f31a6a6b383/qrcode", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
