package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"staybnb/internal/db"
	"staybnb/internal/entities"
	apperrors "staybnb/internal/errors"
	"staybnb/internal/search"
	"staybnb/internal/service"
)

// stubTokens maps bearer tokens to user ids.
type stubTokens map[string]int

func (s stubTokens) ParseToken(_ context.Context, token string) (*service.Claims, error) {
	id, ok := s[token]
	if !ok {
		return nil, apperrors.ErrUnauthorized("invalid or expired token")
	}
	return &service.Claims{UserID: id}, nil
}

type stubUsers map[int]db.User

func (s stubUsers) GetByID(_ context.Context, id int) (*db.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type stubAuth struct {
	service.AuthService
	loginErr error
}

func (s *stubAuth) Login(_ context.Context, req entities.LoginRequest) (*entities.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &entities.AuthResponse{Token: "tok", User: db.User{ID: 1, Email: req.Email}}, nil
}

func (s *stubAuth) Me(_ context.Context, id int) (*db.User, error) {
	return &db.User{ID: id, Name: "Ana"}, nil
}

type stubProperties struct {
	PropertyService
	criteria search.Criteria
	viewer   int
}

func (s *stubProperties) Search(_ context.Context, c search.Criteria, viewerID int) ([]db.Property, error) {
	s.criteria, s.viewer = c, viewerID
	return []db.Property{{ID: 1, Title: "Loft"}}, nil
}

func (s *stubProperties) Get(_ context.Context, id, _ int) (*db.Property, error) {
	if id == 404 {
		return nil, apperrors.ErrNotFound("property not found")
	}
	return &db.Property{ID: id}, nil
}

type stubPayments struct {
	PaymentService
	calcErr error
	events  []string
}

func (s *stubPayments) Calculate(_ context.Context, req entities.PriceRequest) (*entities.PriceBreakdown, error) {
	if s.calcErr != nil {
		return nil, s.calcErr
	}
	return &entities.PriceBreakdown{Nights: 3, Total: 427}, nil
}

func (s *stubPayments) HandleEvent(_ context.Context, eventType, intentID string) error {
	s.events = append(s.events, eventType+":"+intentID)
	return nil
}

type stubBookings struct {
	BookingService
}

func (s *stubBookings) ListHostBookings(_ context.Context, hostID int, status string) (*entities.BookingList, error) {
	return &entities.BookingList{Total: 0, Bookings: []entities.BookingDetails{}}, nil
}

const webhookSecret = "whsec_test"

type testServer struct {
	router   http.Handler
	auth     *stubAuth
	props    *stubProperties
	payments *stubPayments
}

func newTestServer() *testServer {
	ts := &testServer{auth: &stubAuth{}, props: &stubProperties{}, payments: &stubPayments{}}
	ts.router = NewRouter(Handlers{
		Auth:     NewAuthHandler(ts.auth),
		Property: NewPropertyHandler(ts.props),
		Booking:  NewBookingHandler(&stubBookings{}),
		Payment:  NewPaymentHandler(ts.payments, webhookSecret),
		Tokens:   stubTokens{"guest": 2, "host": 1},
		Users:    stubUsers{1: {ID: 1, IsHost: true}, 2: {ID: 2}},
	})
	return ts
}

func (ts *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLoginErrorsAreMapped(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.co","password":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.auth.loginErr = apperrors.ErrUnauthorized("invalid credentials")
	rec = ts.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.co","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decodeError(t, rec).Error)

	ts.auth.loginErr = apperrors.NewValidationError(apperrors.FieldErrors{"email": "is required"})
	rec = ts.do(http.MethodPost, "/api/auth/login", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "is required", decodeError(t, rec).Fields["email"])

	ts.auth.loginErr = errors.New("connection refused")
	rec = ts.do(http.MethodPost, "/api/auth/login", "", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeError(t, rec).Error)

	rec = ts.do(http.MethodPost, "/api/auth/login", "", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec = ts.do(http.MethodGet, "/api/auth/me", "expired", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/api/auth/me", "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var u db.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, 2, u.ID)
}

func TestSearchParsesQueryAndViewer(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/properties?location=Lisbon&guests=2&amenities=wifi,pool&sort=price_low_to_high", "guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lisbon", ts.props.criteria.Location)
	assert.Equal(t, 2, ts.props.criteria.Guests)
	assert.Equal(t, []string{"wifi", "pool"}, ts.props.criteria.Amenities)
	assert.Equal(t, search.SortPriceLowHigh, ts.props.criteria.Sort)
	assert.Equal(t, 2, ts.props.viewer)

	var list PropertyList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	ts.do(http.MethodGet, "/api/properties", "", "")
	assert.Equal(t, 0, ts.props.viewer, "anonymous search")
}

func TestGetPropertyNotFound(t *testing.T) {
	ts := newTestServer()
	rec := ts.do(http.MethodGet, "/api/properties/404", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHostOnlyRoutes(t *testing.T) {
	ts := newTestServer()

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/bookings/host", "", "").Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/api/bookings/host", "guest", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/bookings/host", "host", "").Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/api/properties", "guest", `{}`).Code)
}

func TestCalculate(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/payments/calculate", "", `{"propertyId":1,"checkIn":"2030-06-10T00:00:00Z","checkOut":"2030-06-13T00:00:00Z","guests":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var b entities.PriceBreakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, 427.0, b.Total)

	ts.payments.calcErr = apperrors.ErrNotFound("property not found")
	rec = ts.do(http.MethodPost, "/api/payments/calculate", "", `{"propertyId":9}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func signedWebhook(t *testing.T, payload, secret string) *http.Request {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}

func TestWebhook(t *testing.T) {
	ts := newTestServer()
	payload := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent"}}}`

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, signedWebhook(t, payload, "whsec_wrong"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ts.payments.events)

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, signedWebhook(t, payload, webhookSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"payment_intent.succeeded:pi_123"}, ts.payments.events)

	refund := `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_123"}}}`
	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, signedWebhook(t, refund, webhookSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "charge.refunded:pi_123", ts.payments.events[1])
}
