package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/roomrent/internal/auth"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret      = "jwt-test-secret"
	testCallbackSecret = "callback-test-secret"
)

type testServer struct {
	router   *gin.Engine
	broker   *events.Broker
	landlord domain.Actor
	admin    domain.Actor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewInMemoryStore()
	broker := events.NewBroker(16, log)

	visibility := service.NewVisibilityService(store.Rooms, store.Posts, broker, log, 4)
	listing := service.NewListingService(store.Rooms, store.Posts, visibility, log)
	invoices := service.NewInvoiceService(store.Contracts, store.Invoices, broker, log, service.BillingOptions{
		DueDay:         5,
		InitialDueDays: 3,
		GraceDays:      5,
		CallbackSecret: testCallbackSecret,
	})
	contracts := service.NewContractService(store.Rooms, store.Contracts, visibility, broker, log)
	requests := service.NewRequestService(store, invoices, visibility, broker, log)

	router := SetupRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		JWTSecret:      testJWTSecret,
		Log:            log,
	}, Controllers{
		Listings:  NewListingController(listing, visibility, requests),
		Requests:  NewRequestController(requests),
		Contracts: NewContractController(contracts, invoices),
		Invoices:  NewInvoiceController(invoices, log),
		Events:    NewEventsController(broker, log),
	})

	return &testServer{
		router:   router,
		broker:   broker,
		landlord: domain.Actor{ID: uuid.New(), Role: domain.RoleLandlord},
		admin:    domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
	}
}

func token(t *testing.T, actor domain.Actor) string {
	t.Helper()
	raw, err := auth.Sign(testJWTSecret, actor, time.Hour)
	require.NoError(t, err)
	return raw
}

func (s *testServer) do(t *testing.T, actor *domain.Actor, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *actor))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type idView struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// listing creates a room and an approved post of postType.
func (s *testServer) listing(t *testing.T, maxOccupancy int, postType domain.PostType) (uuid.UUID, uuid.UUID) {
	t.Helper()
	w, body := s.do(t, &s.landlord, http.MethodPost, "/api/rooms", gin.H{
		"title":         "sunny room",
		"max_occupancy": maxOccupancy,
		"monthly_rent":  500000,
		"deposit":       300000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	room := decode[idView](t, body["room"])

	w, body = s.do(t, &s.landlord, http.MethodPost, "/api/rooms/"+room.ID.String()+"/posts", gin.H{"post_type": postType, "title": "listing"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	post := decode[idView](t, body["post"])

	w, _ = s.do(t, &s.admin, http.MethodPatch, "/api/posts/"+post.ID.String()+"/status", gin.H{"status": domain.PostStatusActive})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return room.ID, post.ID
}

func requestBody(postID uuid.UUID) gin.H {
	return gin.H{
		"post_id":                postID.String(),
		"requested_move_in_date": time.Now().Add(7 * 24 * time.Hour).UTC().Format(time.RFC3339),
		"requested_duration":     6,
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, nil, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
}

func TestRentalFlow(t *testing.T) {
	s := newTestServer(t)
	_, postID := s.listing(t, 1, domain.PostTypeRent)
	tenant := domain.Actor{ID: uuid.New(), Role: domain.RoleTenant}

	w, body := s.do(t, nil, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idView](t, body["posts"]), 1)

	w, body = s.do(t, &tenant, http.MethodPost, "/api/requests", requestBody(postID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := decode[idView](t, body["request"])
	assert.Equal(t, string(domain.RequestStatusPending), req.Status)

	w, _ = s.do(t, &tenant, http.MethodPost, "/api/requests", requestBody(postID))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = s.do(t, &tenant, http.MethodPost, "/api/requests/"+req.ID.String()+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.do(t, &s.landlord, http.MethodPost, "/api/requests/"+req.ID.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	contract := decode[idView](t, body["contract"])
	assert.Equal(t, string(domain.ContractStatusActive), contract.Status)

	w, _ = s.do(t, &s.landlord, http.MethodPost, "/api/requests/"+req.ID.String()+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = s.do(t, nil, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]idView](t, body["posts"]))

	w, body = s.do(t, nil, http.MethodGet, "/api/posts/"+postID.String()+"/visibility", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["post"]), domain.ReasonRoomOccupied)

	w, body = s.do(t, &tenant, http.MethodGet, "/api/contracts/"+contract.ID.String()+"/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	type invoiceView struct {
		ID     uuid.UUID `json:"id"`
		Amount int64     `json:"amount"`
		Status string    `json:"status"`
	}
	invoices := decode[[]invoiceView](t, body["invoices"])
	require.Len(t, invoices, 1)
	assert.Equal(t, int64(800000), invoices[0].Amount)

	payload, err := json.Marshal(gin.H{"invoice_id": invoices[0].ID, "status": "paid", "transaction_ref": "tx-1"})
	require.NoError(t, err)

	callback := func(signature string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/payments/callback", bytes.NewReader(payload))
		r.Header.Set(signatureHeader, signature)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, r)
		return rec
	}
	assert.Equal(t, http.StatusUnauthorized, callback("00ff").Code)
	assert.Equal(t, http.StatusOK, callback(service.SignPayload(testCallbackSecret, payload)).Code)

	w, body = s.do(t, &tenant, http.MethodGet, "/api/contracts/"+contract.ID.String()+"/payment-summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[domain.PaymentSummary](t, body["summary"])
	assert.Equal(t, domain.PaymentStatusFullyPaid, summary.Status)

	w, _ = s.do(t, &tenant, http.MethodPost, "/api/contracts/"+contract.ID.String()+"/terminate", gin.H{"reason": "leaving"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body = s.do(t, nil, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]idView](t, body["posts"]), 1)
}

func TestAuthAndValidationErrors(t *testing.T) {
	s := newTestServer(t)
	tenant := domain.Actor{ID: uuid.New(), Role: domain.RoleTenant}

	w, _ := s.do(t, nil, http.MethodGet, "/api/requests/mine", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/requests/mine", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	w, _ = s.do(t, &tenant, http.MethodPost, "/api/rooms", gin.H{"title": "x", "max_occupancy": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, &tenant, http.MethodGet, "/api/requests/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, &tenant, http.MethodGet, "/api/contracts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, &tenant, http.MethodPost, "/api/requests", gin.H{"post_id": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, &s.landlord, http.MethodPost, "/api/rooms", gin.H{"title": "x", "max_occupancy": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	_, postID := s.listing(t, 1, domain.PostTypeRent)
	for _, duration := range []int{0, -2} {
		draft := requestBody(postID)
		draft["requested_duration"] = duration
		w, _ = s.do(t, &tenant, http.MethodPost, "/api/requests", draft)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	}
	draft := requestBody(postID)
	delete(draft, "requested_duration")
	w, _ = s.do(t, &tenant, http.MethodPost, "/api/requests", draft)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w, body := s.do(t, &tenant, http.MethodGet, "/api/requests/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(body["requests"]))
}

func TestEventStream(t *testing.T) {
	s := newTestServer(t)
	_, postID := s.listing(t, 2, domain.PostTypeRent)
	tenant := domain.Actor{ID: uuid.New(), Role: domain.RoleTenant}

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws?token=" + token(t, tenant)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.broker.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	w, _ := s.do(t, &tenant, http.MethodPost, "/api/requests", requestBody(postID))
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, events.RequestCreated, got.Type)
	assert.Equal(t, "request", got.EntityType)
}

func TestDeliverable(t *testing.T) {
	tenant := domain.Actor{ID: uuid.New(), Role: domain.RoleTenant}
	roomID := uuid.New()

	own := events.New(events.RequestCreated, "request", uuid.New(), roomID, nil, tenant.ID)
	other := events.New(events.RequestCreated, "request", uuid.New(), roomID, nil, uuid.New())
	public := events.New(events.PostVisibility, "post", uuid.New(), roomID, nil)

	assert.True(t, deliverable(own, tenant, uuid.Nil))
	assert.False(t, deliverable(other, tenant, uuid.Nil))
	assert.True(t, deliverable(other, domain.Actor{Role: domain.RoleAdmin}, uuid.Nil))
	assert.True(t, deliverable(public, tenant, roomID))
	assert.False(t, deliverable(public, tenant, uuid.New()))
}
