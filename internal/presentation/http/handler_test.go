package httppresentation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appOrder "github.com/arteon/exchange/internal/application/order"
	domainOrder "github.com/arteon/exchange/internal/domain/order"
	domainPayment "github.com/arteon/exchange/internal/domain/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	input  appOrder.CreateOrderInput
	result *appOrder.CreateOrderResult
	err    error
}

func (f *fakeCreator) Execute(_ context.Context, cmd appOrder.CreateOrderInput) (*appOrder.CreateOrderResult, error) {
	f.input = cmd
	return f.result, f.err
}

type fakeSubmitter struct {
	orderID string
	result  *appOrder.SubmitOrderResult
	err     error
}

func (f *fakeSubmitter) Execute(_ context.Context, orderID string) (*appOrder.SubmitOrderResult, error) {
	f.orderID = orderID
	return f.result, f.err
}

type fakeLifecycle struct {
	order *domainOrder.Order
	err   error
}

func (f *fakeLifecycle) Get(context.Context, string) (*domainOrder.Order, error) {
	return f.order, f.err
}

func (f *fakeLifecycle) Approve(context.Context, string) (*domainOrder.Order, error) {
	return f.order, f.err
}

func (f *fakeLifecycle) Cancel(context.Context, string) (*domainOrder.Order, error) {
	return f.order, f.err
}

func serve(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderEndpoint(t *testing.T) {
	creator := &fakeCreator{result: &appOrder.CreateOrderResult{OrderID: "order-1", State: domainOrder.StatePending}}
	h := NewHandler(creator, &fakeSubmitter{}, &fakeLifecycle{}, nil)

	rec := serve(t, h, http.MethodPost, "/orders", `{
		"idempotency_key": "idem-1",
		"partner_id": "partner-1",
		"credit_card_id": "card-1",
		"currency_code": "USD",
		"fulfillment_type": "ship",
		"line_items": [
			{"artwork_id": "a-1", "price_cents": 600000, "quantity": 1}
		]
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "partner-1", creator.input.PartnerID)
	assert.Equal(t, "idem-1", creator.input.IdempotencyKey)
	require.Len(t, creator.input.LineItems, 1)
	assert.Equal(t, int64(600000), *creator.input.LineItems[0].PriceCents)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp["order_id"])
	assert.Equal(t, "pending", resp["state"])
}

func TestCreateOrderBadJSON(t *testing.T) {
	h := NewHandler(&fakeCreator{}, &fakeSubmitter{}, &fakeLifecycle{}, nil)
	rec := serve(t, h, http.MethodPost, "/orders", `{"unknown_field": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitOrderEndpoint(t *testing.T) {
	expires := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)
	submitter := &fakeSubmitter{result: &appOrder.SubmitOrderResult{
		OrderID:          "order-1",
		State:            domainOrder.StateSubmitted,
		ExternalChargeID: "ch_1",
		StateExpiresAt:   &expires,
	}}
	h := NewHandler(&fakeCreator{}, submitter, &fakeLifecycle{}, nil)

	rec := serve(t, h, http.MethodPost, "/orders/order-1/submit", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order-1", submitter.orderID)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "submitted", resp["state"])
	assert.Equal(t, "ch_1", resp["external_charge_id"])
}

func TestSubmitOrderErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "order error maps to 422",
			err:        domainOrder.NewOrderErrorData(domainOrder.CodeInvalidState, map[string]any{"state": "submitted"}, nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_state",
		},
		{
			name:       "payment error maps to 402",
			err:        domainPayment.NewPaymentError("card_declined", "Your card was declined.", nil),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   "card_declined",
		},
		{
			name:       "missing order maps to 404",
			err:        domainOrder.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error maps to 500",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&fakeCreator{}, &fakeSubmitter{err: tc.err}, &fakeLifecycle{}, nil)
			rec := serve(t, h, http.MethodPost, "/orders/order-1/submit", "")

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCode != "" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tc.wantCode, resp["code"])
			}
		})
	}
}

func TestGetOrderEndpoint(t *testing.T) {
	price := int64(600_000)
	o, err := domainOrder.New("order-1", "partner-1", "card-1", "USD", domainOrder.FulfillmentShip, "", []domainOrder.LineItem{
		{ID: "li-1", ArtworkID: "a-1", PriceCents: &price, Quantity: 1},
	}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	h := NewHandler(&fakeCreator{}, &fakeSubmitter{}, &fakeLifecycle{order: o}, nil)

	rec := serve(t, h, http.MethodGet, "/orders/order-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp["state"])
	assert.Equal(t, float64(600_000), resp["items_total_cents"])
}

func TestApproveAndCancelEndpoints(t *testing.T) {
	o, err := domainOrder.New("order-1", "partner-1", "card-1", "USD", domainOrder.FulfillmentShip, "", nil,
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, o.Submit(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)))
	require.NoError(t, o.Approve(time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)))

	h := NewHandler(&fakeCreator{}, &fakeSubmitter{}, &fakeLifecycle{order: o}, nil)

	for _, path := range []string{"/orders/order-1/approve", "/orders/order-1/cancel"} {
		rec := serve(t, h, http.MethodPost, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequestIDEcho(t *testing.T) {
	h := NewHandler(&fakeCreator{}, &fakeSubmitter{}, &fakeLifecycle{err: domainOrder.ErrNotFound}, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(&fakeCreator{}, &fakeSubmitter{}, &fakeLifecycle{}, nil)
	rec := serve(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
