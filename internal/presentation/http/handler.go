package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	appOrder "github.com/arteon/exchange/internal/application/order"
	domainOrder "github.com/arteon/exchange/internal/domain/order"
	domainPayment "github.com/arteon/exchange/internal/domain/payment"
	"github.com/arteon/exchange/internal/observability"

	"github.com/go-chi/chi/v5"
)

// The handler depends on narrow local interfaces rather than the concrete
// use cases so tests can drive it with fakes.
type OrderCreator interface {
	Execute(ctx context.Context, cmd appOrder.CreateOrderInput) (*appOrder.CreateOrderResult, error)
}

type OrderSubmitter interface {
	Execute(ctx context.Context, orderID string) (*appOrder.SubmitOrderResult, error)
}

type OrderLifecycle interface {
	Get(ctx context.Context, id string) (*domainOrder.Order, error)
	Approve(ctx context.Context, id string) (*domainOrder.Order, error)
	Cancel(ctx context.Context, id string) (*domainOrder.Order, error)
}

type Handler struct {
	creator   OrderCreator
	submitter OrderSubmitter
	lifecycle OrderLifecycle
	log       observability.Logger
	tel       observability.Observability
}

const componentHTTPHandler = "http_server"

func NewHandler(creator OrderCreator, submitter OrderSubmitter, lifecycle OrderLifecycle,
	tel observability.Observability,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		creator:   creator,
		submitter: submitter,
		lifecycle: lifecycle,
		log:       tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:       tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(ObservabilityMiddleware(h.log, h.tel))

	r.Post("/orders", h.handleCreateOrder)
	r.Get("/orders/{orderID}", h.handleGetOrder)
	r.Post("/orders/{orderID}/submit", h.handleSubmitOrder)
	r.Post("/orders/{orderID}/approve", h.handleApproveOrder)
	r.Post("/orders/{orderID}/cancel", h.handleCancelOrder)
	r.Get("/health", h.handleHealth)

	return r
}

type lineItemRequest struct {
	ArtworkID    string `json:"artwork_id"`
	EditionSetID string `json:"edition_set_id,omitempty"`
	PriceCents   *int64 `json:"price_cents"`
	Quantity     int64  `json:"quantity"`
}

type createOrderRequest struct {
	IdempotencyKey     string            `json:"idempotency_key,omitempty"`
	PartnerID          string            `json:"partner_id"`
	CreditCardID       string            `json:"credit_card_id"`
	CurrencyCode       string            `json:"currency_code"`
	FulfillmentType    string            `json:"fulfillment_type,omitempty"`
	TaxTotalCents      *int64            `json:"tax_total_cents,omitempty"`
	ShippingTotalCents *int64            `json:"shipping_total_cents,omitempty"`
	LineItems          []lineItemRequest `json:"line_items"`
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
	State   string `json:"state"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]appOrder.LineItemInput, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		items = append(items, appOrder.LineItemInput{
			ArtworkID:    li.ArtworkID,
			EditionSetID: li.EditionSetID,
			PriceCents:   li.PriceCents,
			Quantity:     li.Quantity,
		})
	}

	result, err := h.creator.Execute(r.Context(), appOrder.CreateOrderInput{
		IdempotencyKey:     req.IdempotencyKey,
		PartnerID:          req.PartnerID,
		CreditCardID:       req.CreditCardID,
		CurrencyCode:       req.CurrencyCode,
		FulfillmentType:    domainOrder.FulfillmentType(req.FulfillmentType),
		TaxTotalCents:      req.TaxTotalCents,
		ShippingTotalCents: req.ShippingTotalCents,
		LineItems:          items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID: result.OrderID,
		State:   string(result.State),
	})
}

type submitOrderResponse struct {
	OrderID          string     `json:"order_id"`
	State            string     `json:"state"`
	ExternalChargeID string     `json:"external_charge_id"`
	StateExpiresAt   *time.Time `json:"state_expires_at,omitempty"`
}

func (h *Handler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	result, err := h.submitter.Execute(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submitOrderResponse{
		OrderID:          result.OrderID,
		State:            string(result.State),
		ExternalChargeID: result.ExternalChargeID,
		StateExpiresAt:   result.StateExpiresAt,
	})
}

type orderResponse struct {
	OrderID             string     `json:"order_id"`
	State               string     `json:"state"`
	CurrencyCode        string     `json:"currency_code"`
	PartnerID           string     `json:"partner_id"`
	ItemsTotalCents     int64      `json:"items_total_cents"`
	BuyerTotalCents     int64      `json:"buyer_total_cents"`
	CommissionFeeCents  *int64     `json:"commission_fee_cents,omitempty"`
	TransactionFeeCents *int64     `json:"transaction_fee_cents,omitempty"`
	ExternalChargeID    string     `json:"external_charge_id,omitempty"`
	StateUpdatedAt      time.Time  `json:"state_updated_at"`
	StateExpiresAt      *time.Time `json:"state_expires_at,omitempty"`
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	return orderResponse{
		OrderID:             o.ID,
		State:               string(o.State),
		CurrencyCode:        o.CurrencyCode,
		PartnerID:           o.PartnerID,
		ItemsTotalCents:     o.ItemsTotalCents(),
		BuyerTotalCents:     o.BuyerTotalCents(),
		CommissionFeeCents:  o.CommissionFeeCents,
		TransactionFeeCents: o.TransactionFeeCents,
		ExternalChargeID:    o.ExternalChargeID,
		StateUpdatedAt:      o.StateUpdatedAt,
		StateExpiresAt:      o.StateExpiresAt,
	}
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.lifecycle.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleApproveOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.lifecycle.Approve(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.lifecycle.Cancel(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type orderErrorResponse struct {
	Error string         `json:"error"`
	Code  string         `json:"code"`
	Data  map[string]any `json:"data,omitempty"`
}

// writeDomainError maps error types to HTTP statuses: precondition failures
// to 422 with a machine-readable code, payment failures to 402, unknown
// orders to 404, everything else to 500.
func writeDomainError(w http.ResponseWriter, err error) {
	if oe, ok := domainOrder.IsOrderError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, orderErrorResponse{
			Error: oe.Error(),
			Code:  oe.Code,
			Data:  oe.Data,
		})
		return
	}
	if pe, ok := domainPayment.IsPaymentError(err); ok {
		writeJSON(w, http.StatusPaymentRequired, orderErrorResponse{
			Error: pe.Error(),
			Code:  pe.Code,
		})
		return
	}
	switch {
	case errors.Is(err, domainOrder.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domainOrder.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domainOrder.ErrPartnerRequired),
		errors.Is(err, domainOrder.ErrCurrencyRequired),
		errors.Is(err, domainOrder.ErrArtworkRequired),
		errors.Is(err, domainOrder.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
