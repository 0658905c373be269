package order

import "time"

// Mode distinguishes how an order was initiated. Pre-existing rows were
// backfilled to BUY when the column was introduced.
type Mode string

const (
	ModeBuy Mode = "buy"
)

type FulfillmentType string

const (
	FulfillmentPickup FulfillmentType = "pickup"
	FulfillmentShip   FulfillmentType = "ship"
)

// LineItem is a priced artwork (or edition set) entry on an order. Once
// inventory has been deducted against it, it must not change.
type LineItem struct {
	ID           string
	ArtworkID    string
	EditionSetID string
	PriceCents   *int64
	Quantity     int64
}

// Order is the aggregate root of the purchase flow. Monetary fields are
// nullable and count as zero until they are computed.
type Order struct {
	ID              string
	Mode            Mode
	State           State
	CurrencyCode    string
	PartnerID       string
	CreditCardID    string
	FulfillmentType FulfillmentType
	IdempotencyKey  string

	TaxTotalCents       *int64
	ShippingTotalCents  *int64
	CommissionFeeCents  *int64
	TransactionFeeCents *int64

	ExternalChargeID string
	LineItems        []LineItem

	StateUpdatedAt time.Time
	StateExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, partnerID, creditCardID, currencyCode string, fulfillment FulfillmentType, idempotencyKey string, items []LineItem, now time.Time) (*Order, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if partnerID == "" {
		return nil, ErrPartnerRequired
	}
	if currencyCode == "" {
		return nil, ErrCurrencyRequired
	}
	for _, li := range items {
		if li.ArtworkID == "" {
			return nil, ErrArtworkRequired
		}
		if li.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now = now.UTC()
	return &Order{
		ID:              id,
		Mode:            ModeBuy,
		State:           StatePending,
		CurrencyCode:    currencyCode,
		PartnerID:       partnerID,
		CreditCardID:    creditCardID,
		FulfillmentType: fulfillment,
		IdempotencyKey:  idempotencyKey,
		LineItems:       items,
		StateUpdatedAt:  now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SetFees records the computed commission and transaction fees. It touches
// UpdatedAt only; state timestamps change exclusively on state transitions.
func (o *Order) SetFees(commissionCents, transactionFeeCents int64, now time.Time) {
	o.CommissionFeeCents = &commissionCents
	o.TransactionFeeCents = &transactionFeeCents
	o.UpdatedAt = now.UTC()
}

// SetExternalCharge records the payment-provider hold reference.
func (o *Order) SetExternalCharge(chargeID string, now time.Time) {
	o.ExternalChargeID = chargeID
	o.UpdatedAt = now.UTC()
}

// Expired reports whether the order's current state has passed its expiry.
func (o *Order) Expired(now time.Time) bool {
	return o.StateExpiresAt != nil && !now.Before(*o.StateExpiresAt)
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.LineItems = append([]LineItem(nil), o.LineItems...)
	for i, li := range o.LineItems {
		clone.LineItems[i].PriceCents = cloneInt64(li.PriceCents)
	}
	clone.TaxTotalCents = cloneInt64(o.TaxTotalCents)
	clone.ShippingTotalCents = cloneInt64(o.ShippingTotalCents)
	clone.CommissionFeeCents = cloneInt64(o.CommissionFeeCents)
	clone.TransactionFeeCents = cloneInt64(o.TransactionFeeCents)
	clone.StateExpiresAt = cloneTime(o.StateExpiresAt)
	return &clone
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
