package order

import "time"

// OrderCreatedEvent is emitted when a new order enters PENDING.
type OrderCreatedEvent struct {
	OrderID    string
	PartnerID  string
	Mode       Mode
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order, now time.Time) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		PartnerID:  o.PartnerID,
		Mode:       o.Mode,
		OccurredAt: now.UTC(),
	}
}

// OrderSubmittedEvent announces a successful submission: the hold is in
// place and the order now expires unless acted on.
type OrderSubmittedEvent struct {
	OrderID         string
	PartnerID       string
	BuyerTotalCents int64
	CurrencyCode    string
	StateExpiresAt  *time.Time
	OccurredAt      time.Time
}

func (OrderSubmittedEvent) EventName() string { return "order.submitted" }

func NewOrderSubmittedEvent(o *Order, now time.Time) OrderSubmittedEvent {
	return OrderSubmittedEvent{
		OrderID:         o.ID,
		PartnerID:       o.PartnerID,
		BuyerTotalCents: o.BuyerTotalCents(),
		CurrencyCode:    o.CurrencyCode,
		StateExpiresAt:  cloneTime(o.StateExpiresAt),
		OccurredAt:      now.UTC(),
	}
}

// OrderStateChangedEvent covers the remaining lifecycle transitions
// (approved, rejected, cancelled).
type OrderStateChangedEvent struct {
	OrderID    string
	State      State
	Reason     string
	OccurredAt time.Time
}

func (e OrderStateChangedEvent) EventName() string { return "order." + string(e.State) }

func NewOrderStateChangedEvent(o *Order, reason string, now time.Time) OrderStateChangedEvent {
	return OrderStateChangedEvent{
		OrderID:    o.ID,
		State:      o.State,
		Reason:     reason,
		OccurredAt: now.UTC(),
	}
}
