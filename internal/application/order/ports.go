package order

import (
	"context"
	"time"

	domorder "github.com/arteon/exchange/internal/domain/order"
	dompartner "github.com/arteon/exchange/internal/domain/partner"
	dompayment "github.com/arteon/exchange/internal/domain/payment"
)

type IDGenerator interface {
	NewID() string
}

// PartnerService resolves partner configuration and payment instruments
// from the partner-data service.
type PartnerService interface {
	GetPartner(ctx context.Context, partnerID string) (*dompartner.Partner, error)
	GetCreditCard(ctx context.Context, creditCardID string) (*dompayment.CreditCard, error)
}

// InventoryClient deducts and re-increments stock buckets. Each call is an
// independent remote operation with no internal retry.
type InventoryClient interface {
	DeductArtwork(ctx context.Context, artworkID string, quantity int64) error
	DeductEditionSet(ctx context.Context, artworkID, editionSetID string, quantity int64) error
	UndeductArtwork(ctx context.Context, artworkID string, quantity int64) error
	UndeductEditionSet(ctx context.Context, artworkID, editionSetID string, quantity int64) error
}

// Scheduler enqueues the deferred follow-up action. Delivery is
// at-least-once; the follow-up handler must be idempotent.
type Scheduler interface {
	Schedule(ctx context.Context, at time.Time, orderID string, fromState domorder.State) error
}

// Locker provides mutual exclusion per order identifier. Concurrent
// submissions of the same order would double-deduct inventory or
// double-authorize payment.
type Locker interface {
	Acquire(ctx context.Context, orderID string) (release func(), err error)
}
