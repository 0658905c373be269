package order

import (
	"context"

	domorder "github.com/arteon/exchange/internal/domain/order"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/observability/logctx"
)

// InventoryCoordinator deducts stock for every line item of an order,
// tracking which deductions succeeded so it can re-increment them when a
// later deduction fails. Compensation is best effort: its failures are
// logged, and the submission aborts either way with the original error.
type InventoryCoordinator struct {
	client InventoryClient
	log    observability.Logger
}

func NewInventoryCoordinator(client InventoryClient, logger observability.Logger) *InventoryCoordinator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &InventoryCoordinator{
		client: client,
		log:    logger.With(observability.F("component", "inventory_coordinator")),
	}
}

// DeductAll deducts each line item's quantity from its inventory bucket:
// the edition set's when the item names one, the artwork's otherwise.
func (c *InventoryCoordinator) DeductAll(ctx context.Context, o *domorder.Order) error {
	deducted := make([]domorder.LineItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		if err := c.deduct(ctx, li); err != nil {
			c.compensate(ctx, deducted)
			return domorder.NewOrderErrorData(domorder.CodeInventoryDeductionError, map[string]any{
				"artwork_id":     li.ArtworkID,
				"edition_set_id": li.EditionSetID,
			}, err)
		}
		deducted = append(deducted, li)
	}
	return nil
}

func (c *InventoryCoordinator) deduct(ctx context.Context, li domorder.LineItem) error {
	if li.EditionSetID != "" {
		return c.client.DeductEditionSet(ctx, li.ArtworkID, li.EditionSetID, li.Quantity)
	}
	return c.client.DeductArtwork(ctx, li.ArtworkID, li.Quantity)
}

func (c *InventoryCoordinator) compensate(ctx context.Context, deducted []domorder.LineItem) {
	logger := logctx.FromOr(ctx, c.log)
	for _, li := range deducted {
		var err error
		if li.EditionSetID != "" {
			err = c.client.UndeductEditionSet(ctx, li.ArtworkID, li.EditionSetID, li.Quantity)
		} else {
			err = c.client.UndeductArtwork(ctx, li.ArtworkID, li.Quantity)
		}
		if err != nil {
			logger.Warn("inventory_compensation_failed",
				observability.F("artwork_id", li.ArtworkID),
				observability.F("edition_set_id", li.EditionSetID),
				observability.F("quantity", li.Quantity),
				observability.F("error", err.Error()),
			)
		}
	}
}
