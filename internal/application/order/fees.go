package order

import (
	"context"
	"math"

	domorder "github.com/arteon/exchange/internal/domain/order"
)

// FeeSchedule is the payment-provider's published processing fee: a
// percentage of the charged amount plus a fixed per-transaction amount.
type FeeSchedule struct {
	Rate       float64
	FixedCents int64
}

// DefaultFeeSchedule matches the provider's current published formula
// (2.9% + 30¢).
var DefaultFeeSchedule = FeeSchedule{Rate: 0.029, FixedCents: 30}

// FeeCalculator computes the partner commission and the provider
// transaction fee for an order.
type FeeCalculator struct {
	partners PartnerService
	schedule FeeSchedule
}

func NewFeeCalculator(partners PartnerService, schedule FeeSchedule) *FeeCalculator {
	if schedule == (FeeSchedule{}) {
		schedule = DefaultFeeSchedule
	}
	return &FeeCalculator{partners: partners, schedule: schedule}
}

// CommissionCents looks up the partner's commission rate and applies it to
// the items total. A missing rate is a configuration error, never an
// implicit zero.
func (c *FeeCalculator) CommissionCents(ctx context.Context, o *domorder.Order) (int64, error) {
	p, err := c.partners.GetPartner(ctx, o.PartnerID)
	if err != nil {
		return 0, domorder.NewOrderError(domorder.CodePartnerUnavailable, err)
	}
	if p == nil || p.EffectiveCommissionRate == nil {
		return 0, domorder.NewOrderErrorData(domorder.CodeMissingCommissionRate, map[string]any{"partner_id": o.PartnerID}, nil)
	}
	// The rate arrives as a float; rounding must match the legacy behavior.
	return int64(math.Round(float64(o.ItemsTotalCents()) * *p.EffectiveCommissionRate)), nil
}

// TransactionFeeCents applies the fee schedule to the order's buyer total.
// It reads the order as-is: called before the commission is persisted, the
// fee covers the pre-commission amount, which is the documented legacy
// numeric behavior.
func (c *FeeCalculator) TransactionFeeCents(o *domorder.Order) int64 {
	return int64(math.Round(float64(o.BuyerTotalCents())*c.schedule.Rate)) + c.schedule.FixedCents
}
