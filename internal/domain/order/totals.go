package order

// Monetary aggregation. Absent (nil) cent fields are always additive zero,
// never an error; line-item prices are already per-line amounts, so quantity
// does not enter the sum.

// ItemsTotalCents is the sum of all line-item prices.
func (o *Order) ItemsTotalCents() int64 {
	var total int64
	for _, li := range o.LineItems {
		total += orZero(li.PriceCents)
	}
	return total
}

// SubtotalCents is items + tax + shipping.
func (o *Order) SubtotalCents() int64 {
	return o.ItemsTotalCents() + orZero(o.TaxTotalCents) + orZero(o.ShippingTotalCents)
}

// BuyerTotalCents is the amount charged to the buyer: subtotal plus the
// partner commission.
func (o *Order) BuyerTotalCents() int64 {
	return o.SubtotalCents() + orZero(o.CommissionFeeCents)
}

// TotalCents is the subtotal plus both fees.
func (o *Order) TotalCents() int64 {
	return o.SubtotalCents() + orZero(o.CommissionFeeCents) + orZero(o.TransactionFeeCents)
}

func orZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
