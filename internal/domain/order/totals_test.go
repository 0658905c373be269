package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func testOrder(t *testing.T, items []LineItem) *Order {
	t.Helper()
	o, err := New("order-1", "partner-1", "card-1", "USD", FulfillmentShip, "", items, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return o
}

func TestItemsTotalCents(t *testing.T) {
	t.Run("empty order totals zero", func(t *testing.T) {
		o := testOrder(t, nil)
		assert.Equal(t, int64(0), o.ItemsTotalCents())
	})

	t.Run("nil prices count as zero", func(t *testing.T) {
		o := testOrder(t, []LineItem{
			{ID: "li-1", ArtworkID: "a-1", PriceCents: nil, Quantity: 1},
			{ID: "li-2", ArtworkID: "a-2", PriceCents: i64(2500), Quantity: 1},
		})
		assert.Equal(t, int64(2500), o.ItemsTotalCents())
	})

	t.Run("sums line prices without quantity", func(t *testing.T) {
		o := testOrder(t, []LineItem{
			{ID: "li-1", ArtworkID: "a-1", PriceCents: i64(1000), Quantity: 3},
			{ID: "li-2", ArtworkID: "a-2", PriceCents: i64(500), Quantity: 2},
		})
		assert.Equal(t, int64(1500), o.ItemsTotalCents())
	})
}

func TestOrderTotals(t *testing.T) {
	o := testOrder(t, []LineItem{
		{ID: "li-1", ArtworkID: "a-1", PriceCents: i64(1_000_000), Quantity: 1},
	})
	o.TaxTotalCents = i64(100)
	o.ShippingTotalCents = i64(200)

	assert.Equal(t, int64(1_000_300), o.SubtotalCents())

	// Before fees are computed, buyer total equals the subtotal.
	assert.Equal(t, int64(1_000_300), o.BuyerTotalCents())

	o.SetFees(800_000, 29_030, time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC))
	assert.Equal(t, int64(1_800_300), o.BuyerTotalCents())
	assert.Equal(t, int64(1_829_330), o.TotalCents())
}

func TestTotalIdentity(t *testing.T) {
	o := testOrder(t, []LineItem{
		{ID: "li-1", ArtworkID: "a-1", PriceCents: i64(12345), Quantity: 1},
		{ID: "li-2", ArtworkID: "a-2", PriceCents: i64(678), Quantity: 4},
	})
	o.TaxTotalCents = i64(99)
	o.CommissionFeeCents = i64(1000)
	o.TransactionFeeCents = i64(400)

	assert.Equal(t, o.SubtotalCents()+1000+400, o.TotalCents())
	assert.Equal(t, o.SubtotalCents()+1000, o.BuyerTotalCents())
}

func TestCloneIsDeep(t *testing.T) {
	o := testOrder(t, []LineItem{
		{ID: "li-1", ArtworkID: "a-1", PriceCents: i64(100), Quantity: 1},
	})
	o.CommissionFeeCents = i64(50)

	clone := o.Clone()
	*clone.CommissionFeeCents = 999
	*clone.LineItems[0].PriceCents = 999

	assert.Equal(t, int64(50), *o.CommissionFeeCents)
	assert.Equal(t, int64(100), *o.LineItems[0].PriceCents)
}

func TestNewValidation(t *testing.T) {
	now := time.Now()

	_, err := New("", "partner-1", "card-1", "USD", FulfillmentShip, "", nil, now)
	assert.ErrorIs(t, err, ErrIDRequired)

	_, err = New("order-1", "", "card-1", "USD", FulfillmentShip, "", nil, now)
	assert.ErrorIs(t, err, ErrPartnerRequired)

	_, err = New("order-1", "partner-1", "card-1", "", FulfillmentShip, "", nil, now)
	assert.ErrorIs(t, err, ErrCurrencyRequired)

	_, err = New("order-1", "partner-1", "card-1", "USD", FulfillmentShip, "", []LineItem{
		{ID: "li-1", ArtworkID: "", Quantity: 1},
	}, now)
	assert.ErrorIs(t, err, ErrArtworkRequired)

	_, err = New("order-1", "partner-1", "card-1", "USD", FulfillmentShip, "", []LineItem{
		{ID: "li-1", ArtworkID: "a-1", Quantity: 0},
	}, now)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
