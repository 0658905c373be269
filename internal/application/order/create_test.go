package order

import (
	"context"
	"testing"
	"time"

	domorder "github.com/arteon/exchange/internal/domain/order"
	"github.com/arteon/exchange/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createTestNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func createInput() CreateOrderInput {
	return CreateOrderInput{
		IdempotencyKey:  "idem-1",
		PartnerID:       "partner-1",
		CreditCardID:    "card-1",
		CurrencyCode:    "USD",
		FulfillmentType: domorder.FulfillmentShip,
		LineItems: []LineItemInput{
			{ArtworkID: "a-1", PriceCents: i64(600_000), Quantity: 1},
		},
	}
}

func newCreateUseCase(repo *fakeOrderRepo, publisher *fakePublisher) *CreateOrderUseCase {
	return NewCreateOrderUseCase(repo, &seqIDGenerator{}, publisher, clock.NewFixed(createTestNow), nil)
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	publisher := &fakePublisher{}
	uc := newCreateUseCase(repo, publisher)

	result, err := uc.Execute(context.Background(), createInput())
	require.NoError(t, err)
	assert.Equal(t, domorder.StatePending, result.State)

	stored := repo.stored(result.OrderID)
	assert.Equal(t, domorder.ModeBuy, stored.Mode)
	assert.Equal(t, "partner-1", stored.PartnerID)
	require.Len(t, stored.LineItems, 1)
	assert.Equal(t, int64(600_000), *stored.LineItems[0].PriceCents)

	// Pending orders carry no expiry; only submission starts the clock.
	assert.Nil(t, stored.StateExpiresAt)
	assert.Equal(t, createTestNow, stored.StateUpdatedAt)

	assert.Equal(t, []string{"order.created"}, publisher.names())
}

func TestCreateOrderIdempotentReplay(t *testing.T) {
	repo := newFakeOrderRepo()
	publisher := &fakePublisher{}
	uc := newCreateUseCase(repo, publisher)

	first, err := uc.Execute(context.Background(), createInput())
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), createInput())
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	// The replay publishes nothing new.
	assert.Equal(t, []string{"order.created"}, publisher.names())
}

func TestCreateOrderValidation(t *testing.T) {
	uc := newCreateUseCase(newFakeOrderRepo(), &fakePublisher{})

	input := createInput()
	input.PartnerID = ""
	_, err := uc.Execute(context.Background(), input)
	assert.ErrorIs(t, err, domorder.ErrPartnerRequired)

	input = createInput()
	input.LineItems[0].Quantity = 0
	_, err = uc.Execute(context.Background(), input)
	assert.ErrorIs(t, err, domorder.ErrInvalidQuantity)
}
