package order

import (
	"context"
	"fmt"

	domorder "github.com/arteon/exchange/internal/domain/order"
	dompayment "github.com/arteon/exchange/internal/domain/payment"
	"github.com/arteon/exchange/internal/observability"
	"github.com/arteon/exchange/internal/observability/logctx"
	"github.com/arteon/exchange/internal/pkg/clock"
)

const failureCodeAuthorization = "authorization_failed"

// PaymentAuthorizer requests a hold from the payment gateway and records
// exactly one Transaction row per attempt, success or failure. Transactions
// are the permanent record of what was attempted, not just what succeeded.
type PaymentAuthorizer struct {
	gateway      dompayment.Gateway
	transactions dompayment.TransactionRepository
	idGenerator  IDGenerator
	clock        clock.Clock
	log          observability.Logger
}

func NewPaymentAuthorizer(
	gateway dompayment.Gateway,
	transactions dompayment.TransactionRepository,
	idGen IDGenerator,
	clk clock.Clock,
	logger observability.Logger,
) *PaymentAuthorizer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &PaymentAuthorizer{
		gateway:      gateway,
		transactions: transactions,
		idGenerator:  idGen,
		clock:        clk,
		log:          logger.With(observability.F("component", "payment_authorizer")),
	}
}

// Hold authorizes the order's buyer total against the resolved card and
// merchant account. On failure the returned error is a *PaymentError and a
// FAILURE transaction has been recorded.
func (a *PaymentAuthorizer) Hold(ctx context.Context, o *domorder.Order, card *dompayment.CreditCard, merchant *dompayment.MerchantAccount) (*dompayment.Hold, error) {
	params := dompayment.HoldParams{
		SourceID:      card.ExternalID,
		DestinationID: merchant.ExternalID,
		CustomerID:    card.CustomerAccount.ExternalID,
		AmountCents:   o.BuyerTotalCents(),
		CurrencyCode:  o.CurrencyCode,
	}

	hold, err := a.gateway.AuthorizeHold(ctx, params)
	now := a.clock.Now()
	if err != nil {
		failureCode, failureMessage := failureCodeAuthorization, err.Error()
		if decline, ok := dompayment.AsDecline(err); ok {
			failureCode, failureMessage = decline.Code, decline.Message
		}

		tx := dompayment.NewHoldFailure(a.idGenerator.NewID(), o.ID, params.AmountCents, failureCode, failureMessage, now)
		if insertErr := a.transactions.Insert(ctx, tx); insertErr != nil {
			logctx.FromOr(ctx, a.log).Error("transaction_record_failed",
				observability.F("order_id", o.ID),
				observability.F("error", insertErr.Error()),
			)
		}
		return nil, dompayment.NewPaymentError(failureCode, failureMessage, err)
	}

	tx := dompayment.NewHoldSuccess(a.idGenerator.NewID(), o.ID, hold.ExternalID, params.AmountCents, now)
	if err := a.transactions.Insert(ctx, tx); err != nil {
		return nil, fmt.Errorf("payment: record hold transaction: %w", err)
	}
	return hold, nil
}
