package stripegateway

import (
	"context"
	"errors"
	"strings"

	dompayment "github.com/arteon/exchange/internal/domain/payment"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type chargeAPI interface {
	New(params *stripe.ChargeParams) (*stripe.Charge, error)
}

// Config configures the Gateway. Charges may be injected to test parameter
// construction and error mapping without network access.
type Config struct {
	APIKey   string
	Backends *stripe.Backends
	Charges  chargeAPI
}

// Gateway implements the payment gateway port on Stripe. A hold is an
// uncaptured destination charge; capture happens later, outside this
// system's scope.
type Gateway struct {
	charges chargeAPI
}

func New(cfg Config) (*Gateway, error) {
	charges := cfg.Charges
	if charges == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sc := client.New(apiKey, cfg.Backends)
		charges = sc.Charges
	}
	return &Gateway{charges: charges}, nil
}

func (g *Gateway) AuthorizeHold(ctx context.Context, p dompayment.HoldParams) (*dompayment.Hold, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(p.AmountCents),
		Currency: stripe.String(strings.ToLower(p.CurrencyCode)),
		Customer: stripe.String(p.CustomerID),
		Capture:  stripe.Bool(false),
		Destination: &stripe.ChargeDestinationParams{
			Account: stripe.String(p.DestinationID),
		},
	}
	params.Context = ctx
	if err := params.SetSource(p.SourceID); err != nil {
		return nil, err
	}

	charge, err := g.charges.New(params)
	if err != nil {
		return nil, classify(err)
	}
	return &dompayment.Hold{ExternalID: charge.ID}, nil
}

// classify maps provider card errors to structured declines; transport and
// API errors pass through unchanged.
func classify(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	if stripeErr.Type != stripe.ErrorTypeCard {
		return err
	}

	code := string(stripeErr.DeclineCode)
	if code == "" {
		code = string(stripeErr.Code)
	}
	return &dompayment.Decline{Code: code, Message: stripeErr.Msg}
}
