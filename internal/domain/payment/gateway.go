package payment

import (
	"context"
	"errors"
	"fmt"
)

// HoldParams describe an authorization (reservation of funds, no capture).
type HoldParams struct {
	SourceID      string
	DestinationID string
	CustomerID    string
	AmountCents   int64
	CurrencyCode  string
}

// Hold is the provider's reference for an authorized charge.
type Hold struct {
	ExternalID string
}

// Gateway is the payment-provider port. Implementations classify provider
// declines as *Decline so callers can record structured failure details.
type Gateway interface {
	AuthorizeHold(ctx context.Context, params HoldParams) (*Hold, error)
}

// Decline is a structured refusal from the payment provider.
type Decline struct {
	Code    string
	Message string
}

func (d *Decline) Error() string {
	if d.Message != "" {
		return fmt.Sprintf("payment: declined (%s): %s", d.Code, d.Message)
	}
	return fmt.Sprintf("payment: declined (%s)", d.Code)
}

// AsDecline extracts a *Decline from an error chain.
func AsDecline(err error) (*Decline, bool) {
	var d *Decline
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// PaymentError is raised when the provider declines or the authorization
// call fails in transport. The order state is left untouched so the caller
// can retry.
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment: %s: %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("payment: %s: %v", e.Code, e.Err)
	}
	return "payment: " + e.Code
}

func (e *PaymentError) Unwrap() error { return e.Err }

// IsPaymentError extracts a *PaymentError from an error chain.
func IsPaymentError(err error) (*PaymentError, bool) {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
