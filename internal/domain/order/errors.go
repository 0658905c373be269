package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrConflict               = errors.New("order: already exists")
	ErrIDRequired             = errors.New("order: id is required")
	ErrPartnerRequired        = errors.New("order: partner id is required")
	ErrCurrencyRequired       = errors.New("order: currency code is required")
	ErrArtworkRequired        = errors.New("order: line item artwork id is required")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

// Machine-readable codes carried by OrderError.
const (
	CodeInvalidState            = "invalid_state"
	CodePartnerUnavailable      = "partner_unavailable"
	CodeMissingMerchantAccount  = "missing_merchant_account"
	CodeMissingCommissionRate   = "missing_commission_rate"
	CodeCreditCardUnavailable   = "credit_card_unavailable"
	CodeInvalidCreditCard       = "invalid_credit_card"
	CodeInventoryDeductionError = "inventory_deduction_failed"
)

// OrderError is a precondition or configuration failure raised before any
// payment is attempted. It carries a machine-readable code and optional
// structured data for the caller's messaging layer.
type OrderError struct {
	Code string
	Data map[string]any
	Err  error
}

func NewOrderError(code string, err error) *OrderError {
	return &OrderError{Code: code, Err: err}
}

func NewOrderErrorData(code string, data map[string]any, err error) *OrderError {
	return &OrderError{Code: code, Data: data, Err: err}
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order: %s: %v", e.Code, e.Err)
	}
	return "order: " + e.Code
}

func (e *OrderError) Unwrap() error { return e.Err }

// IsOrderError extracts an *OrderError from an error chain.
func IsOrderError(err error) (*OrderError, bool) {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}
