package payment

import (
	"context"
	"time"
)

type TransactionType string

const (
	TransactionHold    TransactionType = "hold"
	TransactionCapture TransactionType = "capture"
	TransactionRefund  TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionSuccess TransactionStatus = "success"
	TransactionFailure TransactionStatus = "failure"
)

// Transaction is the append-only audit record of a payment-provider
// interaction. One row is created per attempt regardless of outcome, and
// rows are never mutated afterwards; a retry produces a new row.
type Transaction struct {
	ID             string
	OrderID        string
	ExternalID     string
	Type           TransactionType
	Status         TransactionStatus
	AmountCents    int64
	FailureCode    string
	FailureMessage string
	CreatedAt      time.Time
}

func NewHoldSuccess(id, orderID, externalID string, amountCents int64, now time.Time) *Transaction {
	return &Transaction{
		ID:          id,
		OrderID:     orderID,
		ExternalID:  externalID,
		Type:        TransactionHold,
		Status:      TransactionSuccess,
		AmountCents: amountCents,
		CreatedAt:   now.UTC(),
	}
}

func NewHoldFailure(id, orderID string, amountCents int64, failureCode, failureMessage string, now time.Time) *Transaction {
	return &Transaction{
		ID:             id,
		OrderID:        orderID,
		Type:           TransactionHold,
		Status:         TransactionFailure,
		AmountCents:    amountCents,
		FailureCode:    failureCode,
		FailureMessage: failureMessage,
		CreatedAt:      now.UTC(),
	}
}

type TransactionRepository interface {
	Insert(ctx context.Context, tx *Transaction) error
	ListByOrderID(ctx context.Context, orderID string) ([]*Transaction, error)
}
