package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/arteon/exchange/internal/domain/payment"
)

// TransactionRepository is an append-only in-memory transaction store.
// Rows are never mutated after insertion.
type TransactionRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Transaction
	byOrder map[string][]*domain.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byID:    make(map[string]*domain.Transaction),
		byOrder: make(map[string][]*domain.Transaction),
	}
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	_ = ctx
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("transaction repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[tx.ID]; exists {
		return fmt.Errorf("transaction repository: duplicate id %s", tx.ID)
	}
	clone := *tx
	r.byID[tx.ID] = &clone
	r.byOrder[tx.OrderID] = append(r.byOrder[tx.OrderID], &clone)
	return nil
}

func (r *TransactionRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.Transaction, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byOrder[orderID]
	out := make([]*domain.Transaction, 0, len(rows))
	for _, tx := range rows {
		clone := *tx
		out = append(out, &clone)
	}
	return out, nil
}
