package postgres

import (
	"context"
	"fmt"

	domain "github.com/arteon/exchange/internal/domain/payment"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository persists payment transactions. The table is
// append-only; there is no update path.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, order_id, external_id, type, status, amount_cents, failure_code, failure_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tx.ID, tx.OrderID, tx.ExternalID, tx.Type, tx.Status, tx.AmountCents,
		tx.FailureCode, tx.FailureMessage, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, external_id, type, status, amount_cents, failure_code, failure_message, created_at
		FROM transactions WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.OrderID, &tx.ExternalID, &tx.Type, &tx.Status,
			&tx.AmountCents, &tx.FailureCode, &tx.FailureMessage, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}
