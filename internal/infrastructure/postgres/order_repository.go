package postgres

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/arteon/exchange/internal/domain/order"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, mode, state, currency_code, partner_id, credit_card_id,
	fulfillment_type, COALESCE(idempotency_key, ''), tax_total_cents, shipping_total_cents,
	commission_fee_cents, transaction_fee_cents, external_charge_id,
	state_updated_at, state_expires_at, created_at, updated_at`

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("insert order: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, mode, state, currency_code, partner_id, credit_card_id,
			fulfillment_type, idempotency_key, tax_total_cents, shipping_total_cents,
			commission_fee_cents, transaction_fee_cents, external_charge_id,
			state_updated_at, state_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.Mode, o.State, o.CurrencyCode, o.PartnerID, o.CreditCardID,
		o.FulfillmentType, o.IdempotencyKey, o.TaxTotalCents, o.ShippingTotalCents,
		o.CommissionFeeCents, o.TransactionFeeCents, o.ExternalChargeID,
		o.StateUpdatedAt, o.StateExpiresAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if err := insertLineItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("insert order: commit: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.scanWithItems(ctx, row)
}

func (r *OrderRepository) FindByIdempotency(ctx context.Context, key string) (*domain.Order, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
	return r.scanWithItems(ctx, row)
}

// Update rewrites the order row and its line items. Line items are replaced
// wholesale; the aggregate is small enough that diffing is not worth it.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("update order: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET
			mode = $2, state = $3, currency_code = $4, partner_id = $5,
			credit_card_id = $6, fulfillment_type = $7,
			tax_total_cents = $8, shipping_total_cents = $9,
			commission_fee_cents = $10, transaction_fee_cents = $11,
			external_charge_id = $12, state_updated_at = $13,
			state_expires_at = $14, updated_at = $15
		WHERE id = $1`,
		o.ID, o.Mode, o.State, o.CurrencyCode, o.PartnerID,
		o.CreditCardID, o.FulfillmentType,
		o.TaxTotalCents, o.ShippingTotalCents,
		o.CommissionFeeCents, o.TransactionFeeCents,
		o.ExternalChargeID, o.StateUpdatedAt,
		o.StateExpiresAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_line_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("update order: clear line items: %w", err)
	}
	if err := insertLineItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("update order: commit: %w", err)
	}
	return nil
}

func insertLineItems(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	for i, li := range o.LineItems {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_line_items (id, order_id, position, artwork_id, edition_set_id, price_cents, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			li.ID, o.ID, i, li.ArtworkID, li.EditionSetID, li.PriceCents, li.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert line item %s: %w", li.ID, err)
		}
	}
	return nil
}

func (r *OrderRepository) scanWithItems(ctx context.Context, row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.Mode, &o.State, &o.CurrencyCode, &o.PartnerID, &o.CreditCardID,
		&o.FulfillmentType, &o.IdempotencyKey, &o.TaxTotalCents, &o.ShippingTotalCents,
		&o.CommissionFeeCents, &o.TransactionFeeCents, &o.ExternalChargeID,
		&o.StateUpdatedAt, &o.StateExpiresAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, artwork_id, edition_set_id, price_cents, quantity
		FROM order_line_items WHERE order_id = $1 ORDER BY position`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.ID, &li.ArtworkID, &li.EditionSetID, &li.PriceCents, &li.Quantity); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		o.LineItems = append(o.LineItems, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}
	return &o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
