package projection

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook-io/stockbook/internal/ledger"
	"github.com/stockbook-io/stockbook/internal/shared"
)

// MovementRepository aggregates ledger lines grouped by transaction type.
type MovementRepository interface {
	Totals(ctx context.Context, productID int64) (Movement, error)
	TotalsAll(ctx context.Context) (map[int64]Movement, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed MovementRepository.
func NewRepository(pool *pgxpool.Pool) MovementRepository {
	return &repository{pool: pool}
}

// Totals sums the line quantities of one product per transaction type in a
// single aggregate query.
func (r *repository) Totals(ctx context.Context, productID int64) (Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT t.tx_type, COALESCE(SUM(l.quantity), 0)
FROM ledger_lines l
JOIN ledger_tx t ON t.id = l.tx_id
WHERE l.product_id = $1
GROUP BY t.tx_type`, productID)
	if err != nil {
		return Movement{}, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var m Movement
	for rows.Next() {
		var txType string
		var qty int64
		if err := rows.Scan(&txType, &qty); err != nil {
			return Movement{}, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		m.Apply(ledger.Type(txType), qty)
	}
	if err := rows.Err(); err != nil {
		return Movement{}, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return m, nil
}

// TotalsAll aggregates every product in one grouped query; the all-products
// reports never loop a per-product query.
func (r *repository) TotalsAll(ctx context.Context) (map[int64]Movement, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.product_id, t.tx_type, COALESCE(SUM(l.quantity), 0)
FROM ledger_lines l
JOIN ledger_tx t ON t.id = l.tx_id
GROUP BY l.product_id, t.tx_type`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	totals := map[int64]Movement{}
	for rows.Next() {
		var productID int64
		var txType string
		var qty int64
		if err := rows.Scan(&productID, &txType, &qty); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		m := totals[productID]
		m.Apply(ledger.Type(txType), qty)
		totals[productID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return totals, nil
}
