package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook-io/stockbook/internal/platform/db"
	"github.com/stockbook-io/stockbook/internal/shared"
)

// Repository persists ledger transactions in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the write operations available inside one database
// transaction. Header and lines commit together or not at all.
type TxRepository interface {
	MissingProducts(ctx context.Context, ids []int64) ([]int64, error)
	InsertTransaction(ctx context.Context, tx Transaction) (int64, error)
	InsertLines(ctx context.Context, txID int64, lines []LineInput) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// Get loads a transaction header with its lines.
func (r *Repository) Get(ctx context.Context, id int64) (Transaction, error) {
	var t Transaction
	err := r.pool.QueryRow(ctx, `SELECT id, occurred_at, tx_type, reference, remarks, created_by, created_at
FROM ledger_tx WHERE id = $1`, id).
		Scan(&t.ID, &t.OccurredAt, &t.Type, &t.Reference, &t.Remarks, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, fmt.Errorf("%w: transaction", shared.ErrNotFound)
		}
		return Transaction{}, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	lines, err := r.loadLines(ctx, []int64{id})
	if err != nil {
		return Transaction{}, err
	}
	t.Lines = lines[id]
	return t, nil
}

// List returns transactions ordered by occurrence time descending, lines
// included, plus the filtered total. A reader never sees a header without
// its lines: posting commits both in one transaction.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Transaction, int, error) {
	query := `SELECT id, occurred_at, tx_type, reference, remarks, created_by, created_at FROM ledger_tx WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM ledger_tx WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Type != "" {
		argCount++
		query += ` AND tx_type = $` + strconv.Itoa(argCount)
		countQuery += ` AND tx_type = $` + strconv.Itoa(argCount)
		args = append(args, string(filters.Type))
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	query += ` ORDER BY occurred_at DESC, id DESC`

	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, shared.Offset(filters.Page, filters.PerPage))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	txs := []Transaction{}
	ids := []int64{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.OccurredAt, &t.Type, &t.Reference, &t.Remarks, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		txs = append(txs, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return txs, total, nil
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range txs {
		txs[i].Lines = lines[txs[i].ID]
	}
	return txs, total, nil
}

// Count returns the number of posted transactions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_tx`).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return total, nil
}

func (r *Repository) loadLines(ctx context.Context, txIDs []int64) (map[int64][]LineItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.tx_id, l.product_id, p.code, p.name, l.quantity, l.unit_cost
FROM ledger_lines l
JOIN products p ON p.id = l.product_id
WHERE l.tx_id = ANY($1)
ORDER BY l.id ASC`, txIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	lines := make(map[int64][]LineItem, len(txIDs))
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.ProductID, &l.ProductCode, &l.ProductName, &l.Quantity, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		lines[l.TransactionID] = append(lines[l.TransactionID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return lines, nil
}

func (r *txRepository) MissingProducts(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := r.tx.Query(ctx, `SELECT id FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	missing := []int64{}
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, t Transaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_tx (occurred_at, tx_type, reference, remarks, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id`,
		t.OccurredAt, string(t.Type), t.Reference, t.Remarks, t.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	return id, nil
}

func (r *txRepository) InsertLines(ctx context.Context, txID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO ledger_lines (tx_id, product_id, quantity, unit_cost)
VALUES ($1, $2, $3, $4)`, txID, line.ProductID, line.Quantity, line.UnitCost); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
	}
	return nil
}
