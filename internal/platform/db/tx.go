package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook-io/stockbook/internal/shared"
)

// WithTx executes fn inside a RepeatableRead transaction. The commit either
// makes every write visible at once or none at all; begin/commit failures
// surface as shared.ErrStoreUnavailable so callers know the whole operation
// is retryable.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", shared.ErrStoreUnavailable, err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit tx: %v", shared.ErrStoreUnavailable, err)
	}

	return nil
}
