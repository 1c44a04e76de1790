package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/stockbook-io/stockbook/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Transaction, error)
	List(ctx context.Context, filters ListFilters) ([]Transaction, int, error)
	Count(ctx context.Context) (int64, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards against double posting.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Invalidator invalidates cached stock projections after a post.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates ledger posting and reads. The ledger is append-only:
// there is no update or delete path for committed transactions.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	cache       Invalidator
}

// NewService builds Service. audit, idem and cache may be nil.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, cache Invalidator) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, cache: cache}
}

// Post validates and persists a transaction with all of its lines as one
// atomic unit. Validation fails fast in a fixed order, before any write:
// empty line set, duplicate product, per-line quantity and cost, then
// product existence inside the database transaction.
func (s *Service) Post(ctx context.Context, input PostInput) (Transaction, error) {
	if len(input.Lines) == 0 {
		return Transaction{}, shared.Validationf("no line items")
	}
	seen := make(map[int64]bool, len(input.Lines))
	for _, line := range input.Lines {
		if seen[line.ProductID] {
			return Transaction{}, shared.Validationf("duplicate product in transaction")
		}
		seen[line.ProductID] = true
	}
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return Transaction{}, shared.Validationf("quantity must be at least 1 for product %d", line.ProductID)
		}
		if line.UnitCost <= 0 {
			return Transaction{}, shared.Validationf("unit cost must be greater than 0 for product %d", line.ProductID)
		}
	}
	if !input.Type.Valid() {
		return Transaction{}, shared.Validationf("unknown transaction type %q", input.Type)
	}

	now := time.Now().UTC()
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = DefaultCreator
	}

	insertedKey := false
	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "ledger"); err != nil {
			return Transaction{}, err
		}
		insertedKey = true
	}

	result := Transaction{
		OccurredAt: occurredAt,
		Type:       input.Type,
		Reference:  input.Reference,
		Remarks:    input.Remarks,
		CreatedBy:  createdBy,
		CreatedAt:  now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ids := make([]int64, 0, len(input.Lines))
		for _, line := range input.Lines {
			ids = append(ids, line.ProductID)
		}
		missing, err := tx.MissingProducts(ctx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: product %d", shared.ErrNotFound, missing[0])
		}

		txID, err := tx.InsertTransaction(ctx, result)
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, txID, input.Lines); err != nil {
			return err
		}

		result.ID = txID
		result.Lines = make([]LineItem, 0, len(input.Lines))
		for _, line := range input.Lines {
			result.Lines = append(result.Lines, LineItem{
				TransactionID: txID,
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				UnitCost:      line.UnitCost,
			})
		}
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return Transaction{}, err
	}

	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    createdBy,
			Action:   fmt.Sprintf("ledger:%s", input.Type),
			Entity:   "ledger_tx",
			EntityID: fmt.Sprintf("%d", result.ID),
			Meta: map[string]any{
				"reference": input.Reference,
				"lines":     len(input.Lines),
				"total":     result.TotalAmount(),
			},
		})
	}
	return result, nil
}

// Get loads a transaction with its lines.
func (s *Service) Get(ctx context.Context, id int64) (Transaction, error) {
	if id <= 0 {
		return Transaction{}, fmt.Errorf("%w: transaction", shared.ErrNotFound)
	}
	return s.repo.Get(ctx, id)
}

// List returns transactions ordered by occurrence time descending, with
// pagination metadata over the filtered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Transaction, shared.Pagination, error) {
	if filters.Type != "" && !filters.Type.Valid() {
		return nil, shared.Pagination{}, shared.Validationf("unknown transaction type %q", filters.Type)
	}
	txs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return txs, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// Count returns the number of posted transactions.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
