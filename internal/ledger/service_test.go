package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockbook-io/stockbook/internal/shared"
)

type memoryRepo struct {
	products map[int64]bool
	txs      []Transaction
	nextID   int64
}

type memoryTx struct {
	repo    *memoryRepo
	headers []Transaction
	lines   map[int64][]LineInput
}

func newMemoryRepo(productIDs ...int64) *memoryRepo {
	repo := &memoryRepo{products: make(map[int64]bool)}
	for _, id := range productIDs {
		repo.products[id] = true
	}
	return repo
}

// WithTx buffers writes and applies them only when fn succeeds, mirroring
// the all-or-nothing commit of the real repository.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, lines: make(map[int64][]LineInput)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, header := range tx.headers {
		for _, line := range tx.lines[header.ID] {
			header.Lines = append(header.Lines, LineItem{
				TransactionID: header.ID,
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				UnitCost:      line.UnitCost,
			})
		}
		r.txs = append(r.txs, header)
	}
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Transaction, error) {
	for _, tx := range r.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Transaction, int, error) {
	result := []Transaction{}
	for _, tx := range r.txs {
		if filters.Type != "" && tx.Type != filters.Type {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	total := len(result)
	if filters.PerPage > 0 {
		start := shared.Offset(filters.Page, filters.PerPage)
		if start > total {
			start = total
		}
		end := start + filters.PerPage
		if end > total {
			end = total
		}
		result = result[start:end]
	}
	return result, total, nil
}

func (r *memoryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.txs)), nil
}

func (tx *memoryTx) MissingProducts(ctx context.Context, ids []int64) ([]int64, error) {
	missing := []int64{}
	for _, id := range ids {
		if !tx.repo.products[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (tx *memoryTx) InsertTransaction(ctx context.Context, t Transaction) (int64, error) {
	tx.repo.nextID++
	t.ID = tx.repo.nextID
	tx.headers = append(tx.headers, t)
	return t.ID, nil
}

func (tx *memoryTx) InsertLines(ctx context.Context, txID int64, lines []LineInput) error {
	tx.lines[txID] = append(tx.lines[txID], lines...)
	return nil
}

type memoryIdempotency struct {
	keys map[string]bool
}

func (m *memoryIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.keys == nil {
		m.keys = make(map[string]bool)
	}
	if m.keys[key] {
		return shared.ErrConflict
	}
	m.keys[key] = true
	return nil
}

func (m *memoryIdempotency) Delete(ctx context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

func TestPostValidationOrder(t *testing.T) {
	repo := newMemoryRepo(1, 2)
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Post(ctx, PostInput{Type: TypeIn})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorContains(t, err, "no line items")

	_, err = svc.Post(ctx, PostInput{Type: TypeIn, Lines: []LineInput{
		{ProductID: 1, Quantity: 2, UnitCost: 5},
		{ProductID: 1, Quantity: 3, UnitCost: 5},
	}})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorContains(t, err, "duplicate product in transaction")

	_, err = svc.Post(ctx, PostInput{Type: TypeIn, Lines: []LineInput{{ProductID: 1, Quantity: 0, UnitCost: 5}}})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorContains(t, err, "quantity")

	_, err = svc.Post(ctx, PostInput{Type: TypeIn, Lines: []LineInput{{ProductID: 1, Quantity: 1, UnitCost: 0}}})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorContains(t, err, "unit cost")

	_, err = svc.Post(ctx, PostInput{Type: "XFER", Lines: []LineInput{{ProductID: 1, Quantity: 1, UnitCost: 5}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	// No attempt above may leave partial rows behind.
	txs, _, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestPostUnknownProductWritesNothing(t *testing.T) {
	repo := newMemoryRepo(1)
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Post(ctx, PostInput{Type: TypeIn, Lines: []LineInput{
		{ProductID: 1, Quantity: 2, UnitCost: 5},
		{ProductID: 99, Quantity: 1, UnitCost: 5},
	}})
	require.ErrorIs(t, err, shared.ErrNotFound)

	txs, _, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestPostSuccess(t *testing.T) {
	repo := newMemoryRepo(1, 2)
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	tx, err := svc.Post(ctx, PostInput{
		Type:      TypeIn,
		Reference: "PO-1001",
		Lines: []LineInput{
			{ProductID: 1, Quantity: 10, UnitCost: 2.5},
			{ProductID: 2, Quantity: 4, UnitCost: 10},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, tx.ID)
	require.Equal(t, DefaultCreator, tx.CreatedBy)
	require.False(t, tx.OccurredAt.IsZero())
	require.Len(t, tx.Lines, 2)
	require.InDelta(t, 65.0, tx.TotalAmount(), 0.0001)

	got, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	require.InDelta(t, tx.TotalAmount(), got.TotalAmount(), 0.0001)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestListOrderAndFilter(t *testing.T) {
	repo := newMemoryRepo(1)
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, err := svc.Post(ctx, PostInput{Type: TypeIn, OccurredAt: base, Lines: []LineInput{{ProductID: 1, Quantity: 5, UnitCost: 1}}})
	require.NoError(t, err)
	_, err = svc.Post(ctx, PostInput{Type: TypeOut, OccurredAt: base.Add(time.Hour), Lines: []LineInput{{ProductID: 1, Quantity: 2, UnitCost: 1}}})
	require.NoError(t, err)

	txs, pagination, err := svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, TypeOut, txs[0].Type)
	require.Equal(t, 2, pagination.Total)

	outs, _, err := svc.List(ctx, ListFilters{Type: TypeOut})
	require.NoError(t, err)
	require.Len(t, outs, 1)

	firstPage, pagination, err := svc.List(ctx, ListFilters{Page: 1, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, firstPage, 1)
	require.Equal(t, TypeOut, firstPage[0].Type)
	require.Equal(t, 2, pagination.Total)
	require.Equal(t, 2, pagination.TotalPages)

	_, _, err = svc.List(ctx, ListFilters{Type: "BOGUS"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostIdempotency(t *testing.T) {
	repo := newMemoryRepo(1)
	idem := &memoryIdempotency{}
	svc := NewService(repo, nil, idem, nil)
	ctx := context.Background()

	input := PostInput{
		Type:           TypeIn,
		IdempotencyKey: "key-1",
		Lines:          []LineInput{{ProductID: 1, Quantity: 5, UnitCost: 1}},
	}
	_, err := svc.Post(ctx, input)
	require.NoError(t, err)

	_, err = svc.Post(ctx, input)
	require.ErrorIs(t, err, shared.ErrConflict)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestPostReleasesKeyOnFailure(t *testing.T) {
	repo := newMemoryRepo(1)
	idem := &memoryIdempotency{}
	svc := NewService(repo, nil, idem, nil)
	ctx := context.Background()

	bad := PostInput{
		Type:           TypeIn,
		IdempotencyKey: "key-2",
		Lines:          []LineInput{{ProductID: 99, Quantity: 5, UnitCost: 1}},
	}
	_, err := svc.Post(ctx, bad)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// The key is usable again after the failed attempt.
	good := bad
	good.Lines = []LineInput{{ProductID: 1, Quantity: 5, UnitCost: 1}}
	_, err = svc.Post(ctx, good)
	require.NoError(t, err)
}
