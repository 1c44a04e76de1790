package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockbook-io/stockbook/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, code, name, category, unit_price, min_stock_level, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Category != "" {
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, string(filters.Category))
	}

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	query += ` ORDER BY code ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.UnitPrice, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, storeErr(err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return r.scanOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *repository) GetByCode(ctx context.Context, code string) (Product, error) {
	return r.scanOne(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
}

func (r *repository) scanOne(ctx context.Context, query string, arg any) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.UnitPrice, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: product", shared.ErrNotFound)
		}
		return Product{}, storeErr(err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `INSERT INTO products (code, name, category, unit_price, min_stock_level, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		product.Code, product.Name, string(product.Category), product.UnitPrice, product.MinStockLevel, now).Scan(&product.ID)
	if err != nil {
		return Product{}, uniqueErr(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) (Product, error) {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `UPDATE products SET code = $1, name = $2, category = $3, unit_price = $4, min_stock_level = $5, updated_at = $6 WHERE id = $7`,
		product.Code, product.Name, string(product.Category), product.UnitPrice, product.MinStockLevel, now, id)
	if err != nil {
		return Product{}, uniqueErr(err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	product.ID = id
	product.UpdatedAt = now
	return product, nil
}

// Delete removes the product. Ledger lines referencing it cascade away with
// it; this is the destructive admin path, not a routine operation.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, storeErr(err)
	}
	return total, nil
}

// uniqueErr maps a unique-constraint violation on the code column to
// ErrConflict so two concurrent creates with the same code cannot both
// succeed.
func uniqueErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: product code already exists", shared.ErrConflict)
	}
	return storeErr(err)
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
}
