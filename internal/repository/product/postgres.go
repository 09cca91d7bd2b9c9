package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"glalex-shop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `p.id::text, p.name, p.description, p.price::text, p.stock, p.category_id::text, c.name, p.image_path, p.active, p.created_at, p.updated_at`

const productFrom = `FROM products p JOIN categories c ON c.id = p.category_id`

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		conds = append(conds, "p.active")
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d OR c.name ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	// Listings group by category name first, then apply the chosen sort,
	// matching the storefront's category-sectioned layout.
	var order string
	switch filter.Sort {
	case domain.SortPriceAsc:
		order = "ORDER BY c.name ASC, p.price ASC, p.created_at DESC"
	case domain.SortPriceDesc:
		order = "ORDER BY c.name ASC, p.price DESC, p.created_at DESC"
	default:
		order = "ORDER BY c.name ASC, p.created_at DESC"
	}

	q := fmt.Sprintf("SELECT %s %s %s %s", productColumns, productFrom, where, order)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE p.id = $1", productColumns, productFrom)
	p, err := r.scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetManyByIDs returns the products that still exist among ids; missing ids
// are simply absent from the result, which is what the cart join wants.
func (r *postgresRepo) GetManyByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := fmt.Sprintf("SELECT %s %s WHERE p.id = ANY($1)", productColumns, productFrom)
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *postgresRepo) Create(ctx context.Context, in UpsertProductInput) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price, stock, category_id, active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.Name, in.Description, in.Price.StringFixed(2), in.Stock, in.CategoryID, in.Active,
	).Scan(&id)
	if err != nil {
		r.logger.Printf("product repo: create name=%q error=%v", in.Name, err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpsertProductInput) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $1, description = $2, price = $3, stock = $4, category_id = $5, active = $6, updated_at = now()
WHERE id = $7
`
	cmd, err := r.pool.Exec(ctx, q,
		in.Name, in.Description, in.Price.StringFixed(2), in.Stock, in.CategoryID, in.Active, id,
	)
	if err != nil {
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetImagePath(ctx context.Context, id, path string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET image_path = $1, updated_at = now() WHERE id = $2`, path, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStock writes an absolute stock level, already clamped by the caller.
func (r *postgresRepo) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET stock = $1, updated_at = now() WHERE id = $2`, stock, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE active`).Scan(&n)
	return n, err
}

func (r *postgresRepo) CountStock(ctx context.Context, lowThreshold int) (StockCounts, error) {
	var counts StockCounts
	const q = `
SELECT
    count(*) FILTER (WHERE stock <= 0),
    count(*) FILTER (WHERE stock > 0 AND stock <= $1 AND active)
FROM products
`
	err := r.pool.QueryRow(ctx, q, lowThreshold).Scan(&counts.Zero, &counts.Low)
	return counts, err
}

func (r *postgresRepo) collect(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price string
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.Stock,
		&p.CategoryID,
		&p.CategoryName,
		&p.ImagePath,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = parsed
	return &p, nil
}
