package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
)

type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgresRepository(pool *pgxpool.Pool, logger *log.Logger) *PostgresRepository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &PostgresRepository{pool: pool, logger: logger}
}

const orderColumns = `
	o.id, o.number, o.customer_id, u.username, o.courier_id, o.status,
	o.payment_method, o.payment_status, o.total::text, o.delivery_address,
	o.full_name, o.phone, o.city, o.transaction_ref, o.courier_note,
	o.ordered_at, o.delivered_at
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		totalStr string
	)
	err := row.Scan(
		&o.ID, &o.Number, &o.CustomerID, &o.CustomerName, &o.CourierID, &o.Status,
		&o.PaymentMethod, &o.PaymentStatus, &totalStr, &o.DeliveryAddress,
		&o.FullName, &o.Phone, &o.City, &o.TransactionRef, &o.CourierNote,
		&o.OrderedAt, &o.DeliveredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Total, err = decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("parse order total: %w", err)
	}
	return &o, nil
}

func (r *PostgresRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
		INSERT INTO orders (
			number, customer_id, status, payment_method, payment_status,
			total, delivery_address, full_name, phone, city
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, ordered_at
	`
	err = tx.QueryRow(ctx, insertOrder,
		o.Number, o.CustomerID, o.Status, o.PaymentMethod, o.PaymentStatus,
		o.Total.StringFixed(2), o.DeliveryAddress, o.FullName, o.Phone, o.City,
	).Scan(&o.ID, &o.OrderedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	const insertLine = `
		INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID
		err := tx.QueryRow(ctx, insertLine,
			o.ID, line.ProductID, line.Quantity, line.UnitPrice.StringFixed(2),
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkout: %w", err)
	}
	r.logger.Printf("order created: %s (%d lines)", o.Number, len(o.Lines))
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, "o.id = $1", id)
}

func (r *PostgresRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.getOne(ctx, "o.number = $1", number)
}

func (r *PostgresRepository) getOne(ctx context.Context, cond string, arg any) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.customer_id
		WHERE ` + cond
	o, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, o *domain.Order) error {
	const query = `
		SELECT l.id, l.order_id, l.product_id, p.name, l.quantity, l.unit_price::text
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY p.name
	`
	rows, err := r.pool.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line     domain.OrderLine
			priceStr string
		)
		err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.ProductName, &line.Quantity, &priceStr)
		if err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		line.UnitPrice, err = decimal.NewFromString(priceStr)
		if err != nil {
			return fmt.Errorf("parse line price: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}
	return rows.Err()
}

func (r *PostgresRepository) list(ctx context.Context, cond string, args ...any) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.customer_id
	`
	if cond != "" {
		query += " WHERE " + cond
	}
	query += " ORDER BY o.ordered_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, "o.customer_id = $1", customerID)
}

func (r *PostgresRepository) ListForCourier(ctx context.Context, courierID string, scope domain.OrderScope) ([]domain.Order, error) {
	switch scope {
	case domain.ScopeAvailable:
		return r.list(ctx, "o.courier_id IS NULL AND o.status = $1", domain.OrderPending)
	case domain.ScopeMine:
		return r.list(ctx, "o.courier_id = $1", courierID)
	default:
		return r.list(ctx, "o.courier_id IS NULL AND o.status = $1 OR o.courier_id = $2",
			domain.OrderPending, courierID)
	}
}

func (r *PostgresRepository) ListAll(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	var (
		cond string
		args []any
	)
	add := func(c string) {
		if cond != "" {
			cond += " AND "
		}
		cond += c
	}
	if f.Status != "" {
		args = append(args, f.Status)
		add(fmt.Sprintf("o.status = $%d", len(args)))
	}
	if f.CourierID != "" {
		args = append(args, f.CourierID)
		add(fmt.Sprintf("o.courier_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		add(fmt.Sprintf("(o.number ILIKE $%d OR o.full_name ILIKE $%d)", len(args), len(args)))
	}
	return r.list(ctx, cond, args...)
}

// Claim locks the order row, then assigns it to the courier and moves it
// to confirmed. With concurrent claimers the row lock serializes them and
// every claimer after the first sees a non-null courier_id.
func (r *PostgresRepository) Claim(ctx context.Context, orderID, courierID string) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback(ctx)

	const lock = `
		SELECT courier_id, status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`
	var (
		current *string
		status  domain.OrderStatus
	)
	if err := tx.QueryRow(ctx, lock, orderID).Scan(&current, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	if current != nil {
		if *current == courierID {
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("commit claim: %w", err)
			}
			return r.GetByID(ctx, orderID)
		}
		return nil, domain.ErrOrderTaken
	}
	if status != domain.OrderPending {
		return nil, domain.ErrOrderTaken
	}

	const assign = `
		UPDATE orders
		SET courier_id = $2, status = $3
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, assign, orderID, courierID, domain.OrderConfirmed); err != nil {
		return nil, fmt.Errorf("assign order: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}
	r.logger.Printf("order %s claimed by courier %s", orderID, courierID)
	return r.GetByID(ctx, orderID)
}

func (r *PostgresRepository) MarkDelivered(ctx context.Context, in MarkDeliveredInput) (*domain.Order, error) {
	const query = `
		UPDATE orders
		SET status = $3,
		    payment_method = $4,
		    payment_status = $5,
		    transaction_ref = $6,
		    courier_note = $7,
		    delivered_at = now()
		WHERE id = $1 AND courier_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		in.OrderID, in.CourierID,
		domain.OrderDelivered, in.PaymentMethod, domain.PaymentPaid,
		in.TransactionRef, in.CourierNote,
	)
	if err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, in.OrderID)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AssignCourier(ctx context.Context, orderID, courierID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET courier_id = $2 WHERE id = $1`, orderID, courierID)
	if err != nil {
		return fmt.Errorf("assign courier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) HasLink(ctx context.Context, customerID, courierID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE customer_id = $1 AND courier_id = $2
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, customerID, courierID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order link: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) PaidBetween(ctx context.Context, from, to time.Time, query string) ([]domain.Order, error) {
	var (
		cond = "o.payment_status = $1 AND o.ordered_at >= $2 AND o.ordered_at < $3"
		args = []any{domain.PaymentPaid, from, to}
	)
	if query != "" {
		args = append(args, "%"+query+"%")
		cond += fmt.Sprintf(" AND (o.number ILIKE $%d OR o.full_name ILIKE $%d OR u.username ILIKE $%d)",
			len(args), len(args), len(args))
	}
	orders, err := r.list(ctx, cond, args...)
	if err != nil {
		return nil, err
	}
	// Reports count sold items, so each matched order carries its lines.
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	const query = `
		SELECT
			count(*),
			count(*) FILTER (WHERE ordered_at >= date_trunc('day', now())),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE status = 'delivered'),
			count(*) FILTER (WHERE courier_id IS NULL AND status = 'pending'),
			COALESCE(sum(total) FILTER (WHERE payment_status = 'paid'), 0)::text
		FROM orders
	`
	var (
		s          Stats
		revenueStr string
	)
	err := r.pool.QueryRow(ctx, query).Scan(&s.Total, &s.Today, &s.Pending, &s.Delivered, &s.Unassigned, &revenueStr)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	s.PaidRevenue, err = decimal.NewFromString(revenueStr)
	if err != nil {
		return nil, fmt.Errorf("parse revenue: %w", err)
	}
	return &s, nil
}
