package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Category    string
}

// Apply inserts a superuser, a demo catalog and a demo courier for manual
// testing. It is idempotent: existing rows are looked up by their natural
// keys and reused.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	adminID, err := ensureUser(ctx, pool, "admin", "admin@glalex.local", "admin123", true)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if err := ensureAdminProfile(ctx, pool, adminID); err != nil {
		return fmt.Errorf("ensure admin profile: %w", err)
	}

	courierID, err := ensureUser(ctx, pool, "courier", "courier@glalex.local", "courier123", false)
	if err != nil {
		return fmt.Errorf("ensure courier: %w", err)
	}
	if err := ensureCourierProfile(ctx, pool, courierID); err != nil {
		return fmt.Errorf("ensure courier profile: %w", err)
	}

	products := []productSeed{
		{Name: "Leather Ankle Boots", Description: "Hand stitched leather boots", Price: "129.90", Stock: 12, Category: "Shoes"},
		{Name: "Wool Scarf", Description: "Merino wool, single loop", Price: "24.50", Stock: 40, Category: "Accessories"},
		{Name: "Denim Jacket", Description: "Classic cut, stone washed", Price: "79.00", Stock: 8, Category: "Outerwear"},
		{Name: "Canvas Tote", Description: "Heavy canvas shopper", Price: "18.00", Stock: 25, Category: "Accessories"},
	}

	for _, p := range products {
		categoryID, err := ensureCategory(ctx, pool, p.Category)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", p.Category, err)
		}
		if err := ensureProduct(ctx, pool, categoryID, p); err != nil {
			return fmt.Errorf("ensure product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, username, email, password string, superuser bool) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM users WHERE username = $1`, username).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	const q = `
INSERT INTO users (username, email, password_hash, is_staff, is_superuser)
VALUES ($1, $2, $3, $4, $4)
RETURNING id::text
`
	if err := pool.QueryRow(ctx, q, username, email, string(hash), superuser).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminProfile(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	_, err := pool.Exec(ctx, `
INSERT INTO admin_profiles (user_id, active)
VALUES ($1, TRUE)
ON CONFLICT (user_id) DO UPDATE SET active = TRUE
`, userID)
	return err
}

func ensureCourierProfile(ctx context.Context, pool *pgxpool.Pool, userID string) error {
	_, err := pool.Exec(ctx, `
INSERT INTO courier_profiles (user_id, phone, vehicle, delivery_zone, active)
VALUES ($1, '+100000000', 'bicycle', 'center', TRUE)
ON CONFLICT (user_id) DO NOTHING
`, userID)
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM categories WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	if err := pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id::text`, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, p.Name).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err := pool.Exec(ctx, `
INSERT INTO products (name, description, price, stock, category_id, active)
VALUES ($1, $2, $3::numeric, $4, $5, TRUE)
`, p.Name, p.Description, p.Price, p.Stock, categoryID)
	return err
}
