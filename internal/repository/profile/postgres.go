package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

func (r *PostgresRepository) GetAdminByUserID(ctx context.Context, userID string) (*domain.AdminProfile, error) {
	const query = `
		SELECT id, user_id, active
		FROM admin_profiles
		WHERE user_id = $1
	`
	var p domain.AdminProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.ID, &p.UserID, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isMissingTable(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get admin profile: %w", err)
	}
	return &p, nil
}

// isMissingTable reports undefined_table, which a partially migrated
// database raises on profile lookups. Role resolution treats that the same
// as no profile row.
func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

const courierColumns = `
	cp.id, cp.user_id, u.username, cp.phone, cp.vehicle,
	cp.license_no, cp.delivery_zone, cp.active, cp.hired_at
`

func scanCourier(row pgx.Row) (*domain.CourierProfile, error) {
	var p domain.CourierProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.Username, &p.Phone, &p.Vehicle,
		&p.LicenseNo, &p.DeliveryZone, &p.Active, &p.HiredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) GetCourierByID(ctx context.Context, id string) (*domain.CourierProfile, error) {
	query := `
		SELECT ` + courierColumns + `
		FROM courier_profiles cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.id = $1
	`
	p, err := scanCourier(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get courier profile: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetCourierByUserID(ctx context.Context, userID string) (*domain.CourierProfile, error) {
	query := `
		SELECT ` + courierColumns + `
		FROM courier_profiles cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.user_id = $1
	`
	p, err := scanCourier(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if isMissingTable(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get courier profile by user: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListCouriers(ctx context.Context, usernameQuery string, activeOnly bool) ([]domain.CourierProfile, error) {
	query := `
		SELECT ` + courierColumns + `
		FROM courier_profiles cp
		JOIN users u ON u.id = cp.user_id
	`
	var (
		conds []string
		args  []any
	)
	if usernameQuery != "" {
		args = append(args, "%"+usernameQuery+"%")
		conds = append(conds, fmt.Sprintf("u.username ILIKE $%d", len(args)))
	}
	if activeOnly {
		conds = append(conds, "cp.active")
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY u.username"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list couriers: %w", err)
	}
	defer rows.Close()

	var out []domain.CourierProfile
	for rows.Next() {
		p, err := scanCourier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan courier: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreateCourier inserts the user account and the courier profile in one
// transaction so a failed profile insert never leaves an orphan user.
func (r *PostgresRepository) CreateCourier(ctx context.Context, in CreateCourierInput) (*domain.CourierProfile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create courier: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (username, email, password_hash, is_staff, is_superuser, is_active)
		VALUES ($1, $2, $3, FALSE, FALSE, TRUE)
		RETURNING id
	`
	var userID string
	if err := tx.QueryRow(ctx, insertUser, in.Username, in.Email, in.PasswordHash).Scan(&userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert courier user: %w", err)
	}

	const insertProfile = `
		INSERT INTO courier_profiles (user_id, phone, vehicle, license_no, delivery_zone, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, hired_at
	`
	p := domain.CourierProfile{
		UserID:       userID,
		Username:     in.Username,
		Phone:        in.Phone,
		Vehicle:      in.Vehicle,
		LicenseNo:    in.LicenseNo,
		DeliveryZone: in.DeliveryZone,
		Active:       in.Active,
	}
	err = tx.QueryRow(ctx, insertProfile,
		userID, in.Phone, in.Vehicle, in.LicenseNo, in.DeliveryZone, in.Active,
	).Scan(&p.ID, &p.HiredAt)
	if err != nil {
		return nil, fmt.Errorf("insert courier profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create courier: %w", err)
	}
	r.logger.Printf("courier created: %s (%s)", in.Username, p.ID)
	return &p, nil
}

func (r *PostgresRepository) UpdateCourier(ctx context.Context, id string, in UpdateCourierInput) (*domain.CourierProfile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update courier: %w", err)
	}
	defer tx.Rollback(ctx)

	const updateProfile = `
		UPDATE courier_profiles
		SET phone = $2, vehicle = $3, license_no = $4, delivery_zone = $5, active = $6
		WHERE id = $1
		RETURNING user_id
	`
	var userID string
	err = tx.QueryRow(ctx, updateProfile,
		id, in.Phone, in.Vehicle, in.LicenseNo, in.DeliveryZone, in.Active,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update courier profile: %w", err)
	}

	if in.Username != "" {
		if _, err := tx.Exec(ctx, `UPDATE users SET username = $2 WHERE id = $1`, userID, in.Username); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return nil, domain.ErrAlreadyExists
			}
			return nil, fmt.Errorf("update courier username: %w", err)
		}
	}
	if in.PasswordHash != "" {
		if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, in.PasswordHash); err != nil {
			return nil, fmt.Errorf("update courier password: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update courier: %w", err)
	}
	return r.GetCourierByID(ctx, id)
}

func (r *PostgresRepository) SetCourierActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE courier_profiles SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set courier active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetCustomerByUserID(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	const query = `
		SELECT id, user_id, phone, address, city, postal_code, birth_date
		FROM customer_profiles
		WHERE user_id = $1
	`
	var p domain.CustomerProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.Phone, &p.Address, &p.City, &p.PostalCode, &p.BirthDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get customer profile: %w", err)
	}
	return &p, nil
}

// CreateCustomer inserts the user account and its customer profile in one
// transaction, mirroring CreateCourier: a failed profile insert never
// leaves an orphan user behind.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create customer: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertUser = `
		INSERT INTO users (username, email, password_hash, is_staff, is_superuser, is_active)
		VALUES ($1, $2, $3, FALSE, FALSE, TRUE)
		RETURNING id, created_at
	`
	u := domain.User{
		Username: in.Username,
		Email:    in.Email,
		IsActive: true,
	}
	if err := tx.QueryRow(ctx, insertUser, in.Username, in.Email, in.PasswordHash).Scan(&u.ID, &u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert customer user: %w", err)
	}

	const insertProfile = `
		INSERT INTO customer_profiles (user_id, phone, address, city, birth_date)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertProfile, u.ID, in.Phone, in.Address, in.City, in.BirthDate); err != nil {
		return nil, fmt.Errorf("insert customer profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create customer: %w", err)
	}
	r.logger.Printf("customer created: %s (%s)", in.Username, u.ID)
	return &u, nil
}

func (r *PostgresRepository) UpsertCustomer(ctx context.Context, in UpsertCustomerInput) (*domain.CustomerProfile, error) {
	const query = `
		INSERT INTO customer_profiles (user_id, phone, address, city, postal_code, birth_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET phone = EXCLUDED.phone,
		    address = EXCLUDED.address,
		    city = EXCLUDED.city,
		    postal_code = EXCLUDED.postal_code,
		    birth_date = EXCLUDED.birth_date
		RETURNING id
	`
	p := domain.CustomerProfile{
		UserID:     in.UserID,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		BirthDate:  in.BirthDate,
	}
	err := r.pool.QueryRow(ctx, query,
		in.UserID, in.Phone, in.Address, in.City, in.PostalCode, in.BirthDate,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("upsert customer profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]domain.CustomerProfile, error) {
	const query = `
		SELECT cp.id, cp.user_id, cp.phone, cp.address, cp.city, cp.postal_code, cp.birth_date
		FROM customer_profiles cp
		JOIN users u ON u.id = cp.user_id
		ORDER BY u.username
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []domain.CustomerProfile
	for rows.Next() {
		var p domain.CustomerProfile
		err := rows.Scan(&p.ID, &p.UserID, &p.Phone, &p.Address, &p.City, &p.PostalCode, &p.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
