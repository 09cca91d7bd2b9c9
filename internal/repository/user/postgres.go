package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"glalex-shop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const userColumns = `id::text, username, email, password_hash, is_staff, is_superuser, is_active, last_login, created_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	const q = `
INSERT INTO users (username, email, password_hash, is_staff, is_superuser)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns + `
`
	return r.scanUser(r.pool.QueryRow(ctx, q,
		strings.TrimSpace(in.Username),
		strings.ToLower(strings.TrimSpace(in.Email)),
		in.PasswordHash,
		in.IsStaff,
		in.IsSuperuser,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, q, username))
}

// ListAdmins returns every staff or superuser account, superusers first.
// These are the recipients of suggestion fan-out and the candidate senders
// for system messages.
func (r *postgresRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE is_staff OR is_superuser
ORDER BY is_superuser DESC, is_staff DESC, username ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		u, err := r.scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	return result, rows.Err()
}

func (r *postgresRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.execOne(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
}

func (r *postgresRepo) TouchLastLogin(ctx context.Context, id string) error {
	return r.execOne(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *postgresRepo) execOne(ctx context.Context, q string, args ...interface{}) error {
	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		r.logger.Printf("user repo: exec error=%v", err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepo) scanUserRows(rows pgx.Rows) (*domain.User, error) {
	var u domain.User
	if err := rows.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
