package message

import (
	"context"
	"fmt"
	"io"
	"log"

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

func (r *PostgresRepository) Create(ctx context.Context, senderID, recipientID, body string) (*domain.Message, error) {
	const query = `
		INSERT INTO messages (sender_id, recipient_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`
	m := domain.Message{SenderID: senderID, RecipientID: recipientID, Body: body}
	err := r.pool.QueryRow(ctx, query, senderID, recipientID, body).Scan(&m.ID, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) Thread(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	const query = `
		SELECT m.id, m.sender_id, s.username, m.recipient_id, t.username,
		       m.body, m.is_read, m.created_at
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users t ON t.id = m.recipient_id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at
	`
	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		err := rows.Scan(
			&m.ID, &m.SenderID, &m.SenderName, &m.RecipientID, &m.RecipientName,
			&m.Body, &m.IsRead, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkReadFrom(ctx context.Context, recipientID, senderID string) error {
	const query = `
		UPDATE messages
		SET is_read = TRUE
		WHERE recipient_id = $1 AND sender_id = $2 AND NOT is_read
	`
	if _, err := r.pool.Exec(ctx, query, recipientID, senderID); err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

// UnreadCounts buckets unread messages by the sender's profile rows: a
// courier profile wins over an admin profile, everyone else is a customer.
func (r *PostgresRepository) UnreadCounts(ctx context.Context, recipientID string) (*domain.UnreadCounts, error) {
	const query = `
		SELECT
			count(*) FILTER (WHERE NOT is_courier AND is_admin),
			count(*) FILTER (WHERE is_courier),
			count(*) FILTER (WHERE NOT is_courier AND NOT is_admin),
			count(*)
		FROM (
			SELECT
				EXISTS (SELECT 1 FROM courier_profiles cp WHERE cp.user_id = m.sender_id) AS is_courier,
				(u.is_superuser OR EXISTS (
					SELECT 1 FROM admin_profiles ap WHERE ap.user_id = m.sender_id AND ap.active
				)) AS is_admin
			FROM messages m
			JOIN users u ON u.id = m.sender_id
			WHERE m.recipient_id = $1 AND NOT m.is_read
		) unread
	`
	var c domain.UnreadCounts
	err := r.pool.QueryRow(ctx, query, recipientID).Scan(
		&c.FromAdmins, &c.FromCouriers, &c.FromCustomers, &c.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) Senders(ctx context.Context, recipientID string) ([]domain.InboxSender, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.is_staff, u.is_superuser, u.is_active,
		       u.last_login, u.created_at,
		       EXISTS (SELECT 1 FROM courier_profiles cp WHERE cp.user_id = u.id),
		       count(*) FILTER (WHERE NOT m.is_read),
		       max(m.created_at) AS last_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.recipient_id = $1
		GROUP BY u.id
		ORDER BY last_at DESC
	`
	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list senders: %w", err)
	}
	defer rows.Close()

	var out []domain.InboxSender
	for rows.Next() {
		var (
			s      domain.InboxSender
			lastAt any
		)
		err := rows.Scan(
			&s.User.ID, &s.User.Username, &s.User.Email, &s.User.IsStaff,
			&s.User.IsSuperuser, &s.User.IsActive, &s.User.LastLogin, &s.User.CreatedAt,
			&s.IsCourier, &s.Unread, &lastAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sender: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
