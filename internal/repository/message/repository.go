package message

import (
	"context"

	"glalex-shop/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, senderID, recipientID, body string) (*domain.Message, error)
	// Thread returns both directions of the pair, oldest first.
	Thread(ctx context.Context, userA, userB string) ([]domain.Message, error)
	// MarkReadFrom marks every unread message the sender addressed to the
	// recipient; messages from other correspondents stay untouched.
	MarkReadFrom(ctx context.Context, recipientID, senderID string) error
	UnreadCounts(ctx context.Context, recipientID string) (*domain.UnreadCounts, error)
	// Senders lists the distinct users who have written to the recipient,
	// most recent correspondent first.
	Senders(ctx context.Context, recipientID string) ([]domain.InboxSender, error)
}
