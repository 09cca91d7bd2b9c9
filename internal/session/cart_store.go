package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"glalex-shop/internal/domain"
)

// CartStore keeps per-session carts in Redis, one hash per session with
// product id fields and quantity values. Carts expire after the TTL; every
// write pushes the expiry forward.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

// NewSessionID issues an opaque id for a fresh browser session.
func NewSessionID() string {
	return uuid.NewString()
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	fields, err := s.client.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	cart := make(domain.Cart, len(fields))
	for productID, raw := range fields {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 1 {
			continue
		}
		cart[productID] = qty
	}
	return cart, nil
}

func (s *CartStore) SetLine(ctx context.Context, sessionID, productID string, quantity int) error {
	key := cartKey(sessionID)
	if err := s.client.HSet(ctx, key, productID, quantity).Err(); err != nil {
		return fmt.Errorf("write cart line: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh cart expiry: %w", err)
	}
	return nil
}

func (s *CartStore) RemoveLine(ctx context.Context, sessionID, productID string) error {
	if err := s.client.HDel(ctx, cartKey(sessionID), productID).Err(); err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
