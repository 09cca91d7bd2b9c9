package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *CartStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCartStore(client, time.Hour)
}

func TestCartStoreSetAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := NewSessionID()

	if err := s.SetLine(ctx, sid, "prod-1", 2); err != nil {
		t.Fatalf("set line: %v", err)
	}
	if err := s.SetLine(ctx, sid, "prod-2", 5); err != nil {
		t.Fatalf("set line: %v", err)
	}
	if err := s.SetLine(ctx, sid, "prod-1", 3); err != nil {
		t.Fatalf("overwrite line: %v", err)
	}

	cart, err := s.Get(ctx, sid)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart))
	}
	if cart["prod-1"] != 3 || cart["prod-2"] != 5 {
		t.Fatalf("unexpected cart contents: %v", cart)
	}
	if cart.Count() != 8 {
		t.Fatalf("expected count 8, got %d", cart.Count())
	}
}

func TestCartStoreEmptySession(t *testing.T) {
	s := newTestStore(t)

	cart, err := s.Get(context.Background(), NewSessionID())
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected empty cart, got %v", cart)
	}
}

func TestCartStoreRemoveAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sid := NewSessionID()

	if err := s.SetLine(ctx, sid, "prod-1", 1); err != nil {
		t.Fatalf("set line: %v", err)
	}
	if err := s.SetLine(ctx, sid, "prod-2", 1); err != nil {
		t.Fatalf("set line: %v", err)
	}

	if err := s.RemoveLine(ctx, sid, "prod-1"); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	cart, err := s.Get(ctx, sid)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if _, ok := cart["prod-1"]; ok {
		t.Fatalf("expected prod-1 removed, got %v", cart)
	}

	if err := s.Clear(ctx, sid); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	cart, err = s.Get(ctx, sid)
	if err != nil {
		t.Fatalf("get cart after clear: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected cleared cart, got %v", cart)
	}
}

func TestCartStoreSessionsIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, b := NewSessionID(), NewSessionID()

	if err := s.SetLine(ctx, a, "prod-1", 4); err != nil {
		t.Fatalf("set line: %v", err)
	}
	cart, err := s.Get(ctx, b)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("expected other session empty, got %v", cart)
	}
}
