package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
)

type stubOrders struct {
	orders   []domain.Order
	lastFrom time.Time
	lastTo   time.Time
	lastQ    string
}

func (s *stubOrders) PaidBetween(_ context.Context, from, to time.Time, q string) ([]domain.Order, error) {
	s.lastFrom, s.lastTo, s.lastQ = from, to, q
	return s.orders, nil
}

func price(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func adminRole() domain.Role {
	return domain.NewRole(domain.User{ID: "a1", IsSuperuser: true}, nil, nil)
}

func TestSalesRequiresAdmin(t *testing.T) {
	svc := New(&stubOrders{})
	customer := domain.NewRole(domain.User{ID: "u1"}, nil, nil)

	_, err := svc.Sales(context.Background(), customer, PeriodDay, "")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSalesAggregates(t *testing.T) {
	orders := &stubOrders{orders: []domain.Order{
		{Number: "GLA1", Total: price("25.00"), Lines: []domain.OrderLine{{Quantity: 2}, {Quantity: 1}}},
		{Number: "GLA2", Total: price("10.50"), Lines: []domain.OrderLine{{Quantity: 4}}},
	}}
	svc := New(orders)

	r, err := svc.Sales(context.Background(), adminRole(), PeriodDay, "gla")
	if err != nil {
		t.Fatalf("sales: %v", err)
	}
	if r.Count != 2 || r.Items != 7 {
		t.Fatalf("unexpected aggregates: count=%d items=%d", r.Count, r.Items)
	}
	if !r.Revenue.Equal(price("35.50")) {
		t.Fatalf("expected revenue 35.50, got %s", r.Revenue)
	}
	if orders.lastQ != "gla" {
		t.Fatalf("query not passed through: %q", orders.lastQ)
	}
}

func TestSalesUnknownPeriod(t *testing.T) {
	svc := New(&stubOrders{})

	_, err := svc.Sales(context.Background(), adminRole(), Period("quarter"), "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBounds(t *testing.T) {
	ref := time.Date(2025, time.March, 15, 13, 45, 0, 0, time.UTC)

	from, to, err := bounds(PeriodDay, ref)
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if from.Day() != 15 || !to.Equal(from.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected day window: %s - %s", from, to)
	}

	from, to, err = bounds(PeriodWeek, ref)
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if to.Sub(from) != 7*24*time.Hour {
		t.Fatalf("expected 7 day window, got %s", to.Sub(from))
	}
	if !ref.Before(to) || ref.Before(from) {
		t.Fatalf("reference must fall inside window")
	}

	from, to, err = bounds(PeriodMonth, ref)
	if err != nil {
		t.Fatalf("month: %v", err)
	}
	if from.Day() != 1 || from.Month() != time.March || to.Month() != time.April {
		t.Fatalf("unexpected month window: %s - %s", from, to)
	}

	from, to, err = bounds(PeriodYear, ref)
	if err != nil {
		t.Fatalf("year: %v", err)
	}
	if from.Month() != time.January || from.Day() != 1 || to.Year() != 2026 {
		t.Fatalf("unexpected year window: %s - %s", from, to)
	}
}
