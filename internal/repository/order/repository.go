package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
)

// ListFilter narrows the admin order listing.
type ListFilter struct {
	Status    domain.OrderStatus // empty matches every status
	CourierID string
	Query     string // matches order number or customer full name
}

// MarkDeliveredInput closes out an order on handover.
type MarkDeliveredInput struct {
	OrderID        string
	CourierID      string
	PaymentMethod  domain.PaymentMethod
	TransactionRef string
	CourierNote    string
}

// Stats backs the admin dashboard counters.
type Stats struct {
	Total       int
	Today       int
	Pending     int
	Delivered   int
	Unassigned  int
	PaidRevenue decimal.Decimal
}

type Repository interface {
	// Create persists the order and its lines in one transaction.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)

	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListForCourier(ctx context.Context, courierID string, scope domain.OrderScope) ([]domain.Order, error)
	ListAll(ctx context.Context, f ListFilter) ([]domain.Order, error)

	// Claim assigns the order to the courier. It locks the row so that
	// of several concurrent claims exactly one succeeds; the rest get
	// domain.ErrOrderTaken.
	Claim(ctx context.Context, orderID, courierID string) (*domain.Order, error)
	MarkDelivered(ctx context.Context, in MarkDeliveredInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	AssignCourier(ctx context.Context, orderID, courierID string) error

	// HasLink reports whether the courier ever carried an order for the
	// customer, in any status.
	HasLink(ctx context.Context, customerID, courierID string) (bool, error)

	PaidBetween(ctx context.Context, from, to time.Time, query string) ([]domain.Order, error)
	Stats(ctx context.Context) (*Stats, error)
}
