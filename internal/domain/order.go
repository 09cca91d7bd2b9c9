package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// statusTransitions is the allowed forward edge set. Cancelled is reachable
// from every non-terminal state; delivered and cancelled are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered, OrderCancelled},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", errors.New("invalid order status")
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PayTMoney PaymentMethod = "tmoney"
	PayFlooz  PaymentMethod = "flooz"
	PayCash   PaymentMethod = "cash"
)

// CheckoutPaymentMethods are offered at checkout. Cash only appears at
// delivery confirmation, when the courier collects on the doorstep.
var CheckoutPaymentMethods = []PaymentMethod{PayTMoney, PayFlooz}

// DeliveryPaymentMethods are accepted by the courier confirming payment.
var DeliveryPaymentMethods = []PaymentMethod{PayTMoney, PayFlooz, PayCash}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Order struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	CustomerID      string          `json:"customerId"`
	CustomerName    string          `json:"customerName,omitempty"`
	CourierID       *string         `json:"courierId,omitempty"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod,omitempty"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"deliveryAddress"`
	FullName        string          `json:"fullName"`
	Phone           string          `json:"phone"`
	City            string          `json:"city,omitempty"`
	TransactionRef  string          `json:"transactionRef,omitempty"`
	CourierNote     string          `json:"courierNote,omitempty"`
	OrderedAt       time.Time       `json:"orderedAt"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	Lines           []OrderLine     `json:"lines,omitempty"`
}

// OrderLine freezes the unit price at order time; later product price
// changes never touch it.
type OrderLine struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"orderId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Subtotal is quantity times the frozen unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderScope selects which orders a courier dashboard shows.
type OrderScope string

const (
	ScopeAll       OrderScope = "all"
	ScopeAvailable OrderScope = "available"
	ScopeMine      OrderScope = "mine"
)
