package profile

import (
	"context"
	"time"

	"glalex-shop/internal/domain"
)

// CreateCourierInput carries the user account and profile fields created
// together when an admin onboards a courier.
type CreateCourierInput struct {
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	Vehicle      string
	LicenseNo    string
	DeliveryZone string
	Active       bool
}

// UpdateCourierInput mutates a courier profile and its user account as one
// transaction; nil/empty fields keep their current value where noted.
type UpdateCourierInput struct {
	Username     string // empty keeps current
	PasswordHash string // empty keeps current
	Phone        string
	Vehicle      string
	LicenseNo    string
	DeliveryZone string
	Active       bool
}

// CreateCustomerInput carries the user account and profile fields created
// together at registration.
type CreateCustomerInput struct {
	Username     string
	Email        string
	PasswordHash string
	Phone        string
	Address      string
	City         string
	BirthDate    *time.Time
}

type UpsertCustomerInput struct {
	UserID     string
	Phone      string
	Address    string
	City       string
	PostalCode string
	BirthDate  *time.Time
}

type Repository interface {
	GetAdminByUserID(ctx context.Context, userID string) (*domain.AdminProfile, error)

	GetCourierByID(ctx context.Context, id string) (*domain.CourierProfile, error)
	GetCourierByUserID(ctx context.Context, userID string) (*domain.CourierProfile, error)
	ListCouriers(ctx context.Context, usernameQuery string, activeOnly bool) ([]domain.CourierProfile, error)
	CreateCourier(ctx context.Context, in CreateCourierInput) (*domain.CourierProfile, error)
	UpdateCourier(ctx context.Context, id string, in UpdateCourierInput) (*domain.CourierProfile, error)
	SetCourierActive(ctx context.Context, id string, active bool) error

	GetCustomerByUserID(ctx context.Context, userID string) (*domain.CustomerProfile, error)
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*domain.User, error)
	UpsertCustomer(ctx context.Context, in UpsertCustomerInput) (*domain.CustomerProfile, error)
	ListCustomers(ctx context.Context) ([]domain.CustomerProfile, error)
}
