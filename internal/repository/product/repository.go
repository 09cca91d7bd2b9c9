package product

import (
	"context"

	"glalex-shop/internal/domain"
	"github.com/shopspring/decimal"
)

type UpsertProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	Active      bool
}

// StockCounts summarizes inventory health for the admin dashboard.
type StockCounts struct {
	Zero int
	Low  int
}

type Repository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	Create(ctx context.Context, in UpsertProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpsertProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetImagePath(ctx context.Context, id, path string) error
	SetStock(ctx context.Context, id string, stock int) (*domain.Product, error)
	CountActive(ctx context.Context) (int, error)
	CountStock(ctx context.Context, lowThreshold int) (StockCounts, error)
}
