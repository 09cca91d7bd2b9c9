package catalog

import (
	"context"
	"io"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
	categoryrepo "glalex-shop/internal/repository/category"
	productrepo "glalex-shop/internal/repository/product"
)

// lowStockThreshold marks products worth restocking on the dashboard.
const lowStockThreshold = 5

// ImageStore abstracts the product image asset storage.
type ImageStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Delete(path string) error
}

// Service covers the browsable catalog plus the admin-side product and
// category management.
type Service struct {
	products   productrepo.Repository
	categories categoryrepo.Repository
	images     ImageStore
	logger     *log.Logger
}

func New(products productrepo.Repository, categories categoryrepo.Repository, images ImageStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{products: products, categories: categories, images: images, logger: logger}
}

// ListProducts applies the public browsing filter. Unknown sort keys fall
// back to newest first.
func (s *Service) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.Sort == "" {
		f.Sort = domain.SortNewest
	}
	return s.products.List(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name required")
	}
	return s.categories.Create(ctx, name, strings.TrimSpace(in.Description))
}

func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "name required")
	}
	return s.categories.Update(ctx, id, name, strings.TrimSpace(in.Description))
}

// DeleteCategory removes the category and, through the schema, every
// product in it.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	CategoryID  string `json:"categoryId"`
	Active      bool   `json:"active"`
}

func (s *Service) validateProduct(ctx context.Context, in ProductInput) (productrepo.UpsertProductInput, error) {
	var out productrepo.UpsertProductInput
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return out, domain.NewValidationError("name", "name required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return out, domain.NewValidationError("price", "invalid price")
	}
	if price.IsNegative() {
		return out, domain.NewValidationError("price", "price must not be negative")
	}
	if in.Stock < 0 {
		return out, domain.NewValidationError("stock", "stock must not be negative")
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		return out, domain.NewValidationError("categoryId", "unknown category")
	}
	out = productrepo.UpsertProductInput{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		Active:      in.Active,
	}
	return out, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	upsert, err := s.validateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	p, err := s.products.Create(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("product created: %s", p.Name)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	upsert, err := s.validateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.products.Update(ctx, id, upsert)
}

// DeleteProduct removes the product and its stored image asset.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if p.ImagePath != "" {
		if err := s.images.Delete(p.ImagePath); err != nil {
			s.logger.Printf("orphan image %s: %v", p.ImagePath, err)
		}
	}
	return nil
}

// SetImage stores the upload and swaps it onto the product, removing the
// previous asset.
func (s *Service) SetImage(ctx context.Context, id string, upload io.Reader, originalName string) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	path, err := s.images.Save(upload, originalName)
	if err != nil {
		return nil, err
	}
	if err := s.products.SetImagePath(ctx, id, path); err != nil {
		_ = s.images.Delete(path)
		return nil, err
	}
	if p.ImagePath != "" && p.ImagePath != path {
		if err := s.images.Delete(p.ImagePath); err != nil {
			s.logger.Printf("orphan image %s: %v", p.ImagePath, err)
		}
	}
	p.ImagePath = path
	return p, nil
}

// ClearImage detaches and deletes the product's image asset.
func (s *Service) ClearImage(ctx context.Context, id string) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.ImagePath == "" {
		return nil
	}
	if err := s.products.SetImagePath(ctx, id, ""); err != nil {
		return err
	}
	return s.images.Delete(p.ImagePath)
}

// SetStock replaces the stock level; negatives clamp to zero.
func (s *Service) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	if stock < 0 {
		stock = 0
	}
	return s.products.SetStock(ctx, id, stock)
}

// AdjustStock shifts the stock level by delta, clamping at zero.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := p.Stock + delta
	if next < 0 {
		next = 0
	}
	return s.products.SetStock(ctx, id, next)
}

// InventoryCounts backs the admin dashboard.
type InventoryCounts struct {
	ActiveProducts int `json:"activeProducts"`
	OutOfStock     int `json:"outOfStock"`
	LowStock       int `json:"lowStock"`
}

func (s *Service) Inventory(ctx context.Context) (*InventoryCounts, error) {
	active, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	stock, err := s.products.CountStock(ctx, lowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &InventoryCounts{ActiveProducts: active, OutOfStock: stock.Zero, LowStock: stock.Low}, nil
}
