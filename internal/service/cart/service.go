package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
)

// Quantities per line never exceed maxQuantity; larger requests are
// clamped, not rejected.
const maxQuantity = 100

// Store is the session-scoped cart persistence.
type Store interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	SetLine(ctx context.Context, sessionID, productID string, quantity int) error
	RemoveLine(ctx context.Context, sessionID, productID string) error
	Clear(ctx context.Context, sessionID string) error
}

type productRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

// Service manages the session cart. Admins and couriers have no cart; the
// shop front is customer territory.
type Service struct {
	store    Store
	products productRepository
}

func New(store Store, products productRepository) *Service {
	return &Service{store: store, products: products}
}

// View is the priced cart projection. Lines whose product has disappeared
// are dropped silently rather than failing the page.
type View struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

func (s *Service) checkRole(role domain.Role) error {
	if role.IsAdminLike() || role.IsCourier() {
		return domain.ErrForbidden
	}
	return nil
}

// AddItem merges the quantity into the existing line, like dropping the
// same product into the basket a second time.
func (s *Service) AddItem(ctx context.Context, role domain.Role, sessionID, productID string, quantity int) error {
	if err := s.checkRole(role); err != nil {
		return err
	}
	if err := s.checkProduct(ctx, productID); err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	quantity += cart[productID]
	if quantity > maxQuantity {
		quantity = maxQuantity
	}
	return s.store.SetLine(ctx, sessionID, productID, quantity)
}

// SetItem overwrites the line quantity. Zero or less removes the line.
func (s *Service) SetItem(ctx context.Context, role domain.Role, sessionID, productID string, quantity int) error {
	if err := s.checkRole(role); err != nil {
		return err
	}
	if quantity <= 0 {
		return s.store.RemoveLine(ctx, sessionID, productID)
	}
	if err := s.checkProduct(ctx, productID); err != nil {
		return err
	}
	if quantity > maxQuantity {
		quantity = maxQuantity
	}
	return s.store.SetLine(ctx, sessionID, productID, quantity)
}

func (s *Service) checkProduct(ctx context.Context, productID string) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Active {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, role domain.Role, sessionID, productID string) error {
	if err := s.checkRole(role); err != nil {
		return err
	}
	return s.store.RemoveLine(ctx, sessionID, productID)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

func (s *Service) Get(ctx context.Context, role domain.Role, sessionID string) (*View, error) {
	if err := s.checkRole(role); err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID)
}

func (s *Service) view(ctx context.Context, sessionID string) (*View, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	products, err := s.products.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	v := &View{Items: make([]domain.CartItem, 0, len(products)), Total: decimal.Zero}
	for _, p := range products {
		qty := cart[p.ID]
		if qty < 1 {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		v.Items = append(v.Items, domain.CartItem{Product: p, Quantity: qty, Subtotal: sub})
		v.Count += qty
		v.Total = v.Total.Add(sub)
	}
	return v, nil
}
