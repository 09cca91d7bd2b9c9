package httpserver

import (
	"context"
	"io"

	"glalex-shop/internal/domain"
	orderrepo "glalex-shop/internal/repository/order"
	"glalex-shop/internal/service/account"
	"glalex-shop/internal/service/cart"
	"glalex-shop/internal/service/catalog"
	"glalex-shop/internal/service/messaging"
	"glalex-shop/internal/service/order"
	"glalex-shop/internal/service/report"
)

type AccountService interface {
	Register(ctx context.Context, in account.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	GetProfile(ctx context.Context, userID string) (*domain.CustomerProfile, error)
	UpdateProfile(ctx context.Context, userID string, in account.ProfileInput) (*domain.CustomerProfile, error)

	CreateCourier(ctx context.Context, in account.CourierInput) (*domain.CourierProfile, error)
	UpdateCourier(ctx context.Context, id string, in account.CourierInput) (*domain.CourierProfile, error)
	SetCourierActive(ctx context.Context, id string, active bool) error
	ListCouriers(ctx context.Context, usernameQuery string, activeOnly bool) ([]domain.CourierProfile, error)
	GetCourier(ctx context.Context, id string) (*domain.CourierProfile, error)
	ListClients(ctx context.Context) ([]domain.CustomerProfile, error)
	SetUserActive(ctx context.Context, userID string, active bool) error
	DeleteUser(ctx context.Context, userID string) error
}

type RoleService interface {
	Resolve(ctx context.Context, u domain.User) (domain.Role, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, in catalog.CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, in catalog.CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateProduct(ctx context.Context, in catalog.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in catalog.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	SetImage(ctx context.Context, id string, upload io.Reader, originalName string) (*domain.Product, error)
	ClearImage(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) (*domain.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
	Inventory(ctx context.Context) (*catalog.InventoryCounts, error)
}

type CartService interface {
	Get(ctx context.Context, role domain.Role, sessionID string) (*cart.View, error)
	AddItem(ctx context.Context, role domain.Role, sessionID, productID string, quantity int) error
	SetItem(ctx context.Context, role domain.Role, sessionID, productID string, quantity int) error
	RemoveItem(ctx context.Context, role domain.Role, sessionID, productID string) error
	Clear(ctx context.Context, sessionID string) error
}

type OrderService interface {
	Checkout(ctx context.Context, role domain.Role, sessionID string, in order.CheckoutInput) (*domain.Order, error)
	ListMine(ctx context.Context, role domain.Role) ([]domain.Order, error)
	Get(ctx context.Context, role domain.Role, number string) (*domain.Order, error)
	Invoice(ctx context.Context, role domain.Role, number string) (*domain.Order, error)
	ExportInvoice(ctx context.Context, role domain.Role, number string) (*domain.Order, error)
	ListForCourier(ctx context.Context, role domain.Role, scope domain.OrderScope) ([]domain.Order, error)
	Claim(ctx context.Context, role domain.Role, orderID string) (*domain.Order, error)
	MarkDelivered(ctx context.Context, role domain.Role, orderID string, in order.DeliverInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, role domain.Role, orderID string, status domain.OrderStatus) (*domain.Order, error)
	AssignCourier(ctx context.Context, role domain.Role, orderID, courierID string) error
	ListAll(ctx context.Context, role domain.Role, f orderrepo.ListFilter) ([]domain.Order, error)
	Stats(ctx context.Context, role domain.Role) (*orderrepo.Stats, error)
}

type MessagingService interface {
	Send(ctx context.Context, role domain.Role, recipientID, body string) (*domain.Message, error)
	SendSuggestion(ctx context.Context, role domain.Role, body string) (int, error)
	Thread(ctx context.Context, role domain.Role, otherID string) ([]domain.Message, error)
	Unread(ctx context.Context, role domain.Role) (*domain.UnreadCounts, error)
	Inbox(ctx context.Context, role domain.Role) (*messaging.Inbox, error)
}

type ReportService interface {
	Sales(ctx context.Context, role domain.Role, period report.Period, query string) (*report.Sales, error)
}

// MediaStore serves stored product images.
type MediaStore interface {
	Open(path string) (io.ReadCloser, error)
}

// InvoiceRenderer writes an invoice document for download.
type InvoiceRenderer interface {
	ContentType() string
	Render(w io.Writer, o *domain.Order) error
}

// Deps bundles everything the router needs.
type Deps struct {
	AccountSvc   AccountService
	RoleSvc      RoleService
	CatalogSvc   CatalogService
	CartSvc      CartService
	OrderSvc     OrderService
	MessagingSvc MessagingService
	ReportSvc    ReportService
	Media        MediaStore
	Invoices     InvoiceRenderer
}
