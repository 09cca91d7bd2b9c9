package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"glalex-shop/internal/domain"
	orderrepo "glalex-shop/internal/repository/order"
	"glalex-shop/internal/service/account"
	cartsvc "glalex-shop/internal/service/cart"
	"glalex-shop/internal/service/catalog"
	"glalex-shop/internal/service/messaging"
	ordersvc "glalex-shop/internal/service/order"
	"glalex-shop/internal/service/report"
)

type stubAccounts struct {
	usersByToken map[string]*domain.User
	registered   *account.RegisterInput
	loginErr     error
}

func (s *stubAccounts) Register(_ context.Context, in account.RegisterInput) (*domain.User, error) {
	s.registered = &in
	return &domain.User{ID: "u-new", Username: in.Username}, nil
}

func (s *stubAccounts) Login(_ context.Context, username, _ string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return &domain.User{ID: "u1", Username: username}, "tok-1", nil
}

func (s *stubAccounts) Logout(context.Context, string) error { return nil }

func (s *stubAccounts) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	u, ok := s.usersByToken[token]
	if !ok {
		return nil, account.ErrInvalidToken
	}
	return u, nil
}

func (s *stubAccounts) ChangePassword(context.Context, string, string, string) error { return nil }

func (s *stubAccounts) GetProfile(context.Context, string) (*domain.CustomerProfile, error) {
	return nil, domain.ErrNotFound
}

func (s *stubAccounts) UpdateProfile(context.Context, string, account.ProfileInput) (*domain.CustomerProfile, error) {
	return &domain.CustomerProfile{}, nil
}

func (s *stubAccounts) CreateCourier(context.Context, account.CourierInput) (*domain.CourierProfile, error) {
	return &domain.CourierProfile{ID: "c-new"}, nil
}

func (s *stubAccounts) UpdateCourier(_ context.Context, id string, _ account.CourierInput) (*domain.CourierProfile, error) {
	return &domain.CourierProfile{ID: id}, nil
}

func (s *stubAccounts) SetCourierActive(context.Context, string, bool) error { return nil }

func (s *stubAccounts) ListCouriers(context.Context, string, bool) ([]domain.CourierProfile, error) {
	return nil, nil
}

func (s *stubAccounts) GetCourier(context.Context, string) (*domain.CourierProfile, error) {
	return nil, domain.ErrNotFound
}

func (s *stubAccounts) ListClients(context.Context) ([]domain.CustomerProfile, error) {
	return make([]domain.CustomerProfile, 3), nil
}

func (s *stubAccounts) SetUserActive(context.Context, string, bool) error { return nil }
func (s *stubAccounts) DeleteUser(context.Context, string) error          { return nil }

type stubRoles struct {
	admins   map[string]bool
	couriers map[string]*domain.CourierProfile
}

func (s *stubRoles) Resolve(_ context.Context, u domain.User) (domain.Role, error) {
	var admin *domain.AdminProfile
	if s.admins[u.ID] {
		admin = &domain.AdminProfile{ID: "a-" + u.ID, UserID: u.ID, Active: true}
	}
	return domain.NewRole(u, admin, s.couriers[u.ID]), nil
}

type stubCatalog struct {
	products []domain.Product
}

func (s *stubCatalog) ListProducts(context.Context, domain.ProductFilter) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) ListCategories(context.Context) ([]domain.Category, error) { return nil, nil }

func (s *stubCatalog) GetCategory(context.Context, string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) CreateCategory(_ context.Context, in catalog.CategoryInput) (*domain.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewValidationError("name", "name required")
	}
	return &domain.Category{ID: "cat-new", Name: in.Name}, nil
}

func (s *stubCatalog) UpdateCategory(context.Context, string, catalog.CategoryInput) (*domain.Category, error) {
	return &domain.Category{}, nil
}

func (s *stubCatalog) DeleteCategory(context.Context, string) error { return nil }

func (s *stubCatalog) CreateProduct(context.Context, catalog.ProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p-new"}, nil
}

func (s *stubCatalog) UpdateProduct(context.Context, string, catalog.ProductInput) (*domain.Product, error) {
	return &domain.Product{}, nil
}

func (s *stubCatalog) DeleteProduct(context.Context, string) error { return nil }

func (s *stubCatalog) SetImage(context.Context, string, io.Reader, string) (*domain.Product, error) {
	return &domain.Product{}, nil
}

func (s *stubCatalog) ClearImage(context.Context, string) error { return nil }

func (s *stubCatalog) SetStock(context.Context, string, int) (*domain.Product, error) {
	return &domain.Product{}, nil
}

func (s *stubCatalog) AdjustStock(context.Context, string, int) (*domain.Product, error) {
	return &domain.Product{}, nil
}

func (s *stubCatalog) Inventory(context.Context) (*catalog.InventoryCounts, error) {
	return &catalog.InventoryCounts{}, nil
}

type stubCarts struct {
	items map[string]map[string]int
}

func (s *stubCarts) roleBlocked(role domain.Role) bool {
	return role.IsAdminLike() || role.IsCourier()
}

func (s *stubCarts) Get(_ context.Context, role domain.Role, sid string) (*cartsvc.View, error) {
	if s.roleBlocked(role) {
		return nil, domain.ErrForbidden
	}
	v := &cartsvc.View{Total: decimal.Zero}
	for _, qty := range s.items[sid] {
		v.Count += qty
	}
	return v, nil
}

func (s *stubCarts) AddItem(_ context.Context, role domain.Role, sid, productID string, qty int) error {
	if s.roleBlocked(role) {
		return domain.ErrForbidden
	}
	s.ensure(sid)
	s.items[sid][productID] += qty
	return nil
}

func (s *stubCarts) SetItem(_ context.Context, role domain.Role, sid, productID string, qty int) error {
	if s.roleBlocked(role) {
		return domain.ErrForbidden
	}
	if qty <= 0 {
		delete(s.items[sid], productID)
		return nil
	}
	s.ensure(sid)
	s.items[sid][productID] = qty
	return nil
}

func (s *stubCarts) ensure(sid string) {
	if s.items == nil {
		s.items = map[string]map[string]int{}
	}
	if s.items[sid] == nil {
		s.items[sid] = map[string]int{}
	}
}

func (s *stubCarts) RemoveItem(_ context.Context, role domain.Role, sid, productID string) error {
	if s.roleBlocked(role) {
		return domain.ErrForbidden
	}
	delete(s.items[sid], productID)
	return nil
}

func (s *stubCarts) Clear(_ context.Context, sid string) error {
	delete(s.items, sid)
	return nil
}

type stubOrderSvc struct {
	order      *domain.Order
	claimErr   error
	invoiceErr error
}

func (s *stubOrderSvc) Checkout(_ context.Context, role domain.Role, _ string, in ordersvc.CheckoutInput) (*domain.Order, error) {
	if !role.IsCustomer() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, domain.NewValidationError("fullName", "full name required")
	}
	return s.order, nil
}

func (s *stubOrderSvc) ListMine(context.Context, domain.Role) ([]domain.Order, error) {
	return nil, nil
}

func (s *stubOrderSvc) Get(_ context.Context, _ domain.Role, number string) (*domain.Order, error) {
	if s.order == nil || s.order.Number != number {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubOrderSvc) Invoice(ctx context.Context, role domain.Role, number string) (*domain.Order, error) {
	return s.Get(ctx, role, number)
}

func (s *stubOrderSvc) ExportInvoice(ctx context.Context, role domain.Role, number string) (*domain.Order, error) {
	if s.invoiceErr != nil {
		return nil, s.invoiceErr
	}
	return s.Get(ctx, role, number)
}

func (s *stubOrderSvc) ListForCourier(_ context.Context, role domain.Role, _ domain.OrderScope) ([]domain.Order, error) {
	if !role.IsActiveCourier() {
		return nil, domain.ErrForbidden
	}
	return nil, nil
}

func (s *stubOrderSvc) Claim(_ context.Context, role domain.Role, _ string) (*domain.Order, error) {
	if !role.IsActiveCourier() {
		return nil, domain.ErrForbidden
	}
	if s.claimErr != nil {
		return nil, s.claimErr
	}
	return s.order, nil
}

func (s *stubOrderSvc) MarkDelivered(context.Context, domain.Role, string, ordersvc.DeliverInput) (*domain.Order, error) {
	return s.order, nil
}

func (s *stubOrderSvc) UpdateStatus(context.Context, domain.Role, string, domain.OrderStatus) (*domain.Order, error) {
	return s.order, nil
}

func (s *stubOrderSvc) AssignCourier(context.Context, domain.Role, string, string) error {
	return nil
}

func (s *stubOrderSvc) ListAll(context.Context, domain.Role, orderrepo.ListFilter) ([]domain.Order, error) {
	return make([]domain.Order, 6), nil
}

func (s *stubOrderSvc) Stats(context.Context, domain.Role) (*orderrepo.Stats, error) {
	return &orderrepo.Stats{PaidRevenue: decimal.Zero}, nil
}

type stubMessaging struct{}

func (stubMessaging) Send(context.Context, domain.Role, string, string) (*domain.Message, error) {
	return &domain.Message{ID: "m1"}, nil
}

func (stubMessaging) SendSuggestion(context.Context, domain.Role, string) (int, error) {
	return 1, nil
}

func (stubMessaging) Thread(context.Context, domain.Role, string) ([]domain.Message, error) {
	return nil, nil
}

func (stubMessaging) Unread(context.Context, domain.Role) (*domain.UnreadCounts, error) {
	return &domain.UnreadCounts{}, nil
}

func (stubMessaging) Inbox(context.Context, domain.Role) (*messaging.Inbox, error) {
	return &messaging.Inbox{}, nil
}

type stubReports struct{}

func (stubReports) Sales(_ context.Context, role domain.Role, period report.Period, _ string) (*report.Sales, error) {
	if !role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return &report.Sales{Period: period, Revenue: decimal.Zero}, nil
}

type stubMedia struct{}

func (stubMedia) Open(string) (io.ReadCloser, error) { return nil, domain.ErrNotFound }

type stubRenderer struct{}

func (stubRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (stubRenderer) Render(w io.Writer, o *domain.Order) error {
	_, err := w.Write([]byte("invoice " + o.Number))
	return err
}

func logDiscard() *log.Logger { return log.New(io.Discard, "", 0) }

type testEnv struct {
	router   *gin.Engine
	accounts *stubAccounts
	orders   *stubOrderSvc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := &stubAccounts{usersByToken: map[string]*domain.User{
		"tok-customer": {ID: "u1", Username: "ada"},
		"tok-admin":    {ID: "u2", Username: "boss"},
		"tok-courier":  {ID: "u3", Username: "rider"},
	}}
	roles := &stubRoles{
		admins: map[string]bool{"u2": true},
		couriers: map[string]*domain.CourierProfile{
			"u3": {ID: "c1", UserID: "u3", Active: true},
		},
	}
	orders := &stubOrderSvc{order: &domain.Order{ID: "o1", Number: "GLA1", CustomerID: "u1", Total: decimal.Zero}}

	router, err := buildRouter(logDiscard(), nil, Deps{
		AccountSvc:   accounts,
		RoleSvc:      roles,
		CatalogSvc:   &stubCatalog{products: []domain.Product{{ID: "p1", Name: "Boot", Active: true}}},
		CartSvc:      &stubCarts{},
		OrderSvc:     orders,
		MessagingSvc: stubMessaging{},
		ReportSvc:    stubReports{},
		Media:        stubMedia{},
		Invoices:     stubRenderer{},
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, accounts: accounts, orders: orders}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCartAddAndSetRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/cart/items/p1", "", `{"quantity":2}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	sid := rec.Header().Get(sessionHeader)

	rec = env.do(t, http.MethodPost, "/cart/items/p1", "", `{"quantity":2}`, map[string]string{sessionHeader: sid})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var view struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Count != 4 {
		t.Fatalf("expected repeated add to accumulate to 4, got %d", view.Count)
	}

	rec = env.do(t, http.MethodPut, "/cart/items/p1", "", `{"quantity":0}`, map[string]string{sessionHeader: sid})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Count != 0 {
		t.Fatalf("expected set-to-zero to drop the line, got count %d", view.Count)
	}
}

func TestAnonymousCartFlowIssuesSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/cart/items/p1", "", `{"quantity":2}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	sid := rec.Header().Get(sessionHeader)
	if sid == "" {
		t.Fatalf("expected session id issued")
	}

	rec = env.do(t, http.MethodGet, "/cart", "", "", map[string]string{sessionHeader: sid})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var view struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Count != 2 {
		t.Fatalf("expected count 2, got %d", view.Count)
	}
}

func TestCartForbiddenForAdmins(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/cart", "tok-admin", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/auth/register", "", `{"username":"ada","email":"a@b.c","password":"longenough1"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodPost, "/auth/login", "", `{"username":"ada","password":"longenough1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected token in response")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.loginErr = account.ErrInvalidCredentials

	rec := env.do(t, http.MethodPost, "/auth/login", "", `{"username":"ada","password":"nope"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/orders", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/orders", "tok-customer", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/orders", "tok-bogus", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCheckoutValidationSurface(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/checkout", "tok-customer", `{"phone":"123"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := resp.Fields["fullName"]; !ok {
		t.Fatalf("expected fullName field error, got %v", resp.Fields)
	}
}

func TestCourierRoutesGuarded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/courier/orders", "tok-customer", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/courier/orders", "tok-courier", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for courier, got %d: %s", rec.Code, rec.Body)
	}
}

func TestClaimConflictMapsTo409(t *testing.T) {
	env := newTestEnv(t)
	env.orders.claimErr = domain.ErrOrderTaken

	rec := env.do(t, http.MethodPost, "/courier/orders/o1/claim", "tok-courier", "", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestInvoiceExportUnpaidMapsTo402(t *testing.T) {
	env := newTestEnv(t)
	env.orders.invoiceErr = ordersvc.ErrUnpaid

	rec := env.do(t, http.MethodGet, "/orders/GLA1/invoice/export", "tok-customer", "", nil)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}

	// The on-screen invoice stays readable even when export is refused.
	rec = env.do(t, http.MethodGet, "/orders/GLA1/invoice", "tok-customer", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for invoice view, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "GLA1") {
		t.Fatalf("expected rendered invoice, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != "" {
		t.Fatalf("view must not force a download, got %q", got)
	}
}

func TestInvoiceDownload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/orders/GLA1/invoice/export", "tok-customer", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "GLA1") {
		t.Fatalf("expected rendered invoice, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "invoice-GLA1") {
		t.Fatalf("expected attachment disposition, got %q", got)
	}
}

func TestAdminRoutesGuarded(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/categories", "tok-customer", `{"name":"Shoes"}`, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/admin/categories", "tok-admin", `{"name":"Shoes"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d: %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodGet, "/admin/reports/sales?period=month", "tok-admin", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAdminDashboardSummary(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/dashboard", "tok-admin", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		Clients      int                  `json:"clients"`
		RecentOrders []json.RawMessage    `json:"recentOrders"`
		Unread       *domain.UnreadCounts `json:"unread"`
		Orders       map[string]any       `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Clients != 3 {
		t.Fatalf("expected client count 3, got %d", body.Clients)
	}
	if len(body.RecentOrders) != 5 {
		t.Fatalf("expected five most recent orders, got %d", len(body.RecentOrders))
	}
	if body.Unread == nil {
		t.Fatalf("expected unread counts in payload")
	}
	if _, ok := body.Orders["today"]; !ok {
		t.Fatalf("expected today's order count, got %v", body.Orders)
	}
}

func TestPublicCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/products?q=boot&sort=price_asc", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/products/p1", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/products/ghost", "", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
