package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"glalex-shop/internal/domain"
	orderrepo "glalex-shop/internal/repository/order"
	"glalex-shop/internal/service/cart"
)

// ErrUnpaid blocks invoice export until the order is paid.
var ErrUnpaid = errors.New("order not paid")

type cartReader interface {
	Get(ctx context.Context, role domain.Role, sessionID string) (*cart.View, error)
	Clear(ctx context.Context, sessionID string) error
}

type messageSender interface {
	Create(ctx context.Context, senderID, recipientID, body string) (*domain.Message, error)
}

type adminLister interface {
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

type mailer interface {
	Send(to, subject, body string) error
}

// Service owns the order lifecycle from checkout to delivery.
type Service struct {
	orders   orderrepo.Repository
	carts    cartReader
	messages messageSender
	admins   adminLister
	mail     mailer
	logger   *log.Logger
	now      func() time.Time
}

func New(orders orderrepo.Repository, carts cartReader, messages messageSender, admins adminLister, mail mailer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:   orders,
		carts:    carts,
		messages: messages,
		admins:   admins,
		mail:     mail,
		logger:   logger,
		now:      time.Now,
	}
}

type CheckoutInput struct {
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout turns the session cart into a pending order and clears the
// cart. Stock is not reserved; the courier flow settles availability on
// the ground.
func (s *Service) Checkout(ctx context.Context, role domain.Role, sessionID string, in CheckoutInput) (*domain.Order, error) {
	if !role.IsCustomer() {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, domain.NewValidationError("fullName", "full name required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, domain.NewValidationError("phone", "phone required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, domain.NewValidationError("address", "delivery address required")
	}
	method := domain.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !methodAllowed(method, domain.CheckoutPaymentMethods) {
		return nil, domain.NewValidationError("paymentMethod", "unsupported payment method")
	}

	view, err := s.carts.Get(ctx, role, sessionID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, domain.NewValidationError("cart", "cart is empty")
	}

	o := &domain.Order{
		Number:          s.newOrderNumber(role.User.ID),
		CustomerID:      role.User.ID,
		Status:          domain.OrderPending,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentPending,
		Total:           view.Total,
		DeliveryAddress: strings.TrimSpace(in.Address),
		FullName:        strings.TrimSpace(in.FullName),
		Phone:           strings.TrimSpace(in.Phone),
		City:            strings.TrimSpace(in.City),
	}
	for _, item := range view.Items {
		o.Lines = append(o.Lines, domain.OrderLine{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price,
		})
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Printf("clear cart after checkout %s: %v", o.Number, err)
	}
	s.sendConfirmation(role.User.Email, o)
	s.logger.Printf("checkout %s: %s by %s", o.Number, o.Total.StringFixed(2), role.User.Username)
	return o, nil
}

// sendConfirmation mails the customer their order summary. Best effort; a
// broken mail channel never fails the checkout.
func (s *Service) sendConfirmation(email string, o *domain.Order) {
	if email == "" {
		return
	}
	subject := fmt.Sprintf("Order %s confirmed", o.Number)
	body := fmt.Sprintf("Thank you for your order %s. Total: %s. We will notify you when a courier takes it.",
		o.Number, o.Total.StringFixed(2))
	if err := s.mail.Send(email, subject, body); err != nil {
		s.logger.Printf("confirmation mail for %s: %v", o.Number, err)
	}
}

// newOrderNumber is GLA plus a second-resolution timestamp plus a short
// user discriminator, so two users checking out in the same second never
// collide.
func (s *Service) newOrderNumber(userID string) string {
	suffix := strings.ReplaceAll(userID, "-", "")
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return fmt.Sprintf("GLA%s%s", s.now().Format("20060102150405"), strings.ToUpper(suffix))
}

func (s *Service) ListMine(ctx context.Context, role domain.Role) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, role.User.ID)
}

// Get enforces the per-role visibility rules: customers see their own
// orders, couriers the ones assigned to them, admins everything.
func (s *Service) Get(ctx context.Context, role domain.Role, number string) (*domain.Order, error) {
	o, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := s.canView(role, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) canView(role domain.Role, o *domain.Order) error {
	switch {
	case role.IsAdmin():
		return nil
	case o.CustomerID == role.User.ID:
		return nil
	case role.IsCourier() && o.CourierID != nil && *o.CourierID == role.Courier.ID:
		return nil
	}
	return domain.ErrForbidden
}

// Invoice applies the same visibility as Get; the on-screen invoice is
// available whether or not the order has been paid.
func (s *Service) Invoice(ctx context.Context, role domain.Role, number string) (*domain.Order, error) {
	return s.Get(ctx, role, number)
}

// ExportInvoice is the downloadable document; only paid orders may be
// exported.
func (s *Service) ExportInvoice(ctx context.Context, role domain.Role, number string) (*domain.Order, error) {
	o, err := s.Get(ctx, role, number)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != domain.PaymentPaid {
		return nil, ErrUnpaid
	}
	return o, nil
}

func (s *Service) ListForCourier(ctx context.Context, role domain.Role, scope domain.OrderScope) ([]domain.Order, error) {
	if !role.IsActiveCourier() {
		return nil, domain.ErrForbidden
	}
	switch scope {
	case domain.ScopeAll, domain.ScopeAvailable, domain.ScopeMine:
	case "":
		scope = domain.ScopeAll
	default:
		return nil, domain.NewValidationError("scope", "unknown scope")
	}
	return s.orders.ListForCourier(ctx, role.Courier.ID, scope)
}

// Claim assigns an unclaimed pending order to the acting courier. Losing a
// race surfaces as domain.ErrOrderTaken.
func (s *Service) Claim(ctx context.Context, role domain.Role, orderID string) (*domain.Order, error) {
	if !role.IsActiveCourier() {
		return nil, domain.ErrForbidden
	}
	o, err := s.orders.Claim(ctx, orderID, role.Courier.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order %s claimed by %s", o.Number, role.Courier.Username)
	return o, nil
}

type DeliverInput struct {
	PaymentMethod  string `json:"paymentMethod"`
	TransactionRef string `json:"transactionRef"`
	Note           string `json:"note"`
}

// MarkDelivered records the handover: payment collected, order delivered.
// The customer notification and the admin mail are best effort; a failed
// side channel never rolls back the delivery.
func (s *Service) MarkDelivered(ctx context.Context, role domain.Role, orderID string, in DeliverInput) (*domain.Order, error) {
	if !role.IsActiveCourier() {
		return nil, domain.ErrForbidden
	}
	method := domain.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !methodAllowed(method, domain.DeliveryPaymentMethods) {
		return nil, domain.NewValidationError("paymentMethod", "unsupported payment method")
	}

	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.CourierID == nil || *current.CourierID != role.Courier.ID {
		return nil, domain.ErrForbidden
	}
	// The shipped step is optional; a confirmed order can close out
	// directly at the doorstep.
	if current.Status != domain.OrderConfirmed && current.Status != domain.OrderShipped {
		return nil, domain.NewValidationError("status", "order cannot be delivered from "+string(current.Status))
	}

	o, err := s.orders.MarkDelivered(ctx, orderrepo.MarkDeliveredInput{
		OrderID:        orderID,
		CourierID:      role.Courier.ID,
		PaymentMethod:  method,
		TransactionRef: strings.TrimSpace(in.TransactionRef),
		CourierNote:    strings.TrimSpace(in.Note),
	})
	if err != nil {
		return nil, err
	}
	s.notifyDelivered(ctx, o)
	return o, nil
}

// notifyDelivered messages the customer from an admin account and mails
// the shop admins. Failures are logged and swallowed.
func (s *Service) notifyDelivered(ctx context.Context, o *domain.Order) {
	admins, err := s.admins.ListAdmins(ctx)
	if err != nil || len(admins) == 0 {
		s.logger.Printf("delivered notification for %s skipped, no admin sender: %v", o.Number, err)
		return
	}
	body := fmt.Sprintf(
		"Your order %s was delivered and paid. Your invoice is available at /orders/%s/invoice.",
		o.Number, o.Number,
	)
	if _, err := s.messages.Create(ctx, admins[0].ID, o.CustomerID, body); err != nil {
		s.logger.Printf("delivered message for %s: %v", o.Number, err)
	}
	for _, admin := range admins {
		if admin.Email == "" {
			continue
		}
		subject := fmt.Sprintf("Order %s delivered", o.Number)
		mailBody := fmt.Sprintf("Order %s was delivered and paid (%s, total %s).",
			o.Number, o.PaymentMethod, o.Total.StringFixed(2))
		if err := s.mail.Send(admin.Email, subject, mailBody); err != nil {
			s.logger.Printf("delivered mail for %s: %v", o.Number, err)
		}
	}
}

// UpdateStatus is the admin-side transition. Illegal moves are rejected
// against the transition table.
func (s *Service) UpdateStatus(ctx context.Context, role domain.Role, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(o.Status, status) {
		return nil, domain.NewValidationError("status",
			fmt.Sprintf("cannot move %s from %s to %s", o.Number, o.Status, status))
	}
	if o.Status == status {
		return o, nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

func (s *Service) AssignCourier(ctx context.Context, role domain.Role, orderID, courierID string) error {
	if !role.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.orders.AssignCourier(ctx, orderID, courierID)
}

func (s *Service) ListAll(ctx context.Context, role domain.Role, f orderrepo.ListFilter) ([]domain.Order, error) {
	if !role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.orders.ListAll(ctx, f)
}

func (s *Service) Stats(ctx context.Context, role domain.Role) (*orderrepo.Stats, error) {
	if !role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.orders.Stats(ctx)
}

func methodAllowed(m domain.PaymentMethod, allowed []domain.PaymentMethod) bool {
	for _, a := range allowed {
		if m == a {
			return true
		}
	}
	return false
}
