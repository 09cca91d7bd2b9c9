package messaging

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/samber/lo"

	"glalex-shop/internal/domain"
)

type messageRepository interface {
	Create(ctx context.Context, senderID, recipientID, body string) (*domain.Message, error)
	Thread(ctx context.Context, userA, userB string) ([]domain.Message, error)
	MarkReadFrom(ctx context.Context, recipientID, senderID string) error
	UnreadCounts(ctx context.Context, recipientID string) (*domain.UnreadCounts, error)
	Senders(ctx context.Context, recipientID string) ([]domain.InboxSender, error)
}

type userDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

type courierDirectory interface {
	GetCourierByUserID(ctx context.Context, userID string) (*domain.CourierProfile, error)
}

type orderLinker interface {
	HasLink(ctx context.Context, customerID, courierID string) (bool, error)
}

type adminChecker interface {
	GetAdminByUserID(ctx context.Context, userID string) (*domain.AdminProfile, error)
}

type mailer interface {
	Send(to, subject, body string) error
}

// Service routes direct messages between the three roles. Customers and
// couriers can only reach each other across an order that links them;
// admins can reach anyone.
type Service struct {
	messages messageRepository
	users    userDirectory
	couriers courierDirectory
	admins   adminChecker
	orders   orderLinker
	mail     mailer
	logger   *log.Logger
}

func New(messages messageRepository, users userDirectory, couriers courierDirectory, admins adminChecker, orders orderLinker, mail mailer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		messages: messages,
		users:    users,
		couriers: couriers,
		admins:   admins,
		orders:   orders,
		mail:     mail,
		logger:   logger,
	}
}

// Send delivers one message after checking the pair is allowed to talk.
func (s *Service) Send(ctx context.Context, role domain.Role, recipientID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyBody
	}
	if recipientID == role.User.ID {
		return nil, domain.ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}
	if err := s.canTalk(ctx, role, recipientID); err != nil {
		return nil, err
	}
	return s.messages.Create(ctx, role.User.ID, recipientID, body)
}

// canTalk is the pair permission check. Admins pass unconditionally; a
// customer-courier pair must share an order.
func (s *Service) canTalk(ctx context.Context, role domain.Role, otherID string) error {
	if role.IsAdmin() {
		return nil
	}
	if s.isAdminUser(ctx, otherID) {
		return nil
	}
	switch {
	case role.IsCourier():
		return s.requireLink(ctx, otherID, role.Courier.ID)
	default:
		courier, err := s.couriers.GetCourierByUserID(ctx, otherID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Two plain customers have no channel.
				return domain.ErrForbidden
			}
			return err
		}
		return s.requireLink(ctx, role.User.ID, courier.ID)
	}
}

func (s *Service) isAdminUser(ctx context.Context, userID string) bool {
	u, err := s.users.GetByID(ctx, userID)
	if err == nil && u.IsSuperuser {
		return true
	}
	p, err := s.admins.GetAdminByUserID(ctx, userID)
	return err == nil && p.Active
}

func (s *Service) requireLink(ctx context.Context, customerID, courierID string) error {
	linked, err := s.orders.HasLink(ctx, customerID, courierID)
	if err != nil {
		return err
	}
	if !linked {
		return domain.ErrForbidden
	}
	return nil
}

// SendSuggestion fans a customer's note out to every admin account, with a
// best-effort email alongside each in-app message.
func (s *Service) SendSuggestion(ctx context.Context, role domain.Role, body string) (int, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return 0, domain.ErrEmptyBody
	}
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		return 0, err
	}
	admins = lo.Reject(admins, func(u domain.User, _ int) bool { return u.ID == role.User.ID })
	subject := "Suggestion from " + role.User.Username
	sent := 0
	for _, admin := range admins {
		if _, err := s.messages.Create(ctx, role.User.ID, admin.ID, body); err != nil {
			s.logger.Printf("suggestion to %s: %v", admin.Username, err)
			continue
		}
		sent++
		if admin.Email == "" {
			continue
		}
		if err := s.mail.Send(admin.Email, subject, body); err != nil {
			s.logger.Printf("suggestion mail to %s: %v", admin.Username, err)
		}
	}
	return sent, nil
}

// Thread returns the conversation with the counterpart, oldest first, and
// marks the counterpart's messages read. Unread mail from anyone else is
// untouched.
func (s *Service) Thread(ctx context.Context, role domain.Role, otherID string) ([]domain.Message, error) {
	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages.Thread(ctx, role.User.ID, other.ID)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		// No history yet; opening a thread still requires send rights.
		if err := s.canTalk(ctx, role, otherID); err != nil {
			return nil, err
		}
	}
	if err := s.messages.MarkReadFrom(ctx, role.User.ID, other.ID); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) Unread(ctx context.Context, role domain.Role) (*domain.UnreadCounts, error) {
	return s.messages.UnreadCounts(ctx, role.User.ID)
}

// Inbox groups the user's correspondents into couriers and the rest, most
// recent first within each group.
type Inbox struct {
	Couriers []domain.InboxSender `json:"couriers"`
	Others   []domain.InboxSender `json:"others"`
}

func (s *Service) Inbox(ctx context.Context, role domain.Role) (*Inbox, error) {
	senders, err := s.messages.Senders(ctx, role.User.ID)
	if err != nil {
		return nil, err
	}
	couriers, others := lo.FilterReject(senders, func(sd domain.InboxSender, _ int) bool {
		return sd.IsCourier
	})
	return &Inbox{Couriers: couriers, Others: others}, nil
}
