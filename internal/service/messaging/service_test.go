package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"glalex-shop/internal/domain"
)

type memMessages struct {
	messages  []domain.Message
	senders   []domain.InboxSender
	marked    [][2]string // recipient, sender
	createErr error
}

func (m *memMessages) Create(_ context.Context, senderID, recipientID, body string) (*domain.Message, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	msg := domain.Message{
		ID: "m" + string(rune('0'+len(m.messages))), SenderID: senderID,
		RecipientID: recipientID, Body: body, CreatedAt: time.Now(),
	}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memMessages) Thread(_ context.Context, a, b string) ([]domain.Message, error) {
	var out []domain.Message
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memMessages) MarkReadFrom(_ context.Context, recipientID, senderID string) error {
	m.marked = append(m.marked, [2]string{recipientID, senderID})
	for i := range m.messages {
		if m.messages[i].RecipientID == recipientID && m.messages[i].SenderID == senderID {
			m.messages[i].IsRead = true
		}
	}
	return nil
}

func (m *memMessages) UnreadCounts(_ context.Context, recipientID string) (*domain.UnreadCounts, error) {
	c := &domain.UnreadCounts{}
	for _, msg := range m.messages {
		if msg.RecipientID == recipientID && !msg.IsRead {
			c.Total++
		}
	}
	return c, nil
}

func (m *memMessages) Senders(_ context.Context, _ string) ([]domain.InboxSender, error) {
	return m.senders, nil
}

type stubUsers struct {
	users  map[string]*domain.User
	admins []domain.User
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUsers) ListAdmins(context.Context) ([]domain.User, error) { return s.admins, nil }

type stubCouriers struct {
	byUser map[string]*domain.CourierProfile
}

func (s *stubCouriers) GetCourierByUserID(_ context.Context, userID string) (*domain.CourierProfile, error) {
	p, ok := s.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubAdminProfiles struct {
	byUser map[string]*domain.AdminProfile
}

func (s *stubAdminProfiles) GetAdminByUserID(_ context.Context, userID string) (*domain.AdminProfile, error) {
	p, ok := s.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubLinks struct {
	links map[[2]string]bool // customer user id, courier profile id
}

func (s *stubLinks) HasLink(_ context.Context, customerID, courierID string) (bool, error) {
	return s.links[[2]string{customerID, courierID}], nil
}

type stubMailer struct {
	sent []string // recipient addresses
	fail bool
}

func (s *stubMailer) Send(to, _, _ string) error {
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, to)
	return nil
}

type fixture struct {
	svc      *Service
	messages *memMessages
	links    *stubLinks
	mail     *stubMailer
}

// Cast: cust is a plain customer, rider a courier (profile c1), boss an
// admin via profile, root a superuser.
func newFixture() *fixture {
	messages := &memMessages{}
	users := &stubUsers{
		users: map[string]*domain.User{
			"cust":  {ID: "cust", Username: "cust"},
			"cust2": {ID: "cust2", Username: "cust2"},
			"rider": {ID: "rider", Username: "rider"},
			"boss":  {ID: "boss", Username: "boss"},
			"root":  {ID: "root", Username: "root", IsSuperuser: true},
		},
		admins: []domain.User{
			{ID: "boss", Username: "boss", Email: "boss@shop.local"},
			{ID: "root", Username: "root", Email: "root@shop.local"},
		},
	}
	couriers := &stubCouriers{byUser: map[string]*domain.CourierProfile{
		"rider": {ID: "c1", UserID: "rider", Active: true},
	}}
	adminProfiles := &stubAdminProfiles{byUser: map[string]*domain.AdminProfile{
		"boss": {ID: "a1", UserID: "boss", Active: true},
	}}
	links := &stubLinks{links: map[[2]string]bool{}}
	mail := &stubMailer{}
	svc := New(messages, users, couriers, adminProfiles, links, mail, nil)
	return &fixture{svc: svc, messages: messages, links: links, mail: mail}
}

func role(f *fixture, id string) domain.Role {
	switch id {
	case "rider":
		return domain.NewRole(domain.User{ID: "rider"}, nil, &domain.CourierProfile{ID: "c1", UserID: "rider", Active: true})
	case "boss":
		return domain.NewRole(domain.User{ID: "boss"}, &domain.AdminProfile{ID: "a1", UserID: "boss", Active: true}, nil)
	case "root":
		return domain.NewRole(domain.User{ID: "root", IsSuperuser: true}, nil, nil)
	default:
		return domain.NewRole(domain.User{ID: id}, nil, nil)
	}
}

func TestSendRequiresBody(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Send(context.Background(), role(f, "cust"), "boss", "   ")
	if !errors.Is(err, domain.ErrEmptyBody) {
		t.Fatalf("expected empty body error, got %v", err)
	}
}

func TestCustomerCanAlwaysReachAdmins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, admin := range []string{"boss", "root"} {
		if _, err := f.svc.Send(ctx, role(f, "cust"), admin, "hello"); err != nil {
			t.Fatalf("send to %s: %v", admin, err)
		}
	}
}

func TestCustomerCourierNeedsLinkingOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Send(ctx, role(f, "cust"), "rider", "where is my order"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden without link, got %v", err)
	}
	if _, err := f.svc.Send(ctx, role(f, "rider"), "cust", "on my way"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden without link, got %v", err)
	}

	f.links.links[[2]string{"cust", "c1"}] = true

	if _, err := f.svc.Send(ctx, role(f, "cust"), "rider", "where is my order"); err != nil {
		t.Fatalf("linked customer to courier: %v", err)
	}
	if _, err := f.svc.Send(ctx, role(f, "rider"), "cust", "on my way"); err != nil {
		t.Fatalf("linked courier to customer: %v", err)
	}
}

func TestCustomersCannotMessageEachOther(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Send(context.Background(), role(f, "cust"), "cust2", "psst")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAdminCanMessageAnyone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, to := range []string{"cust", "rider"} {
		if _, err := f.svc.Send(ctx, role(f, "boss"), to, "notice"); err != nil {
			t.Fatalf("admin to %s: %v", to, err)
		}
	}
}

func TestSendToSelfForbidden(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Send(context.Background(), role(f, "boss"), "boss", "note to self")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSuggestionFansOutToAllAdmins(t *testing.T) {
	f := newFixture()

	sent, err := f.svc.SendSuggestion(context.Background(), role(f, "cust"), "please stock more sizes")
	if err != nil {
		t.Fatalf("suggestion: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 recipients, got %d", sent)
	}
	recipients := map[string]bool{}
	for _, m := range f.messages.messages {
		recipients[m.RecipientID] = true
	}
	if !recipients["boss"] || !recipients["root"] {
		t.Fatalf("expected both admins reached, got %v", recipients)
	}
	if len(f.mail.sent) != 2 {
		t.Fatalf("expected both admins mailed, got %v", f.mail.sent)
	}
}

func TestSuggestionSurvivesMailFailure(t *testing.T) {
	f := newFixture()
	f.mail.fail = true

	sent, err := f.svc.SendSuggestion(context.Background(), role(f, "cust"), "please stock more sizes")
	if err != nil {
		t.Fatalf("suggestion: %v", err)
	}
	if sent != 2 {
		t.Fatalf("mail failures must not drop recipients, got %d", sent)
	}
}

func TestThreadMarksOnlyCounterpartRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _ = f.svc.Send(ctx, role(f, "boss"), "cust", "first")
	_, _ = f.svc.Send(ctx, role(f, "root"), "cust", "other admin")

	msgs, err := f.svc.Thread(ctx, role(f, "cust"), "boss")
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message in thread, got %d", len(msgs))
	}

	counts, err := f.svc.Unread(ctx, role(f, "cust"))
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if counts.Total != 1 {
		t.Fatalf("expected the other admin's message still unread, got %d", counts.Total)
	}
}

func TestEmptyThreadStillNeedsSendRights(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Thread(context.Background(), role(f, "cust"), "rider")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden on unlinked empty thread, got %v", err)
	}
}

func TestInboxSplitsCouriers(t *testing.T) {
	f := newFixture()
	f.messages.senders = []domain.InboxSender{
		{User: domain.User{ID: "rider"}, IsCourier: true, Unread: 2},
		{User: domain.User{ID: "cust"}, Unread: 1},
	}

	inbox, err := f.svc.Inbox(context.Background(), role(f, "boss"))
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox.Couriers) != 1 || inbox.Couriers[0].User.ID != "rider" {
		t.Fatalf("unexpected couriers: %+v", inbox.Couriers)
	}
	if len(inbox.Others) != 1 || inbox.Others[0].User.ID != "cust" {
		t.Fatalf("unexpected others: %+v", inbox.Others)
	}
}
