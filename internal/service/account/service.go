package account

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"glalex-shop/internal/domain"
	profilerepo "glalex-shop/internal/repository/profile"
	tokenrepo "glalex-shop/internal/repository/token"
	userrepo "glalex-shop/internal/repository/user"
)

var (
	// ErrInvalidCredentials is returned when username/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

type orderDirectory interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

// Service handles registration, login and the admin-side user management.
type Service struct {
	users       userrepo.Repository
	profiles    profilerepo.Repository
	tokens      *tokenManager
	orders      orderDirectory
	accessTTL   time.Duration
	passwordMin int
	logger      *log.Logger
}

func New(users userrepo.Repository, profiles profilerepo.Repository, tokens tokenrepo.Repository, orders orderDirectory, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		users:       users,
		profiles:    profiles,
		tokens:      newTokenManager(tokens),
		orders:      orders,
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
		logger:      logger,
	}
}

type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD, optional
}

// Register creates a customer account with its profile. All input is
// validated before any write; user and profile land in one transaction so
// a failure never burns the username.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username required")
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, domain.NewValidationError("email", "email required")
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return nil, err
	}
	var birth *time.Time
	if in.BirthDate != "" {
		d, err := time.Parse("2006-01-02", in.BirthDate)
		if err != nil {
			return nil, domain.NewValidationError("birthDate", "expected YYYY-MM-DD")
		}
		birth = &d
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(in.Password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := s.profiles.CreateCustomer(ctx, profilerepo.CreateCustomerInput{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		City:         strings.TrimSpace(in.City),
		BirthDate:    birth,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("registered %s", username)
	return u, nil
}

// Login validates credentials and returns the user plus an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, u.ID, "access", s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	_ = s.users.TouchLastLogin(ctx, u.ID)
	return u, token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// LookupByToken returns the user bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.User, error) {
	userID, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return u, nil
}

// ChangePassword re-hashes and revokes every outstanding token so stolen
// sessions die with the old password.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(current))); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(next, s.passwordMin); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(next)), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, userID, string(hashed)); err != nil {
		return err
	}
	return s.tokens.RevokeAll(ctx, userID)
}

type ProfileInput struct {
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	BirthDate  string `json:"birthDate"` // YYYY-MM-DD, optional
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.CustomerProfile, error) {
	var birth *time.Time
	if in.BirthDate != "" {
		d, err := time.Parse("2006-01-02", in.BirthDate)
		if err != nil {
			return nil, domain.NewValidationError("birthDate", "expected YYYY-MM-DD")
		}
		birth = &d
	}
	return s.profiles.UpsertCustomer(ctx, profilerepo.UpsertCustomerInput{
		UserID:     userID,
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		BirthDate:  birth,
	})
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	return s.profiles.GetCustomerByUserID(ctx, userID)
}

type CourierInput struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Phone        string `json:"phone"`
	Vehicle      string `json:"vehicle"`
	LicenseNo    string `json:"licenseNo"`
	DeliveryZone string `json:"deliveryZone"`
	Active       bool   `json:"active"`
}

// CreateCourier onboards a courier account; admin only at the HTTP layer.
func (s *Service) CreateCourier(ctx context.Context, in CourierInput) (*domain.CourierProfile, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username required")
	}
	if err := validatePassword(in.Password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(in.Password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.CreateCourier(ctx, profilerepo.CreateCourierInput{
		Username:     username,
		Email:        strings.TrimSpace(strings.ToLower(in.Email)),
		PasswordHash: string(hashed),
		Phone:        strings.TrimSpace(in.Phone),
		Vehicle:      strings.TrimSpace(in.Vehicle),
		LicenseNo:    strings.TrimSpace(in.LicenseNo),
		DeliveryZone: strings.TrimSpace(in.DeliveryZone),
		Active:       in.Active,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("courier onboarded: %s", username)
	return p, nil
}

func (s *Service) UpdateCourier(ctx context.Context, id string, in CourierInput) (*domain.CourierProfile, error) {
	var hashed string
	if strings.TrimSpace(in.Password) != "" {
		if err := validatePassword(in.Password, s.passwordMin); err != nil {
			return nil, err
		}
		h, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(in.Password)), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed = string(h)
	}
	return s.profiles.UpdateCourier(ctx, id, profilerepo.UpdateCourierInput{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hashed,
		Phone:        strings.TrimSpace(in.Phone),
		Vehicle:      strings.TrimSpace(in.Vehicle),
		LicenseNo:    strings.TrimSpace(in.LicenseNo),
		DeliveryZone: strings.TrimSpace(in.DeliveryZone),
		Active:       in.Active,
	})
}

func (s *Service) SetCourierActive(ctx context.Context, id string, active bool) error {
	return s.profiles.SetCourierActive(ctx, id, active)
}

func (s *Service) ListCouriers(ctx context.Context, usernameQuery string, activeOnly bool) ([]domain.CourierProfile, error) {
	return s.profiles.ListCouriers(ctx, usernameQuery, activeOnly)
}

func (s *Service) GetCourier(ctx context.Context, id string) (*domain.CourierProfile, error) {
	return s.profiles.GetCourierByID(ctx, id)
}

func (s *Service) ListClients(ctx context.Context) ([]domain.CustomerProfile, error) {
	return s.profiles.ListCustomers(ctx)
}

func (s *Service) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}
	if !active {
		return s.tokens.RevokeAll(ctx, userID)
	}
	return nil
}

// DeleteUser hard-deletes an account. Courier accounts and customers with
// order history are refused; such accounts are deactivated, never deleted,
// so order rows keep their references.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.profiles.GetCourierByUserID(ctx, userID); err == nil {
		return domain.ErrForbidden
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	orders, err := s.orders.ListByCustomer(ctx, userID)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return domain.ErrForbidden
	}
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return domain.NewValidationError("password", "password too short")
	}
	return nil
}
