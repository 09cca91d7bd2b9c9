// Package role resolves a user's effective role from profile rows rather
// than a stored role column: an active admin profile or the superuser flag
// makes an admin, a courier profile makes a courier, everyone else is a
// customer.
package role

import (
	"context"
	"errors"

	"glalex-shop/internal/domain"
)

type profileRepository interface {
	GetAdminByUserID(ctx context.Context, userID string) (*domain.AdminProfile, error)
	GetCourierByUserID(ctx context.Context, userID string) (*domain.CourierProfile, error)
}

type Service struct {
	profiles profileRepository
}

func New(profiles profileRepository) *Service {
	return &Service{profiles: profiles}
}

// Resolve builds the Role for a user. A missing profile row is the normal
// case for customers and never an error.
func (s *Service) Resolve(ctx context.Context, u domain.User) (domain.Role, error) {
	admin, err := s.profiles.GetAdminByUserID(ctx, u.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Role{}, err
	}
	courier, err := s.profiles.GetCourierByUserID(ctx, u.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Role{}, err
	}
	return domain.NewRole(u, admin, courier), nil
}
