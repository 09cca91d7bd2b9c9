package user

import (
	"context"

	"glalex-shop/internal/domain"
)

type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
}

type Repository interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
