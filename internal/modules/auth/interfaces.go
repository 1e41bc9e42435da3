package auth

import (
	"context"

	"detailbook/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RolePolicy decides the role a new user receives at signup.
type RolePolicy interface {
	RoleFor(email string) domain.Role
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
