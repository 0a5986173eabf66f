package repository

import (
	"context"

	"quoter/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
}
