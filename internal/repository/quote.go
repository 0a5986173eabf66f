package repository

import (
	"context"

	"quoter/internal/domain"
)

// QuoteRepository defines persistence operations for Quote entities.
type QuoteRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, quote *domain.Quote) (int64, error)
	List(ctx context.Context) ([]domain.Quote, error)
	GetByID(ctx context.Context, id int64) (*domain.Quote, error)
}
