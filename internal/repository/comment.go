package repository

import (
	"context"

	"quoter/internal/domain"
)

// CommentRepository defines persistence operations for Comment entities.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	ListByQuote(ctx context.Context, quoteID int64) ([]domain.Comment, error)
}
