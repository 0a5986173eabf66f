package service

import (
	"context"
	"errors"

	"quoter/internal/domain"
	"quoter/internal/repository"
)

// ContentService exposes quote and comment operations. Mutating operations
// take the caller's resolved identity explicitly; nothing is read from
// ambient state.
type ContentService interface {
	ListQuotes(ctx context.Context) ([]domain.Quote, error)
	GetQuoteWithComments(ctx context.Context, quoteID int64) (*domain.Quote, []domain.Comment, error)
	CreateQuote(ctx context.Context, text, attribution string) (int64, error)
	CreateComment(ctx context.Context, quoteID int64, text string, identity domain.Identity) (int64, error)
}

type contentService struct {
	quotes   repository.QuoteRepository
	comments repository.CommentRepository
}

func NewContentService(quotes repository.QuoteRepository, comments repository.CommentRepository) ContentService {
	return &contentService{quotes: quotes, comments: comments}
}

// ListQuotes returns all quotes ordered by ascending id.
func (s *contentService) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	return s.quotes.List(ctx)
}

// GetQuoteWithComments returns the quote and its comments. An unknown id
// yields a nil quote and no comments with a nil error; how that renders is
// the caller's concern.
func (s *contentService) GetQuoteWithComments(ctx context.Context, quoteID int64) (*domain.Quote, []domain.Comment, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	comments, err := s.comments.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	return quote, comments, nil
}

// CreateQuote inserts the quote as given. Text and attribution are not
// validated here; the store escapes nothing because values are only ever
// bound as parameters.
func (s *contentService) CreateQuote(ctx context.Context, text, attribution string) (int64, error) {
	quote := &domain.Quote{Text: text, Attribution: attribution}
	return s.quotes.Create(ctx, quote)
}

// CreateComment inserts a comment attributed to the identity's user id,
// which may be nil for anonymous visitors. The quote id is not checked for
// existence.
func (s *contentService) CreateComment(ctx context.Context, quoteID int64, text string, identity domain.Identity) (int64, error) {
	comment := &domain.Comment{
		QuoteID: quoteID,
		Text:    text,
		UserID:  identity.UserID,
	}
	return s.comments.Create(ctx, comment)
}
