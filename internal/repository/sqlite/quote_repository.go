package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quoter/internal/domain"
	"quoter/internal/repository"
)

const createQuotesTable = `
CREATE TABLE IF NOT EXISTS quotes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	attribution TEXT NOT NULL DEFAULT ''
);
`

type QuoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) repository.QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createQuotesTable); err != nil {
		return fmt.Errorf("create quotes table: %w", err)
	}
	return nil
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin quote insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO quotes (text, attribution)
VALUES (?, ?)`,
		quote.Text,
		quote.Attribution,
	)
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("quote last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit quote insert: %w", err)
	}
	quote.ID = id
	return id, nil
}

func (r *QuoteRepository) List(ctx context.Context) ([]domain.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, text, attribution
FROM quotes
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		var quote domain.Quote
		if err := rows.Scan(&quote.ID, &quote.Text, &quote.Attribution); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id int64) (*domain.Quote, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, text, attribution
FROM quotes
WHERE id = ?`,
		id,
	)

	var quote domain.Quote
	if err := row.Scan(&quote.ID, &quote.Text, &quote.Attribution); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quote %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan quote: %w", err)
	}
	return &quote, nil
}
