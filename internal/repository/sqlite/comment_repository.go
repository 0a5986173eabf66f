package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quoter/internal/domain"
	"quoter/internal/repository"
)

// quote_id deliberately carries no foreign key: comments against a missing
// quote are accepted, matching the behavior this store replaces.
const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	quote_id INTEGER NOT NULL,
	user_id INTEGER NULL,
	time DATETIME NOT NULL
);
`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

// Create inserts the comment with a store-assigned timestamp. A nil UserID
// persists as NULL (anonymous authorship).
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	comment.Time = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin comment insert: %w", err)
	}
	defer tx.Rollback()

	var userID sql.NullInt64
	if comment.UserID != nil {
		userID = sql.NullInt64{Int64: *comment.UserID, Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO comments (text, quote_id, user_id, time)
VALUES (?, ?, ?, ?)`,
		comment.Text,
		comment.QuoteID,
		userID,
		comment.Time,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit comment insert: %w", err)
	}
	comment.ID = id
	return id, nil
}

// ListByQuote returns the quote's comments ordered by id, each joined with
// its author's name. Anonymous comments come back with a nil name.
func (r *CommentRepository) ListByQuote(ctx context.Context, quoteID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.text, c.quote_id, c.user_id, c.time, u.name
FROM comments c
LEFT JOIN users u ON u.id = c.user_id
WHERE c.quote_id = ?
ORDER BY c.id`,
		quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var (
			comment  domain.Comment
			userID   sql.NullInt64
			userName sql.NullString
		)
		if err := rows.Scan(&comment.ID, &comment.Text, &comment.QuoteID, &userID, &comment.Time, &userName); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if userID.Valid {
			comment.UserID = &userID.Int64
		}
		if userName.Valid {
			comment.UserName = &userName.String
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}
