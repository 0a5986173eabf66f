package domain

import "time"

// Comment is attached to a quote. UserID is nil for anonymous authors.
// UserName carries the author's display name when the comment is read back
// joined against the users table; it is nil for anonymous comments.
type Comment struct {
	ID       int64
	QuoteID  int64
	UserID   *int64
	Text     string
	Time     time.Time
	UserName *string
}
