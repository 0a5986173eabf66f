package domain

// Identity is the visitor identity resolved from the request's cookie.
// It lives for the duration of one request and is never persisted.
// UserID is nil for anonymous visitors.
type Identity struct {
	UserID *int64
}
