package domain

// Quote is a posted quote. Quotes are immutable once created.
type Quote struct {
	ID          int64
	Text        string
	Attribution string
}
