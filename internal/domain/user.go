package domain

// User represents a registered visitor. There is no separate registration
// flow: the row is created the first time an unknown name signs in. The
// password is an opaque string compared by exact equality.
type User struct {
	ID       int64
	Name     string
	Password string
}
