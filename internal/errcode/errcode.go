// Package errcode maps the closed set of redirect error codes to their
// user-facing messages. Redirects carry only these codes, never free text,
// so nothing caller-controlled is ever reflected into a page.
package errcode

const (
	// InvalidPassword is surfaced when a known name presents the wrong password.
	InvalidPassword = "invalid_password"
	// Unknown covers any internal failure on an auth path.
	Unknown = "unknown"
)

var messages = map[string]string{
	InvalidPassword: "Invalid password. Please try again.",
	Unknown:         "Something went wrong. Please try again.",
}

// Resolve returns the message for a recognized code and "" for anything
// else, including the empty code.
func Resolve(code string) string {
	return messages[code]
}
