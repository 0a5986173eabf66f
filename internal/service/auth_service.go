package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"quoter/internal/domain"
	"quoter/internal/repository"
)

// ErrInvalidCredentials indicates the name exists but the password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService merges sign-in and sign-up: an unknown name is registered on
// the spot, a known name must present the matching password.
type AuthService interface {
	SignIn(ctx context.Context, name, password string) (int64, error)
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

// SignIn resolves name/password to a user id, creating the user when the
// name is unknown. Names are case-normalized to lowercase before lookup.
func (s *authService) SignIn(ctx context.Context, name, password string) (int64, error) {
	name = strings.ToLower(name)

	user, err := s.users.GetByName(ctx, name)
	switch {
	case err == nil:
		if !passwordsEqual(password, user.Password) {
			return 0, ErrInvalidCredentials
		}
		return user.ID, nil
	case errors.Is(err, repository.ErrNotFound):
		// implicit sign-up
	default:
		return 0, err
	}

	id, err := s.users.Create(ctx, &domain.User{Name: name, Password: password})
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return 0, err
	}

	// Lost a concurrent sign-up for the same name. The winner's row decides,
	// so re-read it and treat this attempt as a regular sign-in against it.
	winner, gerr := s.users.GetByName(ctx, name)
	if gerr != nil {
		return 0, gerr
	}
	if !passwordsEqual(password, winner.Password) {
		return 0, ErrInvalidCredentials
	}
	return winner.ID, nil
}

// Passwords are opaque strings compared by exact equality; no hashing scheme
// exists in this system.
func passwordsEqual(given, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(stored)) == 1
}
