package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxDisplayNameLength bounds display names in runes.
const MaxDisplayNameLength = 50

var (
	ErrEmptyDisplayName = errors.New("display name is required")
	ErrLongDisplayName  = errors.New("display name must be at most 50 characters")
)

// Identity is the acting user of a request.
type Identity struct {
	ID          string
	DisplayName string

	// Ephemeral marks a provisional identity not linked to a durable account.
	Ephemeral bool
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different sign-in methods
// (ephemeral, OAuth, etc.) without changing the service layer code.
type Authenticator interface {
	// SignIn returns the identity for a sign-in attempt. A non-empty
	// previous identity is renamed instead of replaced.
	SignIn(ctx context.Context, displayName string, previous *Identity) (Identity, error)
}

// EphemeralAuthenticator issues provisional identities with random ids.
type EphemeralAuthenticator struct{}

// NewEphemeralAuthenticator creates an authenticator for provisional identities.
func NewEphemeralAuthenticator() *EphemeralAuthenticator {
	return &EphemeralAuthenticator{}
}

// SignIn creates a new ephemeral identity, or keeps the previous one's id.
func (a *EphemeralAuthenticator) SignIn(ctx context.Context, displayName string, previous *Identity) (Identity, error) {
	name, err := NormalizeDisplayName(displayName)
	if err != nil {
		return Identity{}, err
	}

	if previous != nil && previous.ID != "" {
		return Identity{ID: previous.ID, DisplayName: name, Ephemeral: previous.Ephemeral}, nil
	}
	return Identity{ID: uuid.NewString(), DisplayName: name, Ephemeral: true}, nil
}

// NormalizeDisplayName trims a display name and checks its length.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyDisplayName
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return "", ErrLongDisplayName
	}
	return name, nil
}
