package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store"
)

// Directory is the user lookup the resolver depends on.
type Directory interface {
	GetUserByID(ctx context.Context, id int64) (*store.User, error)
}

// Resolver maps a token subject to a full identity.
type Resolver struct {
	users Directory
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(users Directory) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the identity for userID. Unknown users resolve to
// core.Anonymous with a nil error; lookup failures are wrapped in ErrDirectory.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (core.Identity, error) {
	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Anonymous(), nil
		}
		return core.Anonymous(), fmt.Errorf("%w: %w", ErrDirectory, err)
	}
	return core.Authenticated(user.ID, user.Username), nil
}
