package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound reports that no user exists for the given id.
var ErrNotFound = errors.New("user not found")

// Directory resolves principals to users. It is a read-only view over the
// identity store; callers re-resolve on every write because a user's role
// can change between operations.
type Directory interface {
	Resolve(ctx context.Context, id uuid.UUID) (*User, error)
	ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error)
}
