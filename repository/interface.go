package repository

import (
	"context"
	"errors"

	"checkout-service/models"
)

// Storage outcomes the services branch on. Conflict is deliberately a value,
// not a caught fault: a duplicate-key insert is normal control flow for an
// at-least-once webhook and callers resolve it as "already exists".
var (
	// ErrNotFound means the document does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict means an insert hit a unique index.
	ErrConflict = errors.New("repository: duplicate key")
	// ErrUnavailable wraps transient storage failures (timeouts, broken
	// connections). Callers surface these as retryable so the provider
	// redelivers.
	ErrUnavailable = errors.New("repository: storage unavailable")
)

// OrderRepo is the narrow gateway the reconciler depends on. Implementations
// own all mongo-driver types; the interface stays on plain Go types so tests
// can swap in fakes.
type OrderRepo interface {
	FindByStripeID(ctx context.Context, stripeID string) (*models.Order, error)
	Insert(ctx context.Context, order *models.Order) error
	// EventExists reports whether the externally owned Event record referenced
	// by correlation metadata is present.
	EventExists(ctx context.Context, eventID string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

// UserRepo backs the user sync adapter and the reconciler's buyer check.
type UserRepo interface {
	FindByExternalAuthID(ctx context.Context, authID string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	// UserExists checks presence by the store's own document id, which is how
	// checkout metadata references buyers.
	UserExists(ctx context.Context, userID string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}
