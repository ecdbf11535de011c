// Package remote describes the hosted auth + database service the dashboard
// talks to. Panels depend only on these interfaces.
package remote

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/schedmate/internal/models"
)

const (
	CollectionClients          = "clients"
	CollectionBusinessProfiles = "business_profiles"
	CollectionBookings         = "client_bookings"

	ColumnOwnerID = "owner_id"
)

var (
	// ErrNoRows is returned by single-row reads that matched nothing.
	ErrNoRows = errors.New("remote: no rows")

	// ErrUnscoped is returned for update/delete calls without a filter.
	ErrUnscoped = errors.New("remote: mutation requires a filter")

	ErrNoSession          = errors.New("remote: no active session")
	ErrInvalidCredentials = errors.New("remote: invalid credentials")
	ErrEmailTaken         = errors.New("remote: email already registered")
	ErrWeakPassword       = errors.New("remote: password too short")
	ErrInvalidResetToken  = errors.New("remote: invalid or expired reset token")
)

// Filter is a set of column = value conditions joined with AND.
type Filter map[string]any

// Owned starts a filter scoped to one owner.
func Owned(ownerID uint) Filter {
	return Filter{ColumnOwnerID: ownerID}
}

// Eq returns a copy of f with one more equality condition.
func (f Filter) Eq(column string, value any) Filter {
	out := make(Filter, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[column] = value
	return out
}

type Order struct {
	Column string
	Desc   bool
}

type Query struct {
	Filter Filter
	Order  []Order
	Limit  int
}

// Collection is one named table of the remote store.
type Collection[T any] interface {
	Select(ctx context.Context, q Query) ([]T, error)

	// Single returns ErrNoRows when nothing matches.
	Single(ctx context.Context, q Query) (*T, error)

	Insert(ctx context.Context, rec *T) error

	// Update and Delete report how many rows matched the filter.
	Update(ctx context.Context, f Filter, fields map[string]any) (int64, error)
	Delete(ctx context.Context, f Filter) (int64, error)

	// Upsert inserts rec or updates the row sharing its conflictKey value.
	// rec is reloaded from the stored row.
	Upsert(ctx context.Context, rec *T, conflictKey string) error
}

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"-"`
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Auth interface {
	// GetSession returns ErrNoSession for missing, expired or revoked tokens.
	GetSession(ctx context.Context, token string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email, redirectURL string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// Store bundles the auth surface with the three collections.
type Store struct {
	Auth     Auth
	Clients  Collection[models.Client]
	Profiles Collection[models.BusinessProfile]
	Bookings Collection[models.Booking]
}
