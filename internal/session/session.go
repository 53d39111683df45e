// Package session keeps wizard state between web requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/bistrobook/internal/wizard"
)

// ErrNotFound is returned by Load for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Store persists one wizard.State per session id.
type Store interface {
	Load(ctx context.Context, id string) (wizard.State, error)
	Save(ctx context.Context, id string, st wizard.State) error
	Delete(ctx context.Context, id string) error
	// Sweep drops sessions not saved since before and reports how many went.
	Sweep(ctx context.Context, before time.Time) (int64, error)
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID would hand out.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
