// Package helperstore keeps a device's fuzzy-extractor helper data between
// runs. Helper data is public by construction, but the sealed wrapper can
// still encrypt it at rest under a passphrase.
package helperstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("helper data not found")
	ErrUnseal   = errors.New("helper data cannot be unsealed")
)

// Store is keyed by user id.
type Store interface {
	Save(ctx context.Context, userID string, helper []byte) error
	// Load returns ErrNotFound when nothing is stored for userID.
	Load(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
	Close() error
}
