package helperstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gwauth/internal/cryptox"
)

const saltSize = 16

// Sealed encrypts helper data with a key derived from a passphrase before
// handing it to the underlying store. Each Save draws a fresh salt, stored
// in front of the ciphertext.
type Sealed struct {
	inner      Store
	passphrase []byte
}

func NewSealed(inner Store, passphrase string) *Sealed {
	return &Sealed{inner: inner, passphrase: []byte(passphrase)}
}

func (s *Sealed) Save(ctx context.Context, userID string, helper []byte) error {
	salt := cryptox.RandomBytes(saltSize)
	key := cryptox.DeriveSealKey(s.passphrase, salt)
	defer cryptox.Wipe(key)

	sealed, err := cryptox.Seal(helper, key)
	if err != nil {
		return fmt.Errorf("seal helper data: %w", err)
	}
	return s.inner.Save(ctx, userID, append(salt, sealed...))
}

func (s *Sealed) Load(ctx context.Context, userID string) ([]byte, error) {
	blob, err := s.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(blob) < saltSize {
		return nil, fmt.Errorf("%w: record too short", ErrUnseal)
	}

	key := cryptox.DeriveSealKey(s.passphrase, blob[:saltSize])
	defer cryptox.Wipe(key)

	helper, err := cryptox.Open(blob[saltSize:], key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnseal, err)
	}
	return helper, nil
}

func (s *Sealed) Delete(ctx context.Context, userID string) error {
	return s.inner.Delete(ctx, userID)
}

func (s *Sealed) Close() error {
	cryptox.Wipe(s.passphrase)
	return s.inner.Close()
}
