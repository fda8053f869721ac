// Package cryptox holds the hash constructions the protocol binds identities
// with, plus the AES-GCM sealing used for device-side helper data at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"math/big"

	"golang.org/x/crypto/argon2"
)

// DigestSize is the length of every H output.
const DigestSize = sha256.Size

// Hash is H(part_1 || ... || part_n). Each part is prefixed with its 32-bit
// big-endian length so that different splits of the same bytes never
// collide.
func Hash(parts ...[]byte) []byte {
	h := sha256.New()
	var l [4]byte
	for _, p := range parts {
		binary.BigEndian.PutUint32(l[:], uint32(len(p)))
		h.Write(l[:])
		h.Write(p)
	}
	return h.Sum(nil)
}

// HashToInt interprets Hash(parts...) as a non-negative big-endian integer.
func HashToInt(parts ...[]byte) *big.Int {
	return new(big.Int).SetBytes(Hash(parts...))
}

// Commitment is the user secret H(user_id || password [|| biometric_secret]).
// A nil biometric secret selects the password-only form.
func Commitment(userID string, password, biometricSecret []byte) *big.Int {
	if biometricSecret == nil {
		return HashToInt([]byte(userID), password)
	}
	return HashToInt([]byte(userID), password, biometricSecret)
}

// GatewayKey is X = H(declared_id || response): the value the RA hands to a
// device so that it can later check a gateway's PUF knowledge offline.
func GatewayKey(declaredID string, response uint64) []byte {
	var r [8]byte
	binary.BigEndian.PutUint64(r[:], response)
	return Hash([]byte(declaredID), r[:])
}

// IdentityBinding is H(X || pseudonym).
func IdentityBinding(x []byte, pseudonym string) []byte {
	return Hash(x, []byte(pseudonym))
}

// EqualBindings compares two digests in constant time. An empty value never
// matches, so the "proof failed" sentinel cannot verify.
func EqualBindings(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// DeriveSealKey stretches a passphrase into an AES-256 key.
func DeriveSealKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

var ErrSealedTooShort = errors.New("sealed payload too short")

// Seal encrypts plaintext with AES-GCM under key and returns nonce||ciphertext.
// key must be 16, 24 or 32 bytes.
func Seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func Open(sealed, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns {
		return nil, ErrSealedTooShort
	}
	return aesgcm.Open(nil, sealed[:ns], sealed[ns:], nil)
}

// RandomBytes returns n bytes from crypto/rand.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
