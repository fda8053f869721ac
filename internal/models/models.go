// Package models holds the value types exchanged between the registration
// authority, the gateway and the user device.
package models

import (
	"math/big"
	"time"
)

// PUFRecord is a challenge minted by a gateway together with the response
// its PUF produced for it.
type PUFRecord struct {
	Challenge uint64
	Response  uint64
}

// GatewayRegistration is what the RA keeps per gateway. GatewayID is the
// lookup key; DeclaredID is the identity string hashed into X.
type GatewayRegistration struct {
	GatewayID  string
	DeclaredID string
	Challenge  uint64
	Response   uint64
	CreatedAt  time.Time
}

type UserCredential struct {
	UserID     string
	Commitment *big.Int
	CreatedAt  time.Time
}

// SessionParameters is handed by the RA to a registering device.
type SessionParameters struct {
	Modulus         *big.Int
	Generator       *big.Int
	Pseudonym       string
	Challenge       uint64
	X               []byte
	IdentityBinding []byte
}

// ChallengeOffer is the gateway's answer to an authentication request. It
// stays pending until the matching verification consumes it.
type ChallengeOffer struct {
	OldPseudonym string
	NewPseudonym string
	N2           *big.Int
	T1           *big.Int
	IssuedAt     time.Time
}

// CredentialEntry is the gateway's per-pseudonym record.
type CredentialEntry struct {
	Verifier  *big.Int
	Challenge uint64
}

// Rotation is one entry of the gateway's pseudonym audit log.
type Rotation struct {
	Old string
	New string
	At  time.Time
}
