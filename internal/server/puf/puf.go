// Package puf simulates a gateway's physically unclonable function.
//
// A real PUF derives its responses from manufacturing variation. The
// simulation keys an HMAC with a per-device seed, which keeps the two
// properties the protocol relies on: a given challenge always yields the same
// response, and responses cannot be predicted without the seed.
package puf

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// Oracle answers PUF challenges.
type Oracle interface {
	Respond(challenge uint64) uint64
}

type Simulated struct {
	seed []byte
}

func NewSimulated(seed []byte) *Simulated {
	s := make([]byte, len(seed))
	copy(s, seed)
	return &Simulated{seed: s}
}

func (s *Simulated) Respond(challenge uint64) uint64 {
	var c [8]byte
	binary.BigEndian.PutUint64(c[:], challenge)

	mac := hmac.New(sha256.New, s.seed)
	mac.Write(c[:])
	return binary.BigEndian.Uint64(mac.Sum(nil)[:8])
}
