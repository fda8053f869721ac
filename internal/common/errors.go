// Package common defines sentinel errors and constants shared by the RA,
// gateway and device layers. Callers should use errors.Is to match these
// values; wrapped variants (for example ErrDuplicateUser) still match their
// parent sentinel.
package common

import (
	"errors"
	"fmt"
)

var (
	// Registration-time structural errors.
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrDuplicateUser         = fmt.Errorf("user already registered: %w", ErrDuplicateRegistration)
	ErrDuplicateGateway      = fmt.Errorf("gateway already registered: %w", ErrDuplicateRegistration)

	ErrNotInitialized     = errors.New("registration authority not initialized")
	ErrAlreadyInitialized = errors.New("registration authority already initialized")

	// Lookup misses.
	ErrUnknownGateway   = errors.New("unknown gateway")
	ErrUnknownChallenge = errors.New("unknown challenge")
	ErrUnknownPseudonym = errors.New("unknown pseudonym")
	ErrUnknownUser      = errors.New("unknown user")

	ErrPseudonymInUse = errors.New("pseudonym already bound to a credential")

	// Fuzzy extractor errors.
	ErrLengthMismatch = errors.New("biometric sample and helper length mismatch")
	ErrEmptySample    = errors.New("empty biometric sample")

	// Arithmetic / argument errors.
	ErrZeroModulus     = errors.New("modulus must be positive")
	ErrInvalidArgument = errors.New("invalid argument")

	// Device state errors.
	ErrNotRegistered     = errors.New("device not registered")
	ErrAlreadyRegistered = errors.New("device already registered")
	ErrNotLoggedIn       = errors.New("device not logged in")

	// Transport-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = fmt.Errorf("session token expired: %w", ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("invalid session token: %w", ErrUnauthorized)
	ErrUnavailable  = errors.New("peer unavailable")
	ErrInternal     = errors.New("internal error")
)
