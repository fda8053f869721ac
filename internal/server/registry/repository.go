// Package registry persists the registration authority's state: its group
// parameters, gateway registrations, user commitments and every pseudonym it
// has issued. Each Create/Reserve call detects duplicates and inserts in one
// atomic step.
package registry

import (
	"context"
	"errors"
	"math/big"

	"github.com/dmitrijs2005/gwauth/internal/models"
)

var (
	ErrNoParameters     = errors.New("group parameters not stored")
	ErrParametersStored = errors.New("group parameters already stored")
)

type Repository interface {
	// LoadParameters returns ErrNoParameters when nothing was saved yet.
	LoadParameters(ctx context.Context) (modulus, generator *big.Int, err error)
	// SaveParameters returns ErrParametersStored if a row already exists.
	SaveParameters(ctx context.Context, modulus, generator *big.Int) error

	// CreateGateway returns common.ErrDuplicateGateway if the id is taken.
	CreateGateway(ctx context.Context, g *models.GatewayRegistration) error
	// GetGateway returns common.ErrUnknownGateway if absent.
	GetGateway(ctx context.Context, gatewayID string) (*models.GatewayRegistration, error)

	// CreateUser returns common.ErrDuplicateUser if the id is taken.
	CreateUser(ctx context.Context, u *models.UserCredential) error
	// GetUser returns common.ErrUnknownUser if absent.
	GetUser(ctx context.Context, userID string) (*models.UserCredential, error)
	// DeleteUser removes the user only if the stored commitment equals
	// commitment. It returns common.ErrUnknownUser when nothing matched.
	DeleteUser(ctx context.Context, userID string, commitment *big.Int) error

	// ReservePseudonym records pid as issued. It reports false if pid was
	// issued before.
	ReservePseudonym(ctx context.Context, pid string) (bool, error)

	// WithinTx runs fn against a repository bound to a single transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
