// Package ra implements the registration authority: it owns the group
// parameters, records gateway and user registrations, and hands registering
// devices their session parameters. It plays no part in authentication.
package ra

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/cryptox"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/models"
	"github.com/dmitrijs2005/gwauth/internal/numtheory"
	"github.com/dmitrijs2005/gwauth/internal/server/registry"
	"github.com/google/uuid"
)

const (
	DefaultBits = 64

	maxPseudonymAttempts = 16
)

type Authority struct {
	repo   registry.Repository
	logger logging.Logger
	rnd    io.Reader
	bits   int

	newPseudonym func() string

	mu    sync.RWMutex
	group *numtheory.GroupParameters
}

type Option func(*Authority)

func WithLogger(l logging.Logger) Option {
	return func(a *Authority) { a.logger = l }
}

// WithRandom sets the source for parameter generation.
func WithRandom(r io.Reader) Option {
	return func(a *Authority) { a.rnd = r }
}

func WithBits(bits int) Option {
	return func(a *Authority) { a.bits = bits }
}

func WithPseudonymSource(fn func() string) Option {
	return func(a *Authority) { a.newPseudonym = fn }
}

func New(repo registry.Repository, opts ...Option) *Authority {
	a := &Authority{
		repo:         repo,
		logger:       logging.Nop(),
		rnd:          rand.Reader,
		bits:         DefaultBits,
		newPseudonym: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Initialize loads the group parameters from the repository, or generates
// and stores them on first start. It succeeds at most once per Authority.
func (a *Authority) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.group != nil {
		return common.ErrAlreadyInitialized
	}

	var group *numtheory.GroupParameters
	err := a.repo.WithinTx(ctx, func(ctx context.Context, r registry.Repository) error {
		p, g, err := r.LoadParameters(ctx)
		switch {
		case err == nil:
			gp, err := numtheory.NewGroupParameters(p, g)
			if err != nil {
				return fmt.Errorf("stored group parameters: %w", err)
			}
			group = gp
			return nil
		case !errors.Is(err, registry.ErrNoParameters):
			return err
		}

		gp, err := numtheory.GenerateGroupParameters(a.rnd, a.bits)
		if err != nil {
			return fmt.Errorf("generate group parameters: %w", err)
		}
		if err := r.SaveParameters(ctx, gp.Modulus, gp.Generator); err != nil {
			return err
		}
		group = gp
		return nil
	})
	if err != nil {
		return err
	}

	a.group = group
	a.logger.Info(ctx, "registration authority initialized", "bits", group.Modulus.BitLen())
	return nil
}

// Parameters returns a copy of the group parameters.
func (a *Authority) Parameters() (*numtheory.GroupParameters, error) {
	g, err := a.params()
	if err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

func (a *Authority) params() (*numtheory.GroupParameters, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.group == nil {
		return nil, common.ErrNotInitialized
	}
	return a.group, nil
}

func (a *Authority) RegisterGateway(ctx context.Context, gatewayID, declaredID string, challenge, response uint64) error {
	if _, err := a.params(); err != nil {
		return err
	}
	if gatewayID == "" {
		return fmt.Errorf("%w: empty gateway id", common.ErrInvalidArgument)
	}
	if declaredID == "" {
		declaredID = gatewayID
	}

	err := a.repo.CreateGateway(ctx, &models.GatewayRegistration{
		GatewayID:  gatewayID,
		DeclaredID: declaredID,
		Challenge:  challenge,
		Response:   response,
	})
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "gateway registered", "gateway_id", gatewayID)
	return nil
}

// ReceiveCommitment stores a user's commitment. The first commitment for a
// user id is final.
func (a *Authority) ReceiveCommitment(ctx context.Context, userID string, commitment *big.Int) error {
	if _, err := a.params(); err != nil {
		return err
	}
	if userID == "" || commitment == nil {
		return fmt.Errorf("%w: empty user id or commitment", common.ErrInvalidArgument)
	}

	if err := a.repo.CreateUser(ctx, &models.UserCredential{UserID: userID, Commitment: commitment}); err != nil {
		return err
	}

	a.logger.Info(ctx, "user registered", "user_id", userID)
	return nil
}

// ConfirmCommitment succeeds when commitment equals the one stored for
// userID. A device uses it to enroll again after the gateway lost its
// credential table; the stored commitment is left untouched.
func (a *Authority) ConfirmCommitment(ctx context.Context, userID string, commitment *big.Int) error {
	if _, err := a.params(); err != nil {
		return err
	}
	if userID == "" || commitment == nil {
		return fmt.Errorf("%w: empty user id or commitment", common.ErrInvalidArgument)
	}

	u, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !cryptox.EqualBindings(u.Commitment.Bytes(), commitment.Bytes()) {
		return fmt.Errorf("%w: commitment does not match", common.ErrUnauthorized)
	}
	return nil
}

// WithdrawCommitment removes a user whose registration did not complete.
// Only the holder of the stored commitment can withdraw it.
func (a *Authority) WithdrawCommitment(ctx context.Context, userID string, commitment *big.Int) error {
	if _, err := a.params(); err != nil {
		return err
	}
	if userID == "" || commitment == nil {
		return fmt.Errorf("%w: empty user id or commitment", common.ErrInvalidArgument)
	}

	if err := a.repo.DeleteUser(ctx, userID, commitment); err != nil {
		return err
	}

	a.logger.Info(ctx, "user registration withdrawn", "user_id", userID)
	return nil
}

// IssueSessionParameters mints a pseudonym never issued before and binds it
// to the gateway's PUF response.
func (a *Authority) IssueSessionParameters(ctx context.Context, gatewayID string) (*models.SessionParameters, error) {
	group, err := a.params()
	if err != nil {
		return nil, err
	}

	reg, err := a.repo.GetGateway(ctx, gatewayID)
	if err != nil {
		return nil, err
	}

	pid, err := a.reservePseudonym(ctx)
	if err != nil {
		return nil, err
	}

	x := cryptox.GatewayKey(reg.DeclaredID, reg.Response)
	return &models.SessionParameters{
		Modulus:         new(big.Int).Set(group.Modulus),
		Generator:       new(big.Int).Set(group.Generator),
		Pseudonym:       pid,
		Challenge:       reg.Challenge,
		X:               x,
		IdentityBinding: cryptox.IdentityBinding(x, pid),
	}, nil
}

func (a *Authority) reservePseudonym(ctx context.Context) (string, error) {
	for i := 0; i < maxPseudonymAttempts; i++ {
		pid := a.newPseudonym()
		ok, err := a.repo.ReservePseudonym(ctx, pid)
		if err != nil {
			return "", err
		}
		if ok {
			return pid, nil
		}
		a.logger.Warn(ctx, "pseudonym collision, retrying", "attempt", i+1)
	}
	return "", fmt.Errorf("%w: no fresh pseudonym after %d attempts", common.ErrInternal, maxPseudonymAttempts)
}

// ComputeVerifier returns g^secret mod p.
func (a *Authority) ComputeVerifier(ctx context.Context, secret *big.Int) (*big.Int, error) {
	group, err := a.params()
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, fmt.Errorf("%w: nil secret", common.ErrInvalidArgument)
	}
	return group.GenExp(secret), nil
}

func (a *Authority) Gateway(ctx context.Context, gatewayID string) (*models.GatewayRegistration, error) {
	if _, err := a.params(); err != nil {
		return nil, err
	}
	return a.repo.GetGateway(ctx, gatewayID)
}

func (a *Authority) Commitment(ctx context.Context, userID string) (*big.Int, error) {
	if _, err := a.params(); err != nil {
		return nil, err
	}
	u, err := a.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Commitment, nil
}
