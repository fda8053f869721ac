// Package device implements the user side of the protocol: registration
// through the RA and gateway, local login against the stored commitment,
// gateway identity checks, the authentication handshake with pseudonym
// rotation, and credential updates.
//
// A Device is owned by a single goroutine and is not safe for concurrent use.
package device

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/dmitrijs2005/gwauth/internal/client/helperstore"
	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/cryptox"
	"github.com/dmitrijs2005/gwauth/internal/fuzzy"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/models"
	"github.com/dmitrijs2005/gwauth/internal/numtheory"
)

// Authority is the RA as seen by a registering device.
type Authority interface {
	ReceiveCommitment(ctx context.Context, userID string, commitment *big.Int) error
	ConfirmCommitment(ctx context.Context, userID string, commitment *big.Int) error
	WithdrawCommitment(ctx context.Context, userID string, commitment *big.Int) error
	IssueSessionParameters(ctx context.Context, gatewayID string) (*models.SessionParameters, error)
}

// Gateway is the runtime peer.
type Gateway interface {
	ID() string
	EnrollUser(ctx context.Context, pid string, verifier *big.Int, challenge uint64) error
	ProveIdentity(ctx context.Context, pid string, challenge uint64) ([]byte, error)
	OfferChallenge(ctx context.Context, pid string, t1 *big.Int) (*models.ChallengeOffer, error)
	VerifyAuthentication(ctx context.Context, oldPid, newPid string, t1, n2, t2 *big.Int) (bool, error)
	UpdateCredential(ctx context.Context, pid string, blinded, blinding *big.Int) error
}

// HelperStore persists fuzzy-extractor helper data by user id.
type HelperStore interface {
	Save(ctx context.Context, userID string, helper []byte) error
	Load(ctx context.Context, userID string) ([]byte, error)
	Delete(ctx context.Context, userID string) error
}

type Device struct {
	id        string
	logger    logging.Logger
	rnd       io.Reader
	extractor *fuzzy.Extractor
	helpers   HelperStore

	state     State
	secret    *big.Int
	biometric bool
	group     *numtheory.GroupParameters
	gatewayID string
	pseudonym string
	challenge uint64
	x         []byte
}

type Option func(*Device)

func WithLogger(l logging.Logger) Option {
	return func(d *Device) { d.logger = l }
}

func WithRandom(r io.Reader) Option {
	return func(d *Device) { d.rnd = r }
}

func WithHelperStore(s HelperStore) Option {
	return func(d *Device) { d.helpers = s }
}

func New(userID string, opts ...Option) *Device {
	d := &Device{
		id:     userID,
		logger: logging.Nop(),
		rnd:    rand.Reader,
		state:  Unregistered,
	}
	for _, o := range opts {
		o(d)
	}
	if d.helpers == nil {
		d.helpers = helperstore.NewMemory()
	}
	d.extractor = fuzzy.New(d.rnd)
	d.logger = d.logger.With("user_id", userID)
	return d
}

func (d *Device) ID() string        { return d.id }
func (d *Device) State() State      { return d.state }
func (d *Device) Pseudonym() string { return d.pseudonym }
func (d *Device) GatewayID() string { return d.gatewayID }

// Register enrolls the user. An empty sample registers a password-only
// credential. RA errors, duplicates included, are returned unchanged.
//
// The session parameters are fetched before the commitment is submitted, so
// an unknown gateway leaves nothing behind at the RA. A failure after the
// commitment was accepted withdraws it again, and the user id stays free for
// a retry.
func (d *Device) Register(ctx context.Context, password string, sample []byte, ra Authority, gw Gateway) error {
	if d.state != Unregistered {
		return common.ErrAlreadyRegistered
	}

	var helper, bioSecret []byte
	if len(sample) > 0 {
		var err error
		helper, bioSecret, err = d.extractor.Generate(sample)
		if err != nil {
			return fmt.Errorf("bind biometric: %w", err)
		}
		defer cryptox.Wipe(bioSecret)
	}
	secret := cryptox.Commitment(d.id, []byte(password), bioSecret)

	params, group, err := d.sessionParameters(ctx, ra, gw.ID())
	if err != nil {
		return err
	}

	if err := ra.ReceiveCommitment(ctx, d.id, secret); err != nil {
		return err
	}

	rollback := func(cause error) error {
		if werr := ra.WithdrawCommitment(ctx, d.id, secret); werr != nil {
			d.logger.Error(ctx, "withdraw commitment failed", "error", werr)
			return errors.Join(cause, fmt.Errorf("withdraw commitment: %w", werr))
		}
		return cause
	}

	if helper != nil {
		if err := d.helpers.Save(ctx, d.id, helper); err != nil {
			return rollback(fmt.Errorf("store helper data: %w", err))
		}
	}

	if err := gw.EnrollUser(ctx, params.Pseudonym, group.GenExp(secret), params.Challenge); err != nil {
		if helper != nil {
			if derr := d.helpers.Delete(ctx, d.id); derr != nil {
				err = errors.Join(err, fmt.Errorf("drop helper data: %w", derr))
			}
		}
		return rollback(err)
	}

	d.adopt(secret, helper != nil, group, gw.ID(), params)
	d.logger.Info(ctx, "device registered", "gateway_id", d.gatewayID, "biometric", d.biometric)
	return nil
}

// Reenroll restores a registration the RA still holds, for a device that
// lost its state or a gateway that lost its credential table. The password
// and sample must reproduce the stored commitment; a biometric credential
// needs its helper data in the helper store. The RA record is not changed.
func (d *Device) Reenroll(ctx context.Context, password string, sample []byte, ra Authority, gw Gateway) error {
	if d.state != Unregistered {
		return common.ErrAlreadyRegistered
	}

	var bioSecret []byte
	if len(sample) > 0 {
		helper, err := d.helpers.Load(ctx, d.id)
		if err != nil {
			return fmt.Errorf("load helper data: %w", err)
		}
		bioSecret, err = d.extractor.Reproduce(sample, helper)
		if errors.Is(err, common.ErrLengthMismatch) {
			return fmt.Errorf("%w: sample does not match helper data", common.ErrUnauthorized)
		}
		if err != nil {
			return err
		}
		defer cryptox.Wipe(bioSecret)
	}
	secret := cryptox.Commitment(d.id, []byte(password), bioSecret)

	if err := ra.ConfirmCommitment(ctx, d.id, secret); err != nil {
		return err
	}

	params, group, err := d.sessionParameters(ctx, ra, gw.ID())
	if err != nil {
		return err
	}
	if err := gw.EnrollUser(ctx, params.Pseudonym, group.GenExp(secret), params.Challenge); err != nil {
		return err
	}

	d.adopt(secret, bioSecret != nil, group, gw.ID(), params)
	d.logger.Info(ctx, "device re-enrolled", "gateway_id", d.gatewayID, "biometric", d.biometric)
	return nil
}

// sessionParameters fetches a fresh pseudonym for gatewayID and checks the
// binding and group the RA sent.
func (d *Device) sessionParameters(ctx context.Context, ra Authority, gatewayID string) (*models.SessionParameters, *numtheory.GroupParameters, error) {
	params, err := ra.IssueSessionParameters(ctx, gatewayID)
	if err != nil {
		return nil, nil, err
	}
	if !cryptox.EqualBindings(cryptox.IdentityBinding(params.X, params.Pseudonym), params.IdentityBinding) {
		return nil, nil, fmt.Errorf("%w: identity binding does not match session parameters", common.ErrInvalidArgument)
	}
	group, err := numtheory.NewGroupParameters(params.Modulus, params.Generator)
	if err != nil {
		return nil, nil, fmt.Errorf("session parameters: %w", err)
	}
	return params, group, nil
}

func (d *Device) adopt(secret *big.Int, biometric bool, group *numtheory.GroupParameters, gatewayID string, params *models.SessionParameters) {
	d.secret = secret
	d.biometric = biometric
	d.group = group
	d.gatewayID = gatewayID
	d.pseudonym = params.Pseudonym
	d.challenge = params.Challenge
	d.x = params.X
	d.state = Registered
}

// Login checks password and sample against the stored commitment without
// any network traffic. A wrong password or sample is (false, nil); errors
// come only from the helper store.
func (d *Device) Login(ctx context.Context, password string, sample []byte) (bool, error) {
	if d.state == Unregistered {
		return false, common.ErrNotRegistered
	}

	ok, err := d.checkCredential(ctx, password, sample)
	if err != nil {
		return false, err
	}
	if ok {
		d.state = LoggedIn
	} else {
		d.state = LoggedOut
	}
	return ok, nil
}

func (d *Device) checkCredential(ctx context.Context, password string, sample []byte) (bool, error) {
	if d.biometric != (len(sample) > 0) {
		return false, nil
	}

	var bioSecret []byte
	if d.biometric {
		helper, err := d.helpers.Load(ctx, d.id)
		if err != nil {
			return false, fmt.Errorf("load helper data: %w", err)
		}
		bioSecret, err = d.extractor.Reproduce(sample, helper)
		if errors.Is(err, common.ErrLengthMismatch) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		defer cryptox.Wipe(bioSecret)
	}

	candidate := cryptox.Commitment(d.id, []byte(password), bioSecret)
	return cryptox.EqualBindings(candidate.Bytes(), d.secret.Bytes()), nil
}

func (d *Device) Logout() {
	if d.state.loggedIn() {
		d.state = LoggedOut
	}
}

// VerifyGatewayIdentity compares claimed with H(X || pseudonym), using the X
// received from the RA at registration.
func (d *Device) VerifyGatewayIdentity(claimed []byte) bool {
	if d.state == Unregistered {
		return false
	}
	return cryptox.EqualBindings(cryptox.IdentityBinding(d.x, d.pseudonym), claimed)
}

// VerifyGateway asks gw for its identity proof for the current pseudonym.
func (d *Device) VerifyGateway(ctx context.Context, gw Gateway) (bool, error) {
	if d.state == Unregistered {
		return false, common.ErrNotRegistered
	}
	proof, err := gw.ProveIdentity(ctx, d.pseudonym, d.challenge)
	if err != nil {
		return false, err
	}
	ok := d.VerifyGatewayIdentity(proof)
	if !ok {
		d.logger.Warn(ctx, "gateway identity proof rejected", "gateway_id", d.gatewayID)
	}
	return ok, nil
}

// StartAuthentication opens a handshake round. Any previous AUTHENTICATED
// state is dropped back to LOGGED_IN.
func (d *Device) StartAuthentication(ctx context.Context) (pid string, n1, t1 *big.Int, err error) {
	if err := d.requireLogin(); err != nil {
		return "", nil, nil, err
	}
	d.state = LoggedIn

	n1, err = numtheory.RandInt(d.rnd, d.group.Modulus)
	if err != nil {
		return "", nil, nil, err
	}
	return d.pseudonym, n1, d.group.GenExp(n1), nil
}

// CompleteAuthentication sends t2 = n1 + n2*(secret mod (p-1)) and adopts
// newPid only if the gateway accepts.
func (d *Device) CompleteAuthentication(ctx context.Context, gw Gateway, oldPid, newPid string, n2, n1, t1 *big.Int) (bool, error) {
	if d.state != LoggedIn {
		if err := d.requireLogin(); err != nil {
			return false, err
		}
		return false, fmt.Errorf("%w: no handshake in progress", common.ErrInvalidArgument)
	}
	if oldPid != d.pseudonym {
		return false, fmt.Errorf("%w: pseudonym %q is not current", common.ErrInvalidArgument, oldPid)
	}
	if n1 == nil || n2 == nil || t1 == nil {
		return false, fmt.Errorf("%w: missing handshake value", common.ErrInvalidArgument)
	}

	reduced := new(big.Int).Mod(d.secret, d.group.Order())
	t2 := new(big.Int).Mul(n2, reduced)
	t2.Add(t2, n1)

	ok, err := gw.VerifyAuthentication(ctx, oldPid, newPid, t1, n2, t2)
	if err != nil {
		return false, err
	}
	if !ok {
		d.logger.Warn(ctx, "authentication rejected", "pseudonym", oldPid)
		return false, nil
	}

	d.pseudonym = newPid
	d.state = Authenticated
	d.logger.Debug(ctx, "pseudonym rotated", "old", oldPid, "new", newPid)
	return true, nil
}

// Authenticate runs one full round: start, offer, complete.
func (d *Device) Authenticate(ctx context.Context, gw Gateway) (bool, error) {
	pid, n1, t1, err := d.StartAuthentication(ctx)
	if err != nil {
		return false, err
	}
	offer, err := gw.OfferChallenge(ctx, pid, t1)
	if err != nil {
		return false, err
	}
	return d.CompleteAuthentication(ctx, gw, offer.OldPseudonym, offer.NewPseudonym, offer.N2, n1, t1)
}

// UpdatePassword replaces the credential of a logged-in device. The new
// verifier travels blinded by a fresh r in [1, p); the gateway stores
// blinded * r^-1. Local state changes only after the gateway accepts. An
// empty sample makes the credential password-only and drops the stored
// helper data.
//
// The device itself does not require a handshake first. A networked gateway
// does: it rejects the update without the session ticket of the last
// successful authentication.
func (d *Device) UpdatePassword(ctx context.Context, newPassword string, newSample []byte, gw Gateway) error {
	if err := d.requireLogin(); err != nil {
		return err
	}

	var helper, bioSecret []byte
	if len(newSample) > 0 {
		var err error
		helper, bioSecret, err = d.extractor.Generate(newSample)
		if err != nil {
			return fmt.Errorf("bind biometric: %w", err)
		}
		defer cryptox.Wipe(bioSecret)
	}
	secret := cryptox.Commitment(d.id, []byte(newPassword), bioSecret)

	r, err := numtheory.RandRange(d.rnd, big.NewInt(1), d.group.Modulus)
	if err != nil {
		return err
	}
	blinded := d.group.GenExp(secret)
	blinded.Mul(blinded, r).Mod(blinded, d.group.Modulus)

	if err := gw.UpdateCredential(ctx, d.pseudonym, blinded, r); err != nil {
		return err
	}

	d.secret = secret
	d.biometric = helper != nil

	if helper != nil {
		err = d.helpers.Save(ctx, d.id, helper)
	} else {
		err = d.helpers.Delete(ctx, d.id)
	}
	if err != nil {
		return fmt.Errorf("update helper data: %w", err)
	}

	d.logger.Info(ctx, "credential updated", "biometric", d.biometric)
	return nil
}

func (d *Device) requireLogin() error {
	switch {
	case d.state == Unregistered:
		return common.ErrNotRegistered
	case !d.state.loggedIn():
		return common.ErrNotLoggedIn
	}
	return nil
}
