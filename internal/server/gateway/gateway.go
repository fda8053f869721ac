// Package gateway implements the gateway side of the protocol: it mints PUF
// challenges for its own registration, keeps one credential entry per
// enrolled user under the user's current pseudonym, proves its identity to
// devices, and verifies their Schnorr-style proofs of knowledge, rotating the
// pseudonym on every success.
package gateway

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/cryptox"
	"github.com/dmitrijs2005/gwauth/internal/keyedstore"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/models"
	"github.com/dmitrijs2005/gwauth/internal/numtheory"
	"github.com/dmitrijs2005/gwauth/internal/server/puf"
	"github.com/google/uuid"
)

const (
	DefaultRotationLogSize = 1024

	maxMintAttempts = 16
)

type Gateway struct {
	id     string
	group  *numtheory.GroupParameters
	oracle puf.Oracle

	logger       logging.Logger
	rnd          io.Reader
	newPseudonym func() string
	now          func() time.Time

	challenges  *keyedstore.Store[uint64, uint64]
	credentials *keyedstore.Store[string, models.CredentialEntry]
	offers      *keyedstore.Store[string, models.ChallengeOffer]

	rotMu        sync.Mutex
	rotations    []models.Rotation
	maxRotations int
}

type Option func(*Gateway)

func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithRandom sets the source for challenges and n2.
func WithRandom(r io.Reader) Option {
	return func(g *Gateway) { g.rnd = r }
}

func WithPseudonymSource(fn func() string) Option {
	return func(g *Gateway) { g.newPseudonym = fn }
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func WithRotationLogSize(n int) Option {
	return func(g *Gateway) { g.maxRotations = n }
}

// New returns a gateway identified by id over the RA's group. id is the
// declared identity hashed into every identity proof.
func New(id string, group *numtheory.GroupParameters, oracle puf.Oracle, opts ...Option) *Gateway {
	g := &Gateway{
		id:           id,
		group:        group.Clone(),
		oracle:       oracle,
		logger:       logging.Nop(),
		rnd:          rand.Reader,
		newPseudonym: func() string { return uuid.New().String() },
		now:          time.Now,
		challenges:   keyedstore.New[uint64, uint64](),
		credentials:  keyedstore.New[string, models.CredentialEntry](),
		offers:       keyedstore.New[string, models.ChallengeOffer](),
		maxRotations: DefaultRotationLogSize,
	}
	for _, o := range opts {
		o(g)
	}
	g.rnd = &lockedReader{r: g.rnd}
	g.logger = g.logger.With("gateway_id", id)
	return g
}

func (g *Gateway) ID() string {
	return g.id
}

// Group returns a copy of the group parameters the gateway verifies in.
func (g *Gateway) Group() *numtheory.GroupParameters {
	return g.group.Clone()
}

// PrepareRegistration mints a challenge not used before by this gateway and
// records the PUF's response to it.
func (g *Gateway) PrepareRegistration(ctx context.Context) (*models.PUFRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf [8]byte
	for i := 0; i < maxMintAttempts; i++ {
		if _, err := io.ReadFull(g.rnd, buf[:]); err != nil {
			return nil, fmt.Errorf("read randomness: %w", err)
		}
		c := binary.BigEndian.Uint64(buf[:])
		r := g.oracle.Respond(c)
		if g.challenges.InsertIfAbsent(c, r) {
			return &models.PUFRecord{Challenge: c, Response: r}, nil
		}
	}
	return nil, fmt.Errorf("%w: no fresh challenge after %d attempts", common.ErrInternal, maxMintAttempts)
}

// RestoreChallenge re-admits a challenge recorded earlier, after a restart
// against a persistent RA. The PUF must still produce the recorded response.
func (g *Gateway) RestoreChallenge(ctx context.Context, challenge, response uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.oracle.Respond(challenge) != response {
		return fmt.Errorf("%w: PUF response for challenge %d does not match the record", common.ErrInvalidArgument, challenge)
	}
	g.challenges.Put(challenge, response)
	return nil
}

// EnrollUser stores the verifier under pid. A live entry is never
// overwritten.
func (g *Gateway) EnrollUser(ctx context.Context, pid string, verifier *big.Int, challenge uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pid == "" || !g.inGroup(verifier) {
		return fmt.Errorf("%w: bad pseudonym or verifier", common.ErrInvalidArgument)
	}
	if !g.challenges.Contains(challenge) {
		return common.ErrUnknownChallenge
	}

	entry := models.CredentialEntry{Verifier: new(big.Int).Set(verifier), Challenge: challenge}
	if !g.credentials.InsertIfAbsent(pid, entry) {
		return common.ErrPseudonymInUse
	}

	g.logger.Info(ctx, "user enrolled")
	return nil
}

// ProveIdentity answers H(H(id || response) || pid). The proof is nil when
// pid is not enrolled under challenge; the error is only for a done context.
func (g *Gateway) ProveIdentity(ctx context.Context, pid string, challenge uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := g.credentials.Get(pid)
	if !ok || entry.Challenge != challenge {
		g.logger.Debug(ctx, "identity proof refused")
		return nil, nil
	}
	response, ok := g.challenges.Get(challenge)
	if !ok {
		return nil, nil
	}
	return cryptox.IdentityBinding(cryptox.GatewayKey(g.id, response), pid), nil
}

// OfferChallenge answers a device's commitment t1 with a fresh n2 and the
// pseudonym the device will hold after a successful round. The offer
// replaces any earlier one pending for pid.
func (g *Gateway) OfferChallenge(ctx context.Context, pid string, t1 *big.Int) (*models.ChallengeOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !g.inGroup(t1) {
		return nil, fmt.Errorf("%w: t1 outside the group", common.ErrInvalidArgument)
	}
	if !g.credentials.Contains(pid) {
		return nil, common.ErrUnknownPseudonym
	}

	next, err := g.freshPseudonym()
	if err != nil {
		return nil, err
	}
	n2, err := numtheory.RandInt(g.rnd, g.group.Modulus)
	if err != nil {
		return nil, err
	}

	offer := models.ChallengeOffer{
		OldPseudonym: pid,
		NewPseudonym: next,
		N2:           n2,
		T1:           new(big.Int).Set(t1),
		IssuedAt:     g.now(),
	}
	g.offers.Put(pid, offer)

	out := offer
	out.N2 = new(big.Int).Set(n2)
	out.T1 = new(big.Int).Set(t1)
	return &out, nil
}

// freshPseudonym mints a pseudonym that is neither live nor promised by a
// pending offer.
func (g *Gateway) freshPseudonym() (string, error) {
	for i := 0; i < maxMintAttempts; i++ {
		pid := g.newPseudonym()
		if !g.credentials.Contains(pid) && !g.offered(pid) {
			return pid, nil
		}
	}
	return "", fmt.Errorf("%w: no fresh pseudonym after %d attempts", common.ErrInternal, maxMintAttempts)
}

func (g *Gateway) offered(pid string) bool {
	for _, o := range g.offers.Snapshot() {
		if o.NewPseudonym == pid {
			return true
		}
	}
	return false
}

// VerifyAuthentication checks g^t2 == t1 * V^n2 (mod p) for the entry under
// oldPid, against the offer pending for oldPid. On success the entry moves to
// newPid and oldPid stops resolving. On failure nothing but the offer changes: the
// offer is consumed either way.
func (g *Gateway) VerifyAuthentication(ctx context.Context, oldPid, newPid string, t1, n2, t2 *big.Int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if t1 == nil || n2 == nil || t2 == nil {
		return false, fmt.Errorf("%w: missing proof values", common.ErrInvalidArgument)
	}

	offer, ok := g.offers.Delete(oldPid)
	if !ok {
		g.logger.Debug(ctx, "verification without pending offer")
		return false, nil
	}
	if offer.NewPseudonym != newPid || offer.N2.Cmp(n2) != 0 || offer.T1.Cmp(t1) != 0 {
		g.logger.Warn(ctx, "verification does not match the pending offer")
		return false, nil
	}

	left := g.group.GenExp(t2)
	moved, err := g.credentials.Move(oldPid, newPid, func(e models.CredentialEntry) bool {
		right := g.group.Exp(e.Verifier, n2)
		right.Mul(right, t1).Mod(right, g.group.Modulus)
		return left.Cmp(right) == 0
	})
	switch {
	case errors.Is(err, keyedstore.ErrNotFound):
		return false, nil
	case errors.Is(err, keyedstore.ErrExists):
		g.logger.Warn(ctx, "rotation target already bound")
		return false, nil
	case err != nil:
		return false, err
	}
	if !moved {
		g.logger.Debug(ctx, "proof rejected")
		return false, nil
	}

	g.recordRotation(oldPid, newPid)
	g.logger.Debug(ctx, "pseudonym rotated")
	return true, nil
}

// UpdateCredential replaces the verifier under pid with blinded * blinding^-1
// mod p.
func (g *Gateway) UpdateCredential(ctx context.Context, pid string, blinded, blinding *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !g.inGroup(blinded) || !g.inGroup(blinding) {
		return fmt.Errorf("%w: blinded verifier and factor must lie in [1, p)", common.ErrInvalidArgument)
	}

	p := g.group.Modulus
	inv := new(big.Int).ModInverse(blinding, p)
	if inv == nil {
		return fmt.Errorf("%w: blinding factor not invertible", common.ErrInvalidArgument)
	}
	verifier := inv.Mul(inv, blinded).Mod(inv, p)

	err := g.credentials.Update(pid, func(e models.CredentialEntry) (models.CredentialEntry, error) {
		e.Verifier = verifier
		return e, nil
	})
	if errors.Is(err, keyedstore.ErrNotFound) {
		return common.ErrUnknownPseudonym
	}
	if err != nil {
		return err
	}

	g.logger.Info(ctx, "credential updated")
	return nil
}

func (g *Gateway) inGroup(v *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(g.group.Modulus) < 0
}

func (g *Gateway) recordRotation(oldPid, newPid string) {
	g.rotMu.Lock()
	defer g.rotMu.Unlock()

	g.rotations = append(g.rotations, models.Rotation{Old: oldPid, New: newPid, At: g.now()})
	if over := len(g.rotations) - g.maxRotations; g.maxRotations > 0 && over > 0 {
		g.rotations = append(g.rotations[:0], g.rotations[over:]...)
	}
}

// Rotations returns the audit log, oldest first.
func (g *Gateway) Rotations() []models.Rotation {
	g.rotMu.Lock()
	defer g.rotMu.Unlock()
	return append([]models.Rotation(nil), g.rotations...)
}

// lockedReader lets concurrent handlers share a non-thread-safe source.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

type snapshotEntry struct {
	Verifier  string `json:"verifier"`
	Challenge uint64 `json:"challenge"`
}

// Snapshot serializes the credential table with keys sorted, so equal
// tables produce equal bytes.
func (g *Gateway) Snapshot() ([]byte, error) {
	table := g.credentials.Snapshot()
	out := make(map[string]snapshotEntry, len(table))
	for pid, e := range table {
		out[pid] = snapshotEntry{Verifier: e.Verifier.String(), Challenge: e.Challenge}
	}
	return json.Marshal(out)
}
