package ra

import (
	"context"
	"errors"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/cryptox"
	"github.com/dmitrijs2005/gwauth/internal/server/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(b byte) *rand.ChaCha8 {
	var seed [32]byte
	seed[0] = b
	return rand.NewChaCha8(seed)
}

func newAuthority(t *testing.T, opts ...Option) (*Authority, *registry.MemoryRepository) {
	t.Helper()
	repo := registry.NewMemoryRepository()
	opts = append([]Option{WithRandom(seeded(1)), WithBits(32)}, opts...)
	a := New(repo, opts...)
	require.NoError(t, a.Initialize(context.Background()))
	return a, repo
}

func TestOperationsBeforeInitialize(t *testing.T) {
	a := New(registry.NewMemoryRepository())
	ctx := context.Background()

	assert.ErrorIs(t, a.RegisterGateway(ctx, "GW1", "GW1", 1, 2), common.ErrNotInitialized)
	assert.ErrorIs(t, a.ReceiveCommitment(ctx, "u", big.NewInt(1)), common.ErrNotInitialized)
	assert.ErrorIs(t, a.ConfirmCommitment(ctx, "u", big.NewInt(1)), common.ErrNotInitialized)
	assert.ErrorIs(t, a.WithdrawCommitment(ctx, "u", big.NewInt(1)), common.ErrNotInitialized)
	_, err := a.IssueSessionParameters(ctx, "GW1")
	assert.ErrorIs(t, err, common.ErrNotInitialized)
	_, err = a.ComputeVerifier(ctx, big.NewInt(1))
	assert.ErrorIs(t, err, common.ErrNotInitialized)
	_, err = a.Parameters()
	assert.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestInitialize_Twice(t *testing.T) {
	a, _ := newAuthority(t)
	assert.ErrorIs(t, a.Initialize(context.Background()), common.ErrAlreadyInitialized)
}

func TestInitialize_GeneratesValidParameters(t *testing.T) {
	a, repo := newAuthority(t)

	gp, err := a.Parameters()
	require.NoError(t, err)
	assert.Equal(t, 32, gp.Modulus.BitLen())
	require.NoError(t, gp.Validate())

	p, g, err := repo.LoadParameters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, p.Cmp(gp.Modulus))
	assert.Equal(t, 0, g.Cmp(gp.Generator))
}

func TestInitialize_ReusesStoredParameters(t *testing.T) {
	repo := registry.NewMemoryRepository()
	first := New(repo, WithRandom(seeded(1)), WithBits(32))
	require.NoError(t, first.Initialize(context.Background()))

	second := New(repo, WithRandom(seeded(2)), WithBits(32))
	require.NoError(t, second.Initialize(context.Background()))

	a, _ := first.Parameters()
	b, _ := second.Parameters()
	assert.Equal(t, a.String(), b.String())
}

func TestInitialize_RejectsCorruptStoredParameters(t *testing.T) {
	repo := registry.NewMemoryRepository()
	// 1 is not a generator of Z_23^*
	require.NoError(t, repo.SaveParameters(context.Background(), big.NewInt(23), big.NewInt(1)))

	a := New(repo)
	err := a.Initialize(context.Background())
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = a.Parameters()
	assert.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestRegisterGateway_Duplicate(t *testing.T) {
	a, _ := newAuthority(t)
	ctx := context.Background()

	require.NoError(t, a.RegisterGateway(ctx, "GW1", "GW1", 10, 20))
	err := a.RegisterGateway(ctx, "GW1", "GW1", 11, 21)
	assert.ErrorIs(t, err, common.ErrDuplicateGateway)
	assert.ErrorIs(t, err, common.ErrDuplicateRegistration)

	reg, err := a.Gateway(ctx, "GW1")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), reg.Challenge)
}

func TestRegisterGateway_EmptyDeclaredIDDefaultsToGatewayID(t *testing.T) {
	a, _ := newAuthority(t)
	require.NoError(t, a.RegisterGateway(context.Background(), "GW9", "", 1, 2))

	reg, err := a.Gateway(context.Background(), "GW9")
	require.NoError(t, err)
	assert.Equal(t, "GW9", reg.DeclaredID)
}

func TestReceiveCommitment_DuplicateKeepsFirst(t *testing.T) {
	a, _ := newAuthority(t)
	ctx := context.Background()

	first := cryptox.Commitment("user1", []byte("password123"), nil)
	require.NoError(t, a.ReceiveCommitment(ctx, "user1", first))

	err := a.ReceiveCommitment(ctx, "user1", cryptox.Commitment("user1", []byte("other"), nil))
	assert.ErrorIs(t, err, common.ErrDuplicateRegistration)

	stored, err := a.Commitment(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Cmp(first))
}

func TestConfirmCommitment(t *testing.T) {
	a, _ := newAuthority(t)
	ctx := context.Background()

	c := cryptox.Commitment("user1", []byte("password123"), nil)
	require.NoError(t, a.ReceiveCommitment(ctx, "user1", c))

	require.NoError(t, a.ConfirmCommitment(ctx, "user1", c))

	err := a.ConfirmCommitment(ctx, "user1", cryptox.Commitment("user1", []byte("wrong"), nil))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	assert.ErrorIs(t, a.ConfirmCommitment(ctx, "ghost", c), common.ErrUnknownUser)
	assert.ErrorIs(t, a.ConfirmCommitment(ctx, "user1", nil), common.ErrInvalidArgument)

	// confirming is not a second registration
	assert.ErrorIs(t, a.ReceiveCommitment(ctx, "user1", c), common.ErrDuplicateRegistration)
}

func TestWithdrawCommitment_FreesUserID(t *testing.T) {
	a, _ := newAuthority(t)
	ctx := context.Background()

	c := cryptox.Commitment("user1", []byte("password123"), nil)
	require.NoError(t, a.ReceiveCommitment(ctx, "user1", c))

	other := cryptox.Commitment("user1", []byte("other"), nil)
	assert.ErrorIs(t, a.WithdrawCommitment(ctx, "user1", other), common.ErrUnknownUser)

	require.NoError(t, a.WithdrawCommitment(ctx, "user1", c))
	_, err := a.Commitment(ctx, "user1")
	assert.ErrorIs(t, err, common.ErrUnknownUser)

	require.NoError(t, a.ReceiveCommitment(ctx, "user1", other))
}

func TestIssueSessionParameters(t *testing.T) {
	a, _ := newAuthority(t)
	ctx := context.Background()
	require.NoError(t, a.RegisterGateway(ctx, "GW1", "GW1-declared", 77, 0xDEADBEEF))

	sp, err := a.IssueSessionParameters(ctx, "GW1")
	require.NoError(t, err)

	gp, _ := a.Parameters()
	assert.Equal(t, 0, sp.Modulus.Cmp(gp.Modulus))
	assert.Equal(t, 0, sp.Generator.Cmp(gp.Generator))
	assert.Equal(t, uint64(77), sp.Challenge)
	assert.NotEmpty(t, sp.Pseudonym)

	x := cryptox.GatewayKey("GW1-declared", 0xDEADBEEF)
	assert.Equal(t, x, sp.X)
	assert.Equal(t, cryptox.IdentityBinding(x, sp.Pseudonym), sp.IdentityBinding)

	again, err := a.IssueSessionParameters(ctx, "GW1")
	require.NoError(t, err)
	assert.NotEqual(t, sp.Pseudonym, again.Pseudonym)

	_, err = a.IssueSessionParameters(ctx, "GW2")
	assert.ErrorIs(t, err, common.ErrUnknownGateway)
}

func TestIssueSessionParameters_RetriesOnCollision(t *testing.T) {
	pids := []string{"p1", "p1", "p1", "p2"}
	i := 0
	a, _ := newAuthority(t, WithPseudonymSource(func() string {
		p := pids[i]
		i++
		return p
	}))
	ctx := context.Background()
	require.NoError(t, a.RegisterGateway(ctx, "GW1", "GW1", 1, 2))

	first, err := a.IssueSessionParameters(ctx, "GW1")
	require.NoError(t, err)
	second, err := a.IssueSessionParameters(ctx, "GW1")
	require.NoError(t, err)

	assert.Equal(t, "p1", first.Pseudonym)
	assert.Equal(t, "p2", second.Pseudonym)
}

func TestIssueSessionParameters_GivesUpAfterRepeatedCollisions(t *testing.T) {
	a, _ := newAuthority(t, WithPseudonymSource(func() string { return "same" }))
	ctx := context.Background()
	require.NoError(t, a.RegisterGateway(ctx, "GW1", "GW1", 1, 2))

	_, err := a.IssueSessionParameters(ctx, "GW1")
	require.NoError(t, err)
	_, err = a.IssueSessionParameters(ctx, "GW1")
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestComputeVerifier(t *testing.T) {
	a, _ := newAuthority(t)
	gp, _ := a.Parameters()

	secret := big.NewInt(123456789)
	v, err := a.ComputeVerifier(context.Background(), secret)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(new(big.Int).Exp(gp.Generator, secret, gp.Modulus)))

	_, err = a.ComputeVerifier(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

type failingRepo struct {
	registry.Repository
}

func (failingRepo) WithinTx(context.Context, func(context.Context, registry.Repository) error) error {
	return errors.New("db down")
}

func TestInitialize_RepositoryFailureLeavesUninitialized(t *testing.T) {
	a := New(failingRepo{})
	require.Error(t, a.Initialize(context.Background()))
	_, err := a.Parameters()
	assert.ErrorIs(t, err, common.ErrNotInitialized)
}
