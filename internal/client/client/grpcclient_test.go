package client

import (
	"context"
	"math/big"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/client/device"
	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/server/auth"
	"github.com/dmitrijs2005/gwauth/internal/server/gateway"
	servergrpc "github.com/dmitrijs2005/gwauth/internal/server/grpc"
	"github.com/dmitrijs2005/gwauth/internal/server/puf"
	"github.com/dmitrijs2005/gwauth/internal/server/ra"
	"github.com/dmitrijs2005/gwauth/internal/server/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

func seeded(b byte) *rand.ChaCha8 {
	var seed [32]byte
	seed[0] = b
	return rand.NewChaCha8(seed)
}

const jwtSecret = "test-secret"

func startServer(t *testing.T) (*bufconn.Listener, *ra.Authority) {
	t.Helper()
	ctx := context.Background()

	authority := ra.New(registry.NewMemoryRepository(), ra.WithRandom(seeded(1)), ra.WithBits(32))
	require.NoError(t, authority.Initialize(ctx))
	group, err := authority.Parameters()
	require.NoError(t, err)

	gw := gateway.New("GW1", group, puf.NewSimulated([]byte("gw-seed")), gateway.WithRandom(seeded(2)))
	rec, err := gw.PrepareRegistration(ctx)
	require.NoError(t, err)
	require.NoError(t, authority.RegisterGateway(ctx, "GW1", "GW1", rec.Challenge, rec.Response))

	srv, err := servergrpc.NewGRPCServer("bufnet", logging.Nop(), authority, gw, jwtSecret, time.Minute)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	sctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(sctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return lis, authority
}

func dial(t *testing.T, lis *bufconn.Listener) *GRPCClient {
	t.Helper()
	c, err := NewGRPCClient(context.Background(), "passthrough:///bufnet", 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSessionTokenInterceptor(t *testing.T) {
	c := &GRPCClient{}

	var seen []string
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		seen = md.Get(common.SessionTokenHeaderName)
		return nil
	}

	require.NoError(t, c.sessionTokenInterceptor(context.Background(), "/m", nil, nil, nil, invoker))
	assert.Empty(t, seen)

	c.setSessionToken("T1")
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.SessionTokenHeaderName, "stale")
	require.NoError(t, c.sessionTokenInterceptor(ctx, "/m", nil, nil, nil, invoker))
	assert.Equal(t, []string{"T1"}, seen)
}

func TestTimeoutInterceptor(t *testing.T) {
	c := &GRPCClient{timeout: time.Second}

	var deadline time.Time
	var ok bool
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		deadline, ok = ctx.Deadline()
		return nil
	}

	require.NoError(t, c.timeoutInterceptor(context.Background(), "/m", nil, nil, nil, invoker))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)

	c.timeout = 0
	require.NoError(t, c.timeoutInterceptor(context.Background(), "/m", nil, nil, nil, invoker))
	assert.False(t, ok)
}

func TestNewGRPCClient_CachesGatewayID(t *testing.T) {
	lis, _ := startServer(t)
	c := dial(t, lis)
	assert.Equal(t, "GW1", c.ID())
	assert.Empty(t, c.SessionToken())
}

func TestNewGRPCClient_Unavailable(t *testing.T) {
	lis := bufconn.Listen(1 << 10)
	require.NoError(t, lis.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewGRPCClient(ctx, "passthrough:///bufnet", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestDeviceOverGRPC(t *testing.T) {
	ctx := context.Background()
	lis, authority := startServer(t)
	c := dial(t, lis)

	sample := []byte("left-index-minutiae-0042")
	d := device.New("user1", device.WithRandom(seeded(3)))
	require.NoError(t, d.Register(ctx, "password123", sample, c, c))

	err := device.New("user1").Register(ctx, "other", nil, c, c)
	assert.ErrorIs(t, err, common.ErrDuplicateRegistration)

	ok, err := d.Login(ctx, "wrong", sample)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = d.Login(ctx, "password123", sample)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = d.VerifyGateway(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Authenticate(ctx, c)
	require.NoError(t, err)
	require.True(t, ok)

	subject, err := auth.SubjectFromToken(c.SessionToken(), []byte(jwtSecret))
	require.NoError(t, err)
	assert.Equal(t, d.Pseudonym(), subject)

	require.NoError(t, d.UpdatePassword(ctx, "new_password", []byte("right-thumb-0777"), c))

	d.Logout()
	ok, err = d.Login(ctx, "new_password", []byte("right-thumb-0777"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = d.Authenticate(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = authority.Commitment(ctx, "user1")
	assert.NoError(t, err)
}

func TestUpdateCredential_NeedsMatchingSession(t *testing.T) {
	ctx := context.Background()
	lis, _ := startServer(t)
	c := dial(t, lis)

	d := device.New("user1", device.WithRandom(seeded(3)))
	require.NoError(t, d.Register(ctx, "pw", nil, c, c))

	// no ticket yet
	err := c.UpdateCredential(ctx, d.Pseudonym(), big.NewInt(7), big.NewInt(1))
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	ok, _ := d.Login(ctx, "pw", nil)
	require.True(t, ok)
	assert.ErrorIs(t, d.UpdatePassword(ctx, "new", nil, c), common.ErrUnauthorized)

	ok, err = d.Authenticate(ctx, c)
	require.NoError(t, err)
	require.True(t, ok)

	// ticket is bound to the current pseudonym only
	err = c.UpdateCredential(ctx, "someone-else", big.NewInt(7), big.NewInt(1))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestReenrollOverGRPC(t *testing.T) {
	ctx := context.Background()
	lis, _ := startServer(t)
	c := dial(t, lis)

	require.NoError(t, device.New("user1", device.WithRandom(seeded(3))).Register(ctx, "pw", nil, c, c))

	d := device.New("user1", device.WithRandom(seeded(4)))
	assert.ErrorIs(t, d.Reenroll(ctx, "wrong", nil, c, c), common.ErrUnauthorized)
	require.NoError(t, d.Reenroll(ctx, "pw", nil, c, c))

	ok, err := d.Login(ctx, "pw", nil)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = d.Authenticate(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)
}
