// Package grpc exposes the registration authority and the gateway over
// gRPC using the gwauth codec.
package grpc

import (
	"context"
	"math/big"
	"net"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/logging"
	"github.com/dmitrijs2005/gwauth/internal/models"
	pb "github.com/dmitrijs2005/gwauth/internal/proto"
	"google.golang.org/grpc"
)

// Authority is the registration authority as the transport sees it.
type Authority interface {
	ReceiveCommitment(ctx context.Context, userID string, commitment *big.Int) error
	IssueSessionParameters(ctx context.Context, gatewayID string) (*models.SessionParameters, error)
	ConfirmCommitment(ctx context.Context, userID string, commitment *big.Int) error
	WithdrawCommitment(ctx context.Context, userID string, commitment *big.Int) error
}

// Gateway is the gateway as the transport sees it.
type Gateway interface {
	ID() string
	EnrollUser(ctx context.Context, pid string, verifier *big.Int, challenge uint64) error
	ProveIdentity(ctx context.Context, pid string, challenge uint64) ([]byte, error)
	OfferChallenge(ctx context.Context, pid string, t1 *big.Int) (*models.ChallengeOffer, error)
	VerifyAuthentication(ctx context.Context, oldPid, newPid string, t1, n2, t2 *big.Int) (bool, error)
	UpdateCredential(ctx context.Context, pid string, blinded, blinding *big.Int) error
}

type GRPCServer struct {
	address    string
	ra         Authority
	gw         Gateway
	logger     logging.Logger
	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewGRPCServer(a string, l logging.Logger, ra Authority, gw Gateway, secretKey string, sessionTTL time.Duration) (*GRPCServer, error) {
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		ra:         ra,
		gw:         gw,
		jwtSecret:  []byte(secretKey),
		sessionTTL: sessionTTL,
	}, nil
}

// NewServer builds a gRPC server with both services and the interceptor
// chain registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.sessionTokenInterceptor))

	pb.RegisterRegistrationServer(srv, s)
	pb.RegisterGatewayServer(srv, s)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
