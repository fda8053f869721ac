package client

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/dmitrijs2005/gwauth/internal/models"
	pb "github.com/dmitrijs2005/gwauth/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	reg         pb.RegistrationClient
	gw          pb.GatewayClient
	gatewayID   string

	mu           sync.Mutex
	sessionToken string
}

func withSessionToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.SessionToken(); token != "" {
		ctx = withSessionToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL and asks the gateway for its id. Extra
// dial options are appended after the defaults.
func NewGRPCClient(ctx context.Context, endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}

	resp, err := c.gw.GatewayID(ctx, &pb.Empty{})
	if err != nil {
		_ = c.conn.Close()
		return nil, fmt.Errorf("fetch gateway id: %w", c.mapError(err))
	}
	c.gatewayID = resp.GatewayId
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(s.timeoutInterceptor, s.sessionTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.reg = pb.NewRegistrationClient(conn)
	s.gw = pb.NewGatewayClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// ID is the gateway id fetched at connect time.
func (s *GRPCClient) ID() string {
	return s.gatewayID
}

// SessionToken is the ticket from the last accepted handshake, or "".
func (s *GRPCClient) SessionToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionToken
}

func (s *GRPCClient) setSessionToken(token string) {
	s.mu.Lock()
	s.sessionToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) ReceiveCommitment(ctx context.Context, userID string, commitment *big.Int) error {
	req := &pb.CommitmentRequest{UserId: userID, Commitment: pb.BigBytes(commitment)}
	if _, err := s.reg.ReceiveCommitment(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) IssueSessionParameters(ctx context.Context, gatewayID string) (*models.SessionParameters, error) {
	resp, err := s.reg.IssueSessionParameters(ctx, &pb.IssueSessionParametersRequest{GatewayId: gatewayID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.SessionParameters{
		Modulus:         pb.BigInt(resp.Modulus),
		Generator:       pb.BigInt(resp.Generator),
		Pseudonym:       resp.Pseudonym,
		Challenge:       resp.Challenge,
		X:               resp.X,
		IdentityBinding: resp.IdentityBinding,
	}, nil
}

func (s *GRPCClient) ConfirmCommitment(ctx context.Context, userID string, commitment *big.Int) error {
	req := &pb.CommitmentRequest{UserId: userID, Commitment: pb.BigBytes(commitment)}
	if _, err := s.reg.ConfirmCommitment(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) WithdrawCommitment(ctx context.Context, userID string, commitment *big.Int) error {
	req := &pb.CommitmentRequest{UserId: userID, Commitment: pb.BigBytes(commitment)}
	if _, err := s.reg.WithdrawCommitment(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) EnrollUser(ctx context.Context, pid string, verifier *big.Int, challenge uint64) error {
	req := &pb.EnrollUserRequest{Pseudonym: pid, Verifier: pb.BigBytes(verifier), Challenge: challenge}
	if _, err := s.gw.EnrollUser(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ProveIdentity(ctx context.Context, pid string, challenge uint64) ([]byte, error) {
	resp, err := s.gw.ProveIdentity(ctx, &pb.ProveIdentityRequest{Pseudonym: pid, Challenge: challenge})
	if err != nil {
		return nil, s.mapError(err)
	}
	if len(resp.Proof) == 0 {
		return nil, nil
	}
	return resp.Proof, nil
}

func (s *GRPCClient) OfferChallenge(ctx context.Context, pid string, t1 *big.Int) (*models.ChallengeOffer, error) {
	resp, err := s.gw.OfferChallenge(ctx, &pb.OfferChallengeRequest{Pseudonym: pid, T1: pb.BigBytes(t1)})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &models.ChallengeOffer{
		OldPseudonym: pid,
		NewPseudonym: resp.NewPseudonym,
		N2:           pb.BigInt(resp.N2),
		T1:           t1,
		IssuedAt:     time.Now(),
	}, nil
}

// VerifyAuthentication keeps the session ticket when the gateway accepts.
func (s *GRPCClient) VerifyAuthentication(ctx context.Context, oldPid, newPid string, t1, n2, t2 *big.Int) (bool, error) {
	req := &pb.VerifyAuthenticationRequest{
		OldPseudonym: oldPid,
		NewPseudonym: newPid,
		T1:           pb.BigBytes(t1),
		N2:           pb.BigBytes(n2),
		T2:           pb.BigBytes(t2),
	}
	resp, err := s.gw.VerifyAuthentication(ctx, req)
	if err != nil {
		return false, s.mapError(err)
	}
	if !resp.Ok {
		return false, nil
	}
	s.setSessionToken(resp.SessionToken)
	return true, nil
}

func (s *GRPCClient) UpdateCredential(ctx context.Context, pid string, blinded, blinding *big.Int) error {
	req := &pb.UpdateCredentialRequest{
		Pseudonym:       pid,
		BlindedVerifier: pb.BigBytes(blinded),
		BlindingFactor:  pb.BigBytes(blinding),
	}
	if _, err := s.gw.UpdateCredential(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	return pb.ErrorFromStatus(err)
}
