package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/gwauth/internal/proto"
	"github.com/dmitrijs2005/gwauth/internal/server/auth"
)

func (s *GRPCServer) ReceiveCommitment(ctx context.Context, req *pb.CommitmentRequest) (*pb.Empty, error) {

	if err := s.ra.ReceiveCommitment(ctx, req.UserId, pb.BigInt(req.Commitment)); err != nil {
		s.logger.Warn(ctx, "commitment rejected", "user_id", req.UserId, "error", err)
		return nil, pb.StatusError(err)
	}

	return &pb.Empty{}, nil
}

func (s *GRPCServer) IssueSessionParameters(ctx context.Context, req *pb.IssueSessionParametersRequest) (*pb.SessionParameters, error) {

	sp, err := s.ra.IssueSessionParameters(ctx, req.GatewayId)
	if err != nil {
		return nil, pb.StatusError(err)
	}

	return &pb.SessionParameters{
		Modulus:         pb.BigBytes(sp.Modulus),
		Generator:       pb.BigBytes(sp.Generator),
		Pseudonym:       sp.Pseudonym,
		Challenge:       sp.Challenge,
		X:               sp.X,
		IdentityBinding: sp.IdentityBinding,
	}, nil
}

func (s *GRPCServer) ConfirmCommitment(ctx context.Context, req *pb.CommitmentRequest) (*pb.Empty, error) {

	if err := s.ra.ConfirmCommitment(ctx, req.UserId, pb.BigInt(req.Commitment)); err != nil {
		s.logger.Warn(ctx, "commitment not confirmed", "user_id", req.UserId, "error", err)
		return nil, pb.StatusError(err)
	}

	return &pb.Empty{}, nil
}

func (s *GRPCServer) WithdrawCommitment(ctx context.Context, req *pb.CommitmentRequest) (*pb.Empty, error) {

	if err := s.ra.WithdrawCommitment(ctx, req.UserId, pb.BigInt(req.Commitment)); err != nil {
		s.logger.Warn(ctx, "commitment not withdrawn", "user_id", req.UserId, "error", err)
		return nil, pb.StatusError(err)
	}

	return &pb.Empty{}, nil
}

func (s *GRPCServer) GatewayID(ctx context.Context, req *pb.Empty) (*pb.GatewayIDResponse, error) {
	return &pb.GatewayIDResponse{GatewayId: s.gw.ID()}, nil
}

func (s *GRPCServer) EnrollUser(ctx context.Context, req *pb.EnrollUserRequest) (*pb.Empty, error) {

	if err := s.gw.EnrollUser(ctx, req.Pseudonym, pb.BigInt(req.Verifier), req.Challenge); err != nil {
		return nil, pb.StatusError(err)
	}

	return &pb.Empty{}, nil
}

func (s *GRPCServer) ProveIdentity(ctx context.Context, req *pb.ProveIdentityRequest) (*pb.ProveIdentityResponse, error) {
	proof, err := s.gw.ProveIdentity(ctx, req.Pseudonym, req.Challenge)
	if err != nil {
		return nil, pb.StatusError(err)
	}

	return &pb.ProveIdentityResponse{Proof: proof}, nil
}

func (s *GRPCServer) OfferChallenge(ctx context.Context, req *pb.OfferChallengeRequest) (*pb.OfferChallengeResponse, error) {

	offer, err := s.gw.OfferChallenge(ctx, req.Pseudonym, pb.BigInt(req.T1))
	if err != nil {
		return nil, pb.StatusError(err)
	}

	return &pb.OfferChallengeResponse{NewPseudonym: offer.NewPseudonym, N2: pb.BigBytes(offer.N2)}, nil
}

// VerifyAuthentication issues a session ticket for the new pseudonym when
// the proof is accepted.
func (s *GRPCServer) VerifyAuthentication(ctx context.Context, req *pb.VerifyAuthenticationRequest) (*pb.VerifyAuthenticationResponse, error) {

	ok, err := s.gw.VerifyAuthentication(ctx, req.OldPseudonym, req.NewPseudonym,
		pb.BigInt(req.T1), pb.BigInt(req.N2), pb.BigInt(req.T2))
	if err != nil {
		return nil, pb.StatusError(err)
	}
	if !ok {
		return &pb.VerifyAuthenticationResponse{}, nil
	}

	token, err := auth.GenerateToken(req.NewPseudonym, s.jwtSecret, s.sessionTTL)
	if err != nil {
		s.logger.Error(ctx, "issue session token", "error", err)
		return nil, pb.StatusError(err)
	}

	return &pb.VerifyAuthenticationResponse{Ok: true, SessionToken: token}, nil
}

func (s *GRPCServer) UpdateCredential(ctx context.Context, req *pb.UpdateCredentialRequest) (*pb.Empty, error) {

	err := s.gw.UpdateCredential(ctx, req.Pseudonym, pb.BigInt(req.BlindedVerifier), pb.BigInt(req.BlindingFactor))
	if err != nil {
		return nil, pb.StatusError(err)
	}

	s.logger.Debug(ctx, "credential updated", "session", sessionPseudonym(ctx))

	return &pb.Empty{}, nil
}
