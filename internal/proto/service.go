package proto

import (
	"context"

	"google.golang.org/grpc"
)

const (
	RegistrationServiceName = "gwauth.v1.Registration"
	GatewayServiceName      = "gwauth.v1.Gateway"

	Registration_ReceiveCommitment_FullMethodName      = "/gwauth.v1.Registration/ReceiveCommitment"
	Registration_IssueSessionParameters_FullMethodName = "/gwauth.v1.Registration/IssueSessionParameters"
	Registration_ConfirmCommitment_FullMethodName      = "/gwauth.v1.Registration/ConfirmCommitment"
	Registration_WithdrawCommitment_FullMethodName     = "/gwauth.v1.Registration/WithdrawCommitment"

	Gateway_GatewayID_FullMethodName            = "/gwauth.v1.Gateway/GatewayID"
	Gateway_EnrollUser_FullMethodName           = "/gwauth.v1.Gateway/EnrollUser"
	Gateway_ProveIdentity_FullMethodName        = "/gwauth.v1.Gateway/ProveIdentity"
	Gateway_OfferChallenge_FullMethodName       = "/gwauth.v1.Gateway/OfferChallenge"
	Gateway_VerifyAuthentication_FullMethodName = "/gwauth.v1.Gateway/VerifyAuthentication"
	Gateway_UpdateCredential_FullMethodName     = "/gwauth.v1.Gateway/UpdateCredential"
)

type RegistrationServer interface {
	ReceiveCommitment(context.Context, *CommitmentRequest) (*Empty, error)
	IssueSessionParameters(context.Context, *IssueSessionParametersRequest) (*SessionParameters, error)
	ConfirmCommitment(context.Context, *CommitmentRequest) (*Empty, error)
	WithdrawCommitment(context.Context, *CommitmentRequest) (*Empty, error)
}

type GatewayServer interface {
	GatewayID(context.Context, *Empty) (*GatewayIDResponse, error)
	EnrollUser(context.Context, *EnrollUserRequest) (*Empty, error)
	ProveIdentity(context.Context, *ProveIdentityRequest) (*ProveIdentityResponse, error)
	OfferChallenge(context.Context, *OfferChallengeRequest) (*OfferChallengeResponse, error)
	VerifyAuthentication(context.Context, *VerifyAuthenticationRequest) (*VerifyAuthenticationResponse, error)
	UpdateCredential(context.Context, *UpdateCredentialRequest) (*Empty, error)
}

// unary builds a method descriptor that decodes Req and hands it to call,
// going through the server's interceptor chain when there is one.
func unary[S any, Req any, PReq interface {
	*Req
	Message
}, Resp Message](name, fullMethod string, call func(S, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var Registration_ServiceDesc = grpc.ServiceDesc{
	ServiceName: RegistrationServiceName,
	HandlerType: (*RegistrationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[RegistrationServer, CommitmentRequest]("ReceiveCommitment", Registration_ReceiveCommitment_FullMethodName, RegistrationServer.ReceiveCommitment),
		unary[RegistrationServer, IssueSessionParametersRequest]("IssueSessionParameters", Registration_IssueSessionParameters_FullMethodName, RegistrationServer.IssueSessionParameters),
		unary[RegistrationServer, CommitmentRequest]("ConfirmCommitment", Registration_ConfirmCommitment_FullMethodName, RegistrationServer.ConfirmCommitment),
		unary[RegistrationServer, CommitmentRequest]("WithdrawCommitment", Registration_WithdrawCommitment_FullMethodName, RegistrationServer.WithdrawCommitment),
	},
	Metadata: "gwauth/v1/gwauth.proto",
}

var Gateway_ServiceDesc = grpc.ServiceDesc{
	ServiceName: GatewayServiceName,
	HandlerType: (*GatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[GatewayServer, Empty]("GatewayID", Gateway_GatewayID_FullMethodName, GatewayServer.GatewayID),
		unary[GatewayServer, EnrollUserRequest]("EnrollUser", Gateway_EnrollUser_FullMethodName, GatewayServer.EnrollUser),
		unary[GatewayServer, ProveIdentityRequest]("ProveIdentity", Gateway_ProveIdentity_FullMethodName, GatewayServer.ProveIdentity),
		unary[GatewayServer, OfferChallengeRequest]("OfferChallenge", Gateway_OfferChallenge_FullMethodName, GatewayServer.OfferChallenge),
		unary[GatewayServer, VerifyAuthenticationRequest]("VerifyAuthentication", Gateway_VerifyAuthentication_FullMethodName, GatewayServer.VerifyAuthentication),
		unary[GatewayServer, UpdateCredentialRequest]("UpdateCredential", Gateway_UpdateCredential_FullMethodName, GatewayServer.UpdateCredential),
	},
	Metadata: "gwauth/v1/gwauth.proto",
}

func RegisterRegistrationServer(s grpc.ServiceRegistrar, srv RegistrationServer) {
	s.RegisterService(&Registration_ServiceDesc, srv)
}

func RegisterGatewayServer(s grpc.ServiceRegistrar, srv GatewayServer) {
	s.RegisterService(&Gateway_ServiceDesc, srv)
}

type RegistrationClient interface {
	ReceiveCommitment(ctx context.Context, in *CommitmentRequest, opts ...grpc.CallOption) (*Empty, error)
	IssueSessionParameters(ctx context.Context, in *IssueSessionParametersRequest, opts ...grpc.CallOption) (*SessionParameters, error)
	ConfirmCommitment(ctx context.Context, in *CommitmentRequest, opts ...grpc.CallOption) (*Empty, error)
	WithdrawCommitment(ctx context.Context, in *CommitmentRequest, opts ...grpc.CallOption) (*Empty, error)
}

type registrationClient struct {
	cc grpc.ClientConnInterface
}

func NewRegistrationClient(cc grpc.ClientConnInterface) RegistrationClient {
	return &registrationClient{cc: cc}
}

func (c *registrationClient) ReceiveCommitment(ctx context.Context, in *CommitmentRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, Registration_ReceiveCommitment_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *registrationClient) IssueSessionParameters(ctx context.Context, in *IssueSessionParametersRequest, opts ...grpc.CallOption) (*SessionParameters, error) {
	out := new(SessionParameters)
	if err := c.cc.Invoke(ctx, Registration_IssueSessionParameters_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *registrationClient) ConfirmCommitment(ctx context.Context, in *CommitmentRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, Registration_ConfirmCommitment_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *registrationClient) WithdrawCommitment(ctx context.Context, in *CommitmentRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, Registration_WithdrawCommitment_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

type GatewayClient interface {
	GatewayID(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GatewayIDResponse, error)
	EnrollUser(ctx context.Context, in *EnrollUserRequest, opts ...grpc.CallOption) (*Empty, error)
	ProveIdentity(ctx context.Context, in *ProveIdentityRequest, opts ...grpc.CallOption) (*ProveIdentityResponse, error)
	OfferChallenge(ctx context.Context, in *OfferChallengeRequest, opts ...grpc.CallOption) (*OfferChallengeResponse, error)
	VerifyAuthentication(ctx context.Context, in *VerifyAuthenticationRequest, opts ...grpc.CallOption) (*VerifyAuthenticationResponse, error)
	UpdateCredential(ctx context.Context, in *UpdateCredentialRequest, opts ...grpc.CallOption) (*Empty, error)
}

type gatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewGatewayClient(cc grpc.ClientConnInterface) GatewayClient {
	return &gatewayClient{cc: cc}
}

func (c *gatewayClient) GatewayID(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GatewayIDResponse, error) {
	out := new(GatewayIDResponse)
	if err := c.cc.Invoke(ctx, Gateway_GatewayID_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gatewayClient) EnrollUser(ctx context.Context, in *EnrollUserRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, Gateway_EnrollUser_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gatewayClient) ProveIdentity(ctx context.Context, in *ProveIdentityRequest, opts ...grpc.CallOption) (*ProveIdentityResponse, error) {
	out := new(ProveIdentityResponse)
	if err := c.cc.Invoke(ctx, Gateway_ProveIdentity_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gatewayClient) OfferChallenge(ctx context.Context, in *OfferChallengeRequest, opts ...grpc.CallOption) (*OfferChallengeResponse, error) {
	out := new(OfferChallengeResponse)
	if err := c.cc.Invoke(ctx, Gateway_OfferChallenge_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gatewayClient) VerifyAuthentication(ctx context.Context, in *VerifyAuthenticationRequest, opts ...grpc.CallOption) (*VerifyAuthenticationResponse, error) {
	out := new(VerifyAuthenticationResponse)
	if err := c.cc.Invoke(ctx, Gateway_VerifyAuthentication_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gatewayClient) UpdateCredential(ctx context.Context, in *UpdateCredentialRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, Gateway_UpdateCredential_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
