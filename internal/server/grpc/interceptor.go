package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gwauth/internal/common"
	pb "github.com/dmitrijs2005/gwauth/internal/proto"
	"github.com/dmitrijs2005/gwauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const sessionPseudonymKey ctxKey = "sessionPseudonym"

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "request failed", args...)
	} else {
		s.logger.Info(ctx, "request", args...)
	}

	return resp, err
}

func sessionPseudonym(ctx context.Context) string {
	pid, _ := ctx.Value(sessionPseudonymKey).(string)
	return pid
}

// sessionTokenInterceptor guards UpdateCredential: the caller must present
// the ticket issued by its last successful authentication, and the ticket's
// pseudonym must be the one being updated.
func (s *GRPCServer) sessionTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == pb.Gateway_UpdateCredential_FullMethodName {

		var sessionToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.SessionTokenHeaderName)
			if len(values) > 0 {
				sessionToken = values[0]
			}
		}
		if len(sessionToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing session token")
		}

		pid, err := auth.SubjectFromToken(sessionToken, s.jwtSecret)
		if err != nil {
			return nil, pb.StatusError(err)
		}

		r, ok := req.(*pb.UpdateCredentialRequest)
		if !ok || r.Pseudonym != pid {
			return nil, status.Error(codes.PermissionDenied, "session belongs to another pseudonym")
		}

		ctx = context.WithValue(ctx, sessionPseudonymKey, pid)
	}

	return handler(ctx, req)
}
