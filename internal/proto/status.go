package proto

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type statusMapping struct {
	err  error
	code codes.Code
}

// Most specific first: the first match names the error on the wire.
var statusTable = []statusMapping{
	{common.ErrDuplicateUser, codes.AlreadyExists},
	{common.ErrDuplicateGateway, codes.AlreadyExists},
	{common.ErrDuplicateRegistration, codes.AlreadyExists},
	{common.ErrPseudonymInUse, codes.AlreadyExists},
	{common.ErrNotInitialized, codes.FailedPrecondition},
	{common.ErrAlreadyInitialized, codes.FailedPrecondition},
	{common.ErrUnknownGateway, codes.NotFound},
	{common.ErrUnknownChallenge, codes.NotFound},
	{common.ErrUnknownPseudonym, codes.NotFound},
	{common.ErrUnknownUser, codes.NotFound},
	{common.ErrInvalidArgument, codes.InvalidArgument},
	{ErrMalformed, codes.InvalidArgument},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrUnauthorized, codes.Unauthenticated},
}

// StatusError converts a domain error into a gRPC status error whose message
// is the matching sentinel's text. Unrecognised errors become Internal
// without leaking their detail.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, m := range statusTable {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, common.ErrInternal.Error())
}

// ErrorFromStatus maps a gRPC error back onto the sentinel StatusError
// produced it from, so callers on both sides of the wire can use errors.Is.
func ErrorFromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, m := range statusTable {
		if st.Code() == m.code && st.Message() == m.err.Error() {
			return m.err
		}
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %w", common.ErrUnavailable, context.DeadlineExceeded)
	case codes.Canceled:
		return context.Canceled
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrInvalidArgument, st.Message())
	case codes.NotFound, codes.AlreadyExists, codes.FailedPrecondition:
		return fmt.Errorf("rpc error: %w", err)
	}
	return fmt.Errorf("%w: %s", common.ErrInternal, st.Message())
}
