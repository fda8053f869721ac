package proto

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusError_Codes(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrDuplicateUser, codes.AlreadyExists},
		{fmt.Errorf("ra: %w", common.ErrDuplicateGateway), codes.AlreadyExists},
		{common.ErrNotInitialized, codes.FailedPrecondition},
		{common.ErrUnknownPseudonym, codes.NotFound},
		{fmt.Errorf("%w: t1 outside the group", common.ErrInvalidArgument), codes.InvalidArgument},
		{common.ErrTokenExpired, codes.Unauthenticated},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("disk on fire"), codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, status.Code(StatusError(tc.err)), tc.err.Error())
	}
	assert.NoError(t, StatusError(nil))
}

func TestStatusError_HidesInternalDetail(t *testing.T) {
	st, _ := status.FromError(StatusError(errors.New("password=hunter2")))
	assert.NotContains(t, st.Message(), "hunter2")
}

func TestStatusRoundTrip_PreservesSentinels(t *testing.T) {
	for _, m := range statusTable {
		back := ErrorFromStatus(StatusError(fmt.Errorf("wrapped: %w", m.err)))
		assert.ErrorIs(t, back, m.err, m.err.Error())
	}
	assert.ErrorIs(t, ErrorFromStatus(StatusError(common.ErrDuplicateUser)), common.ErrDuplicateRegistration)
}

func TestErrorFromStatus_Transport(t *testing.T) {
	assert.ErrorIs(t, ErrorFromStatus(status.Error(codes.Unavailable, "conn refused")), common.ErrUnavailable)
	assert.ErrorIs(t, ErrorFromStatus(status.Error(codes.DeadlineExceeded, "slow")), common.ErrUnavailable)
	assert.ErrorIs(t, ErrorFromStatus(status.Error(codes.PermissionDenied, "other pseudonym")), common.ErrUnauthorized)
	assert.ErrorIs(t, ErrorFromStatus(status.Error(codes.Internal, "boom")), common.ErrInternal)

	plain := errors.New("not a status")
	assert.Equal(t, plain, ErrorFromStatus(plain))
}
