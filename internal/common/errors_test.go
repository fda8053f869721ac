package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateErrorsMatchParent(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateUser, ErrDuplicateRegistration)
	assert.ErrorIs(t, ErrDuplicateGateway, ErrDuplicateRegistration)
	assert.NotErrorIs(t, ErrDuplicateUser, ErrDuplicateGateway)
}

func TestWrappedSentinelsStillMatch(t *testing.T) {
	err := fmt.Errorf("enroll: %w", ErrUnknownChallenge)
	assert.True(t, errors.Is(err, ErrUnknownChallenge))
	assert.False(t, errors.Is(err, ErrUnknownPseudonym))
}

func TestTokenErrorsAreUnauthorized(t *testing.T) {
	assert.ErrorIs(t, ErrTokenExpired, ErrUnauthorized)
	assert.ErrorIs(t, ErrInvalidToken, ErrUnauthorized)
}
