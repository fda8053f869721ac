package fuzzy

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gwauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReproduce_SameCallRecoversSecret(t *testing.T) {
	e := New(rand.Reader)
	samples := [][]byte{
		[]byte("fingerprint-template-01"),
		{0xff, 0xfe, 0x00, 0x01},
		bytes.Repeat([]byte{0xaa}, 256),
	}

	for _, s := range samples {
		helper, secret, err := e.Generate(s)
		require.NoError(t, err)
		require.Len(t, helper, len(s))

		got, err := e.Reproduce(s, helper)
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	}
}

func TestGenerate_FreshPadEachCall(t *testing.T) {
	e := New(rand.Reader)
	s := []byte("iris-code-sample-0123456789")

	h1, s1, err := e.Generate(s)
	require.NoError(t, err)
	_, s2, err := e.Generate(s)
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)

	got, err := e.Reproduce(s, h1)
	require.NoError(t, err)
	assert.Equal(t, s1, got)
	assert.NotEqual(t, s2, got)
}

func TestReproduce_DifferentSampleGivesDifferentSecret(t *testing.T) {
	e := New(rand.Reader)
	helper, secret, err := e.Generate([]byte("correct-sample"))
	require.NoError(t, err)

	got, err := e.Reproduce([]byte("correct-sampla"), helper)
	require.NoError(t, err)
	assert.NotEqual(t, secret, got)
}

func TestReproduce_LengthMismatch(t *testing.T) {
	e := New(rand.Reader)
	helper, _, err := e.Generate([]byte("abcdef"))
	require.NoError(t, err)

	_, err = e.Reproduce([]byte("abc"), helper)
	assert.ErrorIs(t, err, common.ErrLengthMismatch)
}

func TestEmptySample(t *testing.T) {
	e := New(rand.Reader)
	_, _, err := e.Generate(nil)
	assert.ErrorIs(t, err, common.ErrEmptySample)

	_, err = e.Reproduce(nil, nil)
	assert.ErrorIs(t, err, common.ErrEmptySample)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerate_RandomnessFailure(t *testing.T) {
	_, _, err := New(failingReader{}).Generate([]byte("x"))
	require.Error(t, err)
}
