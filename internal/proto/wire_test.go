package proto

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, CodecName, c.Name())
}

func TestSessionParameters_RoundTrip(t *testing.T) {
	in := &SessionParameters{
		Modulus:         BigBytes(big.NewInt(4294967291)),
		Generator:       BigBytes(big.NewInt(2)),
		Pseudonym:       "9b2f0d1c-aaaa-4bbb-8ccc-ddddeeeeffff",
		Challenge:       ^uint64(0),
		X:               []byte{1, 2, 3},
		IdentityBinding: []byte{4, 5, 6},
	}

	out := &SessionParameters{}
	require.NoError(t, Unmarshal(Marshal(in), out))
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal_ZeroValuesAreOmitted(t *testing.T) {
	assert.Empty(t, Marshal(&VerifyAuthenticationResponse{}))
	assert.Empty(t, Marshal(&EnrollUserRequest{}))
}

func TestUnmarshal_SkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "from a newer peer")
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "token")

	out := &VerifyAuthenticationResponse{}
	require.NoError(t, Unmarshal(b, out))
	assert.True(t, out.Ok)
	assert.Equal(t, "token", out.SessionToken)
}

func TestUnmarshal_RejectsWrongWireType(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	err := Unmarshal(b, &CommitmentRequest{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnmarshal_RejectsTruncatedInput(t *testing.T) {
	b := Marshal(&CommitmentRequest{UserId: "user1", Commitment: []byte{9, 9, 9}})
	err := Unmarshal(b[:len(b)-1], &CommitmentRequest{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUnmarshal_DoesNotAliasInput(t *testing.T) {
	b := Marshal(&EnrollUserRequest{Verifier: []byte{1, 2, 3}})
	out := &EnrollUserRequest{}
	require.NoError(t, Unmarshal(b, out))

	for i := range b {
		b[i] = 0
	}
	assert.Equal(t, []byte{1, 2, 3}, out.Verifier)
}

func TestCodec_RejectsForeignTypes(t *testing.T) {
	c := codec{}
	_, err := c.Marshal("not a message")
	assert.Error(t, err)
	assert.Error(t, c.Unmarshal(nil, new(int)))
}

func TestBigInt(t *testing.T) {
	assert.Nil(t, BigBytes(nil))
	assert.Equal(t, 0, BigInt(nil).Sign())

	v, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, 0, BigInt(BigBytes(v)).Cmp(v))
}
