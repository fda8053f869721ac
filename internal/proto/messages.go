package proto

import "google.golang.org/protobuf/encoding/protowire"

type Empty struct{}

func (m *Empty) appendWire(b []byte) []byte { return b }
func (m *Empty) consumeField(protowire.Number, protowire.Type, []byte) (int, error) {
	return 0, nil
}

type CommitmentRequest struct {
	UserId     string
	Commitment []byte
}

func (m *CommitmentRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.UserId)
	return appendBytes(b, 2, m.Commitment)
}

func (m *CommitmentRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.UserId, n, err = consumeString(num, typ, b)
	case 2:
		m.Commitment, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}

type IssueSessionParametersRequest struct {
	GatewayId string
}

func (m *IssueSessionParametersRequest) appendWire(b []byte) []byte {
	return appendString(b, 1, m.GatewayId)
}

func (m *IssueSessionParametersRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	if num == 1 {
		m.GatewayId, n, err = consumeString(num, typ, b)
	}
	return n, err
}

type SessionParameters struct {
	Modulus         []byte
	Generator       []byte
	Pseudonym       string
	Challenge       uint64
	X               []byte
	IdentityBinding []byte
}

func (m *SessionParameters) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.Modulus)
	b = appendBytes(b, 2, m.Generator)
	b = appendString(b, 3, m.Pseudonym)
	b = appendUint64(b, 4, m.Challenge)
	b = appendBytes(b, 5, m.X)
	return appendBytes(b, 6, m.IdentityBinding)
}

func (m *SessionParameters) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.Modulus, n, err = consumeBytes(num, typ, b)
	case 2:
		m.Generator, n, err = consumeBytes(num, typ, b)
	case 3:
		m.Pseudonym, n, err = consumeString(num, typ, b)
	case 4:
		m.Challenge, n, err = consumeUint64(num, typ, b)
	case 5:
		m.X, n, err = consumeBytes(num, typ, b)
	case 6:
		m.IdentityBinding, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}

type GatewayIDResponse struct {
	GatewayId string
}

func (m *GatewayIDResponse) appendWire(b []byte) []byte {
	return appendString(b, 1, m.GatewayId)
}

func (m *GatewayIDResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	if num == 1 {
		m.GatewayId, n, err = consumeString(num, typ, b)
	}
	return n, err
}

type EnrollUserRequest struct {
	Pseudonym string
	Verifier  []byte
	Challenge uint64
}

func (m *EnrollUserRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Pseudonym)
	b = appendBytes(b, 2, m.Verifier)
	return appendUint64(b, 3, m.Challenge)
}

func (m *EnrollUserRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.Pseudonym, n, err = consumeString(num, typ, b)
	case 2:
		m.Verifier, n, err = consumeBytes(num, typ, b)
	case 3:
		m.Challenge, n, err = consumeUint64(num, typ, b)
	}
	return n, err
}

type ProveIdentityRequest struct {
	Pseudonym string
	Challenge uint64
}

func (m *ProveIdentityRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Pseudonym)
	return appendUint64(b, 2, m.Challenge)
}

func (m *ProveIdentityRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.Pseudonym, n, err = consumeString(num, typ, b)
	case 2:
		m.Challenge, n, err = consumeUint64(num, typ, b)
	}
	return n, err
}

// ProveIdentityResponse carries an empty proof when the gateway refused.
type ProveIdentityResponse struct {
	Proof []byte
}

func (m *ProveIdentityResponse) appendWire(b []byte) []byte {
	return appendBytes(b, 1, m.Proof)
}

func (m *ProveIdentityResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	if num == 1 {
		m.Proof, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}

type OfferChallengeRequest struct {
	Pseudonym string
	T1        []byte
}

func (m *OfferChallengeRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Pseudonym)
	return appendBytes(b, 2, m.T1)
}

func (m *OfferChallengeRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.Pseudonym, n, err = consumeString(num, typ, b)
	case 2:
		m.T1, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}

type OfferChallengeResponse struct {
	NewPseudonym string
	N2           []byte
}

func (m *OfferChallengeResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.NewPseudonym)
	return appendBytes(b, 2, m.N2)
}

func (m *OfferChallengeResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.NewPseudonym, n, err = consumeString(num, typ, b)
	case 2:
		m.N2, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}

type VerifyAuthenticationRequest struct {
	OldPseudonym string
	NewPseudonym string
	T1           []byte
	N2           []byte
	T2           []byte
}

func (m *VerifyAuthenticationRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.OldPseudonym)
	b = appendString(b, 2, m.NewPseudonym)
	b = appendBytes(b, 3, m.T1)
	b = appendBytes(b, 4, m.N2)
	return appendBytes(b, 5, m.T2)
}

func (m *VerifyAuthenticationRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.OldPseudonym, n, err = consumeString(num, typ, b)
	case 2:
		m.NewPseudonym, n, err = consumeString(num, typ, b)
	case 3:
		m.T1, n, err = consumeBytes(num, typ, b)
	case 4:
		m.N2, n, err = consumeBytes(num, typ, b)
	case 5:
		m.T2, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}

type VerifyAuthenticationResponse struct {
	Ok           bool
	SessionToken string
}

func (m *VerifyAuthenticationResponse) appendWire(b []byte) []byte {
	b = appendBool(b, 1, m.Ok)
	return appendString(b, 2, m.SessionToken)
}

func (m *VerifyAuthenticationResponse) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.Ok, n, err = consumeBool(num, typ, b)
	case 2:
		m.SessionToken, n, err = consumeString(num, typ, b)
	}
	return n, err
}

type UpdateCredentialRequest struct {
	Pseudonym       string
	BlindedVerifier []byte
	BlindingFactor  []byte
}

func (m *UpdateCredentialRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Pseudonym)
	b = appendBytes(b, 2, m.BlindedVerifier)
	return appendBytes(b, 3, m.BlindingFactor)
}

func (m *UpdateCredentialRequest) consumeField(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
	switch num {
	case 1:
		m.Pseudonym, n, err = consumeString(num, typ, b)
	case 2:
		m.BlindedVerifier, n, err = consumeBytes(num, typ, b)
	case 3:
		m.BlindingFactor, n, err = consumeBytes(num, typ, b)
	}
	return n, err
}
