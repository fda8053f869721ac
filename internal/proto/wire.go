// Package proto carries the gwauth.v1 wire contract: request/response
// messages encoded with protowire, the gRPC codec that moves them, and the
// service descriptors for the Registration and Gateway services.
//
// Integers wider than 64 bits travel as unsigned big-endian bytes.
package proto

import (
	"errors"
	"fmt"
	"math/big"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrMalformed = errors.New("malformed message")

// Message is implemented by every gwauth.v1 message.
type Message interface {
	appendWire(b []byte) []byte
	consumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error)
}

func Marshal(m Message) []byte {
	return m.appendWire(nil)
}

// Unmarshal decodes b into m. Unknown fields are skipped.
func Unmarshal(b []byte, m Message) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := m.consumeField(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
			}
		}
		b = b[n:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint64(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func consumeBytes(num protowire.Number, typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("%w: field %d: want length-delimited", ErrMalformed, num)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
	}
	return append([]byte(nil), v...), n, nil
}

func consumeString(num protowire.Number, typ protowire.Type, b []byte) (string, int, error) {
	v, n, err := consumeBytes(num, typ, b)
	return string(v), n, err
}

func consumeUint64(num protowire.Number, typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("%w: field %d: want varint", ErrMalformed, num)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBool(num protowire.Number, typ protowire.Type, b []byte) (bool, int, error) {
	v, n, err := consumeUint64(num, typ, b)
	return protowire.DecodeBool(v), n, err
}

// BigBytes encodes a non-negative integer for the wire. nil encodes as empty.
func BigBytes(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

// BigInt decodes bytes produced by BigBytes.
func BigInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
