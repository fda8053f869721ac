package numtheory

import (
	"fmt"
	"io"
	"math/big"

	"github.com/dmitrijs2005/gwauth/internal/common"
)

// RandInt returns a uniform integer in [0, max) using rejection sampling over
// bytes drawn from rnd. max must be positive.
func RandInt(rnd io.Reader, max *big.Int) (*big.Int, error) {
	if max.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive bound", common.ErrInvalidArgument)
	}

	bits := max.BitLen()
	buf := make([]byte, (bits+7)/8)
	excess := uint(len(buf)*8 - bits)

	n := new(big.Int)
	for {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return nil, fmt.Errorf("read randomness: %w", err)
		}
		buf[0] &= byte(0xff >> excess)
		n.SetBytes(buf)
		if n.Cmp(max) < 0 {
			return n, nil
		}
	}
}

// RandRange returns a uniform integer in [lo, hi).
func RandRange(rnd io.Reader, lo, hi *big.Int) (*big.Int, error) {
	width := new(big.Int).Sub(hi, lo)
	n, err := RandInt(rnd, width)
	if err != nil {
		return nil, err
	}
	return n.Add(n, lo), nil
}

// randOdd returns a random odd integer with exactly bits bits.
func randOdd(rnd io.Reader, bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rnd, buf); err != nil {
		return nil, fmt.Errorf("read randomness: %w", err)
	}

	excess := uint(len(buf)*8 - bits)
	buf[0] &= byte(0xff >> excess)
	buf[0] |= byte(0x80 >> excess)
	buf[len(buf)-1] |= 1

	return new(big.Int).SetBytes(buf), nil
}
