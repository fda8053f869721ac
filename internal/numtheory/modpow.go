// Package numtheory provides the discrete-log arithmetic the protocol runs
// on: modular exponentiation, safe-prime group generation, primitive-root
// search and factoring of small group orders.
//
// Every function that needs randomness takes an io.Reader so that tests can
// replay a fixed seed; production callers pass crypto/rand.Reader.
package numtheory

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/gwauth/internal/common"
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// ModPow computes base^exponent mod modulus by right-to-left
// square-and-multiply. The result is always in [0, modulus).
//
// exponent = 0 yields 1 (0 when modulus = 1). modulus = 0 fails with
// common.ErrZeroModulus; a negative modulus or exponent fails with
// common.ErrInvalidArgument.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	switch {
	case modulus.Sign() == 0:
		return nil, common.ErrZeroModulus
	case modulus.Sign() < 0:
		return nil, fmt.Errorf("%w: negative modulus", common.ErrInvalidArgument)
	case exponent.Sign() < 0:
		return nil, fmt.Errorf("%w: negative exponent", common.ErrInvalidArgument)
	}

	if modulus.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, modulus)

	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
	}

	return result, nil
}
