package numtheory

import (
	"fmt"
	"io"
	"math/big"

	"github.com/dmitrijs2005/gwauth/internal/common"
)

// MinBits is the smallest modulus size GenerateGroupParameters accepts.
const MinBits = 8

// GroupParameters is the multiplicative group Z_p^* together with a
// generator. Values are immutable once built; share them with Clone.
type GroupParameters struct {
	Modulus   *big.Int
	Generator *big.Int

	// factors holds the distinct prime factors of Modulus-1 when known.
	factors []*big.Int
}

// GenerateGroupParameters picks a random safe prime p of the given size and
// searches [2, p-2] for a primitive root. The search loops until a candidate
// passes; for a safe prime roughly half of all candidates do.
func GenerateGroupParameters(rnd io.Reader, bits int) (*GroupParameters, error) {
	if bits < MinBits {
		return nil, fmt.Errorf("%w: group size %d below %d bits", common.ErrInvalidArgument, bits, MinBits)
	}

	p, q, err := SafePrime(rnd, bits)
	if err != nil {
		return nil, fmt.Errorf("safe prime: %w", err)
	}
	factors := []*big.Int{big.NewInt(2), q}

	upper := new(big.Int).Sub(p, one) // candidates in [2, p-2]
	for {
		g, err := RandRange(rnd, two, upper)
		if err != nil {
			return nil, fmt.Errorf("generator candidate: %w", err)
		}
		if IsPrimitiveRoot(g, p, factors) {
			return &GroupParameters{Modulus: p, Generator: g, factors: factors}, nil
		}
	}
}

// NewGroupParameters validates p and g and returns the group they describe.
func NewGroupParameters(modulus, generator *big.Int) (*GroupParameters, error) {
	gp := &GroupParameters{
		Modulus:   new(big.Int).Set(modulus),
		Generator: new(big.Int).Set(generator),
	}
	if err := gp.Validate(); err != nil {
		return nil, err
	}
	return gp, nil
}

// IsPrimitiveRoot reports whether g generates Z_p^*, given the distinct prime
// factors of p-1: g^((p-1)/f) mod p must differ from 1 for every factor f.
func IsPrimitiveRoot(g, p *big.Int, factors []*big.Int) bool {
	order := new(big.Int).Sub(p, one)
	e := new(big.Int)
	for _, f := range factors {
		e.Quo(order, f)
		r, err := ModPow(g, e, p)
		if err != nil || r.Cmp(one) == 0 {
			return false
		}
	}
	return true
}

// Validate checks that Modulus is prime and Generator is a primitive root.
func (gp *GroupParameters) Validate() error {
	if gp == nil || gp.Modulus == nil || gp.Generator == nil {
		return fmt.Errorf("%w: missing group parameters", common.ErrInvalidArgument)
	}
	p := gp.Modulus
	if p.Cmp(big.NewInt(5)) < 0 || !p.ProbablyPrime(millerRabinRounds) {
		return fmt.Errorf("%w: modulus is not a usable prime", common.ErrInvalidArgument)
	}
	upper := new(big.Int).Sub(p, one)
	if gp.Generator.Cmp(two) < 0 || gp.Generator.Cmp(upper) >= 0 {
		return fmt.Errorf("%w: generator out of range", common.ErrInvalidArgument)
	}
	if !IsPrimitiveRoot(gp.Generator, p, gp.orderFactors()) {
		return fmt.Errorf("%w: generator is not a primitive root", common.ErrInvalidArgument)
	}
	return nil
}

func (gp *GroupParameters) orderFactors() []*big.Int {
	if gp.factors != nil {
		return gp.factors
	}
	order := new(big.Int).Sub(gp.Modulus, one)
	q := new(big.Int).Rsh(order, 1)
	if order.Bit(0) == 0 && q.ProbablyPrime(millerRabinRounds) {
		gp.factors = []*big.Int{big.NewInt(2), q}
	} else {
		gp.factors = PrimeFactors(order)
	}
	return gp.factors
}

// Order returns p-1, the order of the group.
func (gp *GroupParameters) Order() *big.Int {
	return new(big.Int).Sub(gp.Modulus, one)
}

// Exp returns base^e mod p. Negative exponents are reduced modulo p-1.
func (gp *GroupParameters) Exp(base, e *big.Int) *big.Int {
	if e.Sign() < 0 {
		e = new(big.Int).Mod(e, gp.Order())
	}
	// cannot fail: modulus > 1 and e >= 0
	r, _ := ModPow(base, e, gp.Modulus)
	return r
}

// GenExp returns g^e mod p.
func (gp *GroupParameters) GenExp(e *big.Int) *big.Int {
	return gp.Exp(gp.Generator, e)
}

// Clone returns a deep copy.
func (gp *GroupParameters) Clone() *GroupParameters {
	c := &GroupParameters{
		Modulus:   new(big.Int).Set(gp.Modulus),
		Generator: new(big.Int).Set(gp.Generator),
	}
	for _, f := range gp.factors {
		c.factors = append(c.factors, new(big.Int).Set(f))
	}
	return c
}

func (gp *GroupParameters) String() string {
	return fmt.Sprintf("p=%s g=%s", gp.Modulus.String(), gp.Generator.String())
}
