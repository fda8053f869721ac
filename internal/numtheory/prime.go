package numtheory

import (
	"io"
	"math/big"
	"sort"
)

const millerRabinRounds = 20

var sievePrimes = []int64{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61}

// SafePrime draws a random safe prime p = 2q+1 with exactly bits bits and
// returns p together with the Sophie Germain prime q. bits must be at least 8.
func SafePrime(rnd io.Reader, bits int) (p, q *big.Int, err error) {
	m := new(big.Int)

	for {
		q, err = randOdd(rnd, bits-1)
		if err != nil {
			return nil, nil, err
		}

		if !passesSieve(q, m) {
			continue
		}

		p = new(big.Int).Lsh(q, 1)
		p.Add(p, one)

		if q.ProbablyPrime(1) && p.ProbablyPrime(1) &&
			q.ProbablyPrime(millerRabinRounds) && p.ProbablyPrime(millerRabinRounds) {
			return p, q, nil
		}
	}
}

// passesSieve rejects q when q or 2q+1 has a small odd factor.
func passesSieve(q, scratch *big.Int) bool {
	for _, s := range sievePrimes {
		r := scratch.Mod(q, big.NewInt(s)).Int64()
		if r == 0 || (2*r+1)%s == 0 {
			return false
		}
	}
	return true
}

// PrimeFactors returns the distinct prime factors of n in ascending order,
// using trial division for small factors and Pollard's rho for the rest.
// It is meant for group orders up to roughly 64-96 bits or for orders whose
// large cofactor is itself prime.
func PrimeFactors(n *big.Int) []*big.Int {
	if n.Cmp(two) < 0 {
		return nil
	}

	found := map[string]*big.Int{}
	rest := new(big.Int).Set(n)

	d := big.NewInt(2)
	limit := big.NewInt(1 << 16)
	mod := new(big.Int)
	for d.Cmp(limit) < 0 && rest.Cmp(one) > 0 {
		if mod.Mod(rest, d).Sign() == 0 {
			found[d.String()] = new(big.Int).Set(d)
			for mod.Mod(rest, d).Sign() == 0 {
				rest.Quo(rest, d)
			}
		}
		d.Add(d, one)
	}

	splitFactor(rest, found)

	out := make([]*big.Int, 0, len(found))
	for _, f := range found {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

func splitFactor(n *big.Int, found map[string]*big.Int) {
	if n.Cmp(one) <= 0 {
		return
	}
	if n.ProbablyPrime(millerRabinRounds) {
		found[n.String()] = new(big.Int).Set(n)
		return
	}
	d := pollardRho(n)
	splitFactor(d, found)
	splitFactor(new(big.Int).Quo(n, d), found)
}

// pollardRho returns a non-trivial factor of the odd composite n.
func pollardRho(n *big.Int) *big.Int {
	diff := new(big.Int)
	d := new(big.Int)

	for c := int64(1); ; c++ {
		cc := big.NewInt(c)
		f := func(x *big.Int) *big.Int {
			x.Mul(x, x)
			x.Add(x, cc)
			return x.Mod(x, n)
		}

		x := big.NewInt(2)
		y := big.NewInt(2)
		d.SetInt64(1)

		for d.Cmp(one) == 0 {
			f(x)
			f(f(y))
			diff.Sub(x, y)
			diff.Abs(diff)
			d.GCD(nil, nil, diff, n)
		}

		if d.Cmp(n) != 0 {
			return new(big.Int).Set(d)
		}
	}
}
