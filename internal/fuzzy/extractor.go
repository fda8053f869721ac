// Package fuzzy implements the biometric key extractor used by the device.
//
// The binding is the additive toy construction: the secret is a random pad
// as long as the sample and the public helper string is sample+pad byte-wise
// mod 256. Reproduction recovers the secret only from the exact same sample
// bytes; it does not correct errors. A production build must swap in an
// error-correcting construction while keeping the Generate/Reproduce
// contract.
package fuzzy

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/gwauth/internal/common"
)

// Extractor derives stable secrets from biometric samples.
type Extractor struct {
	rnd io.Reader
}

// New returns an Extractor drawing pads from rnd.
func New(rnd io.Reader) *Extractor {
	return &Extractor{rnd: rnd}
}

// Generate returns the public helper string and the secret for sample. The
// sample itself is not retained.
func (e *Extractor) Generate(sample []byte) (helper, secret []byte, err error) {
	if len(sample) == 0 {
		return nil, nil, common.ErrEmptySample
	}

	secret = make([]byte, len(sample))
	if _, err := io.ReadFull(e.rnd, secret); err != nil {
		return nil, nil, fmt.Errorf("read pad: %w", err)
	}

	helper = make([]byte, len(sample))
	for i := range sample {
		helper[i] = sample[i] + secret[i]
	}
	return helper, secret, nil
}

// Reproduce recovers the secret bound into helper by a previous Generate call
// on the same sample.
func (e *Extractor) Reproduce(sample, helper []byte) ([]byte, error) {
	if len(sample) == 0 {
		return nil, common.ErrEmptySample
	}
	if len(sample) != len(helper) {
		return nil, fmt.Errorf("%w: sample %d bytes, helper %d bytes", common.ErrLengthMismatch, len(sample), len(helper))
	}

	secret := make([]byte, len(helper))
	for i := range helper {
		secret[i] = helper[i] - sample[i]
	}
	return secret, nil
}
