// Package reedsolomon implements a systematic Reed-Solomon code over
// GF(2^8) with error (not erasure) correction.
//
// Byte j of an n-byte codeword is the coefficient of x^(n-1-j): the
// message sits in the first k bytes, the parity in the last n-k. The
// generator polynomial has roots α^0 .. α^(2t-1).
package reedsolomon

import (
	"errors"
	"fmt"

	"github.com/Davincible/meshfec/pkg/gf256"
)

var (
	ErrInvalidConfig         = errors.New("reedsolomon: invalid code parameters")
	ErrMessageTooLong        = errors.New("reedsolomon: message too long")
	ErrInvalidCodewordLength = errors.New("reedsolomon: invalid codeword length")
	ErrUncorrectable         = errors.New("reedsolomon: too many errors to correct")
	ErrInvariantViolation    = errors.New("reedsolomon: arithmetic invariant violated")
)

// Codec encodes and decodes codewords for one set of parameters. It is
// immutable after New and safe for concurrent use.
type Codec struct {
	cfg   Config
	field *gf256.Field
	// gen is the generator polynomial in ascending degree order, 2t+1
	// coefficients, monic.
	gen []byte
}

// New validates cfg and builds the field tables and generator polynomial.
func New(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	field, err := gf256.New(cfg.PrimitivePoly)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Codec{
		cfg:   cfg,
		field: field,
	}
	c.gen = c.generator()
	return c, nil
}

// generator computes ∏_{i=0}^{2t-1} (x - α^i).
func (c *Codec) generator() []byte {
	gen := []byte{1}
	for i := 0; i < 2*c.cfg.T(); i++ {
		gen = c.field.PolyMul(gen, []byte{c.field.Exp(i), 1})
	}
	return gen
}

func (c *Codec) Config() Config { return c.cfg }

func (c *Codec) N() int { return c.cfg.N }

func (c *Codec) K() int { return c.cfg.K }

func (c *Codec) T() int { return c.cfg.T() }

func (c *Codec) Field() *gf256.Field { return c.field }

// Generator returns a copy of the generator polynomial, ascending degree.
func (c *Codec) Generator() []byte {
	out := make([]byte, len(c.gen))
	copy(out, c.gen)
	return out
}

// Encode zero-pads message to k bytes and appends n-k parity bytes.
func (c *Codec) Encode(message []byte) ([]byte, error) {
	if len(message) > c.cfg.K {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrMessageTooLong, len(message), c.cfg.K)
	}

	codeword := make([]byte, c.cfg.N)
	copy(codeword, message)
	copy(codeword[c.cfg.K:], c.parity(codeword[:c.cfg.K]))
	return codeword, nil
}

// parity returns the remainder of m(x)·x^(n-k) divided by the generator,
// highest degree first so it can be appended to the message directly.
func (c *Codec) parity(message []byte) []byte {
	nsym := c.cfg.N - c.cfg.K
	if nsym == 0 {
		return nil
	}

	dividend := make([]byte, c.cfg.N)
	for j, b := range message {
		dividend[c.cfg.N-1-j] = b
	}

	_, rem, err := c.field.PolyDivMod(dividend, c.gen)
	if err != nil {
		// The generator is monic; division cannot fail.
		panic(fmt.Errorf("%w: %w", ErrInvariantViolation, err))
	}

	out := make([]byte, nsym)
	for i := range out {
		out[i] = rem[nsym-1-i]
	}
	return out
}
