package reedsolomon

import (
	"fmt"

	"github.com/Davincible/meshfec/pkg/gf256"
)

// Result is the outcome of decoding one codeword.
type Result struct {
	// Message holds the first k bytes of the codeword, corrected when OK
	// and as received otherwise.
	Message []byte
	// OK reports whether the codeword is (now) a valid codeword.
	OK bool
	// Corrected lists the codeword byte positions that were repaired.
	Corrected []int
}

// Err returns ErrUncorrectable for a failed decode and nil otherwise.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return ErrUncorrectable
}

// Decode corrects up to t byte errors in codeword. An error pattern beyond
// the correction radius is not an error: it yields a Result with OK unset.
// The only error returned is ErrInvalidCodewordLength.
func (c *Codec) Decode(codeword []byte) (Result, error) {
	n, k := c.cfg.N, c.cfg.K
	if len(codeword) != n {
		return Result{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidCodewordLength, len(codeword), n)
	}

	received := make([]byte, n)
	copy(received, codeword)

	synd := c.syndromes(received)
	if allZero(synd) {
		return Result{Message: received[:k:k], OK: true}, nil
	}

	failed := Result{Message: received[:k:k]}

	locator, degree := c.berlekampMassey(synd)
	if degree == 0 || degree > c.T() || gf256.PolyDegree(locator) != degree {
		return failed, nil
	}

	positions := c.chienSearch(locator)
	if len(positions) != degree {
		return failed, nil
	}

	corrected := make([]byte, n)
	copy(corrected, received)
	for i, e := range c.forney(synd, locator, positions) {
		corrected[positions[i]] ^= e
	}

	// A pattern past the radius can still produce a locator with a full
	// set of roots; the repaired word must be a codeword.
	if !allZero(c.syndromes(corrected)) {
		return failed, nil
	}

	return Result{Message: corrected[:k:k], OK: true, Corrected: positions}, nil
}

// syndromes evaluates the received polynomial at α^0 .. α^(2t-1).
func (c *Codec) syndromes(received []byte) []byte {
	synd := make([]byte, 2*c.T())
	for i := range synd {
		x := c.field.Exp(i)
		var s byte
		for _, b := range received {
			s = c.field.Mul(s, x) ^ b
		}
		synd[i] = s
	}
	return synd
}

// berlekampMassey returns the error locator Λ(x) (ascending degree,
// Λ(0) = 1) and its length L.
func (c *Codec) berlekampMassey(synd []byte) ([]byte, int) {
	f := c.field

	locator := []byte{1}
	prev := []byte{1}
	length := 0
	shift := 1
	prevDisc := byte(1)

	for r := range synd {
		disc := synd[r]
		for i := 1; i <= length && i < len(locator); i++ {
			disc ^= f.Mul(locator[i], synd[r-i])
		}
		if disc == 0 {
			shift++
			continue
		}

		scale := c.div(disc, prevDisc)
		next := make([]byte, max(len(locator), len(prev)+shift))
		copy(next, locator)
		for i, b := range prev {
			next[i+shift] ^= f.Mul(scale, b)
		}

		if 2*length <= r {
			prev = locator
			length = r + 1 - length
			prevDisc = disc
			shift = 1
		} else {
			shift++
		}
		locator = next
	}
	return locator, length
}

// chienSearch returns the codeword positions j where Λ(X_j^-1) = 0,
// X_j = α^(n-1-j).
func (c *Codec) chienSearch(locator []byte) []int {
	var positions []int
	for j := 0; j < c.cfg.N; j++ {
		if c.field.PolyEval(locator, c.field.Exp(-(c.cfg.N-1-j))) == 0 {
			positions = append(positions, j)
		}
	}
	return positions
}

// forney computes the error value at each position:
// e = X · Ω(X^-1) / Λ'(X^-1) with Ω = S·Λ mod x^2t.
func (c *Codec) forney(synd, locator []byte, positions []int) []byte {
	f := c.field

	omega := f.PolyMul(synd, locator)
	if len(omega) > len(synd) {
		omega = omega[:len(synd)]
	}
	deriv := f.PolyDerivative(locator)

	values := make([]byte, len(positions))
	for i, pos := range positions {
		power := c.cfg.N - 1 - pos
		xInv := f.Exp(-power)
		num := f.Mul(f.Exp(power), f.PolyEval(omega, xInv))
		values[i] = c.div(num, f.PolyEval(deriv, xInv))
	}
	return values
}

// div divides inside the decoder. The pipeline only divides by nonzero
// discrepancies and by Λ' at simple roots, so a zero divisor is a bug.
func (c *Codec) div(a, b byte) byte {
	q, err := c.field.Div(a, b)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrInvariantViolation, err))
	}
	return q
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
