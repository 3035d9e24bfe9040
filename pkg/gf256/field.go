// Package gf256 implements arithmetic over the finite field GF(2^8).
//
// Elements are bytes read as polynomials over GF(2). Addition is XOR;
// multiplication and division go through exp/log tables built from a
// primitive polynomial. A Field is immutable once built and safe for
// concurrent use.
package gf256

import (
	"errors"
	"fmt"
)

const (
	// DefaultPolynomial is x^8 + x^4 + x^3 + x^2 + 1.
	DefaultPolynomial = 0x11D

	// Order is the number of nonzero field elements.
	Order = 255
)

var (
	ErrDivisionByZero    = errors.New("gf256: division by zero")
	ErrLogOfZero         = errors.New("gf256: logarithm of zero")
	ErrInvalidPolynomial = errors.New("gf256: invalid primitive polynomial")
)

// Default is the field defined by DefaultPolynomial.
var Default = MustNew(DefaultPolynomial)

// Field holds the lookup tables for one primitive polynomial.
type Field struct {
	poly uint16
	// exp is stored twice so that exp[log a + log b] never needs a mod.
	exp [2 * Order]byte
	log [256]byte
}

// New builds the exp/log tables for poly. The polynomial must have degree
// 8 and x must generate all 255 nonzero elements.
func New(poly uint16) (*Field, error) {
	if poly < 0x100 || poly > 0x1FF {
		return nil, fmt.Errorf("%w: %#x is not a degree-8 polynomial", ErrInvalidPolynomial, poly)
	}

	f := &Field{poly: poly}
	var seen [256]bool

	x := uint16(1)
	for i := 0; i < Order; i++ {
		if x == 0 || seen[x] {
			return nil, fmt.Errorf("%w: %#x is not primitive (cycle length %d)", ErrInvalidPolynomial, poly, i)
		}
		seen[x] = true
		f.exp[i] = byte(x)
		f.exp[i+Order] = byte(x)
		f.log[x] = byte(i)

		// Multiply by the generator x and reduce.
		x <<= 1
		if x&0x100 != 0 {
			x ^= poly
		}
	}
	if x != 1 {
		return nil, fmt.Errorf("%w: %#x is not primitive", ErrInvalidPolynomial, poly)
	}

	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(poly uint16) *Field {
	f, err := New(poly)
	if err != nil {
		panic(err)
	}
	return f
}

// Polynomial returns the primitive polynomial the field was built from.
func (f *Field) Polynomial() uint16 {
	return f.poly
}

// Tables returns copies of the exp table (255 entries) and the log table.
// log[0] is meaningless and always 0.
func (f *Field) Tables() (exp [Order]byte, log [256]byte) {
	copy(exp[:], f.exp[:Order])
	log = f.log
	return exp, log
}

// Add returns a + b. Subtraction is the same operation.
func (f *Field) Add(a, b byte) byte {
	return a ^ b
}

// Sub returns a - b.
func (f *Field) Sub(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b.
func (f *Field) Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+int(f.log[b])]
}

// Div returns a / b.
func (f *Field) Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	if a == 0 {
		return 0, nil
	}
	return f.exp[int(f.log[a])+Order-int(f.log[b])], nil
}

// Inverse returns the multiplicative inverse of a.
func (f *Field) Inverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivisionByZero
	}
	return f.exp[Order-int(f.log[a])], nil
}

// Exp returns α^i for the primitive element α. Negative exponents are
// accepted.
func (f *Field) Exp(i int) byte {
	i %= Order
	if i < 0 {
		i += Order
	}
	return f.exp[i]
}

// Log returns the discrete logarithm of a in [0, 255).
func (f *Field) Log(a byte) (int, error) {
	if a == 0 {
		return 0, ErrLogOfZero
	}
	return int(f.log[a]), nil
}

// Pow returns a^e. 0^0 is 1. A negative power of zero is a division by
// zero and returns ErrDivisionByZero, as Inverse does.
func (f *Field) Pow(a byte, e int) (byte, error) {
	if e == 0 {
		return 1, nil
	}
	if a == 0 {
		if e < 0 {
			return 0, ErrDivisionByZero
		}
		return 0, nil
	}
	return f.Exp(int(f.log[a]) * (e % Order)), nil
}
