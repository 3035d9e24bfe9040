package reedsolomon

import (
	"fmt"

	"github.com/Davincible/meshfec/pkg/gf256"
)

const (
	DefaultN = 255
	DefaultK = 223
)

// Config holds the code parameters. T is derived, never stored.
type Config struct {
	N             int    `json:"n" yaml:"n"`
	K             int    `json:"k" yaml:"k"`
	PrimitivePoly uint16 `json:"primitive_polynomial" yaml:"primitive_polynomial"`
}

// DefaultConfig returns RS(255, 223) over the 0x11D field.
func DefaultConfig() Config {
	return Config{
		N:             DefaultN,
		K:             DefaultK,
		PrimitivePoly: gf256.DefaultPolynomial,
	}
}

// T returns the number of byte errors a codeword can absorb.
func (c Config) T() int {
	return (c.N - c.K) / 2
}

func (c Config) Validate() error {
	if c.N < 1 || c.N > gf256.Order {
		return fmt.Errorf("%w: n must be between 1 and %d, got %d", ErrInvalidConfig, gf256.Order, c.N)
	}
	if c.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidConfig, c.K)
	}
	if c.K > c.N {
		return fmt.Errorf("%w: k (%d) cannot exceed n (%d)", ErrInvalidConfig, c.K, c.N)
	}
	if (c.N-c.K)%2 != 0 {
		return fmt.Errorf("%w: n-k must be even, got %d", ErrInvalidConfig, c.N-c.K)
	}
	return nil
}
