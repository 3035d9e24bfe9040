package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyDegree(t *testing.T) {
	assert.Equal(t, -1, PolyDegree(nil))
	assert.Equal(t, -1, PolyDegree([]byte{0, 0}))
	assert.Equal(t, 0, PolyDegree([]byte{5}))
	assert.Equal(t, 2, PolyDegree([]byte{1, 0, 3, 0}))
}

func TestPolyAdd(t *testing.T) {
	f := Default
	assert.Equal(t, []byte{1 ^ 4, 2 ^ 5, 3}, f.PolyAdd([]byte{1, 2, 3}, []byte{4, 5}))
	assert.Equal(t, []byte{1 ^ 4, 2 ^ 5, 3}, f.PolyAdd([]byte{4, 5}, []byte{1, 2, 3}))
}

func TestPolyMulAndEval(t *testing.T) {
	f := Default

	// (x + 2)(x + 3) = x^2 + (2^3)x + 6
	p := f.PolyMul([]byte{2, 1}, []byte{3, 1})
	assert.Equal(t, []byte{f.Mul(2, 3), 2 ^ 3, 1}, p)

	assert.Zero(t, f.PolyEval(p, 2))
	assert.Zero(t, f.PolyEval(p, 3))
	assert.Equal(t, p[0], f.PolyEval(p, 0))
	assert.Nil(t, f.PolyMul(nil, p))
}

func TestPolyEvalMatchesProduct(t *testing.T) {
	f := Default
	p := []byte{0x12, 0x34, 0x56, 0x78}
	q := []byte{0x9A, 0xBC}
	pq := f.PolyMul(p, q)

	for x := 0; x < 256; x++ {
		want := f.Mul(f.PolyEval(p, byte(x)), f.PolyEval(q, byte(x)))
		assert.Equal(t, want, f.PolyEval(pq, byte(x)))
	}
}

func TestPolyScale(t *testing.T) {
	f := Default
	assert.Equal(t, []byte{f.Mul(3, 7), 0, f.Mul(9, 7)}, f.PolyScale([]byte{3, 0, 9}, 7))
}

func TestPolyDivMod(t *testing.T) {
	f := Default

	tests := []struct {
		name     string
		quotient []byte
		divisor  []byte
		rest     []byte
	}{
		{name: "Exact", quotient: []byte{7, 1}, divisor: []byte{3, 0, 1}, rest: []byte{0, 0}},
		{name: "With remainder", quotient: []byte{0x11, 0x22, 0x33}, divisor: []byte{5, 9, 1}, rest: []byte{0x44, 0x55}},
		{name: "Non-monic divisor", quotient: []byte{1, 2}, divisor: []byte{4, 0x80}, rest: []byte{0x99}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dividend := f.PolyAdd(f.PolyMul(tt.quotient, tt.divisor), tt.rest)

			q, r, err := f.PolyDivMod(dividend, tt.divisor)
			require.NoError(t, err)
			assert.Equal(t, tt.quotient, q)
			assert.Equal(t, tt.rest, r)
		})
	}
}

func TestPolyDivModShortDividend(t *testing.T) {
	q, r, err := Default.PolyDivMod([]byte{9}, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, q)
	assert.Equal(t, []byte{9, 0}, r)
}

func TestPolyDivModByZero(t *testing.T) {
	_, _, err := Default.PolyDivMod([]byte{1, 2}, []byte{0, 0})
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPolyDerivative(t *testing.T) {
	f := Default
	assert.Nil(t, f.PolyDerivative([]byte{7}))
	// d/dx (a + bx + cx^2 + dx^3) = b + 3c x + 3d x^2 = b + d x^2 in char 2.
	assert.Equal(t, []byte{2, 0, 4}, f.PolyDerivative([]byte{1, 2, 3, 4}))
}
