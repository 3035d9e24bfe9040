package gf256

// Polynomials are coefficient slices in ascending degree order: p[i] is
// the coefficient of x^i. Trailing zeros are allowed everywhere.

// PolyDegree returns the degree of p, or -1 for the zero polynomial.
func PolyDegree(p []byte) int {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0 {
			return i
		}
	}
	return -1
}

// PolyAdd returns p + q.
func (f *Field) PolyAdd(p, q []byte) []byte {
	if len(p) < len(q) {
		p, q = q, p
	}
	out := make([]byte, len(p))
	copy(out, p)
	for i, c := range q {
		out[i] ^= c
	}
	return out
}

// PolyScale returns s * p.
func (f *Field) PolyScale(p []byte, s byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = f.Mul(c, s)
	}
	return out
}

// PolyMul returns p * q.
func (f *Field) PolyMul(p, q []byte) []byte {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	out := make([]byte, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			out[i+j] ^= f.Mul(a, b)
		}
	}
	return out
}

// PolyEval evaluates p at x using Horner's rule.
func (f *Field) PolyEval(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = f.Mul(y, x) ^ p[i]
	}
	return y
}

// PolyDivMod divides a by b with schoolbook long division. The remainder
// always has exactly deg(b) coefficients.
func (f *Field) PolyDivMod(a, b []byte) (quotient, remainder []byte, err error) {
	bDeg := PolyDegree(b)
	if bDeg < 0 {
		return nil, nil, ErrDivisionByZero
	}
	leadInv, err := f.Inverse(b[bDeg])
	if err != nil {
		return nil, nil, err
	}

	rem := make([]byte, len(a))
	copy(rem, a)

	quotLen := len(a) - bDeg
	if quotLen < 1 {
		quotLen = 1
	}
	quotient = make([]byte, quotLen)

	for d := len(rem) - 1; d >= bDeg; d-- {
		if rem[d] == 0 {
			continue
		}
		coef := f.Mul(rem[d], leadInv)
		quotient[d-bDeg] = coef
		for j := 0; j <= bDeg; j++ {
			rem[d-bDeg+j] ^= f.Mul(coef, b[j])
		}
	}

	remainder = make([]byte, bDeg)
	copy(remainder, rem)
	return quotient, remainder, nil
}

// PolyDerivative returns the formal derivative of p. In characteristic 2
// the even-degree terms vanish.
func (f *Field) PolyDerivative(p []byte) []byte {
	if len(p) <= 1 {
		return nil
	}
	out := make([]byte, len(p)-1)
	for i := 1; i < len(p); i += 2 {
		out[i-1] = p[i]
	}
	return out
}
