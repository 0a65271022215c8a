package number

import "github.com/holiman/uint256"

// Add returns a+b or ErrOverflow
func Add(a, b uint256.Int) (uint256.Int, error) {
	var z uint256.Int
	if _, overflow := z.AddOverflow(&a, &b); overflow {
		return uint256.Int{}, ErrOverflow
	}

	return z, nil
}

// Sub returns a-b or ErrUnderflow
func Sub(a, b uint256.Int) (uint256.Int, error) {
	var z uint256.Int
	if _, underflow := z.SubOverflow(&a, &b); underflow {
		return uint256.Int{}, ErrUnderflow
	}

	return z, nil
}

// Mul returns a*b or ErrOverflow
func Mul(a, b uint256.Int) (uint256.Int, error) {
	var z uint256.Int
	if _, overflow := z.MulOverflow(&a, &b); overflow {
		return uint256.Int{}, ErrOverflow
	}

	return z, nil
}

// Div returns a/b truncated, or ErrDivisionByZero
func Div(a, b uint256.Int) (uint256.Int, error) {
	if b.IsZero() {
		return uint256.Int{}, ErrDivisionByZero
	}

	var z uint256.Int
	z.Div(&a, &b)
	return z, nil
}

// MulDiv returns a*b/c, checking every step
func MulDiv(a, b, c uint256.Int) (uint256.Int, error) {
	p, err := Mul(a, b)
	if err != nil {
		return uint256.Int{}, err
	}

	return Div(p, c)
}

// MulDivCeil returns a*b/c rounded up
func MulDivCeil(a, b, c uint256.Int) (uint256.Int, error) {
	p, err := Mul(a, b)
	if err != nil {
		return uint256.Int{}, err
	}

	if c.IsZero() {
		return uint256.Int{}, ErrDivisionByZero
	}

	var q, r uint256.Int
	q.DivMod(&p, &c, &r)
	if !r.IsZero() {
		q.AddUint64(&q, 1)
	}

	return q, nil
}

// Min returns the smaller of a and b
func Min(a, b uint256.Int) uint256.Int {
	if a.Lt(&b) {
		return a
	}

	return b
}

// SubFloor returns a-b, or zero when b > a
func SubFloor(a, b uint256.Int) uint256.Int {
	if b.Gt(&a) {
		return uint256.Int{}
	}

	var z uint256.Int
	z.Sub(&a, &b)
	return z
}
