package number

import "errors"

var (
	// ErrOverflow result does not fit in 256 bits
	ErrOverflow = errors.New("number: overflow")
	// ErrUnderflow subtraction would go below zero
	ErrUnderflow = errors.New("number: underflow")
	// ErrDivisionByZero divisor is zero
	ErrDivisionByZero = errors.New("number: division by zero")
)

// IsMathError reports whether err came from a checked arithmetic step
func IsMathError(err error) bool {
	return errors.Is(err, ErrOverflow) ||
		errors.Is(err, ErrUnderflow) ||
		errors.Is(err, ErrDivisionByZero)
}
