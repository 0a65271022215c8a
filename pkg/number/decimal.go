package number

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// IntFromDecimal converts a non-negative integral decimal into a raw amount.
// The fractional part is truncated.
func IntFromDecimal(d decimal.Decimal) (uint256.Int, error) {
	if d.IsNegative() {
		return uint256.Int{}, ErrUnderflow
	}

	v, overflow := uint256.FromBig(d.Truncate(0).BigInt())
	if overflow {
		return uint256.Int{}, ErrOverflow
	}

	return *v, nil
}

// IntToDecimal converts a raw amount into an integral decimal.
func IntToDecimal(v uint256.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v.ToBig(), 0)
}

// ParseInt parses a base 10 integer string such as "1000000".
func ParseInt(s string) (uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return uint256.Int{}, err
	}

	return IntFromDecimal(d)
}

// MustParseInt is like ParseInt but panics on malformed input.
func MustParseInt(s string) uint256.Int {
	v, err := ParseInt(s)
	if err != nil {
		panic(err)
	}

	return v
}

// NewInt wraps an uint64 into a raw amount.
func NewInt(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// MaxInt returns the largest representable raw amount.
func MaxInt() uint256.Int {
	var v uint256.Int
	v.SetAllOne()
	return v
}
