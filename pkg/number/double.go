package number

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Double is a fixed point number whose mantissa is scaled by 1e36.
// Reward indices are Double values.
type Double struct {
	Mantissa uint256.Int `json:"mantissa"`
}

// DoubleScale returns 1e36
func DoubleScale() uint256.Int {
	return doubleScale
}

// OneDouble is 1.0
func OneDouble() Double {
	return Double{Mantissa: doubleScale}
}

// DoubleFraction returns a/b as a Double
func DoubleFraction(a, b uint256.Int) (Double, error) {
	m, err := MulDiv(a, doubleScale, b)
	return Double{Mantissa: m}, err
}

func (d Double) Add(o Double) (Double, error) {
	m, err := Add(d.Mantissa, o.Mantissa)
	return Double{Mantissa: m}, err
}

func (d Double) Sub(o Double) (Double, error) {
	m, err := Sub(d.Mantissa, o.Mantissa)
	return Double{Mantissa: m}, err
}

// MulScalarTruncate returns trunc(s * d)
func (d Double) MulScalarTruncate(s uint256.Int) (uint256.Int, error) {
	return MulDiv(s, d.Mantissa, doubleScale)
}

// ToExp rescales to 1e18, truncating
func (d Double) ToExp() Exp {
	var z uint256.Int
	z.Div(&d.Mantissa, &expScale)
	return Exp{Mantissa: z}
}

func (d Double) IsZero() bool {
	return d.Mantissa.IsZero()
}

func (d Double) Cmp(o Double) int {
	return d.Mantissa.Cmp(&o.Mantissa)
}

// Decimal renders the value with its 36 decimals
func (d Double) Decimal() decimal.Decimal {
	return IntToDecimal(d.Mantissa).Shift(-DoubleDecimals)
}

func (d Double) String() string {
	return d.Decimal().String()
}
