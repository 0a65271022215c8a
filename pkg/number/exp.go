package number

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const (
	// ExpDecimals decimals carried by Exp
	ExpDecimals = 18
	// DoubleDecimals decimals carried by Double
	DoubleDecimals = 36
)

var (
	expScale    = NewInt(1e18)
	doubleScale = MustParseInt("1000000000000000000000000000000000000")
)

// Exp is a fixed point number whose mantissa is scaled by 1e18.
// Rates, prices, factors and exchange rates are Exp values.
type Exp struct {
	Mantissa uint256.Int `json:"mantissa"`
}

// NewExp builds an Exp from a raw mantissa
func NewExp(mantissa uint64) Exp {
	return Exp{Mantissa: NewInt(mantissa)}
}

// ExpFromMantissa builds an Exp from a raw 256 bit mantissa
func ExpFromMantissa(mantissa uint256.Int) Exp {
	return Exp{Mantissa: mantissa}
}

// OneExp is 1.0
func OneExp() Exp {
	return Exp{Mantissa: expScale}
}

// ExpScale returns 1e18
func ExpScale() uint256.Int {
	return expScale
}

// ExpFraction returns num/den as an Exp
func ExpFraction(num, den uint256.Int) (Exp, error) {
	m, err := MulDiv(num, expScale, den)
	if err != nil {
		return Exp{}, err
	}

	return Exp{Mantissa: m}, nil
}

// ExpFromDecimal converts 0.05 into an Exp with mantissa 5e16.
// Digits beyond 18 decimals are truncated.
func ExpFromDecimal(d decimal.Decimal) (Exp, error) {
	m, err := IntFromDecimal(d.Shift(ExpDecimals))
	if err != nil {
		return Exp{}, err
	}

	return Exp{Mantissa: m}, nil
}

// ParseExp parses a decimal string like "0.75"
func ParseExp(s string) (Exp, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Exp{}, err
	}

	return ExpFromDecimal(d)
}

// MustParseExp is like ParseExp but panics on malformed input
func MustParseExp(s string) Exp {
	e, err := ParseExp(s)
	if err != nil {
		panic(err)
	}

	return e
}

func (e Exp) Add(o Exp) (Exp, error) {
	m, err := Add(e.Mantissa, o.Mantissa)
	return Exp{Mantissa: m}, err
}

func (e Exp) Sub(o Exp) (Exp, error) {
	m, err := Sub(e.Mantissa, o.Mantissa)
	return Exp{Mantissa: m}, err
}

// Mul multiplies two Exp values, truncating
func (e Exp) Mul(o Exp) (Exp, error) {
	m, err := MulDiv(e.Mantissa, o.Mantissa, expScale)
	return Exp{Mantissa: m}, err
}

// MulScalar multiplies the mantissa by a raw integer
func (e Exp) MulScalar(s uint256.Int) (Exp, error) {
	m, err := Mul(e.Mantissa, s)
	return Exp{Mantissa: m}, err
}

// Div divides two Exp values, truncating
func (e Exp) Div(o Exp) (Exp, error) {
	m, err := MulDiv(e.Mantissa, expScale, o.Mantissa)
	return Exp{Mantissa: m}, err
}

// Truncate drops the fractional part
func (e Exp) Truncate() uint256.Int {
	var z uint256.Int
	z.Div(&e.Mantissa, &expScale)
	return z
}

// MulScalarTruncate returns trunc(e * s)
func (e Exp) MulScalarTruncate(s uint256.Int) (uint256.Int, error) {
	p, err := e.MulScalar(s)
	if err != nil {
		return uint256.Int{}, err
	}

	return p.Truncate(), nil
}

// MulScalarTruncateAdd returns trunc(e * s) + addend
func (e Exp) MulScalarTruncateAdd(s, addend uint256.Int) (uint256.Int, error) {
	v, err := e.MulScalarTruncate(s)
	if err != nil {
		return uint256.Int{}, err
	}

	return Add(v, addend)
}

// DivScalarByExpTruncate returns trunc(s / e)
func DivScalarByExpTruncate(s uint256.Int, e Exp) (uint256.Int, error) {
	return MulDiv(s, expScale, e.Mantissa)
}

// DivScalarByExpCeil returns ceil(s / e)
func DivScalarByExpCeil(s uint256.Int, e Exp) (uint256.Int, error) {
	return MulDivCeil(s, expScale, e.Mantissa)
}

// DivScalarByExp returns s / e as an Exp
func DivScalarByExp(s uint256.Int, e Exp) (Exp, error) {
	num, err := Mul(s, expScale)
	if err != nil {
		return Exp{}, err
	}

	return ExpFraction(num, e.Mantissa)
}

func (e Exp) IsZero() bool {
	return e.Mantissa.IsZero()
}

func (e Exp) Cmp(o Exp) int {
	return e.Mantissa.Cmp(&o.Mantissa)
}

func (e Exp) LessThan(o Exp) bool {
	return e.Cmp(o) < 0
}

func (e Exp) GreaterThan(o Exp) bool {
	return e.Cmp(o) > 0
}

func (e Exp) Equal(o Exp) bool {
	return e.Cmp(o) == 0
}

// ToDouble rescales to 1e36
func (e Exp) ToDouble() (Double, error) {
	m, err := Mul(e.Mantissa, expScale)
	return Double{Mantissa: m}, err
}

// Decimal renders the value with its 18 decimals
func (e Exp) Decimal() decimal.Decimal {
	return IntToDecimal(e.Mantissa).Shift(-ExpDecimals)
}

func (e Exp) String() string {
	return e.Decimal().String()
}
