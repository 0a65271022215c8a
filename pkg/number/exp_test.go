package number

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedMath(t *testing.T) {
	max := MaxInt()
	one := NewInt(1)

	_, err := Add(max, one)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Sub(NewInt(1), NewInt(2))
	assert.ErrorIs(t, err, ErrUnderflow)

	_, err = Mul(max, NewInt(2))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Div(one, uint256.Int{})
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.True(t, IsMathError(err))

	v, err := MulDiv(NewInt(10), NewInt(3), NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v.Uint64())

	floor := SubFloor(NewInt(1), NewInt(5))
	assert.True(t, floor.IsZero())

	v, err = MulDivCeil(NewInt(10), NewInt(3), NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(8), v.Uint64())

	v, err = MulDivCeil(NewInt(10), NewInt(2), NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v.Uint64())

	_, err = MulDivCeil(one, one, uint256.Int{})
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestExp(t *testing.T) {
	half := MustParseExp("0.5")
	assert.Equal(t, "500000000000000000", half.Mantissa.Dec())

	p, err := half.Mul(MustParseExp("0.5"))
	require.NoError(t, err)
	assert.Equal(t, "0.25", p.String())

	q, err := OneExp().Div(MustParseExp("4"))
	require.NoError(t, err)
	assert.Equal(t, "0.25", q.String())

	_, err = OneExp().Div(Exp{})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	v, err := MustParseExp("1.5").MulScalarTruncate(NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v.Uint64())

	v, err = MustParseExp("0.1").MulScalarTruncateAdd(NewInt(100), NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(15), v.Uint64())

	v, err = DivScalarByExpTruncate(NewInt(100), MustParseExp("0.02"))
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), v.Uint64())

	v, err = DivScalarByExpCeil(NewInt(100), MustParseExp("0.02"))
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), v.Uint64())

	// 1 / 0.022 = 45.45...
	v, err = DivScalarByExpTruncate(NewInt(1), MustParseExp("0.022"))
	require.NoError(t, err)
	assert.Equal(t, uint64(45), v.Uint64())

	v, err = DivScalarByExpCeil(NewInt(1), MustParseExp("0.022"))
	require.NoError(t, err)
	assert.Equal(t, uint64(46), v.Uint64())

	_, err = ParseExp("-1")
	assert.ErrorIs(t, err, ErrUnderflow)
}

func TestDouble(t *testing.T) {
	d, err := DoubleFraction(NewInt(1), NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, "0.25", d.String())

	v, err := d.MulScalarTruncate(NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Uint64())

	e, err := MustParseExp("2").ToDouble()
	require.NoError(t, err)
	assert.Equal(t, 0, e.ToExp().Cmp(MustParseExp("2")))

	assert.Equal(t, "1", OneDouble().String())
}

func TestIntDecimalRoundTrip(t *testing.T) {
	v := MustParseInt("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	assert.Equal(t, MaxInt(), v)

	_, err := ParseInt("115792089237316195423570985008687907853269984665640564039457584007913129639936")
	assert.ErrorIs(t, err, ErrOverflow)

	assert.Equal(t, "12345", IntToDecimal(NewInt(12345)).String())
}
