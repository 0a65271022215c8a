package compound

import (
	"context"
	"testing"

	"lender/core"
	"lender/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpRateModel(t *testing.T) {
	m, err := NewJumpRateModel(core.RateModelParams{
		BaseRate:       "0.1",
		Multiplier:     "0.5",
		JumpMultiplier: "5",
		Kink:           "0.8",
		PeriodsPerYear: 100,
	})
	require.NoError(t, err)

	// idle pool pays the base rate
	rate, err := m.BorrowRate(number.NewInt(100), number.NewInt(0), number.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "0.001", rate.String())

	// 50% utilization: 0.5 * 0.005 + 0.001
	rate, err = m.BorrowRate(number.NewInt(50), number.NewInt(50), number.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "0.0035", rate.String())

	// 90% utilization: 0.8 * 0.005 + 0.001 + 0.1 * 0.05
	rate, err = m.BorrowRate(number.NewInt(10), number.NewInt(90), number.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, "0.01", rate.String())

	// 0.5 * 0.0035 * 0.9
	supply, err := m.SupplyRate(number.NewInt(50), number.NewInt(50), number.NewInt(0), number.MustParseExp("0.1"))
	require.NoError(t, err)
	assert.Equal(t, "0.001575", supply.String())

	assert.Equal(t, RateModelJump, m.Params().Kind)
}

func TestNewRateModel(t *testing.T) {
	_, err := NewRateModel(core.RateModelParams{Kind: "curve"})
	assert.Error(t, err)

	_, err = NewRateModel(core.RateModelParams{BaseRate: "abc"})
	assert.Error(t, err)

	m, err := NewRateModel(core.RateModelParams{BaseRate: "0.02"})
	require.NoError(t, err)
	assert.Equal(t, int64(2102400), m.Params().PeriodsPerYear)
}

func TestSimplePriceOracle(t *testing.T) {
	o := NewSimplePriceOracle()
	market := &core.Market{ID: "cUSD", AssetID: "usd"}

	price, err := o.UnderlyingPrice(context.Background(), market)
	require.NoError(t, err)
	assert.True(t, price.IsZero())

	o.SetUnderlyingPrice("usd", number.OneExp())
	price, _ = o.UnderlyingPrice(context.Background(), market)
	assert.Equal(t, "1", price.String())

	o.SetUnderlyingPrice("usd", number.Exp{})
	price, _ = o.UnderlyingPrice(context.Background(), market)
	assert.True(t, price.IsZero())
}
