package compound

import (
	"fmt"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// RateModelJump kind of the jump rate model
const RateModelJump = "jump"

// JumpRateModel borrow rate grows linearly with utilization and jumps
// to a steeper slope past the kink
type JumpRateModel struct {
	params         core.RateModelParams
	baseRate       number.Exp
	multiplier     number.Exp
	jumpMultiplier number.Exp
	kink           number.Exp
}

// NewRateModel builds an interest rate model from persisted params
func NewRateModel(params core.RateModelParams) (core.InterestRateModel, error) {
	switch params.Kind {
	case RateModelJump, "":
		return NewJumpRateModel(params)
	default:
		return nil, fmt.Errorf("unknown rate model %q", params.Kind)
	}
}

// NewJumpRateModel converts per year rates into per period rates
func NewJumpRateModel(params core.RateModelParams) (*JumpRateModel, error) {
	params.Kind = RateModelJump
	if params.PeriodsPerYear <= 0 {
		params.PeriodsPerYear = compound.BlocksPerYear
	}

	periods := number.NewInt(uint64(params.PeriodsPerYear))
	perPeriod := func(s string) (number.Exp, error) {
		if s == "" {
			return number.Exp{}, nil
		}

		v, err := number.ParseExp(s)
		if err != nil {
			return number.Exp{}, err
		}

		m, err := number.Div(v.Mantissa, periods)
		return number.ExpFromMantissa(m), err
	}

	m := &JumpRateModel{params: params}
	var err error
	if m.baseRate, err = perPeriod(params.BaseRate); err != nil {
		return nil, err
	}
	if m.multiplier, err = perPeriod(params.Multiplier); err != nil {
		return nil, err
	}
	if m.jumpMultiplier, err = perPeriod(params.JumpMultiplier); err != nil {
		return nil, err
	}
	if params.Kink != "" {
		if m.kink, err = number.ParseExp(params.Kink); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *JumpRateModel) Params() core.RateModelParams {
	return m.params
}

// BorrowRate borrow rate per period
func (m *JumpRateModel) BorrowRate(cash, borrows, reserves uint256.Int) (number.Exp, error) {
	util, err := compound.UtilizationRate(cash, borrows, reserves)
	if err != nil {
		return number.Exp{}, err
	}

	if m.kink.IsZero() || !util.GreaterThan(m.kink) {
		return m.linear(util)
	}

	normalRate, err := m.linear(m.kink)
	if err != nil {
		return number.Exp{}, err
	}

	excessUtil, err := util.Sub(m.kink)
	if err != nil {
		return number.Exp{}, err
	}

	jump, err := excessUtil.Mul(m.jumpMultiplier)
	if err != nil {
		return number.Exp{}, err
	}

	return jump.Add(normalRate)
}

// SupplyRate supply rate per period
// supply_rate = utilization * borrow_rate * (1 - reserve_factor)
func (m *JumpRateModel) SupplyRate(cash, borrows, reserves uint256.Int, reserveFactor number.Exp) (number.Exp, error) {
	oneMinusReserveFactor, err := number.OneExp().Sub(reserveFactor)
	if err != nil {
		return number.Exp{}, err
	}

	borrowRate, err := m.BorrowRate(cash, borrows, reserves)
	if err != nil {
		return number.Exp{}, err
	}

	rateToPool, err := borrowRate.Mul(oneMinusReserveFactor)
	if err != nil {
		return number.Exp{}, err
	}

	util, err := compound.UtilizationRate(cash, borrows, reserves)
	if err != nil {
		return number.Exp{}, err
	}

	return util.Mul(rateToPool)
}

func (m *JumpRateModel) linear(util number.Exp) (number.Exp, error) {
	r, err := util.Mul(m.multiplier)
	if err != nil {
		return number.Exp{}, err
	}

	return r.Add(m.baseRate)
}

// BindRateModels rebuilds the rate model of every market from its persisted params
func BindRateModels(markets map[string]*core.Market) error {
	for id, m := range markets {
		model, err := NewRateModel(m.RateModelParams)
		if err != nil {
			return fmt.Errorf("market %s: %w", id, err)
		}

		m.RateModel = model
		m.RateModelParams = model.Params()
	}

	return nil
}
