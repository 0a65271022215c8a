package compound

import (
	"lender/core"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

var (
	// BlocksPerYear default periods per year, one period every 15 seconds
	BlocksPerYear int64 = 2102400
	// BorrowRateMax max borrow rate per period, 0.0005%
	BorrowRateMax = number.NewExp(5e12)
	// ReserveFactorMax max of reserve factor
	ReserveFactorMax = number.OneExp()
	// CollateralFactorMax max of collateral factor [0, 0.9]
	CollateralFactorMax = number.NewExp(9e17)
	// CloseFactorMax max of close factor, (0, 1]
	CloseFactorMax = number.OneExp()
	// LiquidationIncentiveMin liquidation incentive must be no less than 1.0
	LiquidationIncentiveMin = number.OneExp()
	// RewardInitialIndex the first value of every reward index
	RewardInitialIndex = number.OneDouble()
)

// UtilizationRate utilization rate
// utilization_rate = borrows / (cash + borrows - reserves)
func UtilizationRate(cash, borrows, reserves uint256.Int) (number.Exp, error) {
	if borrows.IsZero() {
		return number.Exp{}, nil
	}

	total, err := number.Add(cash, borrows)
	if err != nil {
		return number.Exp{}, err
	}

	total, err = number.Sub(total, reserves)
	if err != nil {
		return number.Exp{}, err
	}

	return number.ExpFraction(borrows, total)
}

// ExchangeRate stored exchange rate, no accrual
// exchange_rate = (cash + borrows - reserves) / total_supply
func ExchangeRate(m *core.Market) (number.Exp, error) {
	if m.TotalSupply.IsZero() {
		return m.InitialExchangeRate, nil
	}

	total, err := number.Add(m.Cash, m.TotalBorrows)
	if err != nil {
		return number.Exp{}, err
	}

	total, err = number.Sub(total, m.TotalReserves)
	if err != nil {
		return number.Exp{}, err
	}

	return number.ExpFraction(total, m.TotalSupply)
}
