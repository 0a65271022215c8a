package core

import (
	"context"

	"lender/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

// Market one money market: a pool of a single underlying asset
type Market struct {
	ID      string `json:"id"`
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`
	// shares in circulation, always equal to the sum of every position's shares
	TotalSupply   uint256.Int `json:"total_supply"`
	TotalBorrows  uint256.Int `json:"total_borrows"`
	TotalReserves uint256.Int `json:"total_reserves"`
	Cash          uint256.Int `json:"cash"`
	// cumulative borrow interest multiplier, starts at 1.0 and never decreases
	BorrowIndex         number.Exp `json:"borrow_index"`
	AccrualPeriod       int64      `json:"accrual_period"`
	ReserveFactor       number.Exp `json:"reserve_factor"`
	InitialExchangeRate number.Exp `json:"initial_exchange_rate"`

	RateModelParams RateModelParams   `json:"rate_model"`
	RateModel       InterestRateModel `json:"-" msgpack:"-"`
}

// Clone returns a copy safe to mutate
func (m *Market) Clone() *Market {
	c := *m
	return &c
}

// IsFresh reports whether the market has accrued up to period
func (m *Market) IsFresh(period int64) bool {
	return m.AccrualPeriod == period
}

// RateModelParams persisted description of an interest rate model.
// Rates are per year and get converted with PeriodsPerYear.
type RateModelParams struct {
	Kind           string `json:"kind"`
	BaseRate       string `json:"base_rate"`
	Multiplier     string `json:"multiplier"`
	JumpMultiplier string `json:"jump_multiplier"`
	Kink           string `json:"kink"`
	PeriodsPerYear int64  `json:"periods_per_year"`
}

// InterestRateModel maps pool state to per period rates
type InterestRateModel interface {
	BorrowRate(cash, borrows, reserves uint256.Int) (number.Exp, error)
	SupplyRate(cash, borrows, reserves uint256.Int, reserveFactor number.Exp) (number.Exp, error)
	Params() RateModelParams
}

// IMarketStore market store interface
type IMarketStore interface {
	Find(ctx context.Context, id string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	Save(ctx context.Context, tx *db.DB, markets []*Market) error
}
