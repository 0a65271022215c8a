package lender

import (
	"context"

	"lender/core"
	icompound "lender/internal/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// CreateMarket creates market, not listed yet
func (e *Engine) CreateMarket(ctx context.Context, caller string, market *core.Market) error {
	return e.run(ctx, "create_market", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.CreateMarket(ctx, tx, caller, market)
	})
}

// ListMarket creates, lists and configures a market in one step
func (e *Engine) ListMarket(ctx context.Context, caller string, listing core.MarketListing) error {
	return e.run(ctx, "list_market", func(ctx context.Context, tx *core.Tx) error {
		return e.listMarket(ctx, tx, caller, listing)
	})
}

func (e *Engine) listMarket(ctx context.Context, tx *core.Tx, caller string, listing core.MarketListing) error {
	model, err := icompound.NewRateModel(listing.RateModel)
	if err != nil {
		return core.WrapError(core.ErrInterestRateModel, "engine/list-market/rate-model", err)
	}

	market := &core.Market{
		ID:        listing.ID,
		AssetID:   listing.AssetID,
		Symbol:    listing.Symbol,
		RateModel: model,
	}

	if market.InitialExchangeRate, err = parseExp(listing.InitialExchangeRate, number.OneExp()); err != nil {
		return err
	}

	if market.ReserveFactor, err = parseExp(listing.ReserveFactor, number.Exp{}); err != nil {
		return err
	}

	if err := e.markets.CreateMarket(ctx, tx, caller, market); err != nil {
		return err
	}

	if err := e.controller.SupportMarket(ctx, tx, caller, market.ID); err != nil {
		return err
	}

	collateralFactor, err := parseExp(listing.CollateralFactor, number.Exp{})
	if err != nil {
		return err
	}

	if !collateralFactor.IsZero() {
		if err := e.controller.SetCollateralFactor(ctx, tx, caller, market.ID, collateralFactor); err != nil {
			return err
		}
	}

	if listing.BorrowCap != "" {
		borrowCap, err := number.ParseInt(listing.BorrowCap)
		if err != nil {
			return core.WrapError(core.ErrInvalidInput, "engine/list-market/borrow-cap", err)
		}

		return e.controller.SetMarketBorrowCaps(ctx, tx, caller, []string{market.ID}, []uint256.Int{borrowCap})
	}

	return nil
}

func parseExp(s string, def number.Exp) (number.Exp, error) {
	if s == "" {
		return def, nil
	}

	v, err := number.ParseExp(s)
	if err != nil {
		return number.Exp{}, core.WrapError(core.ErrInvalidInput, "engine/parse-exp", err)
	}

	return v, nil
}

// AccrueInterest accrues market up to the current period
func (e *Engine) AccrueInterest(ctx context.Context, market string) error {
	return e.run(ctx, "accrue_interest", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.AccrueInterest(ctx, tx, market)
	})
}

// AccrueAll accrues every market in one Tx
func (e *Engine) AccrueAll(ctx context.Context) error {
	return e.run(ctx, "accrue_all", func(ctx context.Context, tx *core.Tx) error {
		for _, id := range e.ledger.MarketIDs() {
			if err := e.markets.AccrueInterest(ctx, tx, id); err != nil {
				return err
			}
		}

		return nil
	})
}

// Mint returns the minted shares
func (e *Engine) Mint(ctx context.Context, market, minter string, amount uint256.Int) (shares uint256.Int, err error) {
	err = e.run(ctx, "mint", func(ctx context.Context, tx *core.Tx) (err error) {
		shares, err = e.markets.Mint(ctx, tx, market, minter, amount)
		return
	})
	return
}

// Redeem returns the underlying amount paid out
func (e *Engine) Redeem(ctx context.Context, market, redeemer string, shares uint256.Int) (amount uint256.Int, err error) {
	err = e.run(ctx, "redeem", func(ctx context.Context, tx *core.Tx) (err error) {
		amount, err = e.markets.Redeem(ctx, tx, market, redeemer, shares)
		return
	})
	return
}

// RedeemUnderlying returns the shares burnt
func (e *Engine) RedeemUnderlying(ctx context.Context, market, redeemer string, amount uint256.Int) (shares uint256.Int, err error) {
	err = e.run(ctx, "redeem_underlying", func(ctx context.Context, tx *core.Tx) (err error) {
		shares, err = e.markets.RedeemUnderlying(ctx, tx, market, redeemer, amount)
		return
	})
	return
}

func (e *Engine) Borrow(ctx context.Context, market, borrower string, amount uint256.Int) error {
	return e.run(ctx, "borrow", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.Borrow(ctx, tx, market, borrower, amount)
	})
}

// RepayBorrow borrower repays its own debt, core.RepayAll() repays everything
func (e *Engine) RepayBorrow(ctx context.Context, market, borrower string, amount uint256.Int) (uint256.Int, error) {
	return e.RepayBorrowBehalf(ctx, market, borrower, borrower, amount)
}

// RepayBorrowBehalf payer repays borrower's debt
func (e *Engine) RepayBorrowBehalf(ctx context.Context, market, payer, borrower string, amount uint256.Int) (repaid uint256.Int, err error) {
	err = e.run(ctx, "repay_borrow", func(ctx context.Context, tx *core.Tx) (err error) {
		repaid, err = e.markets.RepayBorrow(ctx, tx, market, payer, borrower, amount)
		return
	})
	return
}

// LiquidateBorrow returns the collateral shares seized
func (e *Engine) LiquidateBorrow(ctx context.Context, borrowed, liquidator, borrower string, repay uint256.Int, collateral string) (seized uint256.Int, err error) {
	err = e.run(ctx, "liquidate_borrow", func(ctx context.Context, tx *core.Tx) (err error) {
		seized, err = e.markets.LiquidateBorrow(ctx, tx, borrowed, liquidator, borrower, repay, collateral)
		return
	})
	return
}

func (e *Engine) Transfer(ctx context.Context, market, src, dst string, shares uint256.Int) error {
	return e.run(ctx, "transfer", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.Transfer(ctx, tx, market, src, dst, shares)
	})
}

func (e *Engine) AddReserves(ctx context.Context, market, from string, amount uint256.Int) error {
	return e.run(ctx, "add_reserves", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.AddReserves(ctx, tx, market, from, amount)
	})
}

func (e *Engine) ReduceReserves(ctx context.Context, caller, market string, amount uint256.Int) error {
	return e.run(ctx, "reduce_reserves", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.ReduceReserves(ctx, tx, caller, market, amount)
	})
}

func (e *Engine) SetReserveFactor(ctx context.Context, caller, market string, factor number.Exp) error {
	return e.run(ctx, "set_reserve_factor", func(ctx context.Context, tx *core.Tx) error {
		return e.markets.SetReserveFactor(ctx, tx, caller, market, factor)
	})
}

// SetInterestRateModel replaces the rate model of market
func (e *Engine) SetInterestRateModel(ctx context.Context, caller, market string, params core.RateModelParams) error {
	return e.run(ctx, "set_interest_rate_model", func(ctx context.Context, tx *core.Tx) error {
		model, err := icompound.NewRateModel(params)
		if err != nil {
			return core.WrapError(core.ErrInterestRateModel, "engine/set-rate-model", err)
		}

		return e.markets.SetInterestRateModel(ctx, tx, caller, market, model)
	})
}
