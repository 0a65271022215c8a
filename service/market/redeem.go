package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// Redeem burns shares and pays out the underlying, returns the amount paid
func (s *service) Redeem(ctx context.Context, tx *core.Tx, id, redeemer string, shares uint256.Int) (uint256.Int, error) {
	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return uint256.Int{}, err
	}

	if err := compound.Require(!shares.IsZero(), core.ErrInvalidAmount, "market/redeem/zero-shares"); err != nil {
		return uint256.Int{}, err
	}

	amount, _, err := s.redeemFresh(ctx, tx, market, redeemer, shares, uint256.Int{})
	return amount, err
}

// RedeemUnderlying pays out amount of the underlying, returns the shares burned
func (s *service) RedeemUnderlying(ctx context.Context, tx *core.Tx, id, redeemer string, amount uint256.Int) (uint256.Int, error) {
	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return uint256.Int{}, err
	}

	if err := compound.Require(!amount.IsZero(), core.ErrInvalidAmount, "market/redeem/zero-amount"); err != nil {
		return uint256.Int{}, err
	}

	_, shares, err := s.redeemFresh(ctx, tx, market, redeemer, uint256.Int{}, amount)
	return shares, err
}

// redeemFresh exactly one of sharesIn and amountIn is non-zero
func (s *service) redeemFresh(ctx context.Context, tx *core.Tx, market *core.Market, redeemer string, sharesIn, amountIn uint256.Int) (amount, shares uint256.Int, err error) {
	exchangeRate, err := compound.ExchangeRate(market)
	if err != nil {
		return amount, shares, compound.Math(err, "market/redeem/exchange-rate")
	}

	if !sharesIn.IsZero() {
		shares = sharesIn
		if amount, err = exchangeRate.MulScalarTruncate(sharesIn); err != nil {
			return amount, shares, compound.Math(err, "market/redeem/exchange-tokens-calculation")
		}
	} else {
		// burn at least the value paid out
		amount = amountIn
		if shares, err = number.DivScalarByExpCeil(amountIn, exchangeRate); err != nil {
			return amount, shares, compound.Math(err, "market/redeem/exchange-amount-calculation")
		}
	}

	if err = s.controller.RedeemAllowed(ctx, tx, market.ID, redeemer, shares); err != nil {
		return
	}

	if err = s.requireFresh(tx, market, "market/redeem/not-fresh"); err != nil {
		return
	}

	position := tx.Position(market.ID, redeemer)
	if err = compound.Require(!shares.Gt(&position.Shares), core.ErrInsufficientBalance, "market/redeem/insufficient-shares"); err != nil {
		return
	}

	if err = compound.Require(!amount.Gt(&market.Cash), core.ErrInsufficientCash, "market/redeem/insufficient-cash"); err != nil {
		return
	}

	totalSupply, err := number.Sub(market.TotalSupply, shares)
	if err != nil {
		return amount, shares, compound.Math(err, "market/redeem/total-supply")
	}

	market.TotalSupply = totalSupply
	position.Shares = number.SubFloor(position.Shares, shares)
	market.Cash = number.SubFloor(market.Cash, amount)

	if err = s.transferOut(ctx, market, redeemer, amount); err != nil {
		return
	}

	tx.Emit(core.EventRedeem, market.ID, redeemer, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()).
		Put(core.EventKeyShares, shares.Dec()))

	if err = s.controller.RedeemVerify(market.ID, redeemer, amount, shares); err != nil {
		return
	}

	err = s.controller.Notify(ctx, tx, core.EventRedeem, market.ID, redeemer)
	return
}
