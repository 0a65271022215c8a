package controller

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// GetAccountLiquidity liquidity of account with the current stored state
func (s *service) GetAccountLiquidity(ctx context.Context, tx *core.Tx, account string) (core.Liquidity, error) {
	return s.GetHypotheticalAccountLiquidity(ctx, tx, account, "", uint256.Int{}, uint256.Int{})
}

// GetHypotheticalAccountLiquidity liquidity of account if it redeemed
// redeemShares and borrowed borrowAmount more of market
//
// collateral = sum(shares * exchange_rate * price * collateral_factor)
// borrows = sum(borrow_balance * price) + effects
func (s *service) GetHypotheticalAccountLiquidity(ctx context.Context, tx *core.Tx, account, modify string, redeemShares, borrowAmount uint256.Int) (core.Liquidity, error) {
	var (
		sumCollateral        uint256.Int
		sumBorrowPlusEffects uint256.Int
		risk                 = tx.Risk()
	)

	for _, id := range tx.Membership(account).Markets {
		market, err := s.requireMarket(tx, id)
		if err != nil {
			return core.Liquidity{}, err
		}

		var collateralFactor number.Exp
		if cfg := risk.Markets[id]; cfg != nil {
			collateralFactor = cfg.CollateralFactor
		}

		position := tx.Position(id, account)
		borrowBalance, err := compound.BorrowBalance(market, position.Borrow)
		if err != nil {
			return core.Liquidity{}, compound.Math(err, "controller/liquidity/borrow-balance")
		}

		exchangeRate, err := compound.ExchangeRate(market)
		if err != nil {
			return core.Liquidity{}, compound.Math(err, "controller/liquidity/exchange-rate")
		}

		price, err := s.price(ctx, market)
		if err != nil {
			return core.Liquidity{}, err
		}

		tokensToDenom, err := collateralFactor.Mul(exchangeRate)
		if err == nil {
			tokensToDenom, err = tokensToDenom.Mul(price)
		}
		if err != nil {
			return core.Liquidity{}, compound.Math(err, "controller/liquidity/tokens-to-denom")
		}

		if sumCollateral, err = accumulate(tokensToDenom, position.Shares, sumCollateral); err != nil {
			return core.Liquidity{}, compound.Math(err, "controller/liquidity/collateral")
		}

		if sumBorrowPlusEffects, err = accumulate(price, borrowBalance, sumBorrowPlusEffects); err != nil {
			return core.Liquidity{}, compound.Math(err, "controller/liquidity/borrows")
		}

		if id == modify {
			if sumBorrowPlusEffects, err = accumulate(tokensToDenom, redeemShares, sumBorrowPlusEffects); err != nil {
				return core.Liquidity{}, compound.Math(err, "controller/liquidity/redeem-effect")
			}

			if sumBorrowPlusEffects, err = accumulate(price, borrowAmount, sumBorrowPlusEffects); err != nil {
				return core.Liquidity{}, compound.Math(err, "controller/liquidity/borrow-effect")
			}
		}
	}

	if sumCollateral.Gt(&sumBorrowPlusEffects) {
		return core.Liquidity{Liquidity: number.SubFloor(sumCollateral, sumBorrowPlusEffects)}, nil
	}

	return core.Liquidity{Shortfall: number.SubFloor(sumBorrowPlusEffects, sumCollateral)}, nil
}

func accumulate(e number.Exp, scalar, sum uint256.Int) (uint256.Int, error) {
	return e.MulScalarTruncateAdd(scalar, sum)
}

// LiquidateCalculateSeizeTokens collateral shares to seize for repay of the borrowed asset
func (s *service) LiquidateCalculateSeizeTokens(ctx context.Context, tx *core.Tx, borrowedID, collateralID string, repay uint256.Int) (uint256.Int, error) {
	borrowed, err := s.requireMarket(tx, borrowedID)
	if err != nil {
		return uint256.Int{}, err
	}

	collateral, err := s.requireMarket(tx, collateralID)
	if err != nil {
		return uint256.Int{}, err
	}

	priceBorrowed, err := s.price(ctx, borrowed)
	if err != nil {
		return uint256.Int{}, err
	}

	priceCollateral, err := s.price(ctx, collateral)
	if err != nil {
		return uint256.Int{}, err
	}

	exchangeRate, err := compound.ExchangeRate(collateral)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "controller/seize/exchange-rate")
	}

	seize, err := compound.SeizeTokens(repay, tx.Risk().LiquidationIncentive, priceBorrowed, priceCollateral, exchangeRate)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "controller/seize/calculation")
	}

	return seize, nil
}
