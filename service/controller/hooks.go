package controller

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

func (s *service) MintAllowed(ctx context.Context, tx *core.Tx, market, minter string, amount uint256.Int) error {
	cfg, err := s.requireListed(tx, market, "controller/mint/market-not-listed")
	if err != nil {
		return err
	}

	if err := compound.Require(!cfg.MintPaused, core.ErrActionPaused, "controller/mint/paused"); err != nil {
		return err
	}

	return s.touchSuppliers(tx, market, minter)
}

func (s *service) RedeemAllowed(ctx context.Context, tx *core.Tx, market, redeemer string, shares uint256.Int) error {
	if err := s.redeemAllowedInternal(ctx, tx, market, redeemer, shares); err != nil {
		return err
	}

	return s.touchSuppliers(tx, market, redeemer)
}

func (s *service) redeemAllowedInternal(ctx context.Context, tx *core.Tx, market, redeemer string, shares uint256.Int) error {
	if _, err := s.requireListed(tx, market, "controller/redeem/market-not-listed"); err != nil {
		return err
	}

	// shares outside the collateral set never count toward liquidity
	if !tx.Membership(redeemer).Has(market) {
		return nil
	}

	liquidity, err := s.GetHypotheticalAccountLiquidity(ctx, tx, redeemer, market, shares, uint256.Int{})
	if err != nil {
		return err
	}

	return compound.Require(liquidity.Shortfall.IsZero(), core.ErrInsufficientLiquidity, "controller/redeem/insufficient-liquidity")
}

// RedeemVerify rejects redeeming zero shares for a non-zero amount
func (s *service) RedeemVerify(market, redeemer string, amount, shares uint256.Int) error {
	return compound.Require(!shares.IsZero() || amount.IsZero(), core.ErrInvalidAmount, "controller/redeem/redeem-tokens-zero")
}

func (s *service) BorrowAllowed(ctx context.Context, tx *core.Tx, id, borrower string, amount uint256.Int) error {
	cfg, err := s.requireListed(tx, id, "controller/borrow/market-not-listed")
	if err != nil {
		return err
	}

	if err := compound.Require(!cfg.BorrowPaused, core.ErrActionPaused, "controller/borrow/paused"); err != nil {
		return err
	}

	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	if membership := tx.Membership(borrower); membership.Add(id) {
		tx.Emit(core.EventMarketEntered, id, borrower, nil)
	}

	if _, err := s.price(ctx, market); err != nil {
		return err
	}

	if !cfg.BorrowCap.IsZero() {
		nextTotalBorrows, err := number.Add(market.TotalBorrows, amount)
		if err != nil {
			return compound.Math(err, "controller/borrow/next-total-borrows")
		}

		if err := compound.Require(nextTotalBorrows.Lt(&cfg.BorrowCap), core.ErrBorrowCapReached, "controller/borrow/cap-reached"); err != nil {
			return err
		}
	}

	liquidity, err := s.GetHypotheticalAccountLiquidity(ctx, tx, borrower, id, uint256.Int{}, amount)
	if err != nil {
		return err
	}

	if err := compound.Require(liquidity.Shortfall.IsZero(), core.ErrInsufficientLiquidity, "controller/borrow/insufficient-liquidity"); err != nil {
		return err
	}

	return s.touchBorrowers(tx, id, borrower)
}

func (s *service) RepayBorrowAllowed(ctx context.Context, tx *core.Tx, market, payer, borrower string, amount uint256.Int) error {
	if _, err := s.requireListed(tx, market, "controller/repay/market-not-listed"); err != nil {
		return err
	}

	return s.touchBorrowers(tx, market, borrower)
}

func (s *service) LiquidateBorrowAllowed(ctx context.Context, tx *core.Tx, borrowedID, collateralID, liquidator, borrower string, repay uint256.Int) error {
	if _, err := s.requireListed(tx, borrowedID, "controller/liquidate/market-not-listed"); err != nil {
		return err
	}

	if _, err := s.requireListed(tx, collateralID, "controller/liquidate/collateral-not-listed"); err != nil {
		return err
	}

	borrowed, err := s.requireMarket(tx, borrowedID)
	if err != nil {
		return err
	}

	borrowBalance, err := compound.BorrowBalance(borrowed, tx.Position(borrowedID, borrower).Borrow)
	if err != nil {
		return compound.Math(err, "controller/liquidate/borrow-balance")
	}

	if s.isDeprecated(tx, borrowed) {
		return compound.Require(!repay.Gt(&borrowBalance), core.ErrTooMuchRepay, "controller/liquidate/repay-exceeds-balance")
	}

	liquidity, err := s.GetAccountLiquidity(ctx, tx, borrower)
	if err != nil {
		return err
	}

	if err := compound.Require(!liquidity.Shortfall.IsZero(), core.ErrInsufficientShortfall, "controller/liquidate/insufficient-shortfall"); err != nil {
		return err
	}

	maxClose, err := tx.Risk().CloseFactor.MulScalarTruncate(borrowBalance)
	if err != nil {
		return compound.Math(err, "controller/liquidate/max-close")
	}

	return compound.Require(!repay.Gt(&maxClose), core.ErrTooMuchRepay, "controller/liquidate/too-much-repay")
}

func (s *service) SeizeAllowed(ctx context.Context, tx *core.Tx, collateral, borrowed, liquidator, borrower string, shares uint256.Int) error {
	if err := compound.Require(!tx.Risk().SeizePaused, core.ErrActionPaused, "controller/seize/paused"); err != nil {
		return err
	}

	if _, err := s.requireListed(tx, collateral, "controller/seize/collateral-not-listed"); err != nil {
		return err
	}

	if _, err := s.requireListed(tx, borrowed, "controller/seize/market-not-listed"); err != nil {
		return err
	}

	return s.touchSuppliers(tx, collateral, borrower, liquidator)
}

func (s *service) TransferAllowed(ctx context.Context, tx *core.Tx, market, src, dst string, shares uint256.Int) error {
	if err := compound.Require(!tx.Risk().TransferPaused, core.ErrActionPaused, "controller/transfer/paused"); err != nil {
		return err
	}

	if err := s.redeemAllowedInternal(ctx, tx, market, src, shares); err != nil {
		return err
	}

	return s.touchSuppliers(tx, market, src, dst)
}

// Notify settles rewards against the post action balances. Within one
// period this is a no-op for accounts the pre action hook already settled.
func (s *service) Notify(ctx context.Context, tx *core.Tx, action core.EventAction, market string, accounts ...string) error {
	switch action {
	case core.EventBorrow, core.EventRepayBorrow:
		return s.touchBorrowers(tx, market, accounts...)
	default:
		return s.touchSuppliers(tx, market, accounts...)
	}
}
