package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// LiquidateBorrow liquidator repays part of borrower's debt in the borrowed
// market and seizes borrower's shares of the collateral market. Returns the
// seized shares.
func (s *service) LiquidateBorrow(ctx context.Context, tx *core.Tx, borrowedID, liquidator, borrower string, repay uint256.Int, collateralID string) (uint256.Int, error) {
	if err := s.AccrueInterest(ctx, tx, borrowedID); err != nil {
		return uint256.Int{}, err
	}

	if err := s.AccrueInterest(ctx, tx, collateralID); err != nil {
		return uint256.Int{}, err
	}

	borrowed, err := s.requireMarket(tx, borrowedID)
	if err != nil {
		return uint256.Int{}, err
	}

	collateral, err := s.requireMarket(tx, collateralID)
	if err != nil {
		return uint256.Int{}, err
	}

	return s.liquidateBorrowFresh(ctx, tx, borrowed, collateral, liquidator, borrower, repay)
}

func (s *service) liquidateBorrowFresh(ctx context.Context, tx *core.Tx, borrowed, collateral *core.Market, liquidator, borrower string, repay uint256.Int) (uint256.Int, error) {
	if err := s.controller.LiquidateBorrowAllowed(ctx, tx, borrowed.ID, collateral.ID, liquidator, borrower, repay); err != nil {
		return uint256.Int{}, err
	}

	if err := s.requireFresh(tx, borrowed, "market/liquidate/not-fresh"); err != nil {
		return uint256.Int{}, err
	}

	if err := s.requireFresh(tx, collateral, "market/liquidate/collateral-not-fresh"); err != nil {
		return uint256.Int{}, err
	}

	if err := compound.Require(borrower != liquidator, core.ErrInvalidAccountPair, "market/liquidate/liquidator-is-borrower"); err != nil {
		return uint256.Int{}, err
	}

	if err := compound.Require(!repay.IsZero(), core.ErrInvalidCloseAmount, "market/liquidate/close-amount-is-zero"); err != nil {
		return uint256.Int{}, err
	}

	if err := compound.Require(!core.IsRepayAll(repay), core.ErrInvalidCloseAmount, "market/liquidate/close-amount-is-max"); err != nil {
		return uint256.Int{}, err
	}

	actualRepay, err := s.repayBorrowFresh(ctx, tx, borrowed, liquidator, borrower, repay)
	if err != nil {
		return uint256.Int{}, err
	}

	seizeShares, err := s.controller.LiquidateCalculateSeizeTokens(ctx, tx, borrowed.ID, collateral.ID, actualRepay)
	if err != nil {
		return uint256.Int{}, err
	}

	held := tx.Position(collateral.ID, borrower).Shares
	if err := compound.Require(!seizeShares.Gt(&held), core.ErrSeizeTooMuch, "market/liquidate/seize-too-much"); err != nil {
		return uint256.Int{}, err
	}

	if err := s.seizeInternal(ctx, tx, borrowed.ID, collateral, liquidator, borrower, seizeShares); err != nil {
		return uint256.Int{}, err
	}

	tx.Emit(core.EventLiquidateBorrow, borrowed.ID, borrower, core.NewEventData().
		Put(core.EventKeyLiquidator, liquidator).
		Put(core.EventKeyAmount, actualRepay.Dec()).
		Put(core.EventKeyCollateral, collateral.ID).
		Put(core.EventKeySeizeShares, seizeShares.Dec()))

	return seizeShares, nil
}

// seizeInternal moves collateral shares from borrower to liquidator, only
// reachable from liquidateBorrowFresh
func (s *service) seizeInternal(ctx context.Context, tx *core.Tx, seizerID string, collateral *core.Market, liquidator, borrower string, shares uint256.Int) error {
	if err := s.controller.SeizeAllowed(ctx, tx, collateral.ID, seizerID, liquidator, borrower, shares); err != nil {
		return err
	}

	if err := compound.Require(borrower != liquidator, core.ErrInvalidAccountPair, "market/seize/liquidator-is-borrower"); err != nil {
		return err
	}

	protocolShares, liquidatorShares, err := compound.SplitSeize(shares, tx.Risk().ProtocolSeizeShare)
	if err != nil {
		return compound.Math(err, "market/seize/protocol-share")
	}

	exchangeRate, err := compound.ExchangeRate(collateral)
	if err != nil {
		return compound.Math(err, "market/seize/exchange-rate")
	}

	protocolAmount, err := exchangeRate.MulScalarTruncate(protocolShares)
	if err != nil {
		return compound.Math(err, "market/seize/protocol-amount")
	}

	borrowerPosition := tx.Position(collateral.ID, borrower)
	borrowerShares, err := number.Sub(borrowerPosition.Shares, shares)
	if err != nil {
		return core.WrapError(core.ErrSeizeTooMuch, "market/seize/borrower-balance", err)
	}

	liquidatorPosition := tx.Position(collateral.ID, liquidator)
	liquidatorSharesNew, err := number.Add(liquidatorPosition.Shares, liquidatorShares)
	if err != nil {
		return compound.Math(err, "market/seize/liquidator-balance")
	}

	totalReserves, err := number.Add(collateral.TotalReserves, protocolAmount)
	if err != nil {
		return compound.Math(err, "market/seize/total-reserves")
	}

	totalSupply, err := number.Sub(collateral.TotalSupply, protocolShares)
	if err != nil {
		return compound.Math(err, "market/seize/total-supply")
	}

	borrowerPosition.Shares = borrowerShares
	liquidatorPosition.Shares = liquidatorSharesNew
	collateral.TotalReserves = totalReserves
	collateral.TotalSupply = totalSupply

	tx.Emit(core.EventTransfer, collateral.ID, borrower, core.NewEventData().
		Put(core.EventKeyTo, liquidator).
		Put(core.EventKeyShares, liquidatorShares.Dec()).
		Put(core.EventKeyProtocolShare, protocolShares.Dec()))

	if !protocolAmount.IsZero() {
		tx.Emit(core.EventReservesAdded, collateral.ID, "", core.NewEventData().
			Put(core.EventKeyAmount, protocolAmount.Dec()).
			Put(core.EventKeyTotalReserves, totalReserves.Dec()))
	}

	return s.controller.Notify(ctx, tx, core.EventLiquidateBorrow, collateral.ID, borrower, liquidator)
}
