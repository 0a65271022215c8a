package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// Borrow lends amount of the underlying to borrower against their collateral
func (s *service) Borrow(ctx context.Context, tx *core.Tx, id, borrower string, amount uint256.Int) error {
	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return err
	}

	return s.borrowFresh(ctx, tx, market, borrower, amount)
}

func (s *service) borrowFresh(ctx context.Context, tx *core.Tx, market *core.Market, borrower string, amount uint256.Int) error {
	if err := compound.Require(!amount.IsZero(), core.ErrInvalidAmount, "market/borrow/zero-amount"); err != nil {
		return err
	}

	if err := s.controller.BorrowAllowed(ctx, tx, market.ID, borrower, amount); err != nil {
		return err
	}

	if err := s.requireFresh(tx, market, "market/borrow/not-fresh"); err != nil {
		return err
	}

	if err := compound.Require(!amount.Gt(&market.Cash), core.ErrInsufficientCash, "market/borrow/insufficient-cash"); err != nil {
		return err
	}

	position := tx.Position(market.ID, borrower)
	accountBorrows, err := compound.BorrowBalance(market, position.Borrow)
	if err != nil {
		return compound.Math(err, "market/borrow/account-borrows")
	}

	accountBorrowsNew, err := number.Add(accountBorrows, amount)
	if err != nil {
		return compound.Math(err, "market/borrow/new-account-borrows")
	}

	totalBorrowsNew, err := number.Add(market.TotalBorrows, amount)
	if err != nil {
		return compound.Math(err, "market/borrow/new-total-borrows")
	}

	position.Borrow = core.BorrowSnapshot{
		Principal:     accountBorrowsNew,
		InterestIndex: market.BorrowIndex,
	}
	market.TotalBorrows = totalBorrowsNew
	market.Cash = number.SubFloor(market.Cash, amount)

	if err := s.transferOut(ctx, market, borrower, amount); err != nil {
		return err
	}

	tx.Emit(core.EventBorrow, market.ID, borrower, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()).
		Put(core.EventKeyAccountBorrow, accountBorrowsNew.Dec()).
		Put(core.EventKeyTotalBorrows, totalBorrowsNew.Dec()))

	return s.controller.Notify(ctx, tx, core.EventBorrow, market.ID, borrower)
}
