package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// RepayBorrow payer repays amount of borrower's debt. core.RepayAll repays
// the whole balance, any explicit amount above the balance is rejected.
func (s *service) RepayBorrow(ctx context.Context, tx *core.Tx, id, payer, borrower string, amount uint256.Int) (uint256.Int, error) {
	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return uint256.Int{}, err
	}

	return s.repayBorrowFresh(ctx, tx, market, payer, borrower, amount)
}

func (s *service) repayBorrowFresh(ctx context.Context, tx *core.Tx, market *core.Market, payer, borrower string, amount uint256.Int) (uint256.Int, error) {
	if err := s.controller.RepayBorrowAllowed(ctx, tx, market.ID, payer, borrower, amount); err != nil {
		return uint256.Int{}, err
	}

	if err := s.requireFresh(tx, market, "market/repay/not-fresh"); err != nil {
		return uint256.Int{}, err
	}

	position := tx.Position(market.ID, borrower)
	accountBorrows, err := compound.BorrowBalance(market, position.Borrow)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/repay/account-borrows")
	}

	repay := amount
	if core.IsRepayAll(amount) {
		repay = accountBorrows
	}

	if err := compound.Require(!repay.Gt(&accountBorrows), core.ErrTooMuchRepay, "market/repay/exceeds-balance"); err != nil {
		return uint256.Int{}, err
	}

	cash, err := number.Add(market.Cash, repay)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/repay/cash")
	}

	accountBorrowsNew := number.SubFloor(accountBorrows, repay)
	// rounding may leave the sum of account balances slightly above total borrows
	totalBorrowsNew := number.SubFloor(market.TotalBorrows, repay)

	position.Borrow = core.BorrowSnapshot{
		Principal:     accountBorrowsNew,
		InterestIndex: market.BorrowIndex,
	}
	market.TotalBorrows = totalBorrowsNew
	market.Cash = cash

	if err := s.transferIn(ctx, market, payer, repay); err != nil {
		return uint256.Int{}, err
	}

	tx.Emit(core.EventRepayBorrow, market.ID, borrower, core.NewEventData().
		Put(core.EventKeyPayer, payer).
		Put(core.EventKeyAmount, repay.Dec()).
		Put(core.EventKeyAccountBorrow, accountBorrowsNew.Dec()).
		Put(core.EventKeyTotalBorrows, totalBorrowsNew.Dec()))

	if err := s.controller.Notify(ctx, tx, core.EventRepayBorrow, market.ID, borrower); err != nil {
		return uint256.Int{}, err
	}

	return repay, nil
}
