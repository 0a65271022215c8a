package controller

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
)

// EnterMarkets adds markets to account's collateral set. The result has one
// entry per market, nil on success. Entering twice is a no-op.
func (s *service) EnterMarkets(ctx context.Context, tx *core.Tx, account string, markets []string) []error {
	results := make([]error, len(markets))
	membership := tx.Membership(account)

	for i, market := range markets {
		if _, err := s.requireListed(tx, market, "controller/enter/market-not-listed"); err != nil {
			results[i] = err
			continue
		}

		if membership.Add(market) {
			tx.Emit(core.EventMarketEntered, market, account, nil)
		}
	}

	return results
}

// ExitMarket removes market from account's collateral set. Fails while the
// account borrows from market or when the shares are needed as collateral.
func (s *service) ExitMarket(ctx context.Context, tx *core.Tx, account, id string) error {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	position := tx.Position(id, account)
	borrowBalance, err := compound.BorrowBalance(market, position.Borrow)
	if err != nil {
		return compound.Math(err, "controller/exit/borrow-balance")
	}

	if err := compound.Require(borrowBalance.IsZero(), core.ErrNonzeroBorrowBalance, "controller/exit/nonzero-borrow-balance"); err != nil {
		return err
	}

	membership := tx.Membership(account)
	if !membership.Has(id) {
		return nil
	}

	if err := s.redeemAllowedInternal(ctx, tx, id, account, position.Shares); err != nil {
		return err
	}

	membership.Remove(id)
	tx.Emit(core.EventMarketExited, id, account, nil)
	return nil
}
