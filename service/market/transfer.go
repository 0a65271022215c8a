package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// Transfer moves shares between accounts, subject to the sender's liquidity
func (s *service) Transfer(ctx context.Context, tx *core.Tx, id, src, dst string, shares uint256.Int) error {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	if err := s.controller.TransferAllowed(ctx, tx, market.ID, src, dst, shares); err != nil {
		return err
	}

	if err := compound.Require(src != dst, core.ErrInvalidInput, "market/transfer/self-transfer"); err != nil {
		return err
	}

	from := tx.Position(market.ID, src)
	srcShares, err := number.Sub(from.Shares, shares)
	if err != nil {
		return core.WrapError(core.ErrInsufficientBalance, "market/transfer/insufficient-shares", err)
	}

	to := tx.Position(market.ID, dst)
	dstShares, err := number.Add(to.Shares, shares)
	if err != nil {
		return compound.Math(err, "market/transfer/dst-balance")
	}

	from.Shares = srcShares
	to.Shares = dstShares

	tx.Emit(core.EventTransfer, market.ID, src, core.NewEventData().
		Put(core.EventKeyTo, dst).
		Put(core.EventKeyShares, shares.Dec()))

	return s.controller.Notify(ctx, tx, core.EventTransfer, market.ID, src, dst)
}
