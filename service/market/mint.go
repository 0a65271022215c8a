package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// Mint supplies amount of the underlying asset and credits pool shares
// at the current exchange rate
func (s *service) Mint(ctx context.Context, tx *core.Tx, id, minter string, amount uint256.Int) (uint256.Int, error) {
	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return uint256.Int{}, err
	}

	return s.mintFresh(ctx, tx, market, minter, amount)
}

func (s *service) mintFresh(ctx context.Context, tx *core.Tx, market *core.Market, minter string, amount uint256.Int) (uint256.Int, error) {
	if err := s.controller.MintAllowed(ctx, tx, market.ID, minter, amount); err != nil {
		return uint256.Int{}, err
	}

	if err := s.requireFresh(tx, market, "market/mint/not-fresh"); err != nil {
		return uint256.Int{}, err
	}

	if err := compound.Require(!amount.IsZero(), core.ErrInvalidAmount, "market/mint/zero-amount"); err != nil {
		return uint256.Int{}, err
	}

	exchangeRate, err := compound.ExchangeRate(market)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/mint/exchange-rate")
	}

	shares, err := number.DivScalarByExpTruncate(amount, exchangeRate)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/mint/exchange-calculation")
	}

	if err := compound.Require(!shares.IsZero(), core.ErrInvalidAmount, "market/mint/amount-too-small"); err != nil {
		return uint256.Int{}, err
	}

	totalSupply, err := number.Add(market.TotalSupply, shares)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/mint/total-supply")
	}

	position := tx.Position(market.ID, minter)
	balance, err := number.Add(position.Shares, shares)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/mint/account-balance")
	}

	cash, err := number.Add(market.Cash, amount)
	if err != nil {
		return uint256.Int{}, compound.Math(err, "market/mint/cash")
	}

	market.TotalSupply = totalSupply
	market.Cash = cash
	position.Shares = balance

	if err := s.transferIn(ctx, market, minter, amount); err != nil {
		return uint256.Int{}, err
	}

	tx.Emit(core.EventMint, market.ID, minter, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()).
		Put(core.EventKeyShares, shares.Dec()))

	if err := s.controller.Notify(ctx, tx, core.EventMint, market.ID, minter); err != nil {
		return uint256.Int{}, err
	}

	return shares, nil
}
