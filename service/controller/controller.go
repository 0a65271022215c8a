package controller

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"
)

type service struct {
	oracle core.PriceOracle
	tokens core.TokenService
}

// New new risk controller
func New(oracle core.PriceOracle, tokens core.TokenService) core.IController {
	return &service{
		oracle: oracle,
		tokens: tokens,
	}
}

func (s *service) Oracle() core.PriceOracle {
	return s.oracle
}

func (s *service) requireAdmin(tx *core.Tx, caller, reason string) error {
	return compound.Require(tx.Risk().IsAdmin(caller), core.ErrUnauthorized, reason)
}

func (s *service) requireListed(tx *core.Tx, market, reason string) (*core.MarketConfig, error) {
	cfg := tx.Risk().Listed(market)
	if err := compound.Require(cfg != nil, core.ErrMarketNotListed, reason); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *service) requireMarket(tx *core.Tx, id string) (*core.Market, error) {
	market, ok := tx.Market(id)
	if err := compound.Require(ok, core.ErrMarketNotFound, "controller/market-not-found"); err != nil {
		return nil, err
	}

	return market, nil
}

// price zero or failing oracles are both reported as unavailable
func (s *service) price(ctx context.Context, market *core.Market) (number.Exp, error) {
	if s.oracle == nil {
		return number.Exp{}, core.NewError(core.ErrPriceUnavailable, "controller/no-oracle")
	}

	price, err := s.oracle.UnderlyingPrice(ctx, market)
	if err != nil {
		return number.Exp{}, core.WrapError(core.ErrPriceUnavailable, "controller/price-error", err)
	}

	if price.IsZero() {
		return number.Exp{}, core.NewError(core.ErrPriceUnavailable, "controller/price-error")
	}

	return price, nil
}

// isDeprecated a market wound down by governance can be liquidated in full
// regardless of the borrower's liquidity
func (s *service) isDeprecated(tx *core.Tx, market *core.Market) bool {
	cfg := tx.Risk().Listed(market.ID)
	if cfg == nil {
		return false
	}

	return cfg.CollateralFactor.IsZero() &&
		cfg.BorrowPaused &&
		market.ReserveFactor.Equal(number.OneExp())
}
