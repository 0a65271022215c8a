package lender

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// EnterMarkets the Tx commits even when some entries fail, the result has
// one error (or nil) per market
func (e *Engine) EnterMarkets(ctx context.Context, account string, markets []string) (results []error, err error) {
	err = e.run(ctx, "enter_markets", func(ctx context.Context, tx *core.Tx) error {
		results = e.controller.EnterMarkets(ctx, tx, account, markets)
		return nil
	})
	return
}

func (e *Engine) ExitMarket(ctx context.Context, account, market string) error {
	return e.run(ctx, "exit_market", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.ExitMarket(ctx, tx, account, market)
	})
}

func (e *Engine) SupportMarket(ctx context.Context, caller, market string) error {
	return e.run(ctx, "support_market", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SupportMarket(ctx, tx, caller, market)
	})
}

func (e *Engine) SetCollateralFactor(ctx context.Context, caller, market string, factor number.Exp) error {
	return e.run(ctx, "set_collateral_factor", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetCollateralFactor(ctx, tx, caller, market, factor)
	})
}

func (e *Engine) SetCloseFactor(ctx context.Context, caller string, factor number.Exp) error {
	return e.run(ctx, "set_close_factor", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetCloseFactor(ctx, tx, caller, factor)
	})
}

func (e *Engine) SetLiquidationIncentive(ctx context.Context, caller string, incentive number.Exp) error {
	return e.run(ctx, "set_liquidation_incentive", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetLiquidationIncentive(ctx, tx, caller, incentive)
	})
}

func (e *Engine) SetPriceOracle(ctx context.Context, caller string, oracle core.PriceOracle) error {
	return e.run(ctx, "set_price_oracle", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetPriceOracle(ctx, tx, caller, oracle)
	})
}

func (e *Engine) SetPauseGuardian(ctx context.Context, caller, guardian string) error {
	return e.run(ctx, "set_pause_guardian", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetPauseGuardian(ctx, tx, caller, guardian)
	})
}

// Pause actions
const (
	ActionMint     = "mint"
	ActionBorrow   = "borrow"
	ActionTransfer = "transfer"
	ActionSeize    = "seize"
)

// SetPaused toggles action. Mint and borrow are per market, transfer and
// seize are global and ignore market.
func (e *Engine) SetPaused(ctx context.Context, caller, action, market string, paused bool) error {
	return e.run(ctx, "set_paused", func(ctx context.Context, tx *core.Tx) error {
		switch action {
		case ActionMint:
			return e.controller.SetMintPaused(ctx, tx, caller, market, paused)
		case ActionBorrow:
			return e.controller.SetBorrowPaused(ctx, tx, caller, market, paused)
		case ActionTransfer:
			return e.controller.SetTransferPaused(ctx, tx, caller, paused)
		case ActionSeize:
			return e.controller.SetSeizePaused(ctx, tx, caller, paused)
		default:
			return core.NewError(core.ErrInvalidInput, "engine/set-paused/unknown-action")
		}
	})
}

func (e *Engine) SetBorrowCapGuardian(ctx context.Context, caller, guardian string) error {
	return e.run(ctx, "set_borrow_cap_guardian", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetBorrowCapGuardian(ctx, tx, caller, guardian)
	})
}

func (e *Engine) SetMarketBorrowCaps(ctx context.Context, caller string, markets []string, caps []uint256.Int) error {
	return e.run(ctx, "set_market_borrow_caps", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetMarketBorrowCaps(ctx, tx, caller, markets, caps)
	})
}

func (e *Engine) SetPendingAdmin(ctx context.Context, caller, pending string) error {
	return e.run(ctx, "set_pending_admin", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetPendingAdmin(ctx, tx, caller, pending)
	})
}

func (e *Engine) AcceptAdmin(ctx context.Context, caller string) error {
	return e.run(ctx, "accept_admin", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.AcceptAdmin(ctx, tx, caller)
	})
}

func (e *Engine) SetRewardSpeeds(ctx context.Context, caller string, markets []string, supplySpeeds, borrowSpeeds []uint256.Int) error {
	return e.run(ctx, "set_reward_speeds", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetRewardSpeeds(ctx, tx, caller, markets, supplySpeeds, borrowSpeeds)
	})
}

func (e *Engine) SetContributorRewardSpeed(ctx context.Context, caller, contributor string, speed uint256.Int) error {
	return e.run(ctx, "set_contributor_reward_speed", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.SetContributorRewardSpeed(ctx, tx, caller, contributor, speed)
	})
}

func (e *Engine) UpdateContributorRewards(ctx context.Context, contributor string) error {
	return e.run(ctx, "update_contributor_rewards", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.UpdateContributorRewards(ctx, tx, contributor)
	})
}

func (e *Engine) FundRewards(ctx context.Context, from string, amount uint256.Int) error {
	return e.run(ctx, "fund_rewards", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.FundRewards(ctx, tx, from, amount)
	})
}

func (e *Engine) GrantReward(ctx context.Context, caller, recipient string, amount uint256.Int) error {
	return e.run(ctx, "grant_reward", func(ctx context.Context, tx *core.Tx) error {
		return e.controller.GrantReward(ctx, tx, caller, recipient, amount)
	})
}

// ClaimReward settles holders on both sides of markets (all markets when empty)
func (e *Engine) ClaimReward(ctx context.Context, holders, markets []string) error {
	return e.run(ctx, "claim_reward", func(ctx context.Context, tx *core.Tx) error {
		if err := compound.Require(len(holders) > 0, core.ErrInvalidInput, "lender/claim/no-holders"); err != nil {
			return err
		}

		return e.controller.ClaimReward(ctx, tx, holders, markets, true, true)
	})
}
