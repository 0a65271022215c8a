package lender

import (
	"context"

	"lender/core"
	"lender/pkg/number"
)

// Bootstrap seeds an empty ledger from cfg: risk parameters plus the
// configured market listings. A ledger that already has markets is left alone.
func (e *Engine) Bootstrap(ctx context.Context, cfg *core.Config) error {
	return e.run(ctx, "bootstrap", func(ctx context.Context, tx *core.Tx) error {
		if len(e.ledger.Markets) > 0 {
			return nil
		}

		admin := cfg.App.Admin
		risk := tx.Risk()

		share, err := parseExp(cfg.Risk.ProtocolSeizeShare, number.MustParseExp("0.028"))
		if err != nil {
			return err
		}
		risk.ProtocolSeizeShare = share
		risk.RewardAsset = cfg.App.RewardAsset

		if cfg.App.ClaimThreshold != "" {
			threshold, err := number.ParseInt(cfg.App.ClaimThreshold)
			if err != nil {
				return core.WrapError(core.ErrInvalidInput, "engine/bootstrap/claim-threshold", err)
			}
			risk.ClaimThreshold = threshold
		}

		if cfg.Risk.CloseFactor != "" {
			factor, err := parseExp(cfg.Risk.CloseFactor, number.Exp{})
			if err != nil {
				return err
			}

			if err := e.controller.SetCloseFactor(ctx, tx, admin, factor); err != nil {
				return err
			}
		}

		if cfg.Risk.LiquidationIncentive != "" {
			incentive, err := parseExp(cfg.Risk.LiquidationIncentive, number.Exp{})
			if err != nil {
				return err
			}

			if err := e.controller.SetLiquidationIncentive(ctx, tx, admin, incentive); err != nil {
				return err
			}
		}

		for _, listing := range cfg.Markets {
			if err := e.listMarket(ctx, tx, admin, listing); err != nil {
				return err
			}
		}

		return nil
	})
}
