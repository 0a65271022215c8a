package controller

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// SupportMarket lists a created market
func (s *service) SupportMarket(ctx context.Context, tx *core.Tx, caller, id string) error {
	if err := s.requireAdmin(tx, caller, "controller/support-market/unauthorized"); err != nil {
		return err
	}

	if _, err := s.requireMarket(tx, id); err != nil {
		return err
	}

	risk := tx.Risk()
	if err := compound.Require(risk.Listed(id) == nil, core.ErrMarketAlreadyListed, "controller/support-market/already-listed"); err != nil {
		return err
	}

	risk.Markets[id] = &core.MarketConfig{Market: id, IsListed: true}
	risk.AllMarkets = append(risk.AllMarkets, id)
	s.rewardMarket(tx, id)

	tx.Emit(core.EventMarketListed, id, caller, nil)
	return nil
}

// SetCollateralFactor factor must be within [0, 0.9], a non-zero factor needs a price
func (s *service) SetCollateralFactor(ctx context.Context, tx *core.Tx, caller, id string, factor number.Exp) error {
	if err := s.requireAdmin(tx, caller, "controller/set-collateral-factor/unauthorized"); err != nil {
		return err
	}

	cfg, err := s.requireListed(tx, id, "controller/set-collateral-factor/market-not-listed")
	if err != nil {
		return err
	}

	if err := compound.Require(!factor.GreaterThan(compound.CollateralFactorMax), core.ErrInvalidCollateralFactor, "controller/set-collateral-factor/too-high"); err != nil {
		return err
	}

	if !factor.IsZero() {
		market, err := s.requireMarket(tx, id)
		if err != nil {
			return err
		}

		if _, err := s.price(ctx, market); err != nil {
			return err
		}
	}

	old := cfg.CollateralFactor
	cfg.CollateralFactor = factor

	tx.Emit(core.EventNewCollateralFactor, id, caller, core.NewEventData().
		Put(core.EventKeyOld, old.String()).
		Put(core.EventKeyNew, factor.String()))
	return nil
}

// SetCloseFactor factor must be within (0, 1]
func (s *service) SetCloseFactor(ctx context.Context, tx *core.Tx, caller string, factor number.Exp) error {
	if err := s.requireAdmin(tx, caller, "controller/set-close-factor/unauthorized"); err != nil {
		return err
	}

	if err := compound.Require(!factor.IsZero() && !factor.GreaterThan(compound.CloseFactorMax), core.ErrInvalidCloseFactor, "controller/set-close-factor/bounds-check"); err != nil {
		return err
	}

	risk := tx.Risk()
	old := risk.CloseFactor
	risk.CloseFactor = factor

	tx.Emit(core.EventNewCloseFactor, "", caller, core.NewEventData().
		Put(core.EventKeyOld, old.String()).
		Put(core.EventKeyNew, factor.String()))
	return nil
}

// SetLiquidationIncentive incentive must be at least 1.0
func (s *service) SetLiquidationIncentive(ctx context.Context, tx *core.Tx, caller string, incentive number.Exp) error {
	if err := s.requireAdmin(tx, caller, "controller/set-liquidation-incentive/unauthorized"); err != nil {
		return err
	}

	if err := compound.Require(!incentive.LessThan(compound.LiquidationIncentiveMin), core.ErrInvalidLiquidationIncentive, "controller/set-liquidation-incentive/bounds-check"); err != nil {
		return err
	}

	risk := tx.Risk()
	old := risk.LiquidationIncentive
	risk.LiquidationIncentive = incentive

	tx.Emit(core.EventNewIncentive, "", caller, core.NewEventData().
		Put(core.EventKeyOld, old.String()).
		Put(core.EventKeyNew, incentive.String()))
	return nil
}

func (s *service) SetPriceOracle(ctx context.Context, tx *core.Tx, caller string, oracle core.PriceOracle) error {
	if err := s.requireAdmin(tx, caller, "controller/set-price-oracle/unauthorized"); err != nil {
		return err
	}

	if err := compound.Require(oracle != nil, core.ErrInvalidInput, "controller/set-price-oracle/nil-oracle"); err != nil {
		return err
	}

	tx.OnCommit(func() {
		s.oracle = oracle
	})
	tx.Emit(core.EventNewPriceOracle, "", caller, nil)
	return nil
}

func (s *service) SetPauseGuardian(ctx context.Context, tx *core.Tx, caller, guardian string) error {
	if err := s.requireAdmin(tx, caller, "controller/set-pause-guardian/unauthorized"); err != nil {
		return err
	}

	risk := tx.Risk()
	old := risk.PauseGuardian
	risk.PauseGuardian = guardian

	tx.Emit(core.EventNewPauseGuardian, "", caller, core.NewEventData().
		Put(core.EventKeyOld, old).
		Put(core.EventKeyNew, guardian))
	return nil
}

// requirePauser the guardian may pause, only the admin may unpause
func (s *service) requirePauser(tx *core.Tx, caller string, paused bool, reason string) error {
	risk := tx.Risk()
	allowed := risk.IsAdmin(caller)
	if paused && !allowed {
		allowed = caller != "" && caller == risk.PauseGuardian
	}

	return compound.Require(allowed, core.ErrUnauthorized, reason)
}

func (s *service) SetMintPaused(ctx context.Context, tx *core.Tx, caller, market string, paused bool) error {
	cfg, err := s.requireListed(tx, market, "controller/pause/market-not-listed")
	if err != nil {
		return err
	}

	if err := s.requirePauser(tx, caller, paused, "controller/pause-mint/unauthorized"); err != nil {
		return err
	}

	cfg.MintPaused = paused
	s.emitPaused(tx, market, caller, "mint", paused)
	return nil
}

func (s *service) SetBorrowPaused(ctx context.Context, tx *core.Tx, caller, market string, paused bool) error {
	cfg, err := s.requireListed(tx, market, "controller/pause/market-not-listed")
	if err != nil {
		return err
	}

	if err := s.requirePauser(tx, caller, paused, "controller/pause-borrow/unauthorized"); err != nil {
		return err
	}

	cfg.BorrowPaused = paused
	s.emitPaused(tx, market, caller, "borrow", paused)
	return nil
}

func (s *service) SetTransferPaused(ctx context.Context, tx *core.Tx, caller string, paused bool) error {
	if err := s.requirePauser(tx, caller, paused, "controller/pause-transfer/unauthorized"); err != nil {
		return err
	}

	tx.Risk().TransferPaused = paused
	s.emitPaused(tx, "", caller, "transfer", paused)
	return nil
}

func (s *service) SetSeizePaused(ctx context.Context, tx *core.Tx, caller string, paused bool) error {
	if err := s.requirePauser(tx, caller, paused, "controller/pause-seize/unauthorized"); err != nil {
		return err
	}

	tx.Risk().SeizePaused = paused
	s.emitPaused(tx, "", caller, "seize", paused)
	return nil
}

func (s *service) emitPaused(tx *core.Tx, market, caller, action string, paused bool) {
	tx.Emit(core.EventActionPaused, market, caller, core.NewEventData().
		Put(core.EventKeyAction, action).
		Put(core.EventKeyPaused, paused))
}

func (s *service) SetBorrowCapGuardian(ctx context.Context, tx *core.Tx, caller, guardian string) error {
	if err := s.requireAdmin(tx, caller, "controller/set-borrow-cap-guardian/unauthorized"); err != nil {
		return err
	}

	risk := tx.Risk()
	old := risk.BorrowCapGuardian
	risk.BorrowCapGuardian = guardian

	tx.Emit(core.EventNewBorrowCapGuardian, "", caller, core.NewEventData().
		Put(core.EventKeyOld, old).
		Put(core.EventKeyNew, guardian))
	return nil
}

// SetMarketBorrowCaps a zero cap means unlimited
func (s *service) SetMarketBorrowCaps(ctx context.Context, tx *core.Tx, caller string, markets []string, caps []uint256.Int) error {
	risk := tx.Risk()
	allowed := risk.IsAdmin(caller) || (caller != "" && caller == risk.BorrowCapGuardian)
	if err := compound.Require(allowed, core.ErrUnauthorized, "controller/set-borrow-caps/unauthorized"); err != nil {
		return err
	}

	if err := compound.Require(len(markets) > 0 && len(markets) == len(caps), core.ErrInvalidInput, "controller/set-borrow-caps/invalid-input"); err != nil {
		return err
	}

	for i, market := range markets {
		cfg, err := s.requireListed(tx, market, "controller/set-borrow-caps/market-not-listed")
		if err != nil {
			return err
		}

		cfg.BorrowCap = caps[i]
		tx.Emit(core.EventNewBorrowCap, market, caller, core.NewEventData().
			Put(core.EventKeyNew, caps[i].Dec()))
	}

	return nil
}

// SetPendingAdmin first half of the admin handover
func (s *service) SetPendingAdmin(ctx context.Context, tx *core.Tx, caller, pending string) error {
	if err := s.requireAdmin(tx, caller, "controller/set-pending-admin/unauthorized"); err != nil {
		return err
	}

	risk := tx.Risk()
	old := risk.PendingAdmin
	risk.PendingAdmin = pending

	tx.Emit(core.EventNewPendingAdmin, "", caller, core.NewEventData().
		Put(core.EventKeyOld, old).
		Put(core.EventKeyNew, pending))
	return nil
}

// AcceptAdmin second half of the admin handover, called by the pending admin
func (s *service) AcceptAdmin(ctx context.Context, tx *core.Tx, caller string) error {
	risk := tx.Risk()
	if err := compound.Require(caller != "" && caller == risk.PendingAdmin, core.ErrUnauthorized, "controller/accept-admin/unauthorized"); err != nil {
		return err
	}

	old := risk.Admin
	risk.Admin = risk.PendingAdmin
	risk.PendingAdmin = ""

	tx.Emit(core.EventNewAdmin, "", caller, core.NewEventData().
		Put(core.EventKeyOld, old).
		Put(core.EventKeyNew, risk.Admin))
	return nil
}
