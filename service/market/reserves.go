package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// AddReserves anyone may top up the reserves
func (s *service) AddReserves(ctx context.Context, tx *core.Tx, id, from string, amount uint256.Int) error {
	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := s.requireFresh(tx, market, "market/add-reserves/not-fresh"); err != nil {
		return err
	}

	if err := compound.Require(!amount.IsZero(), core.ErrInvalidAmount, "market/add-reserves/zero-amount"); err != nil {
		return err
	}

	totalReserves, err := number.Add(market.TotalReserves, amount)
	if err != nil {
		return compound.Math(err, "market/add-reserves/total-reserves")
	}

	cash, err := number.Add(market.Cash, amount)
	if err != nil {
		return compound.Math(err, "market/add-reserves/cash")
	}

	market.TotalReserves = totalReserves
	market.Cash = cash

	if err := s.transferIn(ctx, market, from, amount); err != nil {
		return err
	}

	tx.Emit(core.EventReservesAdded, market.ID, from, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()).
		Put(core.EventKeyTotalReserves, totalReserves.Dec()))
	return nil
}

// ReduceReserves pays reserves out to the admin
func (s *service) ReduceReserves(ctx context.Context, tx *core.Tx, caller, id string, amount uint256.Int) error {
	if err := s.requireAdmin(tx, caller, "market/reduce-reserves/unauthorized"); err != nil {
		return err
	}

	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := s.requireFresh(tx, market, "market/reduce-reserves/not-fresh"); err != nil {
		return err
	}

	if err := compound.Require(!amount.Gt(&market.Cash), core.ErrInsufficientCash, "market/reduce-reserves/insufficient-cash"); err != nil {
		return err
	}

	if err := compound.Require(!amount.Gt(&market.TotalReserves), core.ErrInsufficientReserves, "market/reduce-reserves/exceeds-reserves"); err != nil {
		return err
	}

	market.TotalReserves = number.SubFloor(market.TotalReserves, amount)
	market.Cash = number.SubFloor(market.Cash, amount)

	if err := s.transferOut(ctx, market, caller, amount); err != nil {
		return err
	}

	tx.Emit(core.EventReservesReduced, market.ID, caller, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()).
		Put(core.EventKeyTotalReserves, market.TotalReserves.Dec()))
	return nil
}

// SetReserveFactor accrues at the old factor before switching
func (s *service) SetReserveFactor(ctx context.Context, tx *core.Tx, caller, id string, factor number.Exp) error {
	if err := s.requireAdmin(tx, caller, "market/set-reserve-factor/unauthorized"); err != nil {
		return err
	}

	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := s.requireFresh(tx, market, "market/set-reserve-factor/not-fresh"); err != nil {
		return err
	}

	if err := compound.Require(!factor.GreaterThan(compound.ReserveFactorMax), core.ErrInvalidReserveFactor, "market/set-reserve-factor/bounds-check"); err != nil {
		return err
	}

	old := market.ReserveFactor
	market.ReserveFactor = factor

	tx.Emit(core.EventNewReserveFactor, market.ID, caller, core.NewEventData().
		Put(core.EventKeyOld, old.String()).
		Put(core.EventKeyNew, factor.String()))
	return nil
}

// SetInterestRateModel accrues at the old model before switching
func (s *service) SetInterestRateModel(ctx context.Context, tx *core.Tx, caller, id string, model core.InterestRateModel) error {
	if err := s.requireAdmin(tx, caller, "market/set-rate-model/unauthorized"); err != nil {
		return err
	}

	if err := compound.Require(model != nil, core.ErrInterestRateModel, "market/set-rate-model/nil-model"); err != nil {
		return err
	}

	market, err := s.accrueFresh(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := s.requireFresh(tx, market, "market/set-rate-model/not-fresh"); err != nil {
		return err
	}

	old := market.RateModelParams
	market.RateModel = model
	market.RateModelParams = model.Params()

	tx.Emit(core.EventNewRateModel, market.ID, caller, core.NewEventData().
		Put(core.EventKeyOld, old).
		Put(core.EventKeyNew, market.RateModelParams))
	return nil
}
