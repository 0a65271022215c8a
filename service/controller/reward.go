package controller

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// rewardMarket distributor state of market, created at the initial index on first use
func (s *service) rewardMarket(tx *core.Tx, market string) *core.RewardMarket {
	if r, ok := tx.RewardMarket(market); ok {
		return r
	}

	r := &core.RewardMarket{
		Market: market,
		Supply: core.RewardIndex{Index: compound.RewardInitialIndex, Period: tx.Period},
		Borrow: core.RewardIndex{Index: compound.RewardInitialIndex, Period: tx.Period},
	}
	tx.PutRewardMarket(r)
	return r
}

// advanceIndex index += speed * delta / total, unchanged while total is zero
func advanceIndex(idx *core.RewardIndex, speed, total uint256.Int, period int64) error {
	delta := period - idx.Period
	if delta <= 0 {
		return nil
	}

	if !speed.IsZero() && !total.IsZero() {
		accrued, err := number.Mul(speed, *uint256.NewInt(uint64(delta)))
		if err != nil {
			return err
		}

		ratio, err := number.DoubleFraction(accrued, total)
		if err != nil {
			return err
		}

		if idx.Index, err = idx.Index.Add(ratio); err != nil {
			return err
		}
	}

	idx.Period = period
	return nil
}

func (s *service) updateSupplyIndex(tx *core.Tx, id string) error {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	var speed uint256.Int
	if cfg := tx.Risk().Markets[id]; cfg != nil {
		speed = cfg.SupplySpeed
	}

	r := s.rewardMarket(tx, id)
	if err := advanceIndex(&r.Supply, speed, market.TotalSupply, tx.Period); err != nil {
		return compound.Math(err, "controller/reward/supply-index")
	}

	return nil
}

func (s *service) updateBorrowIndex(tx *core.Tx, id string) error {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	var speed uint256.Int
	if cfg := tx.Risk().Markets[id]; cfg != nil {
		speed = cfg.BorrowSpeed
	}

	borrows, err := number.DivScalarByExpTruncate(market.TotalBorrows, market.BorrowIndex)
	if err != nil {
		return compound.Math(err, "controller/reward/normalized-borrows")
	}

	r := s.rewardMarket(tx, id)
	if err := advanceIndex(&r.Borrow, speed, borrows, tx.Period); err != nil {
		return compound.Math(err, "controller/reward/borrow-index")
	}

	return nil
}

// settle accrued += balance * (index - checkpoint), checkpoint := index.
// A fresh checkpoint starts at the initial index, the balance it settles is
// the one held before the current action.
func settle(checkpoint *number.Double, index number.Double, balance uint256.Int) (uint256.Int, error) {
	start := *checkpoint
	if start.IsZero() && index.Cmp(compound.RewardInitialIndex) >= 0 {
		start = compound.RewardInitialIndex
	}

	*checkpoint = index

	delta, err := index.Sub(start)
	if err != nil {
		return uint256.Int{}, err
	}

	return delta.MulScalarTruncate(balance)
}

func (s *service) distributeSupplier(tx *core.Tx, market, account string) error {
	r := s.rewardMarket(tx, market)
	checkpoint := tx.Checkpoint(market, account)
	position := tx.Position(market, account)

	delta, err := settle(&checkpoint.SupplierIndex, r.Supply.Index, position.Shares)
	if err != nil {
		return compound.Math(err, "controller/reward/distribute-supplier")
	}

	return s.credit(tx, core.EventDistributedSupplier, market, account, delta, r.Supply.Index)
}

func (s *service) distributeBorrower(tx *core.Tx, id, account string) error {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	r := s.rewardMarket(tx, id)
	checkpoint := tx.Checkpoint(id, account)

	balance, err := compound.BorrowBalance(market, tx.Position(id, account).Borrow)
	if err != nil {
		return compound.Math(err, "controller/reward/borrow-balance")
	}

	balance, err = number.DivScalarByExpTruncate(balance, market.BorrowIndex)
	if err != nil {
		return compound.Math(err, "controller/reward/borrower-amount")
	}

	delta, err := settle(&checkpoint.BorrowerIndex, r.Borrow.Index, balance)
	if err != nil {
		return compound.Math(err, "controller/reward/distribute-borrower")
	}

	return s.credit(tx, core.EventDistributedBorrower, id, account, delta, r.Borrow.Index)
}

func (s *service) credit(tx *core.Tx, action core.EventAction, market, account string, delta uint256.Int, index number.Double) error {
	if delta.IsZero() {
		return nil
	}

	reward := tx.RewardAccount(account)
	accrued, err := number.Add(reward.Accrued, delta)
	if err != nil {
		return compound.Math(err, "controller/reward/accrued")
	}
	reward.Accrued = accrued

	tx.Emit(action, market, account, core.NewEventData().
		Put(core.EventKeyAmount, delta.Dec()).
		Put(core.EventKeyIndex, index.String()))
	return nil
}

func (s *service) touchSuppliers(tx *core.Tx, market string, accounts ...string) error {
	if err := s.updateSupplyIndex(tx, market); err != nil {
		return err
	}

	for _, account := range accounts {
		if err := s.distributeSupplier(tx, market, account); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) touchBorrowers(tx *core.Tx, market string, accounts ...string) error {
	if err := s.updateBorrowIndex(tx, market); err != nil {
		return err
	}

	for _, account := range accounts {
		if err := s.distributeBorrower(tx, market, account); err != nil {
			return err
		}
	}

	return nil
}

// transferReward pays out the accrued balance of account when it reaches
// threshold and the float covers it, otherwise the balance stays pending
func (s *service) transferReward(ctx context.Context, tx *core.Tx, account string, threshold uint256.Int) error {
	risk := tx.Risk()
	reward := tx.RewardAccount(account)

	amount := reward.Accrued
	if amount.IsZero() || amount.Lt(&threshold) || risk.RewardAsset == "" || amount.Gt(&risk.RewardFloat) {
		return nil
	}

	if err := s.tokens.TransferOut(ctx, risk.RewardAsset, account, amount); err != nil {
		return core.WrapError(core.ErrTransferFailed, "controller/reward/transfer-out", err)
	}

	risk.RewardFloat = number.SubFloor(risk.RewardFloat, amount)
	reward.Accrued = uint256.Int{}

	tx.Emit(core.EventRewardClaimed, "", account, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()))
	return nil
}

// ClaimReward settles holders in markets (all listed markets when empty)
// and pays out whatever reaches the claim threshold
func (s *service) ClaimReward(ctx context.Context, tx *core.Tx, holders, markets []string, borrowers, suppliers bool) error {
	risk := tx.Risk()
	if len(markets) == 0 {
		markets = append(markets, risk.AllMarkets...)
	}

	for _, market := range markets {
		if _, err := s.requireListed(tx, market, "controller/claim/market-not-listed"); err != nil {
			return err
		}

		if borrowers {
			if err := s.touchBorrowers(tx, market, holders...); err != nil {
				return err
			}
		}

		if suppliers {
			if err := s.touchSuppliers(tx, market, holders...); err != nil {
				return err
			}
		}
	}

	for _, holder := range holders {
		if err := s.UpdateContributorRewards(ctx, tx, holder); err != nil {
			return err
		}

		if err := s.transferReward(ctx, tx, holder, risk.ClaimThreshold); err != nil {
			return err
		}
	}

	return nil
}

// GrantReward admin payout from the float, regardless of accrual
func (s *service) GrantReward(ctx context.Context, tx *core.Tx, caller, recipient string, amount uint256.Int) error {
	if err := s.requireAdmin(tx, caller, "controller/grant/unauthorized"); err != nil {
		return err
	}

	risk := tx.Risk()
	if err := compound.Require(risk.RewardAsset != "", core.ErrInsufficientRewards, "controller/grant/no-reward-asset"); err != nil {
		return err
	}

	if err := compound.Require(!amount.IsZero(), core.ErrInvalidAmount, "controller/grant/zero-amount"); err != nil {
		return err
	}

	if err := compound.Require(!amount.Gt(&risk.RewardFloat), core.ErrInsufficientRewards, "controller/grant/insufficient-float"); err != nil {
		return err
	}

	if err := s.tokens.TransferOut(ctx, risk.RewardAsset, recipient, amount); err != nil {
		return core.WrapError(core.ErrTransferFailed, "controller/grant/transfer-out", err)
	}

	risk.RewardFloat = number.SubFloor(risk.RewardFloat, amount)
	tx.Emit(core.EventRewardGranted, "", recipient, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()))
	return nil
}

// FundRewards moves reward tokens from the funder into the float
func (s *service) FundRewards(ctx context.Context, tx *core.Tx, from string, amount uint256.Int) error {
	risk := tx.Risk()
	if err := compound.Require(risk.RewardAsset != "", core.ErrInvalidInput, "controller/fund/no-reward-asset"); err != nil {
		return err
	}

	if err := compound.Require(!amount.IsZero(), core.ErrInvalidAmount, "controller/fund/zero-amount"); err != nil {
		return err
	}

	float, err := number.Add(risk.RewardFloat, amount)
	if err != nil {
		return compound.Math(err, "controller/fund/float")
	}

	if err := s.tokens.TransferIn(ctx, risk.RewardAsset, from, amount); err != nil {
		return core.WrapError(core.ErrTransferFailed, "controller/fund/transfer-in", err)
	}

	risk.RewardFloat = float
	tx.Emit(core.EventRewardsFunded, "", from, core.NewEventData().
		Put(core.EventKeyAmount, amount.Dec()))
	return nil
}

// SetRewardSpeeds indices are brought up to date under the old speed first
func (s *service) SetRewardSpeeds(ctx context.Context, tx *core.Tx, caller string, markets []string, supplySpeeds, borrowSpeeds []uint256.Int) error {
	if err := s.requireAdmin(tx, caller, "controller/set-reward-speeds/unauthorized"); err != nil {
		return err
	}

	if err := compound.Require(len(markets) == len(supplySpeeds) && len(markets) == len(borrowSpeeds), core.ErrInvalidInput, "controller/set-reward-speeds/invalid-input"); err != nil {
		return err
	}

	for i, market := range markets {
		cfg, err := s.requireListed(tx, market, "controller/set-reward-speeds/market-not-listed")
		if err != nil {
			return err
		}

		if err := s.updateSupplyIndex(tx, market); err != nil {
			return err
		}

		if err := s.updateBorrowIndex(tx, market); err != nil {
			return err
		}

		cfg.SupplySpeed = supplySpeeds[i]
		cfg.BorrowSpeed = borrowSpeeds[i]

		tx.Emit(core.EventRewardSpeedUpdated, market, caller, core.NewEventData().
			Put(core.EventKeySupplySpeed, supplySpeeds[i].Dec()).
			Put(core.EventKeyBorrowSpeed, borrowSpeeds[i].Dec()))
	}

	return nil
}

// SetContributorRewardSpeed contributors accrue speed per period outside any market
func (s *service) SetContributorRewardSpeed(ctx context.Context, tx *core.Tx, caller, contributor string, speed uint256.Int) error {
	if err := s.requireAdmin(tx, caller, "controller/set-contributor-speed/unauthorized"); err != nil {
		return err
	}

	if err := s.UpdateContributorRewards(ctx, tx, contributor); err != nil {
		return err
	}

	reward := tx.RewardAccount(contributor)
	reward.ContributorSpeed = speed
	reward.ContributorSince = tx.Period

	tx.Emit(core.EventContributorSpeed, "", contributor, core.NewEventData().
		Put(core.EventKeyNew, speed.Dec()))
	return nil
}

func (s *service) UpdateContributorRewards(ctx context.Context, tx *core.Tx, contributor string) error {
	reward := tx.RewardAccount(contributor)
	if reward.ContributorSpeed.IsZero() {
		return nil
	}

	delta := tx.Period - reward.ContributorSince
	if delta <= 0 {
		return nil
	}

	accrued, err := number.Mul(reward.ContributorSpeed, *uint256.NewInt(uint64(delta)))
	if err == nil {
		accrued, err = number.Add(reward.Accrued, accrued)
	}
	if err != nil {
		return compound.Math(err, "controller/contributor/accrued")
	}

	reward.Accrued = accrued
	reward.ContributorSince = tx.Period
	return nil
}
