package market

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

type service struct {
	controller core.IRiskController
	tokens     core.TokenService
}

// New new market service
func New(
	controller core.IRiskController,
	tokens core.TokenService,
) core.IMarketService {
	return &service{
		controller: controller,
		tokens:     tokens,
	}
}

func (s *service) requireMarket(tx *core.Tx, id string) (*core.Market, error) {
	market, ok := tx.Market(id)
	if err := compound.Require(ok, core.ErrMarketNotFound, "market/not-found"); err != nil {
		return nil, err
	}

	return market, nil
}

func (s *service) requireFresh(tx *core.Tx, market *core.Market, reason string) error {
	return compound.Require(market.IsFresh(tx.Period), core.ErrMarketNotFresh, reason)
}

func (s *service) requireAdmin(tx *core.Tx, caller, reason string) error {
	return compound.Require(tx.Risk().IsAdmin(caller), core.ErrUnauthorized, reason)
}

// CreateMarket initializes a new pool. Listing it in the controller is a
// separate step.
func (s *service) CreateMarket(ctx context.Context, tx *core.Tx, caller string, market *core.Market) error {
	if err := s.requireAdmin(tx, caller, "market/create/unauthorized"); err != nil {
		return err
	}

	_, exist := tx.Market(market.ID)
	if err := compound.Require(!exist, core.ErrMarketAlreadyListed, "market/create/exists"); err != nil {
		return err
	}

	if err := compound.Require(market.ID != "" && market.AssetID != "", core.ErrInvalidInput, "market/create/missing-id"); err != nil {
		return err
	}

	if err := compound.Require(!market.InitialExchangeRate.IsZero(), core.ErrInvalidInput, "market/create/zero-exchange-rate"); err != nil {
		return err
	}

	if err := compound.Require(market.RateModel != nil, core.ErrInterestRateModel, "market/create/no-rate-model"); err != nil {
		return err
	}

	if err := compound.Require(!market.ReserveFactor.GreaterThan(compound.ReserveFactorMax), core.ErrInvalidReserveFactor, "market/create/reserve-factor"); err != nil {
		return err
	}

	m := &core.Market{
		ID:                  market.ID,
		AssetID:             market.AssetID,
		Symbol:              market.Symbol,
		BorrowIndex:         number.OneExp(),
		AccrualPeriod:       tx.Period,
		ReserveFactor:       market.ReserveFactor,
		InitialExchangeRate: market.InitialExchangeRate,
		RateModel:           market.RateModel,
		RateModelParams:     market.RateModel.Params(),
	}
	tx.PutMarket(m)
	return nil
}

// ExchangeRateStored exchange rate without accruing
func (s *service) ExchangeRateStored(tx *core.Tx, id string) (number.Exp, error) {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return number.Exp{}, err
	}

	rate, err := compound.ExchangeRate(market)
	return rate, compound.Math(err, "market/exchange-rate")
}

// BorrowBalanceStored borrow balance without accruing
func (s *service) BorrowBalanceStored(tx *core.Tx, id, account string) (uint256.Int, error) {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return uint256.Int{}, err
	}

	balance, err := compound.BorrowBalance(market, tx.Position(id, account).Borrow)
	return balance, compound.Math(err, "market/borrow-balance")
}

// BorrowRate current borrow rate per period
func (s *service) BorrowRate(tx *core.Tx, id string) (number.Exp, error) {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return number.Exp{}, err
	}

	rate, err := market.RateModel.BorrowRate(market.Cash, market.TotalBorrows, market.TotalReserves)
	if err != nil {
		return number.Exp{}, core.WrapError(core.ErrInterestRateModel, "market/borrow-rate", err)
	}

	return rate, nil
}

// SupplyRate current supply rate per period
func (s *service) SupplyRate(tx *core.Tx, id string) (number.Exp, error) {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return number.Exp{}, err
	}

	rate, err := market.RateModel.SupplyRate(market.Cash, market.TotalBorrows, market.TotalReserves, market.ReserveFactor)
	if err != nil {
		return number.Exp{}, core.WrapError(core.ErrInterestRateModel, "market/supply-rate", err)
	}

	return rate, nil
}

// AccrueInterest accrue interest from the last accrual period up to tx.Period
//
// Calling it twice in the same period is a no-op.
func (s *service) AccrueInterest(ctx context.Context, tx *core.Tx, id string) error {
	market, err := s.requireMarket(tx, id)
	if err != nil {
		return err
	}

	delta := tx.Period - market.AccrualPeriod
	if delta <= 0 {
		return nil
	}

	borrowRate, err := market.RateModel.BorrowRate(market.Cash, market.TotalBorrows, market.TotalReserves)
	if err != nil {
		return core.WrapError(core.ErrInterestRateModel, "accrue/borrow-rate", err)
	}

	if err := compound.Require(!borrowRate.GreaterThan(compound.BorrowRateMax), core.ErrBorrowRateTooHigh, "accrue/borrow-rate-absurdly-high"); err != nil {
		return err
	}

	simpleInterestFactor, err := borrowRate.MulScalar(number.NewInt(uint64(delta)))
	if err != nil {
		return compound.Math(err, "accrue/simple-interest-factor")
	}

	interestAccumulated, err := simpleInterestFactor.MulScalarTruncate(market.TotalBorrows)
	if err != nil {
		return compound.Math(err, "accrue/interest-accumulated")
	}

	totalBorrowsNew, err := number.Add(interestAccumulated, market.TotalBorrows)
	if err != nil {
		return compound.Math(err, "accrue/total-borrows")
	}

	totalReservesNew, err := market.ReserveFactor.MulScalarTruncateAdd(interestAccumulated, market.TotalReserves)
	if err != nil {
		return compound.Math(err, "accrue/total-reserves")
	}

	borrowIndexNew, err := simpleInterestFactor.MulScalarTruncateAdd(market.BorrowIndex.Mantissa, market.BorrowIndex.Mantissa)
	if err != nil {
		return compound.Math(err, "accrue/borrow-index")
	}

	market.AccrualPeriod = tx.Period
	market.BorrowIndex = number.ExpFromMantissa(borrowIndexNew)
	market.TotalBorrows = totalBorrowsNew
	market.TotalReserves = totalReservesNew

	logger.FromContext(ctx).WithField("market", id).Debugln("accrue interest", interestAccumulated.Dec(), "periods", delta)

	tx.Emit(core.EventAccrueInterest, id, "", core.NewEventData().
		Put(core.EventKeyRate, borrowRate.String()).
		Put(core.EventKeyInterest, interestAccumulated.Dec()).
		Put(core.EventKeyBorrowIndex, market.BorrowIndex.String()).
		Put(core.EventKeyTotalBorrows, totalBorrowsNew.Dec()))

	return nil
}

// accrueFresh accrues then reloads the staged market
func (s *service) accrueFresh(ctx context.Context, tx *core.Tx, id string) (*core.Market, error) {
	if err := s.AccrueInterest(ctx, tx, id); err != nil {
		return nil, err
	}

	return s.requireMarket(tx, id)
}

func (s *service) transferIn(ctx context.Context, market *core.Market, from string, amount uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	if err := s.tokens.TransferIn(ctx, market.AssetID, from, amount); err != nil {
		return core.WrapError(core.ErrTransferFailed, "market/transfer-in", err)
	}

	return nil
}

func (s *service) transferOut(ctx context.Context, market *core.Market, to string, amount uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	if err := s.tokens.TransferOut(ctx, market.AssetID, to, amount); err != nil {
		return core.WrapError(core.ErrTransferFailed, "market/transfer-out", err)
	}

	return nil
}
