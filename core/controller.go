package core

import (
	"context"

	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// Liquidity account liquidity, at most one of the two is non-zero
type Liquidity struct {
	Liquidity uint256.Int `json:"liquidity"`
	Shortfall uint256.Int `json:"shortfall"`
}

// IRiskController the hooks a market consults before and after each action.
// Hooks never move balances, they may update reward indices.
type IRiskController interface {
	MintAllowed(ctx context.Context, tx *Tx, market, minter string, amount uint256.Int) error
	RedeemAllowed(ctx context.Context, tx *Tx, market, redeemer string, shares uint256.Int) error
	RedeemVerify(market, redeemer string, amount, shares uint256.Int) error
	BorrowAllowed(ctx context.Context, tx *Tx, market, borrower string, amount uint256.Int) error
	RepayBorrowAllowed(ctx context.Context, tx *Tx, market, payer, borrower string, amount uint256.Int) error
	LiquidateBorrowAllowed(ctx context.Context, tx *Tx, borrowed, collateral, liquidator, borrower string, repay uint256.Int) error
	SeizeAllowed(ctx context.Context, tx *Tx, collateral, borrowed, liquidator, borrower string, shares uint256.Int) error
	TransferAllowed(ctx context.Context, tx *Tx, market, src, dst string, shares uint256.Int) error
	LiquidateCalculateSeizeTokens(ctx context.Context, tx *Tx, borrowed, collateral string, repay uint256.Int) (uint256.Int, error)
	// Notify runs after the ledger mutation of action, keeping reward
	// indices consistent with the new balances
	Notify(ctx context.Context, tx *Tx, action EventAction, market string, accounts ...string) error
}

// IController the full risk controller: hooks, liquidity, membership,
// admin configuration and reward distribution
type IController interface {
	IRiskController

	GetAccountLiquidity(ctx context.Context, tx *Tx, account string) (Liquidity, error)
	GetHypotheticalAccountLiquidity(ctx context.Context, tx *Tx, account, market string, redeemShares, borrowAmount uint256.Int) (Liquidity, error)
	EnterMarkets(ctx context.Context, tx *Tx, account string, markets []string) []error
	ExitMarket(ctx context.Context, tx *Tx, account, market string) error

	SupportMarket(ctx context.Context, tx *Tx, caller, market string) error
	SetCollateralFactor(ctx context.Context, tx *Tx, caller, market string, factor number.Exp) error
	SetCloseFactor(ctx context.Context, tx *Tx, caller string, factor number.Exp) error
	SetLiquidationIncentive(ctx context.Context, tx *Tx, caller string, incentive number.Exp) error
	SetPriceOracle(ctx context.Context, tx *Tx, caller string, oracle PriceOracle) error
	SetPauseGuardian(ctx context.Context, tx *Tx, caller, guardian string) error
	SetMintPaused(ctx context.Context, tx *Tx, caller, market string, paused bool) error
	SetBorrowPaused(ctx context.Context, tx *Tx, caller, market string, paused bool) error
	SetTransferPaused(ctx context.Context, tx *Tx, caller string, paused bool) error
	SetSeizePaused(ctx context.Context, tx *Tx, caller string, paused bool) error
	SetBorrowCapGuardian(ctx context.Context, tx *Tx, caller, guardian string) error
	SetMarketBorrowCaps(ctx context.Context, tx *Tx, caller string, markets []string, caps []uint256.Int) error
	SetPendingAdmin(ctx context.Context, tx *Tx, caller, pending string) error
	AcceptAdmin(ctx context.Context, tx *Tx, caller string) error

	SetRewardSpeeds(ctx context.Context, tx *Tx, caller string, markets []string, supplySpeeds, borrowSpeeds []uint256.Int) error
	SetContributorRewardSpeed(ctx context.Context, tx *Tx, caller, contributor string, speed uint256.Int) error
	UpdateContributorRewards(ctx context.Context, tx *Tx, contributor string) error
	FundRewards(ctx context.Context, tx *Tx, from string, amount uint256.Int) error
	GrantReward(ctx context.Context, tx *Tx, caller, recipient string, amount uint256.Int) error
	ClaimReward(ctx context.Context, tx *Tx, holders, markets []string, borrowers, suppliers bool) error

	Oracle() PriceOracle
}

// IMarketService money market operations. Every value moving call accrues
// the market first and fails when it is not fresh.
type IMarketService interface {
	CreateMarket(ctx context.Context, tx *Tx, caller string, market *Market) error
	AccrueInterest(ctx context.Context, tx *Tx, market string) error
	ExchangeRateStored(tx *Tx, market string) (number.Exp, error)
	BorrowBalanceStored(tx *Tx, market, account string) (uint256.Int, error)
	BorrowRate(tx *Tx, market string) (number.Exp, error)
	SupplyRate(tx *Tx, market string) (number.Exp, error)

	Mint(ctx context.Context, tx *Tx, market, minter string, amount uint256.Int) (uint256.Int, error)
	Redeem(ctx context.Context, tx *Tx, market, redeemer string, shares uint256.Int) (uint256.Int, error)
	RedeemUnderlying(ctx context.Context, tx *Tx, market, redeemer string, amount uint256.Int) (uint256.Int, error)
	Borrow(ctx context.Context, tx *Tx, market, borrower string, amount uint256.Int) error
	RepayBorrow(ctx context.Context, tx *Tx, market, payer, borrower string, amount uint256.Int) (uint256.Int, error)
	LiquidateBorrow(ctx context.Context, tx *Tx, borrowed, liquidator, borrower string, repay uint256.Int, collateral string) (uint256.Int, error)
	Transfer(ctx context.Context, tx *Tx, market, src, dst string, shares uint256.Int) error

	AddReserves(ctx context.Context, tx *Tx, market, from string, amount uint256.Int) error
	ReduceReserves(ctx context.Context, tx *Tx, caller, market string, amount uint256.Int) error
	SetReserveFactor(ctx context.Context, tx *Tx, caller, market string, factor number.Exp) error
	SetInterestRateModel(ctx context.Context, tx *Tx, caller, market string, model InterestRateModel) error
}

// RepayAll repay amount meaning the whole outstanding balance
func RepayAll() uint256.Int {
	return number.MaxInt()
}

// IsRepayAll reports the full repay sentinel
func IsRepayAll(amount uint256.Int) bool {
	max := number.MaxInt()
	return amount.Eq(&max)
}
