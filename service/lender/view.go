package lender

import (
	"context"

	"lender/core"
	"lender/pkg/compound"
	"lender/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// MarketView a market with its controller config and current rates
type MarketView struct {
	*core.Market
	Config       core.MarketConfig `json:"config"`
	ExchangeRate number.Exp        `json:"exchange_rate"`
	Utilization  number.Exp        `json:"utilization"`
	BorrowRate   number.Exp        `json:"borrow_rate"`
	SupplyRate   number.Exp        `json:"supply_rate"`
}

// PositionView a position with the borrow balance at the stored index
type PositionView struct {
	Market        string      `json:"market"`
	Shares        uint256.Int `json:"shares"`
	BorrowBalance uint256.Int `json:"borrow_balance"`
}

// AccountView everything the ledger knows about an account
type AccountView struct {
	Account   string             `json:"account"`
	Markets   []string           `json:"markets"`
	Positions []PositionView     `json:"positions"`
	Liquidity core.Liquidity     `json:"liquidity"`
	Reward    core.RewardAccount `json:"reward"`
}

// Shortfall an account eligible for liquidation
type Shortfall struct {
	Account   string      `json:"account"`
	Shortfall uint256.Int `json:"shortfall"`
}

func (e *Engine) marketView(tx *core.Tx, id string) (MarketView, error) {
	market, ok := tx.Market(id)
	if !ok {
		return MarketView{}, core.NewError(core.ErrMarketNotFound, "engine/market-not-found")
	}

	view := MarketView{Market: market}
	if cfg := tx.Risk().Markets[id]; cfg != nil {
		view.Config = *cfg
	}

	var err error
	if view.ExchangeRate, err = e.markets.ExchangeRateStored(tx, id); err != nil {
		return MarketView{}, err
	}

	if view.Utilization, err = compound.UtilizationRate(market.Cash, market.TotalBorrows, market.TotalReserves); err != nil {
		return MarketView{}, compound.Math(err, "engine/utilization")
	}

	if view.BorrowRate, err = e.markets.BorrowRate(tx, id); err != nil {
		return MarketView{}, err
	}

	if view.SupplyRate, err = e.markets.SupplyRate(tx, id); err != nil {
		return MarketView{}, err
	}

	return view, nil
}

// Markets every market, sorted by id
func (e *Engine) Markets(ctx context.Context) (views []MarketView, err error) {
	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) error {
		for _, id := range e.ledger.MarketIDs() {
			view, err := e.marketView(tx, id)
			if err != nil {
				return err
			}

			views = append(views, view)
		}

		return nil
	})
	return
}

func (e *Engine) Market(ctx context.Context, id string) (view MarketView, err error) {
	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) (err error) {
		view, err = e.marketView(tx, id)
		return
	})
	return
}

// Risk copy of the global risk parameters
func (e *Engine) Risk(ctx context.Context) (risk *core.RiskState, err error) {
	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) error {
		risk = tx.Risk()
		return nil
	})
	return
}

func (e *Engine) Account(ctx context.Context, account string) (view AccountView, err error) {
	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) error {
		view.Account = account
		view.Markets = append([]string{}, tx.Membership(account).Markets...)
		view.Reward = *tx.RewardAccount(account)

		for _, p := range e.ledger.AccountPositions(account) {
			balance, err := e.markets.BorrowBalanceStored(tx, p.Market, account)
			if err != nil {
				return err
			}

			view.Positions = append(view.Positions, PositionView{
				Market:        p.Market,
				Shares:        p.Shares,
				BorrowBalance: balance,
			})
		}

		liquidity, err := e.controller.GetAccountLiquidity(ctx, tx, account)
		if err != nil {
			return err
		}

		view.Liquidity = liquidity
		return nil
	})
	return
}

func (e *Engine) AccountLiquidity(ctx context.Context, account string) (liquidity core.Liquidity, err error) {
	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) (err error) {
		liquidity, err = e.controller.GetAccountLiquidity(ctx, tx, account)
		return
	})
	return
}

func (e *Engine) HypotheticalAccountLiquidity(ctx context.Context, account, market string, redeemShares, borrowAmount uint256.Int) (liquidity core.Liquidity, err error) {
	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) (err error) {
		liquidity, err = e.controller.GetHypotheticalAccountLiquidity(ctx, tx, account, market, redeemShares, borrowAmount)
		return
	})
	return
}

// ScanShortfall borrowers in shortfall. Accounts whose liquidity cannot be
// computed are logged and skipped.
func (e *Engine) ScanShortfall(ctx context.Context) (shortfalls []Shortfall, err error) {
	log := logger.FromContext(ctx)

	err = e.view(ctx, func(ctx context.Context, tx *core.Tx) error {
		for _, account := range e.ledger.Borrowers() {
			liquidity, err := e.controller.GetAccountLiquidity(ctx, tx, account)
			if err != nil {
				log.WithError(err).WithField("account", account).Warnln("GetAccountLiquidity")
				continue
			}

			if !liquidity.Shortfall.IsZero() {
				shortfalls = append(shortfalls, Shortfall{Account: account, Shortfall: liquidity.Shortfall})
			}
		}

		return nil
	})

	e.metrics.SetShortfallAccounts(len(shortfalls))
	return
}
