package views

import (
	"encoding/json"
	"time"

	"lender/core"
	"lender/service/lender"

	"github.com/holiman/uint256"
)

// amounts and fixed point values are rendered as decimal strings
func amount(v uint256.Int) string {
	return v.Dec()
}

// Market market view
type Market struct {
	ID                  string `json:"id"`
	AssetID             string `json:"asset_id"`
	Symbol              string `json:"symbol"`
	TotalSupply         string `json:"total_supply"`
	TotalBorrows        string `json:"total_borrows"`
	TotalReserves       string `json:"total_reserves"`
	Cash                string `json:"cash"`
	BorrowIndex         string `json:"borrow_index"`
	AccrualPeriod       int64  `json:"accrual_period"`
	ReserveFactor       string `json:"reserve_factor"`
	InitialExchangeRate string `json:"initial_exchange_rate"`
	ExchangeRate        string `json:"exchange_rate"`
	Utilization         string `json:"utilization"`
	BorrowRate          string `json:"borrow_rate"`
	SupplyRate          string `json:"supply_rate"`

	IsListed         bool   `json:"is_listed"`
	CollateralFactor string `json:"collateral_factor"`
	MintPaused       bool   `json:"mint_paused"`
	BorrowPaused     bool   `json:"borrow_paused"`
	BorrowCap        string `json:"borrow_cap"`
	SupplySpeed      string `json:"supply_speed"`
	BorrowSpeed      string `json:"borrow_speed"`

	RateModel core.RateModelParams `json:"rate_model"`
}

// MarketView market view
func MarketView(v lender.MarketView) Market {
	m := v.Market
	return Market{
		ID:                  m.ID,
		AssetID:             m.AssetID,
		Symbol:              m.Symbol,
		TotalSupply:         amount(m.TotalSupply),
		TotalBorrows:        amount(m.TotalBorrows),
		TotalReserves:       amount(m.TotalReserves),
		Cash:                amount(m.Cash),
		BorrowIndex:         m.BorrowIndex.String(),
		AccrualPeriod:       m.AccrualPeriod,
		ReserveFactor:       m.ReserveFactor.String(),
		InitialExchangeRate: m.InitialExchangeRate.String(),
		ExchangeRate:        v.ExchangeRate.String(),
		Utilization:         v.Utilization.String(),
		BorrowRate:          v.BorrowRate.String(),
		SupplyRate:          v.SupplyRate.String(),
		IsListed:            v.Config.IsListed,
		CollateralFactor:    v.Config.CollateralFactor.String(),
		MintPaused:          v.Config.MintPaused,
		BorrowPaused:        v.Config.BorrowPaused,
		BorrowCap:           amount(v.Config.BorrowCap),
		SupplySpeed:         amount(v.Config.SupplySpeed),
		BorrowSpeed:         amount(v.Config.BorrowSpeed),
		RateModel:           m.RateModelParams,
	}
}

// Liquidity liquidity view
type Liquidity struct {
	Liquidity string `json:"liquidity"`
	Shortfall string `json:"shortfall"`
}

// LiquidityView liquidity view
func LiquidityView(l core.Liquidity) Liquidity {
	return Liquidity{
		Liquidity: amount(l.Liquidity),
		Shortfall: amount(l.Shortfall),
	}
}

// Position position view
type Position struct {
	Market        string `json:"market"`
	Shares        string `json:"shares"`
	BorrowBalance string `json:"borrow_balance"`
}

// Account account view
type Account struct {
	Account          string     `json:"account"`
	Markets          []string   `json:"markets"`
	Positions        []Position `json:"positions"`
	Liquidity        Liquidity  `json:"liquidity"`
	RewardAccrued    string     `json:"reward_accrued"`
	ContributorSpeed string     `json:"contributor_speed"`
}

// AccountView account view
func AccountView(v lender.AccountView) Account {
	a := Account{
		Account:          v.Account,
		Markets:          v.Markets,
		Positions:        make([]Position, 0, len(v.Positions)),
		Liquidity:        LiquidityView(v.Liquidity),
		RewardAccrued:    amount(v.Reward.Accrued),
		ContributorSpeed: amount(v.Reward.ContributorSpeed),
	}

	if a.Markets == nil {
		a.Markets = []string{}
	}

	for _, p := range v.Positions {
		a.Positions = append(a.Positions, Position{
			Market:        p.Market,
			Shares:        amount(p.Shares),
			BorrowBalance: amount(p.BorrowBalance),
		})
	}

	return a
}

// Risk controller parameters view
type Risk struct {
	Admin                string   `json:"admin"`
	PendingAdmin         string   `json:"pending_admin,omitempty"`
	PauseGuardian        string   `json:"pause_guardian,omitempty"`
	BorrowCapGuardian    string   `json:"borrow_cap_guardian,omitempty"`
	CloseFactor          string   `json:"close_factor"`
	LiquidationIncentive string   `json:"liquidation_incentive"`
	ProtocolSeizeShare   string   `json:"protocol_seize_share"`
	TransferPaused       bool     `json:"transfer_paused"`
	SeizePaused          bool     `json:"seize_paused"`
	RewardAsset          string   `json:"reward_asset,omitempty"`
	RewardFloat          string   `json:"reward_float"`
	ClaimThreshold       string   `json:"claim_threshold"`
	Markets              []string `json:"markets"`
}

// RiskView risk view
func RiskView(r *core.RiskState) Risk {
	markets := r.AllMarkets
	if markets == nil {
		markets = []string{}
	}

	return Risk{
		Admin:                r.Admin,
		PendingAdmin:         r.PendingAdmin,
		PauseGuardian:        r.PauseGuardian,
		BorrowCapGuardian:    r.BorrowCapGuardian,
		CloseFactor:          r.CloseFactor.String(),
		LiquidationIncentive: r.LiquidationIncentive.String(),
		ProtocolSeizeShare:   r.ProtocolSeizeShare.String(),
		TransferPaused:       r.TransferPaused,
		SeizePaused:          r.SeizePaused,
		RewardAsset:          r.RewardAsset,
		RewardFloat:          amount(r.RewardFloat),
		ClaimThreshold:       amount(r.ClaimThreshold),
		Markets:              markets,
	}
}

// Shortfall liquidatable account view
type Shortfall struct {
	Account   string `json:"account"`
	Shortfall string `json:"shortfall"`
}

// ShortfallView shortfall view
func ShortfallView(s lender.Shortfall) Shortfall {
	return Shortfall{Account: s.Account, Shortfall: amount(s.Shortfall)}
}

// Event event view
type Event struct {
	ID        int64           `json:"id"`
	TraceID   string          `json:"trace_id"`
	Action    string          `json:"action"`
	Period    int64           `json:"period"`
	Market    string          `json:"market,omitempty"`
	Account   string          `json:"account,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventView event view
func EventView(e *core.Event) Event {
	return Event{
		ID:        e.ID,
		TraceID:   e.TraceID,
		Action:    string(e.Action),
		Period:    e.Period,
		Market:    e.Market,
		Account:   e.Account,
		Data:      json.RawMessage(e.Data),
		CreatedAt: e.CreatedAt,
	}
}

// Result outcome of a write request
type Result struct {
	Market  string `json:"market,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Success a committed write
func Success(market string, v *uint256.Int) Result {
	r := Result{Market: market, Message: "success"}
	if v != nil {
		r.Amount = v.Dec()
	}

	return r
}

// Failure a rejected entry of a batch request
func Failure(market string, err error) Result {
	return Result{Market: market, Code: int(core.CodeOf(err)), Message: err.Error()}
}
