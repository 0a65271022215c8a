package core

import (
	"lender/pkg/number"

	"github.com/holiman/uint256"
)

// MarketConfig controller side settings of one market
type MarketConfig struct {
	Market           string      `json:"market"`
	IsListed         bool        `json:"is_listed"`
	CollateralFactor number.Exp  `json:"collateral_factor"`
	MintPaused       bool        `json:"mint_paused"`
	BorrowPaused     bool        `json:"borrow_paused"`
	BorrowCap        uint256.Int `json:"borrow_cap"`
	SupplySpeed      uint256.Int `json:"supply_speed"`
	BorrowSpeed      uint256.Int `json:"borrow_speed"`
}

// RiskState global controller parameters
type RiskState struct {
	Admin                string      `json:"admin"`
	PendingAdmin         string      `json:"pending_admin"`
	PauseGuardian        string      `json:"pause_guardian"`
	BorrowCapGuardian    string      `json:"borrow_cap_guardian"`
	CloseFactor          number.Exp  `json:"close_factor"`
	LiquidationIncentive number.Exp  `json:"liquidation_incentive"`
	ProtocolSeizeShare   number.Exp  `json:"protocol_seize_share"`
	TransferPaused       bool        `json:"transfer_paused"`
	SeizePaused          bool        `json:"seize_paused"`
	RewardAsset          string      `json:"reward_asset"`
	RewardFloat          uint256.Int `json:"reward_float"`
	ClaimThreshold       uint256.Int `json:"claim_threshold"`

	// listing order
	AllMarkets []string                 `json:"all_markets"`
	Markets    map[string]*MarketConfig `json:"markets"`
}

// NewRiskState empty state owned by admin
func NewRiskState(admin string) *RiskState {
	return &RiskState{
		Admin:   admin,
		Markets: map[string]*MarketConfig{},
	}
}

// Clone deep copy
func (r *RiskState) Clone() *RiskState {
	c := *r
	c.AllMarkets = make([]string, len(r.AllMarkets))
	copy(c.AllMarkets, r.AllMarkets)
	c.Markets = make(map[string]*MarketConfig, len(r.Markets))
	for id, m := range r.Markets {
		mc := *m
		c.Markets[id] = &mc
	}

	return &c
}

// Listed returns the config of a listed market, nil otherwise
func (r *RiskState) Listed(market string) *MarketConfig {
	if m, ok := r.Markets[market]; ok && m.IsListed {
		return m
	}

	return nil
}

// IsAdmin is admin
func (r *RiskState) IsAdmin(account string) bool {
	return account != "" && account == r.Admin
}
