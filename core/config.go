package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lender config
type Config struct {
	App         App             `json:"app"`
	DB          db.Config       `json:"db"`
	PriceOracle OracleConfig    `json:"price_oracle"`
	Risk        Risk            `json:"risk"`
	Markets     []MarketListing `json:"markets"`
	Balances    []Balance       `json:"balances"`
}

// App app config
type App struct {
	Admin           string `json:"admin" valid:"required"`
	Genesis         int64  `json:"genesis"`
	SecondsPerBlock int64  `json:"seconds_per_block"`
	Location        string `json:"location"`
	RewardAsset     string `json:"reward_asset"`
	ClaimThreshold  string `json:"claim_threshold"`
}

// OracleConfig price oracle config. Static prices are used when EndPoint is
// empty or cannot price an asset. Prices may be numbers or decimal strings.
type OracleConfig struct {
	EndPoint string                 `json:"end_point"`
	Prices   map[string]interface{} `json:"prices"`
}

// Risk global risk parameters, decimal strings
type Risk struct {
	CloseFactor          string `json:"close_factor"`
	LiquidationIncentive string `json:"liquidation_incentive"`
	ProtocolSeizeShare   string `json:"protocol_seize_share"`
}

// MarketListing a market created and listed at bootstrap
type MarketListing struct {
	ID                  string          `json:"id" valid:"required"`
	AssetID             string          `json:"asset_id" valid:"required"`
	Symbol              string          `json:"symbol"`
	InitialExchangeRate string          `json:"initial_exchange_rate"`
	ReserveFactor       string          `json:"reserve_factor"`
	CollateralFactor    string          `json:"collateral_factor"`
	BorrowCap           string          `json:"borrow_cap"`
	RateModel           RateModelParams `json:"rate_model"`
}

// Balance demo token balance credited at bootstrap
type Balance struct {
	Account string `json:"account"`
	AssetID string `json:"asset_id"`
	Amount  string `json:"amount"`
}
