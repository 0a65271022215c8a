package core

import (
	"context"
	"time"

	"lender/pkg/number"

	"github.com/shopspring/decimal"
)

// PriceOracle prices the underlying asset of a market in a common unit.
// A zero price means unavailable.
type PriceOracle interface {
	UnderlyingPrice(ctx context.Context, market *Market) (number.Exp, error)
}

// PriceTicker price ticker
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	AssetID  string          `json:"asset_id,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// IPriceTickerService pulls tickers from a remote price source
type IPriceTickerService interface {
	PullPriceTicker(ctx context.Context, assetID string, t time.Time) (*PriceTicker, error)
	PullAllPriceTickers(ctx context.Context, t time.Time) ([]*PriceTicker, error)
}
