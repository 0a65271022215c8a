package compound

import (
	"context"
	"sync"

	"lender/core"
	"lender/pkg/number"
)

// SimplePriceOracle prices set by hand, keyed by underlying asset id
type SimplePriceOracle struct {
	mu     sync.RWMutex
	prices map[string]number.Exp
}

// NewSimplePriceOracle new simple price oracle
func NewSimplePriceOracle() *SimplePriceOracle {
	return &SimplePriceOracle{prices: map[string]number.Exp{}}
}

// SetUnderlyingPrice set underlying price of assetID, zero removes it
func (o *SimplePriceOracle) SetUnderlyingPrice(assetID string, price number.Exp) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if price.IsZero() {
		delete(o.prices, assetID)
		return
	}

	o.prices[assetID] = price
}

// UnderlyingPrice zero when no price was set
func (o *SimplePriceOracle) UnderlyingPrice(_ context.Context, market *core.Market) (number.Exp, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.prices[market.AssetID], nil
}
