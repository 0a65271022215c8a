package oracle

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"lender/core"
	icompound "lender/internal/compound"
	"lender/pkg/number"
	"lender/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Oracle prices markets from a remote ticker endpoint. Assets the endpoint
// cannot price fall back to the static prices.
type Oracle struct {
	endpoint string
	static   *icompound.SimplePriceOracle
	tickers  gcache.Cache
}

// New builds an oracle from config. Without an endpoint only static prices are served.
func New(cfg core.OracleConfig) (*Oracle, error) {
	static := icompound.NewSimplePriceOracle()
	for assetID, v := range cfg.Prices {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("price of %s: %w", assetID, err)
		}

		price, err := number.ParseExp(s)
		if err != nil {
			return nil, fmt.Errorf("price of %s: %w", assetID, err)
		}

		static.SetUnderlyingPrice(assetID, price)
	}

	return &Oracle{
		endpoint: cfg.EndPoint,
		static:   static,
		tickers:  gcache.New(256).LRU().Expiration(5 * time.Second).Build(),
	}, nil
}

// Static the fallback prices, admin adjustable
func (o *Oracle) Static() *icompound.SimplePriceOracle {
	return o.static
}

func (o *Oracle) UnderlyingPrice(ctx context.Context, market *core.Market) (number.Exp, error) {
	if o.endpoint != "" {
		price, err := o.remotePrice(ctx, market.AssetID)
		if err == nil && !price.IsZero() {
			return price, nil
		}

		if err != nil {
			logger.FromContext(ctx).WithError(err).Warnln("pull price of", market.AssetID)
		}
	}

	return o.static.UnderlyingPrice(ctx, market)
}

func (o *Oracle) remotePrice(ctx context.Context, assetID string) (number.Exp, error) {
	if v, err := o.tickers.Get(assetID); err == nil {
		return v.(number.Exp), nil
	}

	ticker, err := o.PullPriceTicker(ctx, assetID, time.Now())
	if err != nil {
		return number.Exp{}, err
	}

	if !ticker.Price.GreaterThan(decimal.Zero) {
		return number.Exp{}, nil
	}

	price, err := number.ExpFromDecimal(ticker.Price)
	if err != nil {
		return number.Exp{}, err
	}

	_ = o.tickers.Set(assetID, price)
	return price, nil
}

// PullPriceTicker price of assetID at t
func (o *Oracle) PullPriceTicker(ctx context.Context, assetID string, t time.Time) (*core.PriceTicker, error) {
	uri := fmt.Sprintf("%s/api/v2/tickers/%s?ts=%d", o.endpoint, url.PathEscape(assetID), t.UTC().Unix())
	resp, err := resthttp.Request(ctx).Get(uri)
	if err != nil {
		return nil, err
	}

	var ticker core.PriceTicker
	if err := resthttp.ParseResponse(resp, &ticker); err != nil {
		return nil, err
	}

	return &ticker, nil
}

// PullAllPriceTickers every ticker the endpoint knows at t
func (o *Oracle) PullAllPriceTickers(ctx context.Context, t time.Time) ([]*core.PriceTicker, error) {
	uri := fmt.Sprintf("%s/api/tickers?ts=%d", o.endpoint, t.UTC().Unix())
	resp, err := resthttp.Request(ctx).Get(uri)
	if err != nil {
		return nil, err
	}

	var tickers []*core.PriceTicker
	if err := resthttp.ParseResponse(resp, &tickers); err != nil {
		return nil, err
	}

	return tickers, nil
}
