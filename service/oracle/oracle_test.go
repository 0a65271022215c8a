package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lender/core"
	"lender/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticPrices(t *testing.T) {
	o, err := New(core.OracleConfig{Prices: map[string]interface{}{"usdc": 1, "eth": "2000.5"}})
	require.Nil(t, err)

	ctx := context.Background()
	price, err := o.UnderlyingPrice(ctx, &core.Market{AssetID: "eth"})
	require.Nil(t, err)
	assert.True(t, price.Equal(number.MustParseExp("2000.5")))

	price, err = o.UnderlyingPrice(ctx, &core.Market{AssetID: "btc"})
	require.Nil(t, err)
	assert.True(t, price.IsZero())

	_, err = New(core.OracleConfig{Prices: map[string]interface{}{"usdc": "one"}})
	assert.NotNil(t, err)
}

func TestRemotePrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v2/tickers/eth"):
			_, _ = w.Write([]byte(`{"asset_id":"eth","price":"1800.25"}`))
		case r.URL.Path == "/api/tickers":
			_, _ = w.Write([]byte(`[{"asset_id":"eth","price":"1800.25"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	o, err := New(core.OracleConfig{EndPoint: srv.URL, Prices: map[string]interface{}{"usdc": "1"}})
	require.Nil(t, err)

	ctx := context.Background()
	price, err := o.UnderlyingPrice(ctx, &core.Market{AssetID: "eth"})
	require.Nil(t, err)
	assert.True(t, price.Equal(number.MustParseExp("1800.25")))

	// unknown to the endpoint, served from the static table
	price, err = o.UnderlyingPrice(ctx, &core.Market{AssetID: "usdc"})
	require.Nil(t, err)
	assert.True(t, price.Equal(number.OneExp()))

	tickers, err := o.PullAllPriceTickers(ctx, time.Now())
	require.Nil(t, err)
	require.Len(t, tickers, 1)
	assert.Equal(t, "eth", tickers[0].AssetID)
}
