package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lender/core"
	icompound "lender/internal/compound"
	"lender/pkg/number"
	"lender/service/block"
	"lender/service/controller"
	"lender/service/lender"
	"lender/service/market"
	"lender/service/token"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (http.Handler, *token.Bank) {
	bank := token.New()
	oracle := icompound.NewSimplePriceOracle()
	oracle.SetUnderlyingPrice("usdc", number.OneExp())

	engine := lender.New(
		core.NewLedger("admin"),
		block.NewManual(1),
		controller.New(oracle, bank),
		func(c core.IRiskController) core.IMarketService { return market.New(c, bank) },
		bank,
		nil,
		nil,
	)

	require.Nil(t, engine.Bootstrap(context.Background(), &core.Config{
		App:  core.App{Admin: "admin"},
		Risk: core.Risk{CloseFactor: "0.5", LiquidationIncentive: "1.08"},
		Markets: []core.MarketListing{{
			ID:               "cUSDC",
			AssetID:          "usdc",
			Symbol:           "cUSDC",
			ReserveFactor:    "0.1",
			CollateralFactor: "0.75",
			RateModel:        core.RateModelParams{BaseRate: "0.02", Multiplier: "0.2"},
		}},
	}))

	return New(engine, nil, prometheus.NewRegistry(), "test").Handler(), bank
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]json.RawMessage) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp map[string]json.RawMessage
	require.Nil(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestMarketsAPI(t *testing.T) {
	h, _ := newServer(t)

	code, resp := do(t, h, http.MethodGet, "/api/markets", "")
	require.Equal(t, http.StatusOK, code)

	var markets []map[string]interface{}
	require.Nil(t, json.Unmarshal(resp["data"], &markets))
	require.Len(t, markets, 1)
	assert.Equal(t, "cUSDC", markets[0]["id"])
	assert.Equal(t, "0.75", markets[0]["collateral_factor"])

	code, resp = do(t, h, http.MethodGet, "/api/markets/cBTC", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "100100", string(resp["code"]))

	code, _ = do(t, h, http.MethodGet, "/hc", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestActionsAPI(t *testing.T) {
	h, bank := newServer(t)
	require.Nil(t, bank.Credit("usdc", "alice", number.NewInt(1000)))

	code, resp := do(t, h, http.MethodPost, "/api/markets/cUSDC/mint", `{"account":"alice","amount":"1000"}`)
	require.Equal(t, http.StatusOK, code, string(resp["msg"]))

	var result map[string]interface{}
	require.Nil(t, json.Unmarshal(resp["data"], &result))
	assert.Equal(t, "1000", result["amount"])

	code, _ = do(t, h, http.MethodPost, "/api/markets/enter", `{"account":"alice","markets":["cUSDC"]}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = do(t, h, http.MethodGet, "/api/accounts/alice/liquidity", "")
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, json.Unmarshal(resp["data"], &result))
	assert.Equal(t, "750", result["liquidity"])

	code, resp = do(t, h, http.MethodGet, "/api/accounts/alice/liquidity?market=cUSDC&borrow=1000", "")
	require.Equal(t, http.StatusOK, code)
	require.Nil(t, json.Unmarshal(resp["data"], &result))
	assert.Equal(t, "250", result["shortfall"])

	code, resp = do(t, h, http.MethodPost, "/api/markets/cUSDC/borrow", `{"account":"alice","amount":"800"}`)
	assert.Equal(t, http.StatusPreconditionFailed, code)
	assert.Equal(t, "100300", string(resp["code"]))

	code, _ = do(t, h, http.MethodPost, "/api/markets/cUSDC/mint", `{"account":"alice","amount":"ten"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, http.MethodPost, "/api/markets/cUSDC/mint", `{"amount":"10"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}
