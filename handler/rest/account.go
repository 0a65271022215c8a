package rest

import (
	"net/http"

	"lender/handler/param"
	"lender/handler/render"
	"lender/handler/views"
	"lender/service/lender"

	"github.com/go-chi/chi"
	"github.com/holiman/uint256"
)

func accountHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := engine.Account(r.Context(), chi.URLParam(r, "account"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.AccountView(account))
	}
}

// liquidityHandler the current liquidity, or a hypothetical one when a
// market is given together with redeem and/or borrow amounts
func liquidityHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Market string `json:"market"`
			Redeem string `json:"redeem"`
			Borrow string `json:"borrow"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		account := chi.URLParam(r, "account")

		if params.Market == "" {
			liquidity, err := engine.AccountLiquidity(ctx, account)
			if err != nil {
				render.Error(w, err)
				return
			}

			render.JSON(w, views.LiquidityView(liquidity))
			return
		}

		var redeem, borrow uint256.Int
		var err error
		if params.Redeem != "" {
			if redeem, err = param.Amount(params.Redeem, false); err != nil {
				render.Error(w, err)
				return
			}
		}
		if params.Borrow != "" {
			if borrow, err = param.Amount(params.Borrow, false); err != nil {
				render.Error(w, err)
				return
			}
		}

		liquidity, err := engine.HypotheticalAccountLiquidity(ctx, account, params.Market, redeem, borrow)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.LiquidityView(liquidity))
	}
}

func shortfallsHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shortfalls, err := engine.ScanShortfall(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		list := make([]views.Shortfall, 0, len(shortfalls))
		for _, s := range shortfalls {
			list = append(list, views.ShortfallView(s))
		}

		render.JSON(w, list)
	}
}

func enterMarketsHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string   `json:"account" valid:"required"`
			Markets []string `json:"markets"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		results, err := engine.EnterMarkets(r.Context(), params.Account, params.Markets)
		if err != nil {
			render.Error(w, err)
			return
		}

		list := make([]views.Result, 0, len(results))
		for i, err := range results {
			if err != nil {
				list = append(list, views.Failure(params.Markets[i], err))
				continue
			}

			list = append(list, views.Success(params.Markets[i], nil))
		}

		render.JSON(w, list)
	}
}

func exitMarketHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account" valid:"required"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		if err := engine.ExitMarket(r.Context(), params.Account, id); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, nil))
	}
}

func claimHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Holders []string `json:"holders"`
			Markets []string `json:"markets"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		if err := engine.ClaimReward(r.Context(), params.Holders, params.Markets); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success("", nil))
	}
}
