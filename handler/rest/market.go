package rest

import (
	"net/http"

	"lender/handler/param"
	"lender/handler/render"
	"lender/handler/views"
	"lender/service/lender"

	"github.com/go-chi/chi"
)

func marketsHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markets, err := engine.Markets(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		list := make([]views.Market, 0, len(markets))
		for _, m := range markets {
			list = append(list, views.MarketView(m))
		}

		render.JSON(w, list)
	}
}

func marketHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		market, err := engine.Market(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.MarketView(market))
	}
}

func riskHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		risk, err := engine.Risk(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.RiskView(risk))
	}
}

func accrueHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := engine.AccrueInterest(r.Context(), id); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, nil))
	}
}

type actionParams struct {
	Account string `json:"account" valid:"required"`
	Amount  string `json:"amount" valid:"required"`
}

func mintHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params actionParams
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Amount(params.Amount, false)
		if err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		shares, err := engine.Mint(r.Context(), id, params.Account, amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, &shares))
	}
}

func redeemHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params actionParams
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		shares, err := param.Amount(params.Amount, false)
		if err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		amount, err := engine.Redeem(r.Context(), id, params.Account, shares)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, &amount))
	}
}

func redeemUnderlyingHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params actionParams
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Amount(params.Amount, false)
		if err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		shares, err := engine.RedeemUnderlying(r.Context(), id, params.Account, amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, &shares))
	}
}

func borrowHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params actionParams
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Amount(params.Amount, false)
		if err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		if err := engine.Borrow(r.Context(), id, params.Account, amount); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, &amount))
	}
}

func repayHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account  string `json:"account" valid:"required"`
			Amount   string `json:"amount" valid:"required"`
			Borrower string `json:"borrower"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := param.Amount(params.Amount, true)
		if err != nil {
			render.Error(w, err)
			return
		}

		borrower := params.Borrower
		if borrower == "" {
			borrower = params.Account
		}

		id := chi.URLParam(r, "id")
		repaid, err := engine.RepayBorrowBehalf(r.Context(), id, params.Account, borrower, amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, &repaid))
	}
}

func liquidateHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account    string `json:"account" valid:"required"`
			Amount     string `json:"amount" valid:"required"`
			Borrower   string `json:"borrower" valid:"required"`
			Collateral string `json:"collateral" valid:"required"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		repay, err := param.Amount(params.Amount, false)
		if err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		seized, err := engine.LiquidateBorrow(r.Context(), id, params.Account, params.Borrower, repay, params.Collateral)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(params.Collateral, &seized))
	}
}

func transferHandler(engine *lender.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Account string `json:"account" valid:"required"`
			Amount  string `json:"amount" valid:"required"`
			To      string `json:"to" valid:"required"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		shares, err := param.Amount(params.Amount, false)
		if err != nil {
			render.Error(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		if err := engine.Transfer(r.Context(), id, params.Account, params.To, shares); err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Success(id, &shares))
	}
}
