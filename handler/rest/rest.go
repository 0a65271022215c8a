package rest

import (
	"net/http"

	"lender/core"
	"lender/handler/render"
	"lender/service/lender"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(engine *lender.Engine, events core.EventStore) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFound(w, "not found")
	})

	router.Get("/risk", riskHandler(engine))
	router.Get("/shortfalls", shortfallsHandler(engine))

	router.Route("/markets", func(r chi.Router) {
		r.Get("/", marketsHandler(engine))
		r.Post("/enter", enterMarketsHandler(engine))
		r.Get("/{id}", marketHandler(engine))
		r.Post("/{id}/accrue", accrueHandler(engine))
		r.Post("/{id}/mint", mintHandler(engine))
		r.Post("/{id}/redeem", redeemHandler(engine))
		r.Post("/{id}/redeem-underlying", redeemUnderlyingHandler(engine))
		r.Post("/{id}/borrow", borrowHandler(engine))
		r.Post("/{id}/repay", repayHandler(engine))
		r.Post("/{id}/liquidate", liquidateHandler(engine))
		r.Post("/{id}/transfer", transferHandler(engine))
		r.Post("/{id}/exit", exitMarketHandler(engine))
	})

	router.Route("/accounts/{account}", func(r chi.Router) {
		r.Get("/", accountHandler(engine))
		r.Get("/liquidity", liquidityHandler(engine))
		if events != nil {
			r.Get("/events", accountEventsHandler(events))
		}
	})

	router.Post("/rewards/claim", claimHandler(engine))

	if events != nil {
		router.Get("/events", eventsHandler(events))
	}

	return router
}
