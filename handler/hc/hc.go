package hc

import (
	"context"
	"net/http"
	"time"

	"lender/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

// Clock reports the current accrual period
type Clock interface {
	Period(ctx context.Context) (int64, error)
}

// Handle handle hc request
func Handle(version string, clock Clock) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(version, clock))
	return r
}

func handle(version string, clock Clock) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		period, err := clock.Period(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"uptime":  time.Since(b).Truncate(time.Millisecond).String(),
			"version": version,
			"period":  period,
		})
	}
}
