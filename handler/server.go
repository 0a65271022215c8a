package handler

import (
	"net/http"

	"lender/core"
	"lender/handler/hc"
	"lender/handler/render"
	"lender/handler/rest"
	"lender/service/lender"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Server server
type Server struct {
	engine   *lender.Engine
	events   core.EventStore
	gatherer prometheus.Gatherer
	version  string
}

// New new server. events and gatherer are optional.
func New(
	engine *lender.Engine,
	events core.EventStore,
	gatherer prometheus.Gatherer,
	version string,
) Server {
	return Server{
		engine:   engine,
		events:   events,
		gatherer: gatherer,
		version:  version,
	}
}

// Handler the whole http surface
func (s Server) Handler() http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	mux.Mount("/hc", hc.Handle(s.version, s.engine))
	mux.Mount("/api", s.HandleRestAPI())

	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(render.WrapResponse)
	r.Mount("/", rest.Handle(s.engine, s.events))
	return r
}
