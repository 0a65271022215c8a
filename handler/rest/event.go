package rest

import (
	"net/http"
	"time"

	"lender/core"
	"lender/handler/param"
	"lender/handler/render"
	"lender/handler/views"

	"github.com/go-chi/chi"
)

func eventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Offset time.Time `json:"offset"`
			Limit  int       `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		list, err := events.List(r.Context(), params.Offset, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, eventViews(list))
	}
}

func accountEventsHandler(events core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			Limit int `json:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		list, err := events.ListByAccount(r.Context(), chi.URLParam(r, "account"), params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, eventViews(list))
	}
}

func eventViews(events []*core.Event) []views.Event {
	list := make([]views.Event, 0, len(events))
	for _, e := range events {
		list = append(list, views.EventView(e))
	}

	return list
}
