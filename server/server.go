// Package server wires together the grape pruning server: DSL/job
// persistence, the tunas service layer, and the chi-routed HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddle "github.com/go-chi/chi/v5/middleware"

	"github.com/SynthesisLab/grape/server/api"
	"github.com/SynthesisLab/grape/server/dao"
	"github.com/SynthesisLab/grape/server/middle"
	"github.com/SynthesisLab/grape/server/tunas"
)

// New builds a ready-to-serve HTTP handler for the pruning server, wiring
// the given DB store and config into the full route table.
func New(db dao.Store, cfg Config) http.Handler {
	cfg = cfg.FillDefaults()

	backend := tunas.Service{DB: db}
	a := api.API{
		Backend:     backend,
		UnauthDelay: cfg.UnauthDelay(),
		Secret:      cfg.TokenSecret,
	}

	r := chi.NewRouter()
	r.Use(chimiddle.Recoverer)

	r.Route(api.PathPrefix, func(r chi.Router) {
		r.Post("/login", a.HTTPCreateLogin())

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(db, cfg))

			r.Delete("/login/{id}", a.HTTPDeleteLogin())
			r.Post("/tokens", a.HTTPCreateToken())

			r.Get("/dsls", a.HTTPGetAllDSLs())
			r.Post("/dsls", a.HTTPCreateDSL())
			r.Get("/dsls/{id}", a.HTTPGetDSL())
			r.Delete("/dsls/{id}", a.HTTPDeleteDSL())

			r.Get("/jobs", a.HTTPGetAllJobs())
			r.Post("/jobs", a.HTTPCreateJob())
			r.Get("/jobs/{id}", a.HTTPGetJob())
			r.Delete("/jobs/{id}", a.HTTPDeleteJob())
		})

		r.With(optionalAuth(db, cfg)).Get("/info", a.HTTPGetInfo())
	})

	return r
}

func requireAuth(db dao.Store, cfg Config) middle.Middleware {
	return middle.RequireAuth(db.Users(), cfg.TokenSecret, cfg.UnauthDelay(), dao.User{})
}

func optionalAuth(db dao.Store, cfg Config) middle.Middleware {
	return middle.OptionalAuth(db.Users(), cfg.TokenSecret, cfg.UnauthDelay(), dao.User{})
}

// ListenAndServe starts the pruning server on addr using the given DB and
// config, blocking until the server exits or an error occurs.
func ListenAndServe(addr string, db dao.Store, cfg Config) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(db, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
