package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationhandler "adopsi/internal/application/handler"
	documenthandler "adopsi/internal/document/handler"
	identityhandler "adopsi/internal/identity/handler"
	"adopsi/internal/platform/metrics"
	"adopsi/internal/platform/middleware"
)

const requestTimeout = 30 * time.Second

type routerDeps struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	validator   middleware.JWTValidator
	revocations middleware.RevocationChecker

	identity     *identityhandler.Handler
	applications *applicationhandler.Handler
	documents    *documenthandler.Handler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.logger))
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.LatencyMiddleware(d.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.identity.RegisterPublic(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.validator, d.revocations, d.logger))
		d.identity.RegisterProtected(r)
		d.applications.Register(r)
		d.documents.Register(r)
	})

	return r
}
