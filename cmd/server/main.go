// Command server runs the adoption application intake service: account
// registration and login, application lifecycle management, supporting
// document handling, and the caseworker review workflow.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	applicationhandler "adopsi/internal/application/handler"
	applicationservice "adopsi/internal/application/service"
	applicationstore "adopsi/internal/application/store"
	"adopsi/internal/audit"
	"adopsi/internal/blobstore"
	documenthandler "adopsi/internal/document/handler"
	documentservice "adopsi/internal/document/service"
	documentstore "adopsi/internal/document/store"
	"adopsi/internal/history"
	"adopsi/internal/identity"
	identityhandler "adopsi/internal/identity/handler"
	"adopsi/internal/identity/revocation"
	identityservice "adopsi/internal/identity/service"
	identitystore "adopsi/internal/identity/store"
	"adopsi/internal/jwttoken"
	"adopsi/internal/platform/config"
	"adopsi/internal/platform/httpserver"
	"adopsi/internal/platform/logger"
	"adopsi/internal/platform/metrics"
	"adopsi/internal/platform/middleware"
	"adopsi/internal/platform/postgres"
	"adopsi/internal/platform/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	blobs, err := blobstore.New(cfg.Blob)
	if err != nil {
		log.Error("failed to initialize blob store", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it logout revocation degrades to a no-op.
	var trl *revocation.RedisTRL
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		trl = revocation.NewRedisTRL(redisClient.Client)
	}

	m := metrics.New()
	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	users := identitystore.NewPostgresUserStore(db)
	apps := applicationstore.NewPostgresStore(db)
	docs := documentstore.NewPostgresStore(db)
	ledger := history.NewPostgresStore(db)
	auditor := audit.NewPublisher(audit.NewPostgresStore(db))
	gate := identity.NewGate(users)
	txRunner := newPostgresTxRunner(db)

	identityOpts := []identityservice.Option{
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditor),
	}
	if trl != nil {
		identityOpts = append(identityOpts, identityservice.WithRevocationList(trl))
	}
	identitySvc := identityservice.New(users, tokens, cfg.TokenTTL, identityOpts...)

	applicationSvc := applicationservice.New(apps, docs, ledger, gate, txRunner,
		applicationservice.WithLogger(log),
		applicationservice.WithAuditPublisher(auditor),
		applicationservice.WithMetrics(m),
	)
	documentSvc := documentservice.New(docs, apps, blobs, gate,
		documentservice.WithLogger(log),
		documentservice.WithAuditPublisher(auditor),
		documentservice.WithMetrics(m),
	)

	var revocations middleware.RevocationChecker
	if trl != nil {
		revocations = trl
	}
	router := newRouter(routerDeps{
		logger:       log,
		metrics:      m,
		validator:    tokens,
		revocations:  revocations,
		identity:     identityhandler.New(identitySvc, log),
		applications: applicationhandler.New(applicationSvc, log),
		documents:    documenthandler.New(documentSvc, log),
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The outbox relay drains audit rows to Kafka when brokers are set.
	if len(cfg.Kafka.Brokers) > 0 {
		relay, err := audit.NewRelay(db, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			log.Error("failed to start audit relay", "error", err)
			os.Exit(1)
		}
		defer relay.Close()
		go func() {
			if err := relay.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit relay stopped", "error", err)
			}
		}()
	}

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
