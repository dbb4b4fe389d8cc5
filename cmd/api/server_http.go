package main

import (
	"net/http"
	"time"

	"github.com/NordCoder/loanbook/internal/auth"
	config "github.com/NordCoder/loanbook/internal/config/api"
	"github.com/NordCoder/loanbook/internal/obs"
	pg "github.com/NordCoder/loanbook/internal/repository/postgres"
	authsvc "github.com/NordCoder/loanbook/internal/services/api/auth"
	"github.com/NordCoder/loanbook/internal/services/api/httpio"
	loansvc "github.com/NordCoder/loanbook/internal/services/api/loan"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type deps struct {
	db     *pg.DB
	tokens *tokenBackend
	codec  *auth.Codec
	hasher *auth.PasswordHasher
}

func buildRouter(cfg *config.Config, logger *zap.Logger, d deps) http.Handler {
	creds := authsvc.NewCredentialStore(pg.NewUserRepo(d.db), d.hasher)
	authUC := authsvc.NewUseCase(creds, d.tokens.store, d.codec, authsvc.Config{
		UnifyLoginErrors: cfg.Auth.UnifyLoginErrors,
	})
	loanUC := loansvc.New(
		pg.NewLoanRepo(d.db),
		pg.NewOutboxRepo(d.db),
		pg.NewTransactor(d.db, logger),
		nil,
	)

	authCtrl := authsvc.NewController(authUC, logger)
	loanCtrl := loansvc.NewController(loanUC, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPMiddleware(logger))

	r.Get("/healthz", obs.HealthHandler(500*time.Millisecond,
		obs.HealthCheck{Name: "db", Check: d.db.Ping},
		obs.HealthCheck{Name: "token store", Check: d.tokens.health},
	))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", authCtrl.Routes)
	r.Route("/loans", func(r chi.Router) {
		r.Use(authsvc.Guard(d.codec))
		loanCtrl.Routes(r)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpio.WriteError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpio.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return otelhttp.NewHandler(r, "loanbook-api")
}

func buildHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}
