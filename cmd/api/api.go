package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rayalaseema/internal/audit"
	"rayalaseema/internal/catalog"
	"rayalaseema/internal/config"
	"rayalaseema/internal/domain/gatewayorders"
	"rayalaseema/internal/kv"
	"rayalaseema/internal/payments"
	"rayalaseema/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const gatewayRazorpay = "razorpay"

type application struct {
	config      config.Server
	logger      *zap.SugaredLogger
	payments    *payments.PaymentManager
	receipts    *payments.ReceiptGenerator
	catalog     *catalog.Catalog
	orders      gatewayorders.Store
	attempts    *audit.Log
	rateLimiter ratelimiter.Limiter
}

func newApplication(cfg config.Server, logger *zap.SugaredLogger, store kv.Store, orders gatewayorders.Store) (*application, error) {
	receipts, err := payments.NewReceiptGenerator(cfg.ReceiptSalt)
	if err != nil {
		return nil, err
	}

	pm := payments.NewPaymentManager()
	pm.RegisterGateway(gatewayRazorpay, payments.NewRazorpayAdapter(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.APIURL,
		payments.WithLogger(logger),
	))

	return &application{
		config:   cfg,
		logger:   logger,
		payments: pm,
		receipts: receipts,
		catalog:  catalog.Default(),
		orders:   orders,
		attempts: audit.NewLog(store, audit.WithLogger(logger)),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(
			cfg.RateLimiter.RequestsPerTimeFrame,
			cfg.RateLimiter.TimeFrame,
		),
	}, nil
}

func (app *application) allowedOrigins() []string {
	if app.config.FrontendURL != "" {
		return []string{app.config.FrontendURL}
	}
	return []string{"https://*", "http://*"}
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.notFoundResponse(w, r, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		r.Get("/products", app.listProductsHandler)

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
		r.With(app.BasicAuthMiddleware()).Get("/debug/attempts", app.listAttemptsHandler)

		r.Route("/payments", func(r chi.Router) {
			r.Use(app.RateLimiterMiddleware)
			r.Post("/orders", app.createOrderHandler)
			r.Post("/verify", app.verifyPaymentHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
