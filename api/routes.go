package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/account"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

const (
	shutdownTimeout = 30 * time.Second
	corsMaxAge      = 3600
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service
	Issuer  *auth.Issuer
	Store   pinger
}

// Router builds the full handler tree: plain routes, the huma API and the
// request-scoped middleware around them.
func (r *Rest) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(logging.Middleware(r.Logger))

	statusHandler := status.NewHandler(r.Store)
	router.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	config := huma.DefaultConfig("ledger-server", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	config.Security = []map[string][]string{{"bearer": {}}}

	api := humamux.New(router, config)
	api.UseMiddleware(auth.Middleware(api, r.Issuer,
		account.LoginOperationID,
		account.CreateAccountOperationID,
	))

	account.NewLoginHandler(r.Service.Account).Register(api)
	account.NewCreateAccountHandler(r.Service.Account).Register(api)
	account.NewAccountHandler(r.Service.Account).Register(api)
	account.NewSummaryHandler(r.Service.Report).Register(api)

	transaction.NewListTransactionsHandler(r.Service.Report).Register(api)
	transaction.NewSearchHandler(r.Service.Report).Register(api)
	transaction.NewDailyHandler(r.Service.Report).Register(api)
	transaction.NewAdjustmentHandler(r.Service.Ledger).Register(api)
	transaction.NewTransferHandler(r.Service.Ledger).Register(api)

	return cors(router)
}

// cors answers preflight requests with 204 and adds the allow headers to the rest.
func cors(next http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", logging.RequestIDHeader}),
		handlers.ExposedHeaders([]string{logging.RequestIDHeader}),
		handlers.MaxAge(corsMaxAge),
		handlers.OptionStatusCode(http.StatusNoContent),
	)(next)
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Router(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
		return err
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
