package app

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/justinas/alice"
	"net/http"
	"walletledger/internal/app/handler"
	mw "walletledger/internal/app/middleware"
)

func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(a.logger))

	auth := alice.New(mw.Auth(a.session))

	wh := handler.NewWalletHandler(a.ledger)
	th := handler.NewTransactionHandler(a.ledger)
	trh := handler.NewTransferHandler(a.transfers)
	hh := handler.NewWebhookHandler(a.reconciler)

	r.Get("/health", a.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/webhooks/{provider}", hh.Confirm)

		r.Route("/wallets/{userID}", func(r chi.Router) {
			r.Method(http.MethodPost, "/", auth.ThenFunc(wh.Ensure))
			r.Method(http.MethodGet, "/balance", auth.ThenFunc(wh.Balance))
			r.Method(http.MethodPut, "/status", auth.ThenFunc(wh.SetStatus))
			r.Method(http.MethodPost, "/transactions", auth.ThenFunc(th.Create))
			r.Method(http.MethodGet, "/transactions", auth.ThenFunc(th.List))
		})

		r.Method(http.MethodPost, "/transfers", auth.ThenFunc(trh.Create))
	})

	return r
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		a.logger.Warn().Err(err).Msg("Health check failed")
		handler.WriteResponse(w, map[string]string{"status": "unavailable"}, http.StatusServiceUnavailable)
		return
	}
	handler.WriteResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
