// Command gateway is a sandbox payment gateway. It accepts checkouts, settles
// them after a delay and posts signed callbacks, occasionally twice.
package main

import (
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/pflag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"walletledger/internal/app/logger"
	mw "walletledger/internal/app/middleware"
)

func main() {
	var opts options
	pflag.StringVarP(&opts.listen, "listen-addr", "a", "127.0.0.1:8090", "Address to listen on")
	pflag.StringVarP(&opts.secret, "secret", "s", "ChangeMe", "Webhook signing secret")
	pflag.DurationVar(&opts.settleAfter, "settle-after", 2*time.Second, "Delay before a checkout settles")
	pflag.Float64Var(&opts.failRate, "fail-rate", 0.2, "Share of checkouts that fail")
	pflag.Float64Var(&opts.chaos, "chaos", 0, "Share of status requests answered with 5xx or 429")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	pflag.Parse()

	// setting up signal capturing
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		osCall := <-stop
		logger.Global().Info().Str("signal", fmt.Sprintf("%+v", osCall)).Msg("System call")
		cancel()
	}()

	l := logger.New(opts.verbose, true)

	if err := runServer(ctx, opts, l); err != nil {
		l.Fatal().Err(err).Msg("Server run failed")
	}
}

func runServer(ctx context.Context, opts options, l logger.Logger) (err error) {
	s := newSandbox(opts, l)
	defer s.wait()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(l))
	r.Post("/api/payments/{provider}", s.CreatePayment)
	r.Get("/api/payments/{provider}/{ref}", s.GetPayment)

	srv := &http.Server{
		Addr:    opts.listen,
		Handler: r,
	}

	go func() {
		l.Info().Str("listen_address", opts.listen).Msg("Listening incoming connections")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("")
		}
	}()

	l.Info().Msg("Server started")
	<-ctx.Done()
	l.Info().Msg("Server stopped")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer func() {
		cancel()
	}()

	if err = srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	l.Info().Msg("Server exited properly")

	return
}
