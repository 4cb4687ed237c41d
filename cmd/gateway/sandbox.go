package main

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"
	"math/rand"
	"net/http"
	"sync"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/handler"
	"walletledger/internal/app/logger"
	"walletledger/pkg/gateway"
)

type options struct {
	listen      string
	secret      string
	settleAfter time.Duration
	failRate    float64
	chaos       float64
	verbose     bool
}

type payment struct {
	gateway.PaymentResponse
	provider    string
	callbackURL string
}

type sandbox struct {
	mu       sync.Mutex
	payments map[string]*payment
	opts     options
	logger   logger.Logger
	client   *http.Client
	rnd      func() float64
	wg       sync.WaitGroup
}

func newSandbox(opts options, l logger.Logger) *sandbox {
	return &sandbox{
		payments: make(map[string]*payment),
		opts:     opts,
		logger:   l.WithComponent("Gateway.Sandbox"),
		client:   &http.Client{Timeout: 10 * time.Second},
		rnd:      rand.Float64,
	}
}

func (s *sandbox) key(provider, ref string) string {
	return provider + "/" + ref
}

func (s *sandbox) CreatePayment(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	in := gateway.CreatePaymentRequest{}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handler.WriteError(w, apperr.ErrInvalidInput.With("body", err.Error()))
		return
	}

	amount, err := decimal.NewFromString(in.Amount)
	if err != nil || !amount.IsPositive() || amount.Exponent() < -2 {
		handler.WriteError(w, apperr.ErrInvalidAmountFormat)
		return
	}
	if in.ExternalRef == "" {
		in.ExternalRef = xid.New().String()
	}

	p := &payment{
		PaymentResponse: gateway.PaymentResponse{
			UserID:      in.UserID,
			Direction:   in.Direction,
			ExternalRef: in.ExternalRef,
			Amount:      amount.StringFixed(2),
			Outcome:     gateway.OutcomePending,
		},
		provider:    provider,
		callbackURL: in.CallbackURL,
	}

	s.mu.Lock()
	if _, ok := s.payments[s.key(provider, in.ExternalRef)]; ok {
		s.mu.Unlock()
		handler.WriteError(w, apperr.ErrConflict.With("external_ref", in.ExternalRef))
		return
	}
	s.payments[s.key(provider, in.ExternalRef)] = p
	s.mu.Unlock()

	s.logger.Info().Str("provider", provider).Str("external_ref", in.ExternalRef).Msg("Checkout created")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		time.Sleep(s.opts.settleAfter)
		s.settle(p)
	}()

	handler.WriteResponse(w, p.PaymentResponse, http.StatusCreated)
}

func (s *sandbox) GetPayment(w http.ResponseWriter, r *http.Request) {
	provider, ref := chi.URLParam(r, "provider"), chi.URLParam(r, "ref")
	l := logger.Ctx(r.Context()).With().Str("external_ref", ref).Str("method", "GetPayment").Logger()

	if s.rnd() < s.opts.chaos {
		l.Warn().Msg("Chaos failure")
		http.Error(w, "fail", http.StatusInternalServerError)
		return
	}
	if s.rnd() < s.opts.chaos {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	s.mu.Lock()
	p, ok := s.payments[s.key(provider, ref)]
	var out gateway.PaymentResponse
	if ok {
		out = p.PaymentResponse
	}
	s.mu.Unlock()

	if !ok {
		handler.WriteError(w, apperr.ErrNotFound)
		return
	}

	handler.WriteResponse(w, out, http.StatusOK)
}

// settle decides the outcome and delivers the callback at least once.
func (s *sandbox) settle(p *payment) {
	s.mu.Lock()
	p.Outcome, p.Status = gateway.OutcomeSuccess, "charge.success"
	if s.rnd() < s.opts.failRate {
		p.Outcome, p.Status = gateway.OutcomeFailed, "charge.failed"
	}
	out := p.PaymentResponse
	s.mu.Unlock()

	if p.callbackURL == "" {
		return
	}

	body, _ := json.Marshal(out)
	deliveries := 1
	if s.rnd() < 0.3 {
		deliveries = 2
	}
	for i := 0; i < deliveries; i++ {
		s.deliver(p.callbackURL, body, out.ExternalRef)
	}
}

func (s *sandbox) deliver(url string, body []byte, ref string) {
	l := s.logger.With().Str("external_ref", ref).Str("callback_url", url).Logger()
	sig := gateway.Sign([]byte(s.opts.secret), body)

	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			cancel()
			l.Error().Err(err).Msg("Callback request build failed")
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(gateway.SignatureHeader, sig)

		res, err := s.client.Do(req)
		if err == nil {
			_ = res.Body.Close()
		}
		cancel()

		if err == nil && res.StatusCode < http.StatusInternalServerError {
			l.Info().Int("http_status", res.StatusCode).Int("attempt", attempt).Msg("Callback delivered")
			return
		}
		l.Warn().Err(err).Int("attempt", attempt).Msg("Callback delivery failed")
		time.Sleep(time.Duration(attempt) * time.Second)
	}
}

func (s *sandbox) wait() {
	s.wg.Wait()
}
