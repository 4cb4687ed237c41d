package gateway

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetPayment(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/payments/{provider}/{ref}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "provider") != "paystack" || chi.URLParam(r, "ref") != "r1" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"external_ref":"r1","amount":"500.00","outcome":"success","status":"charge.success"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	s, err := NewService(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	out := &PaymentResponse{}
	if err := s.GetPayment(context.Background(), &GetPaymentRequest{Provider: "paystack", ExternalRef: "r1"}, out); err != nil {
		t.Fatal(err)
	}
	if out.Outcome != OutcomeSuccess || out.Amount != "500.00" {
		t.Errorf("out = %+v", out)
	}

	err = s.GetPayment(context.Background(), &GetPaymentRequest{Provider: "paystack", ExternalRef: "nope"}, out)
	var re *RemoteError
	if !errors.As(err, &re) || re.StatusCode != http.StatusNotFound {
		t.Errorf("err = %v, want remote 404", err)
	}
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "fail", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := NewService(srv.URL, WithBreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 2
		},
	})))

	in := &GetPaymentRequest{Provider: "p", ExternalRef: "r"}
	for i := 0; i < 2; i++ {
		if err := s.GetPayment(context.Background(), in, &PaymentResponse{}); err == nil {
			t.Fatal("expected error")
		}
	}

	err := s.GetPayment(context.Background(), in, &PaymentResponse{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want unavailable", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("open breaker let a call through, calls = %d", calls)
	}
}

func TestClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	s, _ := NewService(srv.URL, WithBreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 1
		},
	})))

	for i := 0; i < 3; i++ {
		err := s.GetPayment(context.Background(), &GetPaymentRequest{Provider: "p", ExternalRef: "r"}, &PaymentResponse{})
		if errors.Is(err, ErrUnavailable) {
			t.Fatal("breaker opened on 404")
		}
	}
}
