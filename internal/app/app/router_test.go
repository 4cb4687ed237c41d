package app

import (
	"context"
	"errors"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"walletledger/internal/app/audit"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/ratelimit"
	"walletledger/internal/app/service/ledger"
	"walletledger/internal/app/service/transfer"
	"walletledger/internal/app/service/webhook"
	"walletledger/internal/app/session"
	"walletledger/internal/app/storage/memory"
)

func newTestApp(t *testing.T) (*App, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	store := memory.New()
	limiter := ratelimit.NewMemory(0, time.Minute)
	dispatcher := audit.NewDispatcher(16, audit.NewLogSink(*logger.Global()))

	return &App{
		logger:     *logger.Global(),
		db:         db,
		session:    session.NewJWT("secret"),
		ledger:     ledger.New(store, store, store, session.Context{}, limiter, dispatcher),
		transfers:  transfer.New(store, store, store, session.Context{}, limiter, dispatcher),
		reconciler: webhook.New(store, store, store, dispatcher, webhook.Secrets{Default: "s"}),
		audit:      dispatcher,
	}, mock
}

func TestHealth(t *testing.T) {
	a, mock := newTestApp(t)
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	mock.ExpectPing()
	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d", res.StatusCode)
	}

	mock.ExpectPing().WillReturnError(errors.New("down"))
	res, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", res.StatusCode)
	}
}

func TestRouterAuth(t *testing.T) {
	a, _ := newTestApp(t)
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	user := uuid.New()
	token, err := a.session.Create(context.Background(), session.Actor{UserID: user})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"balance without token", http.MethodGet, "/api/wallets/" + user.String() + "/balance", "", http.StatusUnauthorized},
		{"balance", http.MethodGet, "/api/wallets/" + user.String() + "/balance", token, http.StatusOK},
		{"ensure", http.MethodPost, "/api/wallets/" + user.String(), token, http.StatusOK},
		{"transfer without token", http.MethodPost, "/api/transfers", "", http.StatusUnauthorized},
		{"webhook without signature", http.MethodPost, "/api/webhooks/paystack", "", http.StatusUnauthorized},
		{"unknown", http.MethodGet, "/api/nope", token, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			res, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			_ = res.Body.Close()
			if res.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", res.StatusCode, tt.want)
			}
		})
	}
}
