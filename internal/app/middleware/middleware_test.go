package middleware

import (
	"bytes"
	"context"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/session"
)

func TestAuth(t *testing.T) {
	jwt := session.NewJWT("secret")
	user := uuid.New()
	token, err := jwt.Create(context.Background(), session.Actor{UserID: user})
	if err != nil {
		t.Fatal(err)
	}

	var got session.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = session.Context{}.CurrentActor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Auth(jwt)(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"scheme", "Basic " + token, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if got.UserID != user {
		t.Errorf("actor = %v, want %v", got.UserID, user)
	}
}

func TestLog(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logger.Logger{Logger: zerolog.New(buf)}

	h := Log(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"req_id"`) {
		t.Errorf("log = %s", out)
	}
}
