package handler

import (
	"github.com/go-chi/chi/v5"
	"io"
	"net/http"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/service/webhook"
	"walletledger/pkg/gateway"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	reconciler *webhook.Reconciler
}

func NewWebhookHandler(rec *webhook.Reconciler) *WebhookHandler {
	return &WebhookHandler{
		reconciler: rec,
	}
}

// Confirm verifies the signature over the exact bytes received, so the body
// is read raw and never re-encoded.
func (h *WebhookHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	l := logger.Get(ctx, "Handler.Webhook.Confirm")
	l = logger.Logger{Logger: l.With().Str("provider", provider).Logger()}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	_ = r.Body.Close()
	if err != nil {
		writeError(w, l, apperr.ErrInvalidInput.With("body", err.Error()))
		return
	}

	res, err := h.reconciler.ConfirmWebhook(ctx, provider, body, r.Header.Get(gateway.SignatureHeader))
	if err != nil {
		writeError(w, l, err)
		return
	}

	WriteResponse(w, res, http.StatusOK)
}
