// Package webhook reconciles gateway callbacks against PENDING ledger entries.
package webhook

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/money"
	"walletledger/internal/app/service"
	"walletledger/internal/app/storage"
	"walletledger/pkg/gateway"
)

const (
	Action = "wallet.webhook.confirm"

	reasonLateInsufficientFunds = "insufficient funds at confirmation"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

func (o Outcome) Valid() bool {
	return o == OutcomeSuccess || o == OutcomeFailed
}

// Callback is the payload a gateway posts once a checkout settles.
type Callback struct {
	UserID      uuid.UUID       `json:"user_id"`
	Direction   model.Direction `json:"direction"`
	ExternalRef string          `json:"external_ref"`
	Amount      money.Input     `json:"amount"`
	Outcome     Outcome         `json:"outcome"`
	Status      string          `json:"status,omitempty"`
}

type Result struct {
	Updated      bool               `json:"updated"`
	Transaction  *model.Transaction `json:"transaction"`
	BalanceAfter int64              `json:"-"`
}

// Secrets resolves the shared webhook secret of a provider.
type Secrets struct {
	Default    string
	ByProvider map[string]string
}

func (s Secrets) For(provider string) []byte {
	if v, ok := s.ByProvider[provider]; ok {
		return []byte(v)
	}
	return []byte(s.Default)
}

type Reconciler struct {
	tx      storage.Transactor
	wallets storage.WalletRepository
	txs     storage.TransactionRepository
	audit   service.AuditLog
	secrets Secrets
	now     func() time.Time
}

func (r *Reconciler) LoggerComponent() string {
	return "Webhook.Reconciler"
}

func New(
	tx storage.Transactor,
	wallets storage.WalletRepository,
	txs storage.TransactionRepository,
	audit service.AuditLog,
	secrets Secrets,
) *Reconciler {
	return &Reconciler{
		tx:      tx,
		wallets: wallets,
		txs:     txs,
		audit:   audit,
		secrets: secrets,
		now:     time.Now,
	}
}

// ConfirmWebhook verifies the signature of the raw body before anything else
// and then applies the callback.
func (r *Reconciler) ConfirmWebhook(ctx context.Context, provider string, body []byte, signature string) (*Result, error) {
	l := logger.Get(ctx, r).With().Str("provider", provider).Logger()

	if !gateway.Verify(r.secrets.For(provider), body, signature) {
		l.Warn().Msg("Webhook signature rejected")
		return nil, apperr.ErrUnauthorized
	}

	cb := Callback{}
	if err := json.Unmarshal(body, &cb); err != nil {
		l.Debug().Err(err).Msg("Callback decode failed")
		return nil, apperr.ErrInvalidInput.With("body", err.Error())
	}

	return r.Apply(ctx, provider, cb, body)
}

// Apply moves the PENDING entry matching the callback to a terminal state.
// Callers must have authenticated the callback. Repeated delivery against a
// terminal entry returns it with Updated false.
func (r *Reconciler) Apply(ctx context.Context, provider string, cb Callback, raw []byte) (*Result, error) {
	l := logger.Get(ctx, r).With().
		Str("provider", provider).
		Str("external_ref", cb.ExternalRef).
		Str("outcome", string(cb.Outcome)).
		Logger()

	if !cb.Outcome.Valid() {
		return nil, apperr.ErrInvalidInput.With("outcome", string(cb.Outcome))
	}
	if cb.ExternalRef == "" {
		return nil, apperr.ErrInvalidInput.With("external_ref", "required")
	}
	amount, err := money.Normalize(string(cb.Amount))
	if err != nil {
		return nil, err
	}

	tx, err := r.tx.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	found, err := r.txs.TxReadByExternalRef(ctx, tx, provider, cb.ExternalRef)
	if err != nil {
		l.Debug().Err(err).Msg("Pending transaction lookup failed")
		return nil, err
	}

	// user, direction and amount never change after creation
	switch {
	case found.UserID != cb.UserID:
		return nil, apperr.ErrUserMismatch
	case found.Direction != cb.Direction:
		return nil, apperr.ErrTypeMismatch
	case money.FormatMinorUnits(found.Amount) != amount:
		return nil, apperr.ErrAmountMismatch
	}

	// wallet first, then the entry: same order as every other writer
	w, err := r.wallets.TxLockByUserID(ctx, tx, found.UserID)
	if err != nil {
		return nil, err
	}
	m, err := r.txs.TxLock(ctx, tx, found.ID)
	if err != nil {
		return nil, err
	}

	if m.Status.Terminal() {
		l.Info().Str("transaction_id", m.ID.String()).Str("status", string(m.Status)).Msg("Callback already reconciled")
		return &Result{Updated: false, Transaction: m, BalanceAfter: w.Balance}, nil
	}

	info := &model.WebhookInfo{
		RawStatus:   cb.Status,
		ConfirmedAt: r.now().UTC(),
	}
	if info.RawStatus == "" {
		info.RawStatus = string(cb.Outcome)
	}
	if json.Valid(raw) {
		info.Payload = json.RawMessage(raw)
	}
	m.Metadata.Webhook = info
	m.BalanceAfter = w.Balance

	switch {
	case cb.Outcome == OutcomeFailed:
		m.Status = model.StatusFailed
	case m.Direction == model.DirectionDebit && w.Balance < m.Amount:
		// nothing was reserved at creation, so a debit can fail late
		m.Status = model.StatusFailed
		info.FailedReason = reasonLateInsufficientFunds
	default:
		after, err := money.Apply(w.Balance, m.Delta())
		if err != nil {
			l.Warn().Int64("balance", w.Balance).Msg("Confirmed amount exceeds balance range")
			return nil, err
		}
		m.Status = model.StatusCompleted
		m.BalanceAfter = after
	}

	if m.Status == model.StatusCompleted {
		if err := r.wallets.TxUpdateBalance(ctx, tx, w.ID, m.BalanceAfter); err != nil {
			return nil, err
		}
	}

	if _, err := r.txs.TxUpdate(ctx, tx, m); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Msg("TX commit failed")
		return nil, err
	}

	l.Info().
		Str("transaction_id", m.ID.String()).
		Str("status", string(m.Status)).
		Str("failed_reason", info.FailedReason).
		Msg("Callback reconciled")

	r.audit.Record(ctx, model.AuditEntry{
		UserID:   m.UserID,
		WalletID: m.WalletID,
		Action:   Action,
		Meta: map[string]string{
			"transaction_id": m.ID.String(),
			"provider":       provider,
			"external_ref":   cb.ExternalRef,
			"status":         string(m.Status),
		},
		At: r.now(),
	})

	return &Result{Updated: true, Transaction: m, BalanceAfter: m.BalanceAfter}, nil
}
