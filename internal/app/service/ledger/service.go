// Package ledger applies credits and debits to wallets exactly once.
package ledger

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/rs/xid"
	"strings"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/money"
	"walletledger/internal/app/service"
	"walletledger/internal/app/storage"
)

const (
	ActionCreate  = "wallet.transaction.create"
	ActionPending = "wallet.transaction.pending"
	ActionStatus  = "wallet.status.update"
	ActionEnsure  = "wallet.ensure"

	defaultCurrency = "USD"
)

// Request describes one ledger entry to apply.
type Request struct {
	UserID         uuid.UUID
	Direction      model.Direction
	Amount         money.Input
	IdempotencyKey string
	ReferenceType  model.ReferenceType
	ReferenceID    string
	Description    string
	Provider       string
	ExternalRef    string
	Extra          map[string]interface{}
}

// Result of an applied or replayed entry. BalanceAfter is the snapshot stored
// with the entry, Balance is the wallet balance at the time of the call.
type Result struct {
	Transaction  *model.Transaction
	BalanceAfter int64
	Balance      int64
	Replayed     bool
}

type onDuplicate int

const (
	returnExisting onDuplicate = iota
	raiseConflict
)

type Service struct {
	tx       storage.Transactor
	wallets  storage.WalletRepository
	txs      storage.TransactionRepository
	identity service.Identity
	limiter  service.RateLimiter
	audit    service.AuditLog
	currency string
	now      func() time.Time
}

type Option func(*Service)

// WithCurrency sets the currency of lazily created wallets.
func WithCurrency(c string) Option {
	return func(s *Service) {
		s.currency = c
	}
}

func (s *Service) LoggerComponent() string {
	return "Ledger.Service"
}

func New(
	tx storage.Transactor,
	wallets storage.WalletRepository,
	txs storage.TransactionRepository,
	identity service.Identity,
	limiter service.RateLimiter,
	audit service.AuditLog,
	opts ...Option,
) *Service {
	s := &Service{
		tx:       tx,
		wallets:  wallets,
		txs:      txs,
		identity: identity,
		limiter:  limiter,
		audit:    audit,
		currency: defaultCurrency,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateOrGet applies a completed entry. A replay of the idempotency key
// returns the stored entry unless its payload differs.
func (s *Service) CreateOrGet(ctx context.Context, req Request) (*Result, error) {
	return s.apply(ctx, req, false, returnExisting)
}

// CreateOrConflict applies a completed entry. A replay of the idempotency key
// fails with apperr.ErrAlreadyProcessed naming the stored entry.
func (s *Service) CreateOrConflict(ctx context.Context, req Request) (*Result, error) {
	return s.apply(ctx, req, false, raiseConflict)
}

// CreatePendingOrGet records a PENDING entry awaiting gateway confirmation.
// The wallet balance is not touched and no funds are reserved.
func (s *Service) CreatePendingOrGet(ctx context.Context, req Request) (*Result, error) {
	return s.apply(ctx, req, true, returnExisting)
}

// CreatePendingOrConflict is CreatePendingOrGet failing on replays.
func (s *Service) CreatePendingOrConflict(ctx context.Context, req Request) (*Result, error) {
	return s.apply(ctx, req, true, raiseConflict)
}

func (s *Service) validate(req *Request, pending bool) (int64, error) {
	if !req.Direction.Valid() {
		return 0, apperr.ErrInvalidInput.With("direction", string(req.Direction))
	}

	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.IdempotencyKey == "" {
		return 0, apperr.ErrInvalidInput.With("idempotency_key", "required")
	}

	if req.ReferenceType == "" {
		req.ReferenceType = model.ReferenceAdjustment
	}
	if !req.ReferenceType.Valid() {
		return 0, apperr.ErrInvalidInput.With("reference_type", string(req.ReferenceType))
	}

	if pending && req.Provider == "" {
		return 0, apperr.ErrInvalidInput.With("provider", "required")
	}

	amount, err := req.Amount.MinorUnits()
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, apperr.ErrInvalidAmount
	}

	return amount, nil
}

func (s *Service) authorize(ctx context.Context, req Request, pending bool) error {
	if !pending && req.Direction == model.DirectionCredit {
		_, err := service.RequireAdmin(ctx, s.identity)
		return err
	}
	_, err := service.RequireOwner(ctx, s.identity, req.UserID)
	return err
}

func (s *Service) apply(ctx context.Context, req Request, pending bool, mode onDuplicate) (*Result, error) {
	l := logger.Get(ctx, s).With().
		Str("user_id", req.UserID.String()).
		Str("idempotency_key", req.IdempotencyKey).
		Bool("pending", pending).
		Logger()

	amount, err := s.validate(&req, pending)
	if err != nil {
		l.Debug().Err(err).Msg("Validation error")
		return nil, err
	}

	if err := s.authorize(ctx, req, pending); err != nil {
		l.Debug().Err(err).Msg("Authorization failed")
		return nil, err
	}

	action := ActionCreate
	if pending {
		action = ActionPending
	}
	if err := s.limiter.Consume(ctx, req.UserID, action); err != nil {
		l.Debug().Err(err).Msg("Throttled")
		return nil, err
	}

	tx, err := s.tx.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	w, err := s.wallets.TxLockByUserID(ctx, tx, req.UserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.txs.TxReadByKey(ctx, tx, w.ID, req.IdempotencyKey)
	if err == nil {
		l.Debug().Str("transaction_id", existing.ID.String()).Msg("Duplicate idempotency key")
		return s.resolveDuplicate(existing, w, req.Direction, amount, mode)
	}
	if !errors.Is(err, apperr.ErrTransactionNotFound) {
		return nil, err
	}

	if w.Status == model.WalletSuspended {
		return nil, apperr.ErrWalletSuspended
	}

	m := &model.Transaction{
		ID:             uuid.New(),
		WalletID:       w.ID,
		UserID:         w.UserID,
		Direction:      req.Direction,
		Status:         model.StatusCompleted,
		Amount:         amount,
		BalanceAfter:   w.Balance,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		IdempotencyKey: req.IdempotencyKey,
		Provider:       req.Provider,
		ExternalRef:    req.ExternalRef,
		Metadata:       model.MetadataFor(req.ReferenceType, req.ReferenceID, req.Description),
		Description:    req.Description,
	}
	m.Metadata.Extra = req.Extra

	if pending {
		m.Status = model.StatusPending
		if m.ExternalRef == "" {
			m.ExternalRef = xid.New().String()
		}
	} else {
		if req.Direction == model.DirectionDebit && w.Balance < amount {
			l.Debug().Int64("balance", w.Balance).Int64("amount", amount).Msg("Insufficient funds")
			return nil, apperr.ErrInsufficientFunds
		}
		after, err := money.Apply(w.Balance, m.Delta())
		if err != nil {
			l.Debug().Int64("balance", w.Balance).Int64("amount", amount).Msg("Balance out of range")
			return nil, err
		}
		m.BalanceAfter = after
	}

	if _, err := s.txs.TxCreate(ctx, tx, m); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		// a concurrent writer won the unique key, answer with its row
		existing, rerr := s.txs.TxReadByKey(ctx, tx, w.ID, req.IdempotencyKey)
		if rerr != nil {
			l.Warn().Err(rerr).Msg("Conflicting row not found by key")
			return nil, err
		}
		return s.resolveDuplicate(existing, w, req.Direction, amount, mode)
	}

	if !pending {
		if err := s.wallets.TxUpdateBalance(ctx, tx, w.ID, m.BalanceAfter); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Msg("TX commit failed")
		return nil, err
	}

	l.Info().
		Str("transaction_id", m.ID.String()).
		Str("direction", string(m.Direction)).
		Str("amount", money.FormatMinorUnits(m.Amount)).
		Str("status", string(m.Status)).
		Msg("Transaction applied")

	s.audit.Record(ctx, model.AuditEntry{
		UserID:   m.UserID,
		WalletID: m.WalletID,
		Action:   action,
		Meta: map[string]string{
			"transaction_id": m.ID.String(),
			"direction":      string(m.Direction),
			"amount":         money.FormatMinorUnits(m.Amount),
			"status":         string(m.Status),
		},
		At: s.now(),
	})

	balance := m.BalanceAfter
	if pending {
		balance = w.Balance
	}

	return &Result{Transaction: m, BalanceAfter: m.BalanceAfter, Balance: balance}, nil
}

func (s *Service) resolveDuplicate(existing *model.Transaction, w *model.Wallet, d model.Direction, amount int64, mode onDuplicate) (*Result, error) {
	if mode == raiseConflict {
		return nil, alreadyProcessed(existing)
	}
	if existing.Direction != d || existing.Amount != amount {
		return nil, apperr.ErrIdempotencyConflict.With("transaction_id", existing.ID.String())
	}
	return &Result{
		Transaction:  existing,
		BalanceAfter: existing.BalanceAfter,
		Balance:      w.Balance,
		Replayed:     true,
	}, nil
}

func alreadyProcessed(m *model.Transaction) error {
	err := apperr.ErrAlreadyProcessed.With("transaction_id", m.ID.String())
	if m.GroupID != "" {
		err = err.With("group_id", m.GroupID)
	}
	return err
}
