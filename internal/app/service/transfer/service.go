// Package transfer moves funds between two wallets as one double-entry unit.
package transfer

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

const Action = "wallet.transfer"

type Request struct {
	FromUserID     uuid.UUID
	ToUserID       uuid.UUID
	Amount         money.Input
	IdempotencyKey string
	Description    string
}

type Result struct {
	GroupID          string             `json:"group_id"`
	Debit            *model.Transaction `json:"debit"`
	Credit           *model.Transaction `json:"credit"`
	FromBalanceAfter int64              `json:"-"`
	ToBalanceAfter   int64              `json:"-"`
}

type Coordinator struct {
	tx       storage.Transactor
	wallets  storage.WalletRepository
	txs      storage.TransactionRepository
	identity service.Identity
	limiter  service.RateLimiter
	audit    service.AuditLog
	now      func() time.Time
	newGroup func() string
}

func (c *Coordinator) LoggerComponent() string {
	return "Transfer.Coordinator"
}

func New(
	tx storage.Transactor,
	wallets storage.WalletRepository,
	txs storage.TransactionRepository,
	identity service.Identity,
	limiter service.RateLimiter,
	audit service.AuditLog,
) *Coordinator {
	return &Coordinator{
		tx:       tx,
		wallets:  wallets,
		txs:      txs,
		identity: identity,
		limiter:  limiter,
		audit:    audit,
		now:      time.Now,
		newGroup: func() string {
			return xid.New().String()
		},
	}
}

// Transfer debits the source wallet and credits the destination wallet in one
// unit of work. The idempotency key scopes the debit leg, the credit leg is
// keyed by the group id.
func (c *Coordinator) Transfer(ctx context.Context, req Request) (*Result, error) {
	l := logger.Get(ctx, c).With().
		Str("from_user_id", req.FromUserID.String()).
		Str("to_user_id", req.ToUserID.String()).
		Str("idempotency_key", req.IdempotencyKey).
		Logger()

	if req.FromUserID == req.ToUserID {
		return nil, apperr.ErrInvalidRecipient
	}

	amount, err := req.Amount.MinorUnits()
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperr.ErrInvalidAmount
	}

	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.IdempotencyKey == "" {
		return nil, apperr.ErrInvalidInput.With("idempotency_key", "required")
	}

	if _, err := service.RequireOwner(ctx, c.identity, req.FromUserID); err != nil {
		l.Debug().Err(err).Msg("Authorization failed")
		return nil, err
	}

	if err := c.limiter.Consume(ctx, req.FromUserID, Action); err != nil {
		return nil, err
	}

	tx, err := c.tx.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// one statement, ordered by wallet id, so opposing transfers cannot deadlock
	locked, err := c.wallets.TxLockByUserIDs(ctx, tx, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}

	var from, to *model.Wallet
	for _, w := range locked {
		switch w.UserID {
		case req.FromUserID:
			from = w
		case req.ToUserID:
			to = w
		}
	}
	if from == nil {
		return nil, apperr.ErrWalletNotFound.With("user_id", req.FromUserID.String())
	}
	if to == nil {
		return nil, apperr.ErrWalletNotFound.With("user_id", req.ToUserID.String())
	}

	existing, err := c.txs.TxReadByKey(ctx, tx, from.ID, req.IdempotencyKey)
	if err == nil {
		l.Debug().Str("transaction_id", existing.ID.String()).Msg("Duplicate transfer")
		return nil, c.alreadyProcessed(ctx, tx, existing)
	}
	if !errors.Is(err, apperr.ErrTransactionNotFound) {
		return nil, err
	}

	if from.Status == model.WalletSuspended || to.Status == model.WalletSuspended {
		return nil, apperr.ErrWalletSuspended
	}

	if from.Balance < amount {
		l.Debug().Int64("balance", from.Balance).Int64("amount", amount).Msg("Insufficient funds")
		return nil, apperr.ErrInsufficientFunds
	}

	groupID := c.newGroup()

	toAfter, err := money.Apply(to.Balance, amount)
	if err != nil {
		l.Debug().Int64("balance", to.Balance).Int64("amount", amount).Msg("Recipient balance out of range")
		return nil, err
	}

	debit := &model.Transaction{
		ID:             uuid.New(),
		WalletID:       from.ID,
		UserID:         from.UserID,
		Direction:      model.DirectionDebit,
		Status:         model.StatusCompleted,
		Amount:         amount,
		BalanceAfter:   from.Balance - amount,
		ReferenceType:  model.ReferenceAdjustment,
		ReferenceID:    groupID,
		IdempotencyKey: req.IdempotencyKey,
		GroupID:        groupID,
		Metadata: model.Metadata{
			Transfer: &model.TransferInfo{GroupID: groupID, CounterpartUserID: to.UserID},
		},
		Description: req.Description,
	}

	credit := &model.Transaction{
		ID:             uuid.New(),
		WalletID:       to.ID,
		UserID:         to.UserID,
		Direction:      model.DirectionCredit,
		Status:         model.StatusCompleted,
		Amount:         amount,
		BalanceAfter:   toAfter,
		ReferenceType:  model.ReferenceAdjustment,
		ReferenceID:    groupID,
		IdempotencyKey: groupID,
		GroupID:        groupID,
		Metadata: model.Metadata{
			Transfer: &model.TransferInfo{GroupID: groupID, CounterpartUserID: from.UserID},
		},
		Description: req.Description,
	}

	for _, m := range []*model.Transaction{debit, credit} {
		if _, err := c.txs.TxCreate(ctx, tx, m); err != nil {
			if errors.Is(err, apperr.ErrConflict) && m == debit {
				if existing, rerr := c.txs.TxReadByKey(ctx, tx, from.ID, req.IdempotencyKey); rerr == nil {
					return nil, c.alreadyProcessed(ctx, tx, existing)
				}
			}
			return nil, err
		}
	}

	if err := c.wallets.TxUpdateBalance(ctx, tx, from.ID, debit.BalanceAfter); err != nil {
		return nil, err
	}
	if err := c.wallets.TxUpdateBalance(ctx, tx, to.ID, credit.BalanceAfter); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Msg("TX commit failed")
		return nil, err
	}

	l.Info().
		Str("group_id", groupID).
		Str("amount", money.FormatMinorUnits(amount)).
		Msg("Transfer completed")

	c.audit.Record(ctx, model.AuditEntry{
		UserID:   from.UserID,
		WalletID: from.ID,
		Action:   Action,
		Meta: map[string]string{
			"group_id":   groupID,
			"to_user_id": to.UserID.String(),
			"debit_id":   debit.ID.String(),
			"credit_id":  credit.ID.String(),
			"amount":     money.FormatMinorUnits(amount),
		},
		At: c.now(),
	})

	return &Result{
		GroupID:          groupID,
		Debit:            debit,
		Credit:           credit,
		FromBalanceAfter: debit.BalanceAfter,
		ToBalanceAfter:   credit.BalanceAfter,
	}, nil
}

// alreadyProcessed names both legs of the original attempt so the caller can reconcile.
func (c *Coordinator) alreadyProcessed(ctx context.Context, tx storage.Tx, existing *model.Transaction) error {
	err := apperr.ErrAlreadyProcessed.With("transaction_id", existing.ID.String())
	if existing.GroupID == "" {
		return err
	}

	err = err.With("group_id", existing.GroupID)
	legs, rerr := c.txs.TxReadByGroupID(ctx, tx, existing.GroupID)
	if rerr != nil {
		l := logger.Get(ctx, c)
		l.Warn().Err(rerr).Str("group_id", existing.GroupID).Msg("Transfer legs read failed")
		return err
	}
	for _, m := range legs {
		switch m.Direction {
		case model.DirectionDebit:
			err = err.With("debit_id", m.ID.String())
		case model.DirectionCredit:
			err = err.With("credit_id", m.ID.String())
		}
	}

	return err
}
