//go:generate mockgen -source=./interface.go -destination=./mock/storage.go -package=storagemock
package storage

import (
	"context"
	"github.com/google/uuid"
	"time"
	"walletledger/internal/app/model"
)

// Tx is a unit of work: every write inside it commits or rolls back together.
type Tx interface {
	Commit() error
	Rollback() error
}

type Transactor interface {
	// BeginTx starts a new unit of work
	BeginTx(ctx context.Context) (Tx, error)
}

type WalletRepository interface {
	// Ensure creates the model.Wallet of user unless it exists and returns it
	Ensure(ctx context.Context, userID uuid.UUID, currency string) (*model.Wallet, error)
	// ReadByUserID instance of model.Wallet
	ReadByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error)
	// UpdateStatus of the wallet owned by user
	UpdateStatus(ctx context.Context, userID uuid.UUID, status model.WalletStatus) (*model.Wallet, error)
	// TxLockByUserID reads model.Wallet of user holding an exclusive row lock until the tx ends
	TxLockByUserID(ctx context.Context, tx Tx, userID uuid.UUID) (*model.Wallet, error)
	// TxLockByUserIDs locks wallets of all users in one statement, ordered by wallet id
	TxLockByUserIDs(ctx context.Context, tx Tx, userIDs ...uuid.UUID) ([]*model.Wallet, error)
	// TxUpdateBalance of a locked wallet
	TxUpdateBalance(ctx context.Context, tx Tx, walletID uuid.UUID, balance int64) error
}

type TransactionFilter struct {
	Direction model.Direction
	From      time.Time
	To        time.Time
	Cursor    *model.Cursor
	Limit     int
}

type TransactionRepository interface {
	// TxReadByKey returns model.Transaction of wallet by idempotency key, locking it
	TxReadByKey(ctx context.Context, tx Tx, walletID uuid.UUID, key string) (*model.Transaction, error)
	// TxReadByExternalRef returns model.Transaction correlated with a provider reference
	TxReadByExternalRef(ctx context.Context, tx Tx, provider, externalRef string) (*model.Transaction, error)
	// TxLock reads model.Transaction holding an exclusive row lock
	TxLock(ctx context.Context, tx Tx, id uuid.UUID) (*model.Transaction, error)
	// TxReadByGroupID returns both legs of a transfer
	TxReadByGroupID(ctx context.Context, tx Tx, groupID string) ([]*model.Transaction, error)
	// TxCreate a new model.Transaction, apperr.ErrConflict on a duplicate key or reference
	TxCreate(ctx context.Context, tx Tx, t *model.Transaction) (*model.Transaction, error)
	// TxUpdate status, balance snapshot and metadata of model.Transaction
	TxUpdate(ctx context.Context, tx Tx, t *model.Transaction) (*model.Transaction, error)
	// List transactions of user, newest first
	List(ctx context.Context, userID uuid.UUID, f TransactionFilter) ([]*model.Transaction, error)
	// ListStalePending returns PENDING transactions created before the given time, oldest first
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]*model.Transaction, error)
}
