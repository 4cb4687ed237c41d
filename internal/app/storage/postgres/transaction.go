package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"strings"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/storage"
)

// storage.TransactionRepository interface implementation
var _ storage.TransactionRepository = (*TransactionRepository)(nil)

const transactionColumns = `id, wallet_id, user_id, direction, status, amount, balance_after,
		reference_type, COALESCE(reference_id, ''), idempotency_key, COALESCE(provider, ''),
		COALESCE(external_ref, ''), COALESCE(group_id, ''), metadata, description, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func (r *TransactionRepository) LoggerComponent() string {
	return "TransactionRepository"
}

func NewTransactionRepository(db *sql.DB) (*TransactionRepository, error) {
	s := &TransactionRepository{
		db: db,
	}
	return s, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	m := &model.Transaction{}
	err := row.Scan(
		&m.ID, &m.WalletID, &m.UserID, &m.Direction, &m.Status, &m.Amount, &m.BalanceAfter,
		&m.ReferenceType, &m.ReferenceID, &m.IdempotencyKey, &m.Provider,
		&m.ExternalRef, &m.GroupID, &m.Metadata, &m.Description, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrTransactionNotFound
		}
		return nil, errors.Wrap(err, "scan")
	}
	return m, nil
}

func scanTransactions(rows *sql.Rows) ([]*model.Transaction, error) {
	defer func() {
		_ = rows.Close()
	}()

	res := make([]*model.Transaction, 0)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}

	return res, errors.Wrap(rows.Err(), "rows")
}

// TxReadByKey implementation of interface storage.TransactionRepository
func (r *TransactionRepository) TxReadByKey(ctx context.Context, tx storage.Tx, walletID uuid.UUID, key string) (*model.Transaction, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	const SQL = `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE wallet_id=$1 AND idempotency_key=$2
		FOR UPDATE
`

	return scanTransaction(t.QueryRowContext(ctx, SQL, walletID, key))
}

// TxReadByExternalRef implementation of interface storage.TransactionRepository
func (r *TransactionRepository) TxReadByExternalRef(ctx context.Context, tx storage.Tx, provider, externalRef string) (*model.Transaction, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	const SQL = `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE provider=$1 AND external_ref=$2
`

	return scanTransaction(t.QueryRowContext(ctx, SQL, provider, externalRef))
}

// TxLock implementation of interface storage.TransactionRepository
func (r *TransactionRepository) TxLock(ctx context.Context, tx storage.Tx, id uuid.UUID) (*model.Transaction, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	const SQL = `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id=$1 FOR UPDATE`

	return scanTransaction(t.QueryRowContext(ctx, SQL, id))
}

// TxReadByGroupID implementation of interface storage.TransactionRepository
func (r *TransactionRepository) TxReadByGroupID(ctx context.Context, tx storage.Tx, groupID string) ([]*model.Transaction, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	const SQL = `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE group_id=$1
		ORDER BY created_at, id
`

	rows, err := t.QueryContext(ctx, SQL, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "select")
	}

	return scanTransactions(rows)
}

// TxCreate implementation of interface storage.TransactionRepository.
// The insert runs under a savepoint so a unique violation leaves the outer tx usable.
func (r *TransactionRepository) TxCreate(ctx context.Context, tx storage.Tx, m *model.Transaction) (*model.Transaction, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	if _, err := t.ExecContext(ctx, `SAVEPOINT tx_create`); err != nil {
		return nil, errors.Wrap(err, "savepoint")
	}

	const SQL = `
		INSERT INTO wallet_transactions (
			id, wallet_id, user_id, direction, status, amount, balance_after,
			reference_type, reference_id, idempotency_key, provider,
			external_ref, group_id, metadata, description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, NULLIF($11, ''),
			NULLIF($12, ''), NULLIF($13, ''), $14, $15)
		RETURNING created_at
`

	err = t.QueryRowContext(ctx, SQL,
		m.ID, m.WalletID, m.UserID, m.Direction, m.Status, m.Amount, m.BalanceAfter,
		m.ReferenceType, m.ReferenceID, m.IdempotencyKey, m.Provider,
		m.ExternalRef, m.GroupID, m.Metadata, m.Description,
	).Scan(&m.CreatedAt)
	if err != nil {
		if _, rbErr := t.ExecContext(ctx, `ROLLBACK TO SAVEPOINT tx_create`); rbErr != nil {
			return nil, errors.Wrap(rbErr, "rollback to savepoint")
		}
		if isUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, errors.Wrap(err, "insert")
	}

	if _, err := t.ExecContext(ctx, `RELEASE SAVEPOINT tx_create`); err != nil {
		return nil, errors.Wrap(err, "release savepoint")
	}

	return m, nil
}

// TxUpdate implementation of interface storage.TransactionRepository
func (r *TransactionRepository) TxUpdate(ctx context.Context, tx storage.Tx, m *model.Transaction) (*model.Transaction, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	const SQL = `
		UPDATE wallet_transactions
		SET status=$1, balance_after=$2, metadata=$3
		WHERE id=$4
`

	res, err := t.ExecContext(ctx, SQL, m.Status, m.BalanceAfter, m.Metadata, m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "update")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return nil, apperr.ErrTransactionNotFound
	}

	return m, nil
}

// List implementation of interface storage.TransactionRepository
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, f storage.TransactionFilter) ([]*model.Transaction, error) {
	l := logger.Ctx(ctx).With().Str("method", "List").Logger()

	where := []string{"user_id=$1"}
	args := []interface{}{userID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Direction != "" {
		where = append(where, "direction="+arg(f.Direction))
	}
	if !f.From.IsZero() {
		where = append(where, "created_at>="+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at<="+arg(f.To))
	}
	if f.Cursor != nil {
		where = append(where, fmt.Sprintf("(created_at, id) < (%s, %s)", arg(f.Cursor.CreatedAt), arg(f.Cursor.ID)))
	}

	SQL := `SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + arg(f.Limit)

	l.Debug().Str("query", SQL).Send()

	rows, err := r.db.QueryContext(ctx, SQL, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select")
	}

	return scanTransactions(rows)
}

// ListStalePending implementation of interface storage.TransactionRepository
func (r *TransactionRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*model.Transaction, error) {
	const SQL = `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE status=$1 AND created_at<$2
		ORDER BY created_at
		LIMIT $3
`

	rows, err := r.db.QueryContext(ctx, SQL, model.StatusPending, before, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select")
	}

	return scanTransactions(rows)
}
