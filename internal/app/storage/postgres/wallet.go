package postgres

import (
	"context"
	"database/sql"
	"github.com/google/uuid"
	pg "github.com/lib/pq"
	"github.com/pkg/errors"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/model"
	"walletledger/internal/app/storage"
)

// storage.WalletRepository interface implementation
var _ storage.WalletRepository = (*WalletRepository)(nil)

const walletColumns = `id, user_id, balance, currency, status, created_at, updated_at`

type WalletRepository struct {
	db *sql.DB
}

func (r *WalletRepository) LoggerComponent() string {
	return "WalletRepository"
}

func NewWalletRepository(db *sql.DB) (*WalletRepository, error) {
	s := &WalletRepository{
		db: db,
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWallet(row rowScanner) (*model.Wallet, error) {
	m := &model.Wallet{}
	err := row.Scan(&m.ID, &m.UserID, &m.Balance, &m.Currency, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrWalletNotFound
		}
		return nil, errors.Wrap(err, "scan")
	}
	return m, nil
}

// Ensure implementation of interface storage.WalletRepository
func (r *WalletRepository) Ensure(ctx context.Context, userID uuid.UUID, currency string) (*model.Wallet, error) {
	const SQL = `
		INSERT INTO wallets (id, user_id, currency)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
`

	if _, err := r.db.ExecContext(ctx, SQL, uuid.New(), userID, currency); err != nil {
		return nil, errors.Wrap(err, "insert")
	}

	return r.ReadByUserID(ctx, userID)
}

// ReadByUserID implementation of interface storage.WalletRepository
func (r *WalletRepository) ReadByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	const SQL = `SELECT ` + walletColumns + ` FROM wallets WHERE user_id=$1`

	return scanWallet(r.db.QueryRowContext(ctx, SQL, userID))
}

// UpdateStatus implementation of interface storage.WalletRepository
func (r *WalletRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status model.WalletStatus) (*model.Wallet, error) {
	const SQL = `
		UPDATE wallets
		SET status=$1, updated_at=now()
		WHERE user_id=$2
		RETURNING ` + walletColumns

	return scanWallet(r.db.QueryRowContext(ctx, SQL, status, userID))
}

// TxLockByUserID implementation of interface storage.WalletRepository
func (r *WalletRepository) TxLockByUserID(ctx context.Context, tx storage.Tx, userID uuid.UUID) (*model.Wallet, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	const SQL = `SELECT ` + walletColumns + ` FROM wallets WHERE user_id=$1 FOR UPDATE`

	return scanWallet(t.QueryRowContext(ctx, SQL, userID))
}

// TxLockByUserIDs implementation of interface storage.WalletRepository
func (r *WalletRepository) TxLockByUserIDs(ctx context.Context, tx storage.Tx, userIDs ...uuid.UUID) ([]*model.Wallet, error) {
	t, err := sqlTx(tx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}

	const SQL = `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE user_id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
`

	rows, err := t.QueryContext(ctx, SQL, pg.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "select")
	}
	defer func() {
		_ = rows.Close()
	}()

	res := make([]*model.Wallet, 0, len(userIDs))
	for rows.Next() {
		m, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}

	return res, errors.Wrap(rows.Err(), "rows")
}

// TxUpdateBalance implementation of interface storage.WalletRepository
func (r *WalletRepository) TxUpdateBalance(ctx context.Context, tx storage.Tx, walletID uuid.UUID, balance int64) error {
	t, err := sqlTx(tx)
	if err != nil {
		return err
	}

	const SQL = `UPDATE wallets SET balance=$1, updated_at=now() WHERE id=$2`

	res, err := t.ExecContext(ctx, SQL, balance, walletID)
	if err != nil {
		return errors.Wrap(err, "update")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return apperr.ErrWalletNotFound
	}

	return nil
}
