package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/jackc/pgerrcode"
	pg "github.com/lib/pq"
	"github.com/pkg/errors"
	"walletledger/internal/app/storage"
)

// storage.Transactor interface implementation
var _ storage.Transactor = (*Transactor)(nil)

type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

// BeginTx implementation of interface storage.Transactor. Row locks taken with
// FOR UPDATE serialize writers, so read committed is sufficient.
func (t *Transactor) BeginTx(ctx context.Context) (storage.Tx, error) {
	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, errors.Wrap(err, "tx begin")
	}
	return tx, nil
}

func sqlTx(tx storage.Tx) (*sql.Tx, error) {
	t, ok := tx.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("unsupported tx type %T", tx)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pg.Error
	if errors.As(err, &pgErr) {
		return string(pgErr.Code) == pgerrcode.UniqueViolation
	}
	return false
}
