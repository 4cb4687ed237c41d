package memory

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"testing"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/model"
	"walletledger/internal/app/storage"
)

func newEntry(w *model.Wallet, key string) *model.Transaction {
	return &model.Transaction{
		WalletID:       w.ID,
		UserID:         w.UserID,
		Direction:      model.DirectionCredit,
		Status:         model.StatusCompleted,
		Amount:         100,
		BalanceAfter:   100,
		ReferenceType:  model.ReferenceAdjustment,
		IdempotencyKey: key,
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, _ := s.Ensure(ctx, uuid.New(), "USD")

	tx, err := s.BeginTx(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.TxUpdateBalance(ctx, tx, w.ID, 500); err != nil {
		t.Fatal(err)
	}
	if _, err := s.TxCreate(ctx, tx, newEntry(w, "k1")); err != nil {
		t.Fatal(err)
	}
	_ = tx.Rollback()

	got, _ := s.ReadByUserID(ctx, w.UserID)
	if got.Balance != 0 {
		t.Errorf("balance = %d after rollback", got.Balance)
	}

	tx, _ = s.BeginTx(ctx)
	defer tx.Rollback()
	if _, err := s.TxReadByKey(ctx, tx, w.ID, "k1"); !errors.Is(err, apperr.ErrTransactionNotFound) {
		t.Errorf("entry survived rollback: %v", err)
	}
}

func TestCommitPublishesAndUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	w, _ := s.Ensure(ctx, uuid.New(), "USD")

	tx, _ := s.BeginTx(ctx)
	if _, err := s.TxCreate(ctx, tx, newEntry(w, "k1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.TxCreate(ctx, tx, newEntry(w, "k1")); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate key error = %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("rollback after commit = %v", err)
	}

	tx, _ = s.BeginTx(ctx)
	defer tx.Rollback()
	if _, err := s.TxReadByKey(ctx, tx, w.ID, "k1"); err != nil {
		t.Errorf("committed entry not visible: %v", err)
	}
}

func TestLockByUserIDsOrdersByWalletID(t *testing.T) {
	ctx := context.Background()
	s := New()
	a, _ := s.Ensure(ctx, uuid.New(), "USD")
	b, _ := s.Ensure(ctx, uuid.New(), "USD")

	tx, _ := s.BeginTx(ctx)
	defer tx.Rollback()

	first, _ := s.TxLockByUserIDs(ctx, tx, a.UserID, b.UserID)
	second, _ := s.TxLockByUserIDs(ctx, tx, b.UserID, a.UserID)
	if len(first) != 2 || first[0].ID != second[0].ID || first[1].ID != second[1].ID {
		t.Errorf("lock order depends on argument order")
	}

	missing, _ := s.TxLockByUserIDs(ctx, tx, a.UserID, uuid.New())
	if len(missing) != 1 {
		t.Errorf("got %d wallets, want 1", len(missing))
	}
}

func TestListKeysetPagination(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	s.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}
	w, _ := s.Ensure(ctx, uuid.New(), "USD")

	tx, _ := s.BeginTx(ctx)
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		e := newEntry(w, k)
		if k == "b" || k == "d" {
			e.Direction = model.DirectionDebit
		}
		if _, err := s.TxCreate(ctx, tx, e); err != nil {
			t.Fatal(err)
		}
	}
	_ = tx.Commit()

	page, _ := s.List(ctx, w.UserID, storage.TransactionFilter{Limit: 2})
	if len(page) != 2 || page[0].IdempotencyKey != "e" || page[1].IdempotencyKey != "d" {
		t.Fatalf("first page = %v", keys(page))
	}

	cur := &model.Cursor{CreatedAt: page[1].CreatedAt, ID: page[1].ID}
	page, _ = s.List(ctx, w.UserID, storage.TransactionFilter{Limit: 10, Cursor: cur})
	if got := keys(page); len(got) != 3 || got[0] != "c" || got[2] != "a" {
		t.Fatalf("second page = %v", got)
	}

	page, _ = s.List(ctx, w.UserID, storage.TransactionFilter{Limit: 10, Direction: model.DirectionDebit})
	if got := keys(page); len(got) != 2 || got[0] != "d" || got[1] != "b" {
		t.Errorf("debits = %v", got)
	}
}

func keys(mm []*model.Transaction) []string {
	res := make([]string, 0, len(mm))
	for _, m := range mm {
		res = append(res, m.IdempotencyKey)
	}
	return res
}
