package ledger

import (
	"context"
	"errors"
	"fmt"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"sync"
	"testing"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/model"
	"walletledger/internal/app/money"
	servicemock "walletledger/internal/app/service/mock"
	"walletledger/internal/app/session"
	"walletledger/internal/app/storage"
	"walletledger/internal/app/storage/memory"
	storagemock "walletledger/internal/app/storage/mock"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	admin context.Context
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	limiter := servicemock.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	audit := servicemock.NewMockAuditLog(ctrl)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).AnyTimes()

	store := memory.New()

	return &fixture{
		store: store,
		svc:   New(store, store, store, session.Context{}, limiter, audit),
		admin: session.WithActor(context.Background(), session.Actor{UserID: uuid.New(), IsAdmin: true}),
	}
}

func (f *fixture) wallet(t *testing.T) uuid.UUID {
	t.Helper()
	w, err := f.store.Ensure(context.Background(), uuid.New(), "USD")
	if err != nil {
		t.Fatal(err)
	}
	return w.UserID
}

func (f *fixture) balance(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	w, err := f.store.ReadByUserID(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	return money.FormatMinorUnits(w.Balance)
}

func req(userID uuid.UUID, d model.Direction, amount, key string) Request {
	return Request{UserID: userID, Direction: d, Amount: money.Input(amount), IdempotencyKey: key}
}

func TestCreditDebitScenario(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)

	res, err := f.svc.CreateOrConflict(f.admin, req(user, model.DirectionCredit, "1000.00", "c1"))
	if err != nil {
		t.Fatal(err)
	}
	if res.BalanceAfter != 100000 || res.Transaction.Status != model.StatusCompleted {
		t.Errorf("credit result = %+v", res)
	}

	res, err = f.svc.CreateOrConflict(f.admin, req(user, model.DirectionDebit, "300.00", "d1"))
	if err != nil {
		t.Fatal(err)
	}
	if got := money.FormatMinorUnits(res.BalanceAfter); got != "700.00" {
		t.Errorf("balance after debit = %s", got)
	}

	_, err = f.svc.CreateOrConflict(f.admin, req(user, model.DirectionDebit, "10000.00", "d2"))
	if !errors.Is(err, apperr.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want insufficient funds", err)
	}
	if got := f.balance(t, user); got != "700.00" {
		t.Errorf("balance = %s, want 700.00", got)
	}
}

func TestCreditBalanceOverflow(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)

	if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "92233720368547758.00", "c1")); err != nil {
		t.Fatal(err)
	}
	_, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "92233720368547758.00", "c2"))
	if !errors.Is(err, apperr.ErrInvalidAmount) {
		t.Fatalf("err = %v, want invalid amount", err)
	}
	if got := f.balance(t, user); got != "92233720368547758.00" {
		t.Errorf("balance = %s", got)
	}
}

func TestValidationBeforeLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	// no expectations: any storage call fails the test
	txr := storagemock.NewMockTransactor(ctrl)
	limiter := servicemock.NewMockRateLimiter(ctrl)
	svc := New(txr, storagemock.NewMockWalletRepository(ctrl), storagemock.NewMockTransactionRepository(ctrl),
		session.Context{}, limiter, servicemock.NewMockAuditLog(ctrl))

	admin := session.WithActor(context.Background(), session.Actor{IsAdmin: true})
	user := uuid.New()

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"bad format", req(user, model.DirectionCredit, "1.234", "k"), apperr.ErrInvalidAmountFormat},
		{"zero", req(user, model.DirectionCredit, "0.00", "k"), apperr.ErrInvalidAmount},
		{"negative", req(user, model.DirectionDebit, "-5", "k"), apperr.ErrInvalidAmountFormat},
		{"no key", req(user, model.DirectionCredit, "1", " "), apperr.ErrInvalidInput},
		{"bad direction", req(user, "UP", "1", "k"), apperr.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateOrGet(admin, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestThrottledBeforeLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := servicemock.NewMockRateLimiter(ctrl)
	limiter.EXPECT().Consume(gomock.Any(), gomock.Any(), ActionCreate).Return(apperr.ErrThrottled)

	svc := New(storagemock.NewMockTransactor(ctrl), storagemock.NewMockWalletRepository(ctrl),
		storagemock.NewMockTransactionRepository(ctrl), session.Context{}, limiter, servicemock.NewMockAuditLog(ctrl))

	admin := session.WithActor(context.Background(), session.Actor{IsAdmin: true})
	if _, err := svc.CreateOrGet(admin, req(uuid.New(), model.DirectionCredit, "1", "k")); !errors.Is(err, apperr.ErrThrottled) {
		t.Errorf("err = %v, want throttled", err)
	}
}

func TestAuthorization(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)
	owner := session.WithActor(context.Background(), session.Actor{UserID: user})
	stranger := session.WithActor(context.Background(), session.Actor{UserID: uuid.New()})

	if _, err := f.svc.CreateOrGet(context.Background(), req(user, model.DirectionDebit, "1", "k0")); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("anonymous err = %v", err)
	}
	if _, err := f.svc.CreateOrGet(owner, req(user, model.DirectionCredit, "1", "k1")); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("owner credit err = %v", err)
	}
	if _, err := f.svc.CreateOrGet(stranger, req(user, model.DirectionDebit, "1", "k2")); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("stranger debit err = %v", err)
	}

	pending := req(user, model.DirectionCredit, "1", "k3")
	pending.Provider = "paystack"
	if _, err := f.svc.CreatePendingOrGet(owner, pending); err != nil {
		t.Errorf("owner pending credit err = %v", err)
	}
	if _, err := f.svc.CreateOrGet(owner, req(user, model.DirectionDebit, "1", "k4")); !errors.Is(err, apperr.ErrInsufficientFunds) {
		t.Errorf("owner debit err = %v", err)
	}
}

func TestWalletNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateOrGet(f.admin, req(uuid.New(), model.DirectionCredit, "1", "k"))
	if !errors.Is(err, apperr.ErrWalletNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestReplay(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)

	first, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "50", "c1"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "25", "c2")); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		res, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "50.00", "c1"))
		if err != nil {
			t.Fatal(err)
		}
		if !res.Replayed || res.Transaction.ID != first.Transaction.ID {
			t.Fatalf("replay %d returned %+v", i, res)
		}
		if res.BalanceAfter != first.BalanceAfter || res.Balance != 7500 {
			t.Errorf("replay %d balances = %d/%d", i, res.BalanceAfter, res.Balance)
		}
	}

	_, err = f.svc.CreateOrConflict(f.admin, req(user, model.DirectionCredit, "50", "c1"))
	if !errors.Is(err, apperr.ErrAlreadyProcessed) {
		t.Fatalf("err = %v, want already processed", err)
	}
	if got := apperr.Detail(err, "transaction_id"); got != first.Transaction.ID.String() {
		t.Errorf("transaction_id = %q", got)
	}

	_, err = f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "51", "c1"))
	if !errors.Is(err, apperr.ErrIdempotencyConflict) {
		t.Errorf("err = %v, want idempotency conflict", err)
	}

	page, err := f.svc.List(f.admin, user, ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 {
		t.Errorf("got %d rows, want 2", len(page.Items))
	}
	if got := f.balance(t, user); got != "75.00" {
		t.Errorf("balance = %s", got)
	}
}

func TestConcurrentDistinctKeys(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)

	if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "100", "seed")); err != nil {
		t.Fatal(err)
	}

	const n = 60
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed = int64(10000)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, amount := model.DirectionDebit, "7.00"
			if i%3 == 0 {
				d, amount = model.DirectionCredit, "5.00"
			}
			res, err := f.svc.CreateOrGet(f.admin, req(user, d, amount, fmt.Sprintf("k-%d", i)))
			if err != nil {
				if !errors.Is(err, apperr.ErrInsufficientFunds) {
					t.Errorf("unexpected err %v", err)
				}
				return
			}
			if res.BalanceAfter < 0 {
				t.Errorf("negative snapshot %d", res.BalanceAfter)
			}
			mu.Lock()
			completed += res.Transaction.Delta()
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	w, _ := f.store.ReadByUserID(context.Background(), user)
	if w.Balance != completed || w.Balance < 0 {
		t.Errorf("balance = %d, sum of completed = %d", w.Balance, completed)
	}
}

func TestConcurrentSameKey(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)

	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "10", "same"))
			if err != nil {
				t.Errorf("unexpected err %v", err)
				return
			}
			ids <- res.Transaction.ID
		}()
	}
	wg.Wait()
	close(ids)

	var first uuid.UUID
	for id := range ids {
		if first == uuid.Nil {
			first = id
		}
		if id != first {
			t.Fatalf("two different rows for one key")
		}
	}
	if got := f.balance(t, user); got != "10.00" {
		t.Errorf("balance = %s, want 10.00", got)
	}
}

func TestPending(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)
	if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "20", "c0")); err != nil {
		t.Fatal(err)
	}

	r := req(user, model.DirectionCredit, "500.00", "p1")
	if _, err := f.svc.CreatePendingOrGet(f.admin, r); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("pending without provider err = %v", err)
	}

	r.Provider = "paystack"
	res, err := f.svc.CreatePendingOrGet(f.admin, r)
	if err != nil {
		t.Fatal(err)
	}
	m := res.Transaction
	if m.Status != model.StatusPending || m.ExternalRef == "" || m.BalanceAfter != 2000 {
		t.Errorf("pending = %+v", m)
	}
	if got := f.balance(t, user); got != "20.00" {
		t.Errorf("balance = %s, pending must not move money", got)
	}

	again, err := f.svc.CreatePendingOrGet(f.admin, r)
	if err != nil || again.Transaction.ID != m.ID {
		t.Errorf("pending replay = %+v, %v", again, err)
	}
	if _, err := f.svc.CreatePendingOrConflict(f.admin, r); !errors.Is(err, apperr.ErrAlreadyProcessed) {
		t.Errorf("err = %v", err)
	}

	debit := req(user, model.DirectionDebit, "900", "p2")
	debit.Provider = "paystack"
	if _, err := f.svc.CreatePendingOrGet(f.admin, debit); err != nil {
		t.Errorf("pending debit beyond balance must be accepted, got %v", err)
	}
}

func TestSuspendedWallet(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)
	if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "5", "c1")); err != nil {
		t.Fatal(err)
	}

	owner := session.WithActor(context.Background(), session.Actor{UserID: user})
	if _, err := f.svc.SetWalletStatus(owner, user, model.WalletSuspended); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("owner suspend err = %v", err)
	}
	if _, err := f.svc.SetWalletStatus(f.admin, user, model.WalletSuspended); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "5", "c2")); !errors.Is(err, apperr.ErrWalletSuspended) {
		t.Errorf("err = %v", err)
	}
	if res, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "5", "c1")); err != nil || !res.Replayed {
		t.Errorf("replay on suspended wallet = %+v, %v", res, err)
	}
}

func TestRollbackOnBalanceUpdateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := session.WithActor(context.Background(), session.Actor{IsAdmin: true})

	txr := storagemock.NewMockTransactor(ctrl)
	tx := storagemock.NewMockTx(ctrl)
	wallets := storagemock.NewMockWalletRepository(ctrl)
	txs := storagemock.NewMockTransactionRepository(ctrl)
	limiter := servicemock.NewMockRateLimiter(ctrl)
	audit := servicemock.NewMockAuditLog(ctrl)

	w := &model.Wallet{ID: uuid.New(), UserID: uuid.New(), Balance: 100, Status: model.WalletActive}
	boom := errors.New("boom")

	limiter.EXPECT().Consume(gomock.Any(), w.UserID, ActionCreate).Return(nil)
	txr.EXPECT().BeginTx(gomock.Any()).Return(tx, nil)
	wallets.EXPECT().TxLockByUserID(gomock.Any(), tx, w.UserID).Return(w, nil)
	txs.EXPECT().TxReadByKey(gomock.Any(), tx, w.ID, "k").Return(nil, apperr.ErrTransactionNotFound)
	txs.EXPECT().TxCreate(gomock.Any(), tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ storage.Tx, m *model.Transaction) (*model.Transaction, error) {
			if m.BalanceAfter != 60 {
				t.Errorf("snapshot = %d, want 60", m.BalanceAfter)
			}
			return m, nil
		})
	wallets.EXPECT().TxUpdateBalance(gomock.Any(), tx, w.ID, int64(60)).Return(boom)
	tx.EXPECT().Rollback().Return(nil)
	// Commit and audit must not be reached

	svc := New(txr, wallets, txs, session.Context{}, limiter, audit)
	if _, err := svc.CreateOrGet(ctx, req(w.UserID, model.DirectionDebit, "0.40", "k")); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	user := f.wallet(t)
	for i := 0; i < 5; i++ {
		if _, err := f.svc.CreateOrGet(f.admin, req(user, model.DirectionCredit, "1", fmt.Sprintf("k%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[uuid.UUID]bool{}
	q := ListQuery{Limit: 2}
	pages := 0
	for {
		p, err := f.svc.List(f.admin, user, q)
		if err != nil {
			t.Fatal(err)
		}
		pages++
		for _, m := range p.Items {
			if seen[m.ID] {
				t.Fatalf("row %s returned twice", m.ID)
			}
			seen[m.ID] = true
		}
		if p.NextCursor == "" {
			break
		}
		q.Cursor = p.NextCursor
	}

	if len(seen) != 5 || pages != 3 {
		t.Errorf("rows = %d, pages = %d", len(seen), pages)
	}

	if _, err := f.svc.List(f.admin, user, ListQuery{Cursor: "broken"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
