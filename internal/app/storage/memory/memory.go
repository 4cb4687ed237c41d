// Package memory keeps wallets and ledger entries in process. A unit of work
// holds the store lock for its whole life and works on a copy of the state
// that Commit publishes, which gives serializable semantics without row locks.
package memory

import (
	"bytes"
	"context"
	"errors"
	"github.com/google/uuid"
	"sort"
	"sync"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/model"
	"walletledger/internal/app/storage"
)

var (
	_ storage.Transactor            = (*Store)(nil)
	_ storage.WalletRepository      = (*Store)(nil)
	_ storage.TransactionRepository = (*Store)(nil)
)

var errTxDone = errors.New("tx already committed or rolled back")

type keyRef struct {
	walletID uuid.UUID
	key      string
}

type externalRef struct {
	provider string
	ref      string
}

type state struct {
	wallets      map[uuid.UUID]model.Wallet
	walletByUser map[uuid.UUID]uuid.UUID
	txs          map[uuid.UUID]model.Transaction
	byKey        map[keyRef]uuid.UUID
	byExternal   map[externalRef]uuid.UUID
}

func newState() *state {
	return &state{
		wallets:      make(map[uuid.UUID]model.Wallet),
		walletByUser: make(map[uuid.UUID]uuid.UUID),
		txs:          make(map[uuid.UUID]model.Transaction),
		byKey:        make(map[keyRef]uuid.UUID),
		byExternal:   make(map[externalRef]uuid.UUID),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.walletByUser {
		c.walletByUser[k] = v
	}
	for k, v := range s.txs {
		c.txs[k] = v
	}
	for k, v := range s.byKey {
		c.byKey[k] = v
	}
	for k, v := range s.byExternal {
		c.byExternal[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{
		state: newState(),
		now:   time.Now,
	}
}

// Tx is a unit of work over Store.
type Tx struct {
	store *Store
	state *state
	done  bool
}

func (t *Tx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.store.state = t.state
	t.store.mu.Unlock()
	return nil
}

// Rollback discards the work. Calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

// BeginTx implementation of interface storage.Transactor
func (s *Store) BeginTx(ctx context.Context) (storage.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &Tx{store: s, state: s.state.clone()}, nil
}

func (s *Store) txState(tx storage.Tx) (*state, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errors.New("foreign tx")
	}
	if t.done {
		return nil, errTxDone
	}
	return t.state, nil
}

// Ensure implementation of interface storage.WalletRepository
func (s *Store) Ensure(ctx context.Context, userID uuid.UUID, currency string) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.state.walletByUser[userID]; ok {
		w := s.state.wallets[id]
		return &w, nil
	}

	now := s.now()
	w := model.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		Currency:  currency,
		Status:    model.WalletActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.wallets[w.ID] = w
	s.state.walletByUser[userID] = w.ID

	return &w, nil
}

// ReadByUserID implementation of interface storage.WalletRepository
func (s *Store) ReadByUserID(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.walletOf(userID)
}

// UpdateStatus implementation of interface storage.WalletRepository
func (s *Store) UpdateStatus(ctx context.Context, userID uuid.UUID, status model.WalletStatus) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.state.walletOf(userID)
	if err != nil {
		return nil, err
	}
	w.Status = status
	w.UpdatedAt = s.now()
	s.state.wallets[w.ID] = *w

	return w, nil
}

func (st *state) walletOf(userID uuid.UUID) (*model.Wallet, error) {
	id, ok := st.walletByUser[userID]
	if !ok {
		return nil, apperr.ErrWalletNotFound
	}
	w := st.wallets[id]
	return &w, nil
}

// TxLockByUserID implementation of interface storage.WalletRepository
func (s *Store) TxLockByUserID(ctx context.Context, tx storage.Tx, userID uuid.UUID) (*model.Wallet, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}
	return st.walletOf(userID)
}

// TxLockByUserIDs implementation of interface storage.WalletRepository
func (s *Store) TxLockByUserIDs(ctx context.Context, tx storage.Tx, userIDs ...uuid.UUID) ([]*model.Wallet, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}

	res := make([]*model.Wallet, 0, len(userIDs))
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if w, err := st.walletOf(id); err == nil {
			res = append(res, w)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].ID[:], res[j].ID[:]) < 0
	})

	return res, nil
}

// TxUpdateBalance implementation of interface storage.WalletRepository
func (s *Store) TxUpdateBalance(ctx context.Context, tx storage.Tx, walletID uuid.UUID, balance int64) error {
	st, err := s.txState(tx)
	if err != nil {
		return err
	}

	w, ok := st.wallets[walletID]
	if !ok {
		return apperr.ErrWalletNotFound
	}
	if balance < 0 {
		return errors.New("balance check constraint violated")
	}
	w.Balance = balance
	w.UpdatedAt = s.now()
	st.wallets[walletID] = w

	return nil
}

func (st *state) tx(id uuid.UUID, ok bool) (*model.Transaction, error) {
	if !ok {
		return nil, apperr.ErrTransactionNotFound
	}
	m, found := st.txs[id]
	if !found {
		return nil, apperr.ErrTransactionNotFound
	}
	return &m, nil
}

// TxReadByKey implementation of interface storage.TransactionRepository
func (s *Store) TxReadByKey(ctx context.Context, tx storage.Tx, walletID uuid.UUID, key string) (*model.Transaction, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}
	id, ok := st.byKey[keyRef{walletID, key}]
	return st.tx(id, ok)
}

// TxReadByExternalRef implementation of interface storage.TransactionRepository
func (s *Store) TxReadByExternalRef(ctx context.Context, tx storage.Tx, provider, ref string) (*model.Transaction, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}
	id, ok := st.byExternal[externalRef{provider, ref}]
	return st.tx(id, ok)
}

// TxLock implementation of interface storage.TransactionRepository
func (s *Store) TxLock(ctx context.Context, tx storage.Tx, id uuid.UUID) (*model.Transaction, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}
	_, ok := st.txs[id]
	return st.tx(id, ok)
}

// TxReadByGroupID implementation of interface storage.TransactionRepository
func (s *Store) TxReadByGroupID(ctx context.Context, tx storage.Tx, groupID string) ([]*model.Transaction, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}

	res := make([]*model.Transaction, 0, 2)
	for _, m := range st.txs {
		if groupID != "" && m.GroupID == groupID {
			m := m
			res = append(res, &m)
		}
	}
	sortNewestFirst(res)
	reverse(res)

	return res, nil
}

// TxCreate implementation of interface storage.TransactionRepository
func (s *Store) TxCreate(ctx context.Context, tx storage.Tx, m *model.Transaction) (*model.Transaction, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}

	if _, ok := st.wallets[m.WalletID]; !ok {
		return nil, apperr.ErrWalletNotFound
	}
	k := keyRef{m.WalletID, m.IdempotencyKey}
	if _, ok := st.byKey[k]; ok {
		return nil, apperr.ErrConflict
	}
	e := externalRef{m.Provider, m.ExternalRef}
	if m.ExternalRef != "" {
		if _, ok := st.byExternal[e]; ok {
			return nil, apperr.ErrConflict
		}
	}

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = s.now()

	st.txs[m.ID] = *m
	st.byKey[k] = m.ID
	if m.ExternalRef != "" {
		st.byExternal[e] = m.ID
	}

	return m, nil
}

// TxUpdate implementation of interface storage.TransactionRepository
func (s *Store) TxUpdate(ctx context.Context, tx storage.Tx, m *model.Transaction) (*model.Transaction, error) {
	st, err := s.txState(tx)
	if err != nil {
		return nil, err
	}

	cur, ok := st.txs[m.ID]
	if !ok {
		return nil, apperr.ErrTransactionNotFound
	}
	cur.Status = m.Status
	cur.BalanceAfter = m.BalanceAfter
	cur.Metadata = m.Metadata
	st.txs[m.ID] = cur

	return m, nil
}

// List implementation of interface storage.TransactionRepository
func (s *Store) List(ctx context.Context, userID uuid.UUID, f storage.TransactionFilter) ([]*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*model.Transaction, 0)
	for _, m := range s.state.txs {
		if m.UserID != userID {
			continue
		}
		if f.Direction != "" && m.Direction != f.Direction {
			continue
		}
		if !f.From.IsZero() && m.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && m.CreatedAt.After(f.To) {
			continue
		}
		if f.Cursor != nil && !before(m.CreatedAt, m.ID, f.Cursor.CreatedAt, f.Cursor.ID) {
			continue
		}
		m := m
		res = append(res, &m)
	}

	sortNewestFirst(res)
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}

	return res, nil
}

// ListStalePending implementation of interface storage.TransactionRepository
func (s *Store) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*model.Transaction, 0)
	for _, m := range s.state.txs {
		if m.Status == model.StatusPending && m.CreatedAt.Before(olderThan) {
			m := m
			res = append(res, &m)
		}
	}

	sortNewestFirst(res)
	reverse(res)
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}

	return res, nil
}

// before reports whether (at, id) sorts strictly before (cAt, cID) in
// ascending (created_at, id) order.
func before(at time.Time, id uuid.UUID, cAt time.Time, cID uuid.UUID) bool {
	if !at.Equal(cAt) {
		return at.Before(cAt)
	}
	return bytes.Compare(id[:], cID[:]) < 0
}

func sortNewestFirst(mm []*model.Transaction) {
	sort.Slice(mm, func(i, j int) bool {
		return before(mm[j].CreatedAt, mm[j].ID, mm[i].CreatedAt, mm[i].ID)
	})
}

func reverse(mm []*model.Transaction) {
	for i, j := 0, len(mm)-1; i < j; i, j = i+1, j-1 {
		mm[i], mm[j] = mm[j], mm[i]
	}
}
