package model

import (
	"encoding/json"
	"github.com/google/uuid"
	"time"
	"walletledger/internal/app/money"
)

// Transaction is an append-only ledger entry.
type Transaction struct {
	ID             uuid.UUID
	WalletID       uuid.UUID
	UserID         uuid.UUID
	Direction      Direction
	Status         Status
	Amount         int64
	BalanceAfter   int64
	ReferenceType  ReferenceType
	ReferenceID    string
	IdempotencyKey string
	Provider       string
	ExternalRef    string
	GroupID        string
	Metadata       Metadata
	Description    string
	CreatedAt      time.Time
}

// Delta is the signed balance effect of the entry once completed.
func (t *Transaction) Delta() int64 {
	if t.Direction == DirectionDebit {
		return -t.Amount
	}
	return t.Amount
}

// MarshalJSON implements the json.Marshaler interface.
func (t Transaction) MarshalJSON() ([]byte, error) {
	o := struct {
		ID             uuid.UUID     `json:"id"`
		WalletID       uuid.UUID     `json:"wallet_id"`
		UserID         uuid.UUID     `json:"user_id"`
		Direction      Direction     `json:"direction"`
		Status         Status        `json:"status"`
		Amount         string        `json:"amount"`
		BalanceAfter   string        `json:"balance_after"`
		ReferenceType  ReferenceType `json:"reference_type"`
		ReferenceID    string        `json:"reference_id,omitempty"`
		IdempotencyKey string        `json:"idempotency_key"`
		Provider       string        `json:"provider,omitempty"`
		ExternalRef    string        `json:"external_ref,omitempty"`
		GroupID        string        `json:"group_id,omitempty"`
		Metadata       Metadata      `json:"metadata"`
		Description    string        `json:"description,omitempty"`
		CreatedAt      time.Time     `json:"created_at"`
	}{
		ID:             t.ID,
		WalletID:       t.WalletID,
		UserID:         t.UserID,
		Direction:      t.Direction,
		Status:         t.Status,
		Amount:         money.FormatMinorUnits(t.Amount),
		BalanceAfter:   money.FormatMinorUnits(t.BalanceAfter),
		ReferenceType:  t.ReferenceType,
		ReferenceID:    t.ReferenceID,
		IdempotencyKey: t.IdempotencyKey,
		Provider:       t.Provider,
		ExternalRef:    t.ExternalRef,
		GroupID:        t.GroupID,
		Metadata:       t.Metadata,
		Description:    t.Description,
		CreatedAt:      t.CreatedAt,
	}

	return json.Marshal(o)
}
