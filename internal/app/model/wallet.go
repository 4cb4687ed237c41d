package model

import (
	"encoding/json"
	"github.com/google/uuid"
	"time"
	"walletledger/internal/app/money"
)

type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   int64
	Currency  string
	Status    WalletStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarshalJSON implements the json.Marshaler interface.
func (w Wallet) MarshalJSON() ([]byte, error) {
	o := struct {
		ID       uuid.UUID    `json:"id"`
		UserID   uuid.UUID    `json:"user_id"`
		Balance  string       `json:"balance"`
		Currency string       `json:"currency"`
		Status   WalletStatus `json:"status"`
	}{
		ID:       w.ID,
		UserID:   w.UserID,
		Balance:  money.FormatMinorUnits(w.Balance),
		Currency: w.Currency,
		Status:   w.Status,
	}

	return json.Marshal(o)
}
