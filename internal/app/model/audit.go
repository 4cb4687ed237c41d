package model

import (
	"github.com/google/uuid"
	"time"
)

// AuditEntry records a state changing call.
type AuditEntry struct {
	UserID   uuid.UUID         `json:"user_id,omitempty"`
	WalletID uuid.UUID         `json:"wallet_id,omitempty"`
	Action   string            `json:"action"`
	Meta     map[string]string `json:"meta,omitempty"`
	At       time.Time         `json:"at"`
}
