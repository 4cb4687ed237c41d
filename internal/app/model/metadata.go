package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"time"
)

// Metadata holds the known annotation shapes of a ledger entry. At most one
// reference shape is set, Webhook is added on reconciliation and Extra keeps
// provider specific fields.
type Metadata struct {
	Order      *OrderRef              `json:"order,omitempty"`
	Payout     *PayoutRef             `json:"payout,omitempty"`
	Adjustment *AdjustmentRef         `json:"adjustment,omitempty"`
	Transfer   *TransferInfo          `json:"transfer,omitempty"`
	Webhook    *WebhookInfo           `json:"webhook,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

type OrderRef struct {
	OrderID string `json:"order_id"`
}

type PayoutRef struct {
	PayoutID string `json:"payout_id"`
}

type AdjustmentRef struct {
	Reason string `json:"reason,omitempty"`
}

type TransferInfo struct {
	GroupID           string    `json:"group_id"`
	CounterpartUserID uuid.UUID `json:"counterpart_user_id"`
}

type WebhookInfo struct {
	RawStatus    string          `json:"raw_status"`
	ConfirmedAt  time.Time       `json:"confirmed_at"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	FailedReason string          `json:"failed_reason,omitempty"`
}

// MetadataFor returns metadata with the reference shape matching refType.
func MetadataFor(refType ReferenceType, refID, description string) Metadata {
	switch refType {
	case ReferenceOrder:
		return Metadata{Order: &OrderRef{OrderID: refID}}
	case ReferencePayout:
		return Metadata{Payout: &PayoutRef{PayoutID: refID}}
	}
	return Metadata{Adjustment: &AdjustmentRef{Reason: description}}
}

// Scan implements the sql.Scanner interface.
func (m *Metadata) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}

	*m = Metadata{}
	return json.Unmarshal(b, m)
}

// Value implements the driver.Valuer interface.
func (m Metadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
