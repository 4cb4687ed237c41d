package model

import (
	"database/sql/driver"
	"fmt"
	"walletledger/internal/app/apperr"
)

// Direction of a ledger entry.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

func (d *Direction) UnmarshalText(b []byte) error {
	v := Direction(b)
	if !v.Valid() {
		return apperr.ErrInvalidInput.With("direction", string(b))
	}
	*d = v
	return nil
}

func (d *Direction) Scan(src interface{}) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d Direction) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid direction %q", string(d))
	}
	return string(d), nil
}

// Status of a ledger entry. COMPLETED and FAILED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s *Status) UnmarshalText(b []byte) error {
	v := Status(b)
	if !v.Valid() {
		return apperr.ErrInvalidInput.With("status", string(b))
	}
	*s = v
	return nil
}

func (s *Status) Scan(src interface{}) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %q", string(s))
	}
	return string(s), nil
}

// ReferenceType classifies what a ledger entry pays for.
type ReferenceType string

const (
	ReferenceOrder      ReferenceType = "ORDER"
	ReferencePayout     ReferenceType = "PAYOUT"
	ReferenceAdjustment ReferenceType = "ADJUSTMENT"
)

func (r ReferenceType) Valid() bool {
	switch r {
	case ReferenceOrder, ReferencePayout, ReferenceAdjustment:
		return true
	}
	return false
}

func (r *ReferenceType) UnmarshalText(b []byte) error {
	v := ReferenceType(b)
	if !v.Valid() {
		return apperr.ErrInvalidInput.With("reference_type", string(b))
	}
	*r = v
	return nil
}

func (r *ReferenceType) Scan(src interface{}) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	return r.UnmarshalText([]byte(s))
}

func (r ReferenceType) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid reference type %q", string(r))
	}
	return string(r), nil
}

// WalletStatus is the lifecycle state of a wallet.
type WalletStatus string

const (
	WalletActive    WalletStatus = "ACTIVE"
	WalletSuspended WalletStatus = "SUSPENDED"
)

func (s WalletStatus) Valid() bool {
	return s == WalletActive || s == WalletSuspended
}

func (s *WalletStatus) UnmarshalText(b []byte) error {
	v := WalletStatus(b)
	if !v.Valid() {
		return apperr.ErrInvalidInput.With("status", string(b))
	}
	*s = v
	return nil
}

func (s *WalletStatus) Scan(src interface{}) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

func (s WalletStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid wallet status %q", string(s))
	}
	return string(s), nil
}

func scanString(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported scan type %T", src)
}
