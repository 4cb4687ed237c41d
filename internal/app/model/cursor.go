package model

import (
	"github.com/google/uuid"
	"strings"
	"time"
	"walletledger/internal/app/apperr"
)

// Cursor is a keyset position in a listing ordered by (created_at desc, id desc).
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func (c Cursor) String() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
}

// ParseCursor decodes "<timestamp>|<id>", splitting on the first separator.
func ParseCursor(s string) (*Cursor, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return nil, apperr.ErrInvalidInput.With("cursor", s)
	}

	at, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, apperr.ErrInvalidInput.With("cursor", s)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, apperr.ErrInvalidInput.With("cursor", s)
	}

	return &Cursor{CreatedAt: at, ID: id}, nil
}
