package ledger

import (
	"context"
	"github.com/google/uuid"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/model"
	"walletledger/internal/app/service"
	"walletledger/internal/app/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

type ListQuery struct {
	Cursor    string
	Limit     int
	Direction model.Direction
	From      time.Time
	To        time.Time
}

type Page struct {
	Items      []*model.Transaction `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// List returns transactions of user newest first, one keyset page at a time.
func (s *Service) List(ctx context.Context, userID uuid.UUID, q ListQuery) (*Page, error) {
	if _, err := service.RequireOwner(ctx, s.identity, userID); err != nil {
		return nil, err
	}

	f := storage.TransactionFilter{
		Direction: q.Direction,
		From:      q.From,
		To:        q.To,
		Limit:     q.Limit,
	}

	if f.Direction != "" && !f.Direction.Valid() {
		return nil, apperr.ErrInvalidInput.With("direction", string(f.Direction))
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if q.Cursor != "" {
		c, err := model.ParseCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		f.Cursor = c
	}

	limit := f.Limit
	f.Limit++

	items, err := s.txs.List(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	p := &Page{Items: items}
	if len(items) > limit {
		p.Items = items[:limit]
		last := p.Items[limit-1]
		p.NextCursor = model.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.String()
	}

	return p, nil
}
