//go:generate mockgen -source=./interface.go -destination=./mock/service.go -package=servicemock
package service

import (
	"context"
	"github.com/google/uuid"
	"walletledger/internal/app/model"
	"walletledger/internal/app/session"
)

type Identity interface {
	// CurrentActor returns the caller bound to ctx, apperr.ErrUnauthorized if none
	CurrentActor(ctx context.Context) (session.Actor, error)
}

type RateLimiter interface {
	// Consume one call of action by user, apperr.ErrThrottled when the budget is spent
	Consume(ctx context.Context, userID uuid.UUID, action string) error
}

type AuditLog interface {
	// Record entry, never blocks the caller
	Record(ctx context.Context, e model.AuditEntry)
}
