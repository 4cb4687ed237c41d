package session

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"walletledger/internal/app/apperr"
)

var ErrInvalidToken = errors.New("invalid token")

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
}

type Creator interface {
	// Create signed token for actor
	Create(ctx context.Context, a Actor) (string, error)
}

type Reader interface {
	// Read actor from signed token
	Read(ctx context.Context, token string) (*Actor, error)
}

type Manager interface {
	Creator
	Reader
}

type contextKeyActor struct{}

// WithActor stores the caller in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKeyActor{}, a)
}

// Context resolves the caller from the request context.
type Context struct{}

func (Context) CurrentActor(ctx context.Context) (Actor, error) {
	if a, ok := ctx.Value(contextKeyActor{}).(Actor); ok {
		return a, nil
	}
	return Actor{}, apperr.ErrUnauthorized
}
