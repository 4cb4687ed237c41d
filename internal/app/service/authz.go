package service

import (
	"context"
	"github.com/google/uuid"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/session"
)

// RequireOwner lets through the owner of userID's wallet and admins.
func RequireOwner(ctx context.Context, id Identity, userID uuid.UUID) (session.Actor, error) {
	a, err := id.CurrentActor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsAdmin && a.UserID != userID {
		return a, apperr.ErrForbidden
	}
	return a, nil
}

// RequireAdmin lets through admins only.
func RequireAdmin(ctx context.Context, id Identity) (session.Actor, error) {
	a, err := id.CurrentActor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsAdmin {
		return a, apperr.ErrForbidden
	}
	return a, nil
}
