package ledger

import (
	"context"
	"github.com/google/uuid"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/service"
)

// Balance returns the wallet of user, creating an empty one on first access.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	if _, err := service.RequireOwner(ctx, s.identity, userID); err != nil {
		return nil, err
	}

	w, err := s.wallets.Ensure(ctx, userID, s.currency)
	if err != nil {
		l := logger.Get(ctx, s)
		l.Error().Err(err).Str("user_id", userID.String()).Msg("Wallet ensure failed")
		return nil, err
	}

	return w, nil
}

// EnsureWallet creates the wallet of user unless it exists.
func (s *Service) EnsureWallet(ctx context.Context, userID uuid.UUID) (*model.Wallet, error) {
	a, err := service.RequireOwner(ctx, s.identity, userID)
	if err != nil {
		return nil, err
	}

	w, err := s.wallets.Ensure(ctx, userID, s.currency)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, model.AuditEntry{
		UserID:   userID,
		WalletID: w.ID,
		Action:   ActionEnsure,
		Meta:     map[string]string{"actor_id": a.UserID.String()},
		At:       s.now(),
	})

	return w, nil
}

// SetWalletStatus suspends or reactivates a wallet. Admin only.
func (s *Service) SetWalletStatus(ctx context.Context, userID uuid.UUID, status model.WalletStatus) (*model.Wallet, error) {
	a, err := service.RequireAdmin(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.ErrInvalidInput.With("status", string(status))
	}

	w, err := s.wallets.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	l := logger.Get(ctx, s)
	l.Info().
		Str("user_id", userID.String()).
		Str("status", string(status)).
		Msg("Wallet status changed")

	s.audit.Record(ctx, model.AuditEntry{
		UserID:   userID,
		WalletID: w.ID,
		Action:   ActionStatus,
		Meta: map[string]string{
			"actor_id": a.UserID.String(),
			"status":   string(status),
		},
		At: s.now(),
	})

	return w, nil
}
