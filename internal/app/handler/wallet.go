package handler

import (
	"net/http"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/service/ledger"
)

type WalletHandler struct {
	ledger *ledger.Service
}

func NewWalletHandler(ls *ledger.Service) *WalletHandler {
	return &WalletHandler{
		ledger: ls,
	}
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.Balance")

	userID, err := urlUserID(r)
	if err != nil {
		writeError(w, l, err)
		return
	}

	wallet, err := h.ledger.Balance(ctx, userID)
	if err != nil {
		writeError(w, l, err)
		return
	}

	WriteResponse(w, wallet, http.StatusOK)
}

func (h *WalletHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.Ensure")

	userID, err := urlUserID(r)
	if err != nil {
		writeError(w, l, err)
		return
	}

	wallet, err := h.ledger.EnsureWallet(ctx, userID)
	if err != nil {
		writeError(w, l, err)
		return
	}

	WriteResponse(w, wallet, http.StatusOK)
}

func (h *WalletHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Wallet.SetStatus")

	userID, err := urlUserID(r)
	if err != nil {
		writeError(w, l, err)
		return
	}

	in := struct {
		Status model.WalletStatus `json:"status" validate:"required"`
	}{}

	if err := readBody(r, &in); err != nil {
		writeError(w, l, err)
		return
	}

	if !validateData(w, in) {
		return
	}

	wallet, err := h.ledger.SetWalletStatus(ctx, userID, in.Status)
	if err != nil {
		writeError(w, l, err)
		return
	}

	l.Info().Str("user_id", userID.String()).Str("status", string(in.Status)).Msg("Wallet status changed")

	WriteResponse(w, wallet, http.StatusOK)
}
