package handler

import (
	"github.com/google/uuid"
	"net/http"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/money"
	"walletledger/internal/app/service/transfer"
)

type TransferHandler struct {
	transfers *transfer.Coordinator
}

func NewTransferHandler(tc *transfer.Coordinator) *TransferHandler {
	return &TransferHandler{
		transfers: tc,
	}
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transfer.Create")

	in := struct {
		FromUserID     uuid.UUID   `json:"from_user_id" validate:"required"`
		ToUserID       uuid.UUID   `json:"to_user_id" validate:"required"`
		Amount         money.Input `json:"amount" validate:"required"`
		IdempotencyKey string      `json:"idempotency_key" validate:"max=255"`
		Description    string      `json:"description" validate:"max=1024"`
	}{}

	if err := readBody(r, &in); err != nil {
		writeError(w, l, err)
		return
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)
	}

	if !validateData(w, in) {
		return
	}

	res, err := h.transfers.Transfer(ctx, transfer.Request{
		FromUserID:     in.FromUserID,
		ToUserID:       in.ToUserID,
		Amount:         in.Amount,
		IdempotencyKey: in.IdempotencyKey,
		Description:    in.Description,
	})
	if err != nil {
		writeError(w, l, err)
		return
	}

	out := struct {
		*transfer.Result
		FromBalanceAfter string `json:"from_balance_after"`
		ToBalanceAfter   string `json:"to_balance_after"`
	}{
		Result:           res,
		FromBalanceAfter: money.FormatMinorUnits(res.FromBalanceAfter),
		ToBalanceAfter:   money.FormatMinorUnits(res.ToBalanceAfter),
	}

	WriteResponse(w, out, http.StatusCreated)
}
