package handler

import (
	"net/http"
	"strconv"
	"time"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/model"
	"walletledger/internal/app/money"
	"walletledger/internal/app/service/ledger"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	onDuplicateReturn   = "return"
	onDuplicateConflict = "conflict"
)

type TransactionHandler struct {
	ledger *ledger.Service
}

func NewTransactionHandler(ls *ledger.Service) *TransactionHandler {
	return &TransactionHandler{
		ledger: ls,
	}
}

type createTransactionRequest struct {
	Direction      model.Direction     `json:"direction" validate:"required"`
	Amount         money.Input         `json:"amount" validate:"required"`
	IdempotencyKey string              `json:"idempotency_key" validate:"max=255"`
	ReferenceType  model.ReferenceType `json:"reference_type"`
	ReferenceID    string              `json:"reference_id" validate:"max=255"`
	Description    string              `json:"description" validate:"max=1024"`
	Provider       string              `json:"provider" validate:"max=64"`
	ExternalRef    string              `json:"external_ref" validate:"max=255"`
	AsPending      bool                `json:"as_pending"`
	OnDuplicate    string              `json:"on_duplicate" validate:"omitempty,oneof=return conflict"`
	Metadata       struct {
		Extra map[string]interface{} `json:"extra"`
	} `json:"metadata"`
}

type transactionResponse struct {
	Transaction  *model.Transaction `json:"transaction"`
	BalanceAfter string             `json:"balance_after"`
	Balance      string             `json:"balance"`
	Replayed     bool               `json:"replayed"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.Create")

	userID, err := urlUserID(r)
	if err != nil {
		writeError(w, l, err)
		return
	}

	in := createTransactionRequest{}
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

	req := ledger.Request{
		UserID:         userID,
		Direction:      in.Direction,
		Amount:         in.Amount,
		IdempotencyKey: in.IdempotencyKey,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		Description:    in.Description,
		Provider:       in.Provider,
		ExternalRef:    in.ExternalRef,
		Extra:          in.Metadata.Extra,
	}

	var res *ledger.Result
	switch {
	case in.AsPending && in.OnDuplicate == onDuplicateConflict:
		res, err = h.ledger.CreatePendingOrConflict(ctx, req)
	case in.AsPending:
		res, err = h.ledger.CreatePendingOrGet(ctx, req)
	case in.OnDuplicate == onDuplicateConflict:
		res, err = h.ledger.CreateOrConflict(ctx, req)
	default:
		res, err = h.ledger.CreateOrGet(ctx, req)
	}
	if err != nil {
		writeError(w, l, err)
		return
	}

	status := http.StatusCreated
	switch {
	case res.Replayed:
		status = http.StatusOK
	case in.AsPending:
		status = http.StatusAccepted
	}

	WriteResponse(w, transactionResponse{
		Transaction:  res.Transaction,
		BalanceAfter: money.FormatMinorUnits(res.BalanceAfter),
		Balance:      money.FormatMinorUnits(res.Balance),
		Replayed:     res.Replayed,
	}, status)
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Transaction.List")

	userID, err := urlUserID(r)
	if err != nil {
		writeError(w, l, err)
		return
	}

	q, err := listQuery(r)
	if err != nil {
		writeError(w, l, err)
		return
	}

	page, err := h.ledger.List(ctx, userID, q)
	if err != nil {
		writeError(w, l, err)
		return
	}

	l.Debug().Msgf("response json: %s", jsonString(page))

	WriteResponse(w, page, http.StatusOK)
}

func listQuery(r *http.Request) (ledger.ListQuery, error) {
	v := r.URL.Query()
	q := ledger.ListQuery{
		Cursor: v.Get("cursor"),
	}

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, apperr.ErrInvalidInput.With("limit", s)
		}
		q.Limit = n
	}

	if s := v.Get("direction"); s != "" {
		d := model.Direction(s)
		if !d.Valid() {
			return q, apperr.ErrInvalidInput.With("direction", s)
		}
		q.Direction = d
	}

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, apperr.ErrInvalidInput.With(p.name, s)
		}
		*p.dst = t
	}

	return q, nil
}
