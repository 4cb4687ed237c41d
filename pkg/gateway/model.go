package gateway

// Payment outcomes reported by the gateway.
const (
	OutcomePending = "pending"
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

type CreatePaymentRequest struct {
	ExternalRef string `json:"external_ref"`
	UserID      string `json:"user_id"`
	Direction   string `json:"direction"`
	Amount      string `json:"amount"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type GetPaymentRequest struct {
	Provider    string `json:"-"`
	ExternalRef string `json:"external_ref"`
}

// PaymentResponse mirrors the callback payload posted to the ledger.
type PaymentResponse struct {
	UserID      string `json:"user_id"`
	Direction   string `json:"direction"`
	ExternalRef string `json:"external_ref"`
	Amount      string `json:"amount"`
	Outcome     string `json:"outcome"`
	Status      string `json:"status,omitempty"`
}
