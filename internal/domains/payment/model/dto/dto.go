package dto

type CheckoutResponse struct {
	BookingID string `json:"booking_id"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Amount    int64  `json:"amount"`
}

type VerifyPaymentResponse struct {
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
	SessionStatus string `json:"session_status,omitempty"`
	Reconciled    bool   `json:"reconciled"`
	Message       string `json:"message"`
}

type RefundRequest struct {
	Kind string `json:"kind" validate:"required,oneof=full partial"`
}

type RefundResponse struct {
	BookingID     string `json:"booking_id"`
	Kind          string `json:"kind"`
	Amount        int64  `json:"amount"`
	PaymentStatus string `json:"payment_status"`
	RefundID      string `json:"refund_id,omitempty"`
}

type WebhookResponse struct {
	EventID    string `json:"event_id"`
	BookingID  string `json:"booking_id,omitempty"`
	Reconciled bool   `json:"reconciled"`
}
