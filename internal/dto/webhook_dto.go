package dto

// PaddleWebhookRequest carries the fields this service reads from Paddle
// webhook payloads. Paddle classic alerts use alert_name/alert_id; the newer
// billing events use event_type/id. Numeric fields arrive as strings on the
// wire and are parsed leniently by the processor.
type PaddleWebhookRequest struct {
	AlertName string `json:"alert_name"`
	EventType string `json:"event_type"`
	AlertId   string `json:"alert_id"`
	Id        string `json:"id"`

	SubscriptionId     string `json:"subscription_id"`
	UserEmail          string `json:"user_email"`
	SubscriptionPlanId string `json:"subscription_plan_id"`
	Status             string `json:"status"`

	NextBillDate              string `json:"next_bill_date"`
	CancelledAt               string `json:"cancelled_at"`
	CancellationEffectiveDate string `json:"cancellation_effective_date"`
	NextRetryDate             string `json:"next_retry_date"`

	UnitPrice string `json:"unit_price"`
	Currency  string `json:"currency"`
	Quantity  string `json:"quantity"`
	Amount    string `json:"amount"`

	Passthrough  string `json:"passthrough"`
	RefundReason string `json:"refund_reason"`
}

// Name returns the event name regardless of which alert scheme sent it.
func (r *PaddleWebhookRequest) Name() string {
	if r.AlertName != "" {
		return r.AlertName
	}
	return r.EventType
}

// EventId returns the provider's event id, used as the idempotency key.
func (r *PaddleWebhookRequest) EventId() string {
	if r.AlertId != "" {
		return r.AlertId
	}
	return r.Id
}

type WebhookAckResponse struct {
	Success bool `json:"success"`
}
