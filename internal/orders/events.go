package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type LineSnapshot struct {
	ProductID      string `json:"product_id"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
}

type OrderPlacedPayload struct {
	OrderID    string         `json:"order_id"`
	UserID     string         `json:"user_id"`
	TotalCents int            `json:"total_cents"`
	Lines      []LineSnapshot `json:"lines"`
}

// Dikirim collaborator fulfillment; dikonsumsi cmd/statusworker.
type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
	Reason  string `json:"reason,omitempty"`
}
