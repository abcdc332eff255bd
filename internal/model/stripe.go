package model

import "encoding/json"

// Processor event types the settlement core reacts to.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

type StripeEventData struct {
	Object StripePaymentIntent `json:"object"`
}

type StripePaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
}

type StripeWebhookEvent struct {
	ID        string          `json:"id"`
	EventType string          `json:"type"`
	Created   int64           `json:"created"`
	Data      StripeEventData `json:"data"`
}

// ProcessorEvent is the closed variant the boundary decodes raw webhook
// payloads into. Exactly one of Succeeded/Failed is set; neither means the
// event type is unhandled and gets acknowledged without side effects.
type ProcessorEvent struct {
	EventID   string
	EventType string
	Succeeded *PaymentSucceeded
	Failed    *PaymentFailed
}

type PaymentSucceeded struct {
	PaymentRef string
}

type PaymentFailed struct {
	PaymentRef string
	Reason     string
}

// DecodeProcessorEvent parses a verified webhook payload once, at the
// boundary. Unknown event types decode to an event with neither variant set.
func DecodeProcessorEvent(payload []byte) (*ProcessorEvent, error) {
	var raw StripeWebhookEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	ev := &ProcessorEvent{
		EventID:   raw.ID,
		EventType: raw.EventType,
	}

	switch raw.EventType {
	case EventPaymentSucceeded:
		ev.Succeeded = &PaymentSucceeded{PaymentRef: raw.Data.Object.ID}
	case EventPaymentFailed:
		ev.Failed = &PaymentFailed{
			PaymentRef: raw.Data.Object.ID,
			Reason:     raw.Data.Object.Status,
		}
	}

	return ev, nil
}
