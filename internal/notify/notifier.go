package notify

import (
	"context"
	"encoding/json"
	"time"
)

const KindMagicLink = "magic_link"

// EmailMessage is an outbound email. Body may carry a sign-in secret, so it is
// only ever handed to a transport and never persisted or logged.
type EmailMessage struct {
	OutboxID  string    `json:"outbox_id"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *EmailMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EmailMessageFromJSON(data []byte) (*EmailMessage, error) {
	var msg EmailMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Notifier delivers or enqueues an email.
type Notifier interface {
	Notify(ctx context.Context, msg EmailMessage) error
}
