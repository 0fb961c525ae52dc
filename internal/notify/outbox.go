package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// OutboxStore tracks delivery of email_outbox rows.
type OutboxStore struct {
	db *sql.DB
}

func NewOutboxStore(db *sql.DB) *OutboxStore {
	return &OutboxStore{db: db}
}

// MarkSent stamps sent_at once; repeated deliveries of the same message are harmless.
func (s *OutboxStore) MarkSent(ctx context.Context, outboxID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE email_outbox
		SET sent_at = NOW()
		WHERE public_id = $1 AND sent_at IS NULL`, outboxID)
	if err != nil {
		return fmt.Errorf("mark outbox %s sent: %w", outboxID, err)
	}
	return nil
}

// DeliveringNotifier sends through a transport and then marks the outbox row sent.
type DeliveringNotifier struct {
	transport Notifier
	outbox    *OutboxStore
}

func NewDeliveringNotifier(transport Notifier, outbox *OutboxStore) *DeliveringNotifier {
	return &DeliveringNotifier{transport: transport, outbox: outbox}
}

// Notify returns an error only when the transport fails. Once the email is out,
// a failed MarkSent is logged and swallowed so a consumer never resends it.
func (n *DeliveringNotifier) Notify(ctx context.Context, msg EmailMessage) error {
	if err := n.transport.Notify(ctx, msg); err != nil {
		return err
	}
	if err := n.outbox.MarkSent(ctx, msg.OutboxID); err != nil {
		log.Printf("[MAILER] Outbox %s delivered but not marked sent: %v", msg.OutboxID, err)
	}
	return nil
}
