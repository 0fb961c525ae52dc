package audit

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	Entity    string    `json:"entity,omitempty"`
	EntityID  string    `json:"entity_id,omitempty"`
	Status    string    `json:"status"`
	Details   any       `json:"details,omitempty"`
}

// AuditLogger writes one "AUDIT: {json}" line per event. Callers must never
// pass tokens, token hashes or email bodies.
type AuditLogger struct {
	logger *log.Logger
}

func NewAuditLogger() *AuditLogger {
	return NewAuditLoggerTo(os.Stderr)
}

func NewAuditLoggerTo(w io.Writer) *AuditLogger {
	return &AuditLogger{logger: log.New(w, "", log.LstdFlags)}
}

// LogMutation records a successful ledger write.
func (a *AuditLogger) LogMutation(userID, entity, entityID, operation string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: operation,
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Status:    "SUCCESS",
	})
}

// LogAuth records an authentication event such as a sign-in or logout.
func (a *AuditLogger) LogAuth(eventType, userID, status string) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Status:    status,
	})
}

func (a *AuditLogger) LogError(eventType, userID string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Status:    "FAILED",
		Details:   map[string]string{"error": err.Error()},
	})
}

func (a *AuditLogger) log(event Event) {
	if a == nil {
		return
	}
	data, _ := json.Marshal(event)
	a.logger.Printf("AUDIT: %s", string(data))
}
