package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	txcontext "adopsi/pkg/platform/tx"
)

// PostgresStore implements Store using the transactional outbox pattern:
// events are written to the audit_outbox table in the caller's transaction
// when one is open, and the relay worker publishes them to Kafka afterwards.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// Event so the consumer can deserialize without a translation table.
type outboxPayload struct {
	ID          string `json:"ID"`
	Action      string `json:"Action"`
	Timestamp   string `json:"Timestamp"`
	ActorID     string `json:"ActorID,omitempty"`
	SubjectType string `json:"SubjectType,omitempty"`
	SubjectID   string `json:"SubjectID,omitempty"`
	Reason      string `json:"Reason,omitempty"`
	RequestID   string `json:"RequestID,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := uuid.New()

	payload := outboxPayload{
		ID:          eventID.String(),
		Action:      string(event.Action),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		SubjectType: event.SubjectType,
		SubjectID:   event.SubjectID,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := event.SubjectType
	aggregateID := event.SubjectID
	if aggregateType == "" {
		aggregateType = "audit"
		aggregateID = eventID.String()
	}

	const query = `
		INSERT INTO audit_outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID, aggregateType, aggregateID, string(event.Action), payloadBytes, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}
