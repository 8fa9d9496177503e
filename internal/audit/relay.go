package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultRelayInterval  = 2 * time.Second
	defaultRelayBatchSize = 100
)

// Relay drains the audit outbox to Kafka. It is an optional background
// worker: without brokers configured the outbox simply accumulates in
// Postgres, and the service keeps working.
//
// Rows are claimed with FOR UPDATE SKIP LOCKED so multiple relay instances
// never publish the same event twice (at-least-once across crashes: a row is
// only marked published after the produce acks).
type Relay struct {
	db        *sql.DB
	client    *kgo.Client
	topic     string
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewRelay connects to Kafka and makes sure the audit topic exists.
func NewRelay(db *sql.DB, brokers []string, topic string, logger *slog.Logger) (*Relay, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin := kadm.NewClient(client)
	responses, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", err)
	}
	for _, resp := range responses {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("create audit topic %s: %w", resp.Topic, resp.Err)
		}
	}

	return &Relay{
		db:        db,
		client:    client,
		topic:     topic,
		logger:    logger,
		interval:  defaultRelayInterval,
		batchSize: defaultRelayBatchSize,
	}, nil
}

// Run publishes outbox batches until the context ends.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.relayBatch(ctx); err != nil {
				r.logger.ErrorContext(ctx, "audit relay batch failed", "error", err)
			}
		}
	}
}

// Close releases the Kafka client.
func (r *Relay) Close() {
	r.client.Close()
}

func (r *Relay) relayBatch(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const claim = `
		SELECT id, aggregate_id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := tx.QueryContext(ctx, claim, r.batchSize)
	if err != nil {
		return fmt.Errorf("claim outbox rows: %w", err)
	}

	var (
		ids     []uuid.UUID
		records []*kgo.Record
	)
	for rows.Next() {
		var (
			rowID       uuid.UUID
			aggregateID string
			payload     []byte
		)
		if err := rows.Scan(&rowID, &aggregateID, &payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		ids = append(ids, rowID)
		records = append(records, &kgo.Record{
			Topic: r.topic,
			Key:   []byte(aggregateID),
			Value: payload,
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	rows.Close()

	if len(records) == 0 {
		return nil
	}

	if err := r.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit events: %w", err)
	}

	const markPublished = `UPDATE audit_outbox SET published_at = now() WHERE id = ANY($1)`
	if _, err := tx.ExecContext(ctx, markPublished, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return tx.Commit()
}
