package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
)

const outboxColumns = `id, event_type, payload, status, error_message, retry_count, retry_at, created_at, processed_at, updated_at`

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (` + outboxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.ErrorMessage,
		event.RetryCount,
		event.RetryAt,
		event.CreatedAt,
		event.ProcessedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// GetPendingEvents returns due pending and retry events, oldest first.
func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM outbox_events
		WHERE status IN ($1, $2)
		AND (retry_at IS NULL OR retry_at <= $3)
		ORDER BY created_at ASC
		LIMIT $4
	`
	events := make([]*model.OutboxEvent, 0)
	err := r.db.SelectContext(ctx, &events, query,
		model.OutboxStatusPending,
		model.OutboxStatusRetry,
		time.Now().UTC(),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = $2, updated_at = $2, error_message = NULL
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return requireAffected(result, "outbox event")
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = $1, error_message = $2, retry_at = $3, retry_count = retry_count + 1, updated_at = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusRetry, errMsg, retryAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to schedule event retry: %w", err)
	}
	return requireAffected(result, "outbox event")
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE outbox_events
		SET status = $1, error_message = $2, retry_count = retry_count + 1, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusFailed, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return requireAffected(result, "outbox event")
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = $1
		AND processed_at < $2
	`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}

	return result.RowsAffected()
}
