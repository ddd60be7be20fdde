package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
	"github.com/jwalitptl/hivcare-api/pkg/messaging"
	"github.com/jwalitptl/hivcare-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// RetryAttempts is the number of publish attempts before an event is
	// marked failed.
	RetryAttempts int
	// RetryDelay is the base backoff; it doubles with every failed attempt.
	RetryDelay time.Duration
	Channel    string
}

func (c OutboxProcessorConfig) validate() error {
	var errs []error
	if c.BatchSize <= 0 {
		errs = append(errs, errors.New("BatchSize must be greater than 0"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("PollInterval must be greater than 0"))
	}
	if c.RetryAttempts <= 0 {
		errs = append(errs, errors.New("RetryAttempts must be greater than 0"))
	}
	if c.RetryDelay <= 0 {
		errs = append(errs, errors.New("RetryDelay must be greater than 0"))
	}
	if c.Channel == "" {
		errs = append(errs, errors.New("Channel is required"))
	}
	return errors.Join(errs...)
}

// OutboxProcessor publishes pending outbox events to the broker.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid outbox processor config: %w", err)
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting outbox processor", "channel", p.config.Channel)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "Failed to process events")
			}
		}
	}
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingEvents(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()
	p.metrics.OutboxQueueSize.Set(float64(len(events)))

	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "Failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	data, err := messaging.Message{
		ID:         event.ID,
		Type:       event.EventType,
		Payload:    event.Payload,
		OccurredAt: event.CreatedAt,
	}.Encode()
	if err != nil {
		// A payload that cannot be encoded will never succeed.
		return p.fail(ctx, event, fmt.Errorf("failed to encode message: %w", err))
	}

	if err := p.broker.Publish(ctx, p.config.Channel, data); err != nil {
		return p.retryOrFail(ctx, event, err)
	}

	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("mark_processed", "error").Inc()
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("mark_processed", "success").Inc()
	p.metrics.OutboxEventsProcessed.Inc()
	return nil
}

func (p *OutboxProcessor) retryOrFail(ctx context.Context, event *model.OutboxEvent, publishErr error) error {
	attempt := event.RetryCount + 1
	if attempt >= p.config.RetryAttempts {
		return p.fail(ctx, event, publishErr)
	}

	retryAt := p.now().Add(p.backoff(event.RetryCount))
	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	if err := p.repo.MarkRetry(ctx, event.ID, publishErr.Error(), retryAt); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	p.logger.Warn("Publish failed, retry scheduled",
		"event_id", event.ID.String(),
		"attempt", attempt,
		"retry_at", retryAt)
	return nil
}

func (p *OutboxProcessor) fail(ctx context.Context, event *model.OutboxEvent, cause error) error {
	p.metrics.OutboxEventsFailed.Inc()
	if err := p.repo.MarkFailed(ctx, event.ID, cause.Error()); err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return cause
}

// backoff returns RetryDelay * 2^retries, capped at one hour.
func (p *OutboxProcessor) backoff(retries int) time.Duration {
	d := p.config.RetryDelay
	for i := 0; i < retries && d < time.Hour; i++ {
		d *= 2
	}
	if d > time.Hour {
		d = time.Hour
	}
	return d
}
