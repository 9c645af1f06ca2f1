package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nakawin/casino-backend/pkg/config"
	"github.com/nakawin/casino-backend/pkg/db/models"
	"github.com/nakawin/casino-backend/pkg/enums"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/outbox/payloads"
	"github.com/nakawin/casino-backend/pkg/outbox/registry"
)

// The publisher drains withdrawal audit rows from the outbox table to the
// withdrawals Pub/Sub topic. Each message carries the item id as its ordering
// key so a requested event can never arrive after the matching completed
// event downstream.

const (
	defaultBatchSize      = 50
	defaultPollIntervalMS = 500
	defaultMaxAttempts    = 10
	publishTimeout        = 15 * time.Second
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(ctx context.Context) error
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type outboxRepository interface {
	FetchUnpublishedTx(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, cause error, attempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventResolver interface {
	Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisherFactory func(topic string) publisher

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pinger
	Repository       outboxRepository
	DLQRepository    dlqRepository
	Registry         eventResolver
	PublisherFactory publisherFactory
}

type Service struct {
	cfg              *config.Config
	logg             *logger.Logger
	db               dbClient
	pubsub           pinger
	repo             outboxRepository
	dlq              dlqRepository
	registry         eventResolver
	publisherFactory publisherFactory
	publishers       map[string]publisher

	batchSize    int
	pollInterval time.Duration
	maxAttempts  int
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.DLQRepository == nil {
		return nil, errors.New("dlq repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("event registry is required")
	}
	if params.PublisherFactory == nil {
		return nil, errors.New("publisher factory is required")
	}

	batchSize := params.Config.Outbox.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	pollMS := params.Config.Outbox.PollIntervalMS
	if pollMS <= 0 {
		pollMS = defaultPollIntervalMS
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:              params.Config,
		logg:             params.Logger,
		db:               params.DB,
		pubsub:           params.PubSub,
		repo:             params.Repository,
		dlq:              params.DLQRepository,
		registry:         params.Registry,
		publisherFactory: params.PublisherFactory,
		publishers:       make(map[string]publisher),
		batchSize:        batchSize,
		pollInterval:     time.Duration(pollMS) * time.Millisecond,
		maxAttempts:      maxAttempts,
	}, nil
}

// Run drains batches until the context ends. Batch errors back off with
// jitter instead of stopping the loop; only readiness failures are fatal.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub not ready: %w", err)
	}

	backoff := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		drained, err := s.drainBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "withdrawal audit batch failed", err)
			backoff = nextBackoff(backoff)
		} else {
			backoff = s.pollInterval
			if drained {
				// rows remained after the last fetch, keep going
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(withJitter(backoff)):
		}
	}
}

// drainBatch claims one batch of unpublished audit rows inside a transaction
// and publishes them. It reports whether any rows were claimed so Run can
// skip the poll sleep while a backlog exists.
func (s *Service) drainBatch(ctx context.Context) (bool, error) {
	var drained bool
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedTx(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetch unpublished audit rows: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		drained = true

		for _, event := range events {
			if err := s.publishEvent(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return drained, err
}

func (s *Service) publishEvent(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			// the row can never decode, the audit record goes straight to the DLQ
			return s.deadLetter(ctx, tx, event, enums.DLQReasonNonRetryable, err)
		}
		if markErr := s.repo.MarkFailedTx(tx, event.ID, err); markErr != nil {
			return fmt.Errorf("mark audit row failed: %w", markErr)
		}
		return nil
	}

	logCtx := s.logg.WithFields(ctx, auditFields(event, resolved))

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := &gcppubsub.Message{
		Data:        event.Payload,
		OrderingKey: event.AggregateID.String(),
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
		},
	}

	result := s.topicPublisher(resolved.Descriptor.Topic).Publish(publishCtx, msg)
	if result == nil {
		return s.handlePublishFailure(logCtx, tx, event, errors.New("publisher returned no result"))
	}
	if _, err := result.Get(publishCtx); err != nil {
		return s.handlePublishFailure(logCtx, tx, event, err)
	}

	if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
		return fmt.Errorf("mark audit row published: %w", err)
	}
	s.logg.Info(logCtx, "withdrawal audit event published")
	return nil
}

func (s *Service) handlePublishFailure(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, cause error) error {
	attempts := event.AttemptCount + 1
	if attempts >= s.maxAttempts {
		return s.deadLetter(ctx, tx, event, enums.DLQReasonMaxAttempts, cause)
	}
	if err := s.repo.MarkFailedTx(tx, event.ID, cause); err != nil {
		return fmt.Errorf("mark audit row failed: %w", err)
	}
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
		"attempt": attempts,
		"cause":   cause.Error(),
	}), "withdrawal audit publish failed, will retry")
	return nil
}

func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &message,
		AttemptCount:  event.AttemptCount,
	}
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("dead-letter audit row: %w", err)
	}
	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark audit row terminal: %w", err)
	}
	s.logg.Error(s.logg.WithFields(ctx, map[string]any{
		"event_id":   event.ID.String(),
		"event_type": event.EventType,
		"item_id":    event.AggregateID.String(),
		"reason":     reason,
	}), "withdrawal audit event dead-lettered", cause)
	return nil
}

func (s *Service) topicPublisher(topic string) publisher {
	if pub, ok := s.publishers[topic]; ok {
		return pub
	}
	pub := s.publisherFactory(topic)
	s.publishers[topic] = pub
	return pub
}

// auditFields extracts the withdrawal identifiers worth logging per event.
func auditFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"event_id":   resolved.Envelope.EventID,
		"event_type": event.EventType,
		"item_id":    event.AggregateID.String(),
	}
	switch payload := resolved.Payload.(type) {
	case *payloads.WithdrawalRequestedEvent:
		fields["user_id"] = payload.UserID.String()
		fields["item_value"] = payload.ItemValue
		fields["rarity"] = payload.Rarity
	case *payloads.WithdrawalCompletedEvent:
		fields["user_id"] = payload.UserID.String()
		fields["completed_by"] = payload.CompletedBy.String()
	}
	return fields
}

func nextBackoff(current time.Duration) time.Duration {
	doubled := current * 2
	if doubled > maxBackoff {
		return maxBackoff
	}
	return doubled
}

func withJitter(d time.Duration) time.Duration {
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

// gcpPublisher adapts the Pub/Sub v2 publisher so tests can substitute a fake.
type gcpPublisher struct {
	pub *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p.pub == nil {
		return nil
	}
	return p.pub.Publish(ctx, msg)
}
