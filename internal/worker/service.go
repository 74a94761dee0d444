package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox/idempotency"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

// Handler consumes one committed outbox event. Handlers must tolerate
// redelivery; the idempotency guard is best effort.
type Handler interface {
	HandleEvent(ctx context.Context, event models.OutboxEvent) error
}

// NamedHandler pairs a handler with the consumer name used for idempotency
// bookkeeping.
type NamedHandler struct {
	Name    string
	Handler Handler
}

type outboxRepository interface {
	FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

// ServiceParams carries the worker dependencies.
type ServiceParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Repository  outboxRepository
	Handlers    []NamedHandler
	Idempotency *idempotency.Manager
}

// Service drains the outbox and fans each event out to every registered
// handler. An event is marked published only once all handlers succeed, so a
// failing handler holds the event back for its next attempt.
type Service struct {
	logg         *logger.Logger
	repo         outboxRepository
	handlers     []NamedHandler
	idempotency  *idempotency.Manager
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

// NewService validates dependencies and builds the dispatch loop. The
// idempotency manager may be nil; handlers then rely on their own dedupe.
func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if len(params.Handlers) == 0 {
		return nil, errors.New("at least one handler is required")
	}
	for _, h := range params.Handlers {
		if h.Name == "" || h.Handler == nil {
			return nil, errors.New("handler name and implementation are required")
		}
	}

	batchSize := params.Config.Outbox.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		logg:         params.Logger,
		repo:         params.Repository,
		handlers:     params.Handlers,
		idempotency:  params.Idempotency,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

// Run polls until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox worker context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.ProcessBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox worker batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed > 0 {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// ProcessBatch drains one batch and reports how many events completed.
func (s *Service) ProcessBatch(ctx context.Context) (int, error) {
	events, err := s.repo.FetchUnpublished(s.batchSize, s.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}

	completed := 0
	for _, event := range events {
		if err := s.dispatch(ctx, event); err != nil {
			fields := s.logg.WithFields(ctx, map[string]any{
				"event_id":   event.ID.String(),
				"event_type": event.EventType,
				"attempt":    event.AttemptCount + 1,
			})
			s.logg.Warn(fields, fmt.Sprintf("event dispatch failed: %v", err))
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return completed, fmt.Errorf("mark failed %s: %w", event.ID, markErr)
			}
			continue
		}
		if err := s.repo.MarkPublished(event.ID); err != nil {
			return completed, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		completed++
	}
	return completed, nil
}

func (s *Service) dispatch(ctx context.Context, event models.OutboxEvent) error {
	var firstErr error
	for _, h := range s.handlers {
		already, err := s.alreadyProcessed(ctx, h.Name, event.ID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if already {
			continue
		}
		if err := h.Handler.HandleEvent(ctx, event); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", h.Name, err)
			}
			continue
		}
		// Marked only after the handler completes; a crash in between
		// redelivers the event rather than dropping it.
		s.markProcessed(ctx, h.Name, event.ID)
	}
	return firstErr
}

func (s *Service) alreadyProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if s.idempotency == nil {
		return false, nil
	}
	return s.idempotency.Processed(ctx, consumer, eventID)
}

func (s *Service) markProcessed(ctx context.Context, consumer string, eventID uuid.UUID) {
	if s.idempotency == nil {
		return
	}
	if err := s.idempotency.MarkProcessed(ctx, consumer, eventID); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("marking event processed for %s failed: %v", consumer, err))
	}
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		return base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
