package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox/idempotency"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit > len(f.events) {
		limit = len(f.events)
	}
	return f.events[:limit], nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeHandler struct {
	seen []uuid.UUID
	err  error
}

func (f *fakeHandler) HandleEvent(ctx context.Context, event models.OutboxEvent) error {
	f.seen = append(f.seen, event.ID)
	return f.err
}

type memoryStore struct {
	keys    map[string]bool
	deleted []string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if m.keys[key] {
		return "1", nil
	}
	return "", goredis.Nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "sl:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.keys, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func testEvent() models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventWholesaleReceived,
		AggregateType: enums.AggregateIncomingOrder,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1,"eventId":"x","data":{}}`),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, handlers []NamedHandler, manager *idempotency.Manager) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:      &config.Config{},
		Logger:      logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard}),
		Repository:  repo,
		Handlers:    handlers,
		Idempotency: manager,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesWhenAllHandlersSucceed(t *testing.T) {
	t.Parallel()

	event := testEvent()
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	first := &fakeHandler{}
	second := &fakeHandler{}
	svc := newTestService(t, repo, []NamedHandler{
		{Name: "attribution-recorder", Handler: first},
		{Name: "notification-dispatcher", Handler: second},
	}, nil)

	completed, err := svc.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if completed != 1 {
		t.Fatalf("expected 1 completed, got %d", completed)
	}
	if len(first.seen) != 1 || len(second.seen) != 1 {
		t.Fatal("expected both handlers invoked")
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("expected event marked published, got %v", repo.published)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("expected no failures, got %v", repo.failed)
	}
}

func TestProcessBatchMarksFailedWhenAnyHandlerFails(t *testing.T) {
	t.Parallel()

	event := testEvent()
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	healthy := &fakeHandler{}
	broken := &fakeHandler{err: errors.New("downstream unavailable")}
	svc := newTestService(t, repo, []NamedHandler{
		{Name: "attribution-recorder", Handler: broken},
		{Name: "notification-dispatcher", Handler: healthy},
	}, nil)

	completed, err := svc.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if completed != 0 {
		t.Fatalf("expected 0 completed, got %d", completed)
	}
	if len(healthy.seen) != 1 {
		t.Fatal("expected healthy handler to still run")
	}
	if len(repo.failed) != 1 || repo.failed[0] != event.ID {
		t.Fatalf("expected event marked failed, got %v", repo.failed)
	}
	if len(repo.published) != 0 {
		t.Fatalf("expected no publish, got %v", repo.published)
	}
}

func TestDispatchSkipsAlreadyProcessedConsumers(t *testing.T) {
	t.Parallel()

	event := testEvent()
	store := &memoryStore{}
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	handler := &fakeHandler{}
	svc := newTestService(t, repo, []NamedHandler{
		{Name: "attribution-recorder", Handler: handler},
	}, manager)

	ctx := context.Background()
	if _, err := svc.ProcessBatch(ctx); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	// Same event redelivered: the marker suppresses the second invocation.
	if _, err := svc.ProcessBatch(ctx); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if len(handler.seen) != 1 {
		t.Fatalf("expected handler invoked once, got %d", len(handler.seen))
	}
}

func TestDispatchMarksProcessedOnlyAfterHandlerCompletes(t *testing.T) {
	t.Parallel()

	event := testEvent()
	store := &memoryStore{}
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	broken := &fakeHandler{err: errors.New("boom")}
	svc := newTestService(t, repo, []NamedHandler{
		{Name: "attribution-recorder", Handler: broken},
	}, manager)

	ctx := context.Background()
	if _, err := svc.ProcessBatch(ctx); err != nil {
		t.Fatalf("process batch: %v", err)
	}
	// The failed run must leave no marker behind: a restart after an
	// interrupted handler has to redeliver, never skip.
	if len(store.keys) != 0 {
		t.Fatalf("expected no marker after failed handler, got %v", store.keys)
	}
	processed, err := manager.Processed(ctx, "attribution-recorder", event.ID)
	if err != nil {
		t.Fatalf("processed check: %v", err)
	}
	if processed {
		t.Fatal("event reported processed before its handler completed")
	}

	// Redelivery reaches the handler again and completes this time.
	broken.err = nil
	if _, err := svc.ProcessBatch(ctx); err != nil {
		t.Fatalf("retry batch: %v", err)
	}
	if len(broken.seen) != 2 {
		t.Fatalf("expected handler retried, got %d calls", len(broken.seen))
	}
	if len(store.keys) != 1 {
		t.Fatalf("expected marker after successful handler, got %v", store.keys)
	}
	if len(repo.published) != 1 || repo.published[0] != event.ID {
		t.Fatalf("expected event published after retry, got %v", repo.published)
	}
}

func TestNewServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewService(ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard}),
		Repository: &fakeRepo{},
		Handlers:   []NamedHandler{{Name: "x", Handler: &fakeHandler{}}},
	})
	if err == nil {
		t.Fatal("expected error for missing config")
	}

	_, err = NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard}),
		Repository: &fakeRepo{},
	})
	if err == nil {
		t.Fatal("expected error for missing handlers")
	}

	_, err = NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "worker-test", Output: io.Discard}),
		Repository: &fakeRepo{},
		Handlers:   []NamedHandler{{Name: "", Handler: &fakeHandler{}}},
	})
	if err == nil {
		t.Fatal("expected error for unnamed handler")
	}
}
