package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:outbox_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate outbox: %v", err)
	}
	return db
}

func TestEmitWritesEnvelopeInsideTx(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)
	aggregateID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventIntentFulfilled,
			AggregateType: enums.AggregatePurchaseIntent,
			AggregateID:   aggregateID,
			Version:       1,
			Data:          map[string]string{"sku": "SKU-9"},
		})
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	var row models.OutboxEvent
	if err := db.First(&row, "aggregate_id = ?", aggregateID).Error; err != nil {
		t.Fatalf("load event: %v", err)
	}
	if row.EventType != enums.EventIntentFulfilled {
		t.Fatalf("unexpected event type: %s", row.EventType)
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Version != 1 || envelope.EventID == "" || envelope.OccurredAt.IsZero() {
		t.Fatalf("incomplete envelope: %+v", envelope)
	}
}

func TestEmitRequiresTransaction(t *testing.T) {
	t.Parallel()

	svc := NewService(NewRepository(newTestDB(t)), nil)
	if err := svc.Emit(context.Background(), nil, DomainEvent{}); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestEmitIfNotExistsDeduplicates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)
	aggregateID := uuid.New()

	event := DomainEvent{
		EventType:     enums.EventWholesaleReceived,
		AggregateType: enums.AggregateIncomingOrder,
		AggregateID:   aggregateID,
		Version:       1,
		Data:          map[string]int{"qty": 50},
	}

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(context.Background(), tx, event)
		})
		if err != nil {
			t.Fatalf("emit %d: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&models.OutboxEvent{}).Where("aggregate_id = ?", aggregateID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single event, got %d", count)
	}
}

func TestMarkPublishedAndFailed(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)
	aggregateID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateStockRecord,
			AggregateID:   aggregateID,
			Version:       1,
		})
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	rows, err := repo.FetchUnpublished(10, 0)
	if err != nil {
		t.Fatalf("fetch unpublished: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one unpublished event, got %d", len(rows))
	}

	if err := repo.MarkPublished(rows[0].ID); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	remaining, err := repo.FetchUnpublished(10, 0)
	if err != nil {
		t.Fatalf("fetch after publish: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no unpublished events, got %d", len(remaining))
	}
}
