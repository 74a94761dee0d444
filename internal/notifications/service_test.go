package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Notification{}, &models.Store{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedNotification(t *testing.T, conn *gorm.DB, storeID uuid.UUID, title string, createdAt time.Time) models.Notification {
	t.Helper()
	row := models.Notification{
		ID:        uuid.New(),
		StoreID:   storeID,
		Channel:   enums.NotificationChannelInApp,
		Title:     title,
		Body:      title + " body",
		CreatedAt: createdAt,
	}
	if err := conn.Create(&row).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return row
}

func TestListNotificationsPagination(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	storeID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedNotification(t, conn, storeID, "note", base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.List(ctx, ListParams{StoreID: storeID, Limit: 3})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(first.Items))
	}
	if first.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	if !first.Items[0].CreatedAt.After(first.Items[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	second, err := svc.List(ctx, ListParams{StoreID: storeID, Limit: 3, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("expected 2 items on second page, got %d", len(second.Items))
	}
	if second.Cursor != "" {
		t.Fatalf("expected empty cursor at end, got %q", second.Cursor)
	}
}

func TestMarkReadAndUnreadFilter(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	storeID := uuid.New()

	now := time.Now().UTC()
	row := seedNotification(t, conn, storeID, "restock", now.Add(-2*time.Minute))
	seedNotification(t, conn, storeID, "sale", now.Add(-time.Minute))

	if err := svc.MarkRead(ctx, storeID, row.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// A second mark finds the row but changes nothing.
	if err := svc.MarkRead(ctx, storeID, row.ID); err != nil {
		t.Fatalf("mark read again: %v", err)
	}

	err = svc.MarkRead(ctx, storeID, uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	err = svc.MarkRead(ctx, uuid.New(), row.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for wrong store, got %v", err)
	}

	unread, err := svc.List(ctx, ListParams{StoreID: storeID, Limit: 10, UnreadOnly: true})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread.Items) != 1 || unread.Items[0].Title != "sale" {
		t.Fatalf("expected only the unread row, got %+v", unread.Items)
	}

	count, err := svc.MarkAllRead(ctx, storeID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row marked, got %d", count)
	}
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	calls int
}

func (f *fakeSender) Send(ctx context.Context, channel enums.NotificationChannel, recipient, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return errors.New("provider unavailable")
	}
	f.sent = append(f.sent, string(channel)+":"+recipient)
	return nil
}

type staticConfig struct {
	cfg orgs.Config
}

func (s staticConfig) ConfigFor(ctx context.Context, orgID uuid.UUID) (orgs.Config, error) {
	return s.cfg, nil
}

func receiveEvent(t *testing.T, storeID uuid.UUID) models.OutboxEvent {
	t.Helper()
	data, err := json.Marshal(inventory.WholesaleReceivedEvent{
		OrderID:      uuid.New(),
		StoreID:      storeID,
		ProductSKU:   "SKU-TEA",
		Quantity:     24,
		BalanceAfter: 36,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:        uuid.New(),
		EventType: enums.EventWholesaleReceived,
		Payload:   envelope,
	}
}

func TestDispatcherCreatesInAppAndSendsExternal(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	store := models.Store{ID: uuid.New(), OrgID: uuid.New(), Name: "Fern & Co", Phone: "5550110", Email: "owner@fern.example"}
	if err := conn.Create(&store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}

	sender := &fakeSender{}
	disp, err := NewDispatcher(NewRepository(conn), staticConfig{
		cfg: orgs.Config{NotificationChannels: []string{"in_app", "sms", "email"}},
	}, sender, nil)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	if err := disp.HandleEvent(context.Background(), receiveEvent(t, store.ID)); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	var rows []models.Notification
	if err := conn.Where("store_id = ?", store.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 in-app notification, got %d", len(rows))
	}
	if rows[0].Title != "Stock received" {
		t.Fatalf("unexpected title %q", rows[0].Title)
	}
	if rows[0].Body != "Received 24 units of SKU-TEA. 36 now on hand." {
		t.Fatalf("unexpected body %q", rows[0].Body)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected sms and email delivery, got %v", sender.sent)
	}
}

func TestDispatcherSenderFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	store := models.Store{ID: uuid.New(), OrgID: uuid.New(), Name: "Bramble", Phone: "5550111"}
	if err := conn.Create(&store).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}

	sender := &fakeSender{fail: true}
	disp, err := NewDispatcher(NewRepository(conn), staticConfig{
		cfg: orgs.Config{NotificationChannels: []string{"sms"}},
	}, sender, nil)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	if err := disp.HandleEvent(context.Background(), receiveEvent(t, store.ID)); err != nil {
		t.Fatalf("expected delivery failure swallowed, got %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("expected 1 send attempt, got %d", sender.calls)
	}

	var count int64
	if err := conn.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected in-app row despite sender failure, got %d", count)
	}
}

func TestDispatcherIgnoresUnrelatedEvents(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	disp, err := NewDispatcher(NewRepository(conn), staticConfig{}, nil, nil)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	data, _ := json.Marshal(map[string]string{"product_sku": "SKU-TEA"})
	envelope, _ := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now().UTC(), Data: data})
	event := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventStockAdjusted, Payload: envelope}

	if err := disp.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected unrelated event ignored, got %v", err)
	}

	var count int64
	if err := conn.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no notifications, got %d", count)
	}
}
