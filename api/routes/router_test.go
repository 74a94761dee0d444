package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/internal/displays"
	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/internal/notifications"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/internal/products"
	"github.com/sampleloop/sampleloop-backend/internal/receiving"
	"github.com/sampleloop/sampleloop-backend/internal/stores"
	"github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubInventory struct{}

func (stubInventory) ReceiveWholesale(context.Context, uuid.UUID) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}
func (stubInventory) Reserve(context.Context, inventory.ReserveCommand) error { return nil }
func (stubInventory) Release(context.Context, inventory.ReleaseCommand) error { return nil }
func (stubInventory) ConsumeOnFulfillment(context.Context, inventory.ConsumeCommand) error {
	return nil
}
func (stubInventory) RedeemSample(context.Context, inventory.RedeemSampleCommand) error { return nil }
func (stubInventory) Adjust(context.Context, inventory.AdjustCommand) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{}, nil
}
func (stubInventory) GetStock(context.Context, uuid.UUID, string) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}
func (stubInventory) ListLedger(context.Context, inventory.LedgerQuery) ([]models.LedgerEntry, *string, error) {
	return nil, nil, nil
}
func (stubInventory) VerifyLedger(context.Context, uuid.UUID, string) (*inventory.VerifyResult, error) {
	return &inventory.VerifyResult{}, nil
}
func (stubInventory) ReserveTx(context.Context, *gorm.DB, inventory.ReserveCommand) error {
	return nil
}
func (stubInventory) ReleaseTx(context.Context, *gorm.DB, inventory.ReleaseCommand) error {
	return nil
}
func (stubInventory) ConsumeTx(context.Context, *gorm.DB, inventory.ConsumeCommand) error {
	return nil
}

type stubReceiving struct{}

func (stubReceiving) PlaceOrder(context.Context, receiving.PlaceOrderInput) (*models.IncomingOrder, error) {
	return &models.IncomingOrder{}, nil
}
func (stubReceiving) ReceiveOrder(context.Context, uuid.UUID) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}
func (stubReceiving) ReceiveByToken(context.Context, string) ([]receiving.ReceiveResult, error) {
	return nil, nil
}
func (stubReceiving) ListPending(context.Context, uuid.UUID) ([]models.IncomingOrder, error) {
	return nil, nil
}

type stubDisplays struct{}

func (stubDisplays) CreateBatch(context.Context, displays.CreateBatchInput) ([]models.Display, error) {
	return nil, nil
}
func (stubDisplays) MarkSold(context.Context, []string, uuid.UUID) (int, error) { return 0, nil }
func (stubDisplays) Activate(context.Context, string, uuid.UUID) (*models.Display, error) {
	return &models.Display{}, nil
}
func (stubDisplays) Reset(context.Context, string) (*models.Display, error) {
	return &models.Display{}, nil
}
func (stubDisplays) Deactivate(context.Context, string) (*models.Display, error) {
	return &models.Display{}, nil
}
func (stubDisplays) Get(context.Context, string) (*models.Display, error) {
	return &models.Display{}, nil
}
func (stubDisplays) ListByOwner(context.Context, uuid.UUID) ([]models.Display, error) {
	return nil, nil
}
func (stubDisplays) RouteFor(context.Context, string) (displays.Route, error) {
	return displays.RouteActivation, nil
}

type stubFulfillment struct{}

func (stubFulfillment) CreateIntent(context.Context, fulfillment.CreateIntentInput) (*models.PurchaseIntent, error) {
	return &models.PurchaseIntent{}, nil
}
func (stubFulfillment) Fulfill(context.Context, fulfillment.FulfillInput) (*models.PurchaseIntent, error) {
	return &models.PurchaseIntent{}, nil
}
func (stubFulfillment) Cancel(context.Context, uuid.UUID) (*models.PurchaseIntent, error) {
	return &models.PurchaseIntent{}, nil
}
func (stubFulfillment) Get(context.Context, uuid.UUID) (*models.PurchaseIntent, error) {
	return &models.PurchaseIntent{}, nil
}
func (stubFulfillment) ListPending(context.Context, uuid.UUID) ([]models.PurchaseIntent, error) {
	return nil, nil
}

type stubNotifications struct{}

func (stubNotifications) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}
func (stubNotifications) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubNotifications) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

type stubOrgs struct{}

func (stubOrgs) Get(context.Context, uuid.UUID) (*models.Organization, error) {
	return &models.Organization{}, nil
}
func (stubOrgs) Create(context.Context, orgs.CreateInput) (*models.Organization, error) {
	return &models.Organization{}, nil
}
func (stubOrgs) ConfigFor(context.Context, uuid.UUID) (orgs.Config, error) {
	return orgs.Config{}, nil
}
func (stubOrgs) InvalidateConfig(context.Context, uuid.UUID) {}

type stubStores struct{}

func (stubStores) Get(context.Context, uuid.UUID) (*models.Store, error) {
	return &models.Store{}, nil
}
func (stubStores) Register(context.Context, stores.RegisterInput) (*models.Store, error) {
	return &models.Store{}, nil
}
func (stubStores) ListByOrg(context.Context, uuid.UUID) ([]models.Store, error) { return nil, nil }

type stubProducts struct{}

func (stubProducts) GetBySKU(context.Context, string) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubProducts) Create(context.Context, products.CreateInput) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubProducts) ListByOrg(context.Context, uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

type stubPoints struct{}

func (stubPoints) AwardTx(context.Context, *gorm.DB, uuid.UUID, int, string) error { return nil }
func (stubPoints) Balance(context.Context, uuid.UUID) (int, error)                 { return 0, nil }
func (stubPoints) History(context.Context, uuid.UUID) ([]models.PointsEntry, error) {
	return nil, nil
}

type stubConversions struct{}

func (stubConversions) HandleEvent(context.Context, models.OutboxEvent) error { return nil }
func (stubConversions) ListByOrg(context.Context, uuid.UUID) ([]models.Conversion, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, Services{
		Inventory:     stubInventory{},
		Receiving:     stubReceiving{},
		Displays:      stubDisplays{},
		Fulfillment:   stubFulfillment{},
		Notifications: stubNotifications{},
		Orgs:          stubOrgs{},
		Stores:        stubStores{},
		Products:      stubProducts{},
		Points:        stubPoints{},
		Conversions:   stubConversions{},
	})
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	storeID := uuid.New()

	intentBody, _ := json.Marshal(map[string]any{
		"customer_id": uuid.New(),
		"store_id":    storeID,
		"product_sku": "SKU-TEA",
	})

	cases := []struct {
		name   string
		method string
		path   string
		body   []byte
		want   int
	}{
		{name: "health live", method: http.MethodGet, path: "/health/live", want: http.StatusOK},
		{name: "health ready", method: http.MethodGet, path: "/health/ready", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{name: "qr display route", method: http.MethodGet, path: "/d/SL-0001", want: http.StatusOK},
		{name: "stock lookup", method: http.MethodGet, path: "/api/v1/stores/" + storeID.String() + "/stock/SKU-TEA", want: http.StatusOK},
		{name: "ledger verify", method: http.MethodGet, path: "/api/v1/stores/" + storeID.String() + "/stock/SKU-TEA/verify", want: http.StatusOK},
		{name: "create intent", method: http.MethodPost, path: "/api/v1/intents", body: intentBody, want: http.StatusCreated},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nope", want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/v1/intents", want: http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var reader io.Reader
			if tc.body != nil {
				reader = bytes.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, tc.path, reader)
			if tc.body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("%s %s: expected %d got %d: %s", tc.method, tc.path, tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}
