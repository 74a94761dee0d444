package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

type stubInventoryService struct {
	adjusted []inventory.AdjustCommand
}

func (s *stubInventoryService) ReceiveWholesale(context.Context, uuid.UUID) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}
func (s *stubInventoryService) Reserve(context.Context, inventory.ReserveCommand) error { return nil }
func (s *stubInventoryService) Release(context.Context, inventory.ReleaseCommand) error { return nil }
func (s *stubInventoryService) ConsumeOnFulfillment(context.Context, inventory.ConsumeCommand) error {
	return nil
}
func (s *stubInventoryService) RedeemSample(context.Context, inventory.RedeemSampleCommand) error {
	return nil
}
func (s *stubInventoryService) Adjust(_ context.Context, cmd inventory.AdjustCommand) (*models.LedgerEntry, error) {
	s.adjusted = append(s.adjusted, cmd)
	return &models.LedgerEntry{ID: uuid.New()}, nil
}
func (s *stubInventoryService) GetStock(context.Context, uuid.UUID, string) (*models.StockRecord, error) {
	return &models.StockRecord{}, nil
}
func (s *stubInventoryService) ListLedger(context.Context, inventory.LedgerQuery) ([]models.LedgerEntry, *string, error) {
	return nil, nil, nil
}
func (s *stubInventoryService) VerifyLedger(context.Context, uuid.UUID, string) (*inventory.VerifyResult, error) {
	return &inventory.VerifyResult{}, nil
}
func (s *stubInventoryService) ReserveTx(context.Context, *gorm.DB, inventory.ReserveCommand) error {
	return nil
}
func (s *stubInventoryService) ReleaseTx(context.Context, *gorm.DB, inventory.ReleaseCommand) error {
	return nil
}
func (s *stubInventoryService) ConsumeTx(context.Context, *gorm.DB, inventory.ConsumeCommand) error {
	return nil
}

func TestAdjustStockTrimsReason(t *testing.T) {
	svc := &stubInventoryService{}
	handler := AdjustStock(svc, nil)

	storeID := uuid.New()
	body, _ := json.Marshal(map[string]any{
		"delta":  -2,
		"reason": "   miscount after audit   ",
	})
	rec := routedRequest(handler, http.MethodPost,
		"/stores/"+storeID.String()+"/stock/SKU-TEA/adjust",
		"/stores/{storeId}/stock/{sku}/adjust", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.adjusted) != 1 {
		t.Fatalf("expected one adjust call, got %d", len(svc.adjusted))
	}
	cmd := svc.adjusted[0]
	if cmd.Reason != "miscount after audit" {
		t.Fatalf("expected trimmed reason, got %q", cmd.Reason)
	}
	if cmd.StoreID != storeID || cmd.ProductSKU != "SKU-TEA" || cmd.Delta != -2 {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestAdjustStockRequiresReason(t *testing.T) {
	svc := &stubInventoryService{}
	handler := AdjustStock(svc, nil)

	body, _ := json.Marshal(map[string]any{"delta": 1})
	rec := routedRequest(handler, http.MethodPost,
		"/stores/"+uuid.New().String()+"/stock/SKU-TEA/adjust",
		"/stores/{storeId}/stock/{sku}/adjust", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
