package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

type stubFulfillmentService struct {
	intent *models.PurchaseIntent
	err    error
}

func (s stubFulfillmentService) CreateIntent(ctx context.Context, input fulfillment.CreateIntentInput) (*models.PurchaseIntent, error) {
	return s.intent, s.err
}

func (s stubFulfillmentService) Fulfill(ctx context.Context, input fulfillment.FulfillInput) (*models.PurchaseIntent, error) {
	return s.intent, s.err
}

func (s stubFulfillmentService) Cancel(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error) {
	return s.intent, s.err
}

func (s stubFulfillmentService) Get(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error) {
	return s.intent, s.err
}

func (s stubFulfillmentService) ListPending(ctx context.Context, storeID uuid.UUID) ([]models.PurchaseIntent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.PurchaseIntent{*s.intent}, nil
}

func TestCreateIntentSuccess(t *testing.T) {
	intent := &models.PurchaseIntent{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		StoreID:    uuid.New(),
		ProductSKU: "SKU-TEA",
		Quantity:   1,
		Status:     enums.PurchaseIntentStatusPending,
	}
	handler := CreateIntent(stubFulfillmentService{intent: intent}, nil)

	body, _ := json.Marshal(map[string]any{
		"customer_id": intent.CustomerID,
		"store_id":    intent.StoreID,
		"product_sku": "SKU-TEA",
	})
	rec := routedRequest(handler, http.MethodPost, "/intents", "/intents", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data models.PurchaseIntent `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != intent.ID {
		t.Fatalf("expected intent %s got %s", intent.ID, envelope.Data.ID)
	}
}

func TestCreateIntentValidation(t *testing.T) {
	handler := CreateIntent(stubFulfillmentService{}, nil)

	body, _ := json.Marshal(map[string]any{"product_sku": "SKU-TEA"})
	rec := routedRequest(handler, http.MethodPost, "/intents", "/intents", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestFulfillIntentAlreadySettled(t *testing.T) {
	handler := FulfillIntent(stubFulfillmentService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "intent already fulfilled"),
	}, nil)

	intentID := uuid.New()
	body, _ := json.Marshal(map[string]any{
		"staff_id":          uuid.New(),
		"final_price_cents": 2500,
	})
	rec := routedRequest(handler, http.MethodPost, "/intents/"+intentID.String()+"/fulfill", "/intents/{intentId}/fulfill", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestFulfillIntentInvalidID(t *testing.T) {
	handler := FulfillIntent(stubFulfillmentService{}, nil)

	body, _ := json.Marshal(map[string]any{"staff_id": uuid.New(), "final_price_cents": 100})
	rec := routedRequest(handler, http.MethodPost, "/intents/not-a-uuid/fulfill", "/intents/{intentId}/fulfill", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
