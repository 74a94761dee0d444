package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/internal/displays"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

type stubDisplayService struct {
	display *models.Display
	route   displays.Route
	err     error
}

func (s stubDisplayService) CreateBatch(ctx context.Context, input displays.CreateBatchInput) ([]models.Display, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Display{*s.display}, nil
}

func (s stubDisplayService) MarkSold(ctx context.Context, displayIDs []string, assignedOrgID uuid.UUID) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(displayIDs), nil
}

func (s stubDisplayService) Activate(ctx context.Context, displayID string, storeID uuid.UUID) (*models.Display, error) {
	return s.display, s.err
}

func (s stubDisplayService) Reset(ctx context.Context, displayID string) (*models.Display, error) {
	return s.display, s.err
}

func (s stubDisplayService) Deactivate(ctx context.Context, displayID string) (*models.Display, error) {
	return s.display, s.err
}

func (s stubDisplayService) Get(ctx context.Context, displayID string) (*models.Display, error) {
	return s.display, s.err
}

func (s stubDisplayService) ListByOwner(ctx context.Context, ownerOrgID uuid.UUID) ([]models.Display, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Display{*s.display}, nil
}

func (s stubDisplayService) RouteFor(ctx context.Context, displayID string) (displays.Route, error) {
	return s.route, s.err
}

func routedRequest(handler http.HandlerFunc, method, path, pattern string, body []byte) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDisplayRouteSuccess(t *testing.T) {
	handler := DisplayRoute(stubDisplayService{route: displays.RoutePurchase}, nil)

	rec := routedRequest(handler, http.MethodGet, "/d/SL-1A2B3C4D", "/d/{displayId}", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["route"] != "purchase" {
		t.Fatalf("expected purchase route, got %q", envelope.Data["route"])
	}
}

func TestActivateDisplaySuccess(t *testing.T) {
	storeID := uuid.New()
	display := &models.Display{
		ID:        uuid.New(),
		DisplayID: "SL-1A2B3C4D",
		Status:    enums.DisplayStatusActive,
		StoreID:   &storeID,
	}
	handler := ActivateDisplay(stubDisplayService{display: display}, nil)

	body, _ := json.Marshal(map[string]string{"store_id": storeID.String()})
	rec := routedRequest(handler, http.MethodPost, "/displays/SL-1A2B3C4D/activate", "/displays/{displayId}/activate", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data models.Display `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.DisplayStatusActive {
		t.Fatalf("expected active status, got %s", envelope.Data.Status)
	}
}

func TestActivateDisplayMissingStore(t *testing.T) {
	handler := ActivateDisplay(stubDisplayService{}, nil)

	body, _ := json.Marshal(map[string]string{})
	rec := routedRequest(handler, http.MethodPost, "/displays/SL-1A2B3C4D/activate", "/displays/{displayId}/activate", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestResetDisplayStateConflict(t *testing.T) {
	handler := ResetDisplay(stubDisplayService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "display is not active"),
	}, nil)

	rec := routedRequest(handler, http.MethodPost, "/displays/SL-1A2B3C4D/reset", "/displays/{displayId}/reset", nil)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestCreateDisplayBatchRejectsOversizedCount(t *testing.T) {
	handler := CreateDisplayBatch(stubDisplayService{}, nil)

	body, _ := json.Marshal(map[string]any{"owner_org_id": uuid.New(), "count": 501})
	rec := routedRequest(handler, http.MethodPost, "/displays", "/displays", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
}
