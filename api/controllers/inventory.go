package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/pagination"
)

// GetStock returns the live stock snapshot for one store and SKU.
func GetStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku, err := pathString(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetStock(r.Context(), storeID, sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// ListLedger returns the paginated ledger history, newest first.
func ListLedger(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku, err := pathString(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, next, err := svc.ListLedger(r.Context(), inventory.LedgerQuery{
			StoreID:    storeID,
			ProductSKU: sku,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor := ""
		if next != nil {
			cursor = *next
		}
		responses.WriteSuccess(w, map[string]any{
			"items":  entries,
			"cursor": cursor,
		})
	}
}

// VerifyLedger replays the ledger and reports the first divergence.
func VerifyLedger(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku, err := pathString(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyLedger(r.Context(), storeID, sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type adjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// AdjustStock applies a signed manual correction.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku, err := pathString(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Adjust(r.Context(), inventory.AdjustCommand{
			StoreID:    storeID,
			ProductSKU: sku,
			Delta:      payload.Delta,
			Reason:     validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

type redeemSampleRequest struct {
	Quantity   int        `json:"quantity" validate:"required,min=1"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
}

// RedeemSample consumes free sample stock at the display.
func RedeemSample(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sku, err := pathString(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload redeemSampleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RedeemSample(r.Context(), inventory.RedeemSampleCommand{
			StoreID:    storeID,
			ProductSKU: sku,
			Quantity:   payload.Quantity,
			CustomerID: payload.CustomerID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "redeemed"})
	}
}
