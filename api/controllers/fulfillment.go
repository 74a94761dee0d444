package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type createIntentRequest struct {
	CustomerID      uuid.UUID `json:"customer_id" validate:"required"`
	StoreID         uuid.UUID `json:"store_id" validate:"required"`
	ProductSKU      string    `json:"product_sku" validate:"required"`
	Quantity        int       `json:"quantity,omitempty" validate:"omitempty,min=1"`
	DiscountPercent int       `json:"discount_percent,omitempty" validate:"omitempty,min=0,max=100"`
}

// CreateIntent opens a purchase intent and reserves its stock.
func CreateIntent(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), fulfillment.CreateIntentInput{
			CustomerID:      payload.CustomerID,
			StoreID:         payload.StoreID,
			ProductSKU:      payload.ProductSKU,
			Quantity:        payload.Quantity,
			DiscountPercent: payload.DiscountPercent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

type fulfillIntentRequest struct {
	StaffID         uuid.UUID `json:"staff_id" validate:"required"`
	FinalPriceCents int       `json:"final_price_cents" validate:"required,min=0"`
}

// FulfillIntent settles a pending intent: stock is consumed and the staff
// member is credited in one transaction.
func FulfillIntent(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := pathUUID(r, "intentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload fulfillIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Fulfill(r.Context(), fulfillment.FulfillInput{
			IntentID:        intentID,
			StaffID:         payload.StaffID,
			FinalPriceCents: payload.FinalPriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// CancelIntent abandons a pending intent and releases its reservation.
func CancelIntent(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := pathUUID(r, "intentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Cancel(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// GetIntent returns one purchase intent.
func GetIntent(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, err := pathUUID(r, "intentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Get(r.Context(), intentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, intent)
	}
}

// ListPendingIntents returns the store's open purchase intents.
func ListPendingIntents(svc fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intents, err := svc.ListPending(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"intents": intents})
	}
}
