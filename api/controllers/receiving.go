package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/receiving"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type placeOrderRequest struct {
	StoreID            uuid.UUID `json:"store_id" validate:"required"`
	ProductSKU         string    `json:"product_sku" validate:"required"`
	Quantity           int       `json:"quantity" validate:"required,min=1"`
	VerificationToken  string    `json:"verification_token,omitempty"`
	ShopifyOrderNumber *string   `json:"shopify_order_number,omitempty"`
}

// PlaceOrder registers an incoming wholesale order and marks the stock
// record as expecting it.
func PlaceOrder(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), receiving.PlaceOrderInput{
			StoreID:            payload.StoreID,
			ProductSKU:         payload.ProductSKU,
			Quantity:           payload.Quantity,
			VerificationToken:  payload.VerificationToken,
			ShopifyOrderNumber: payload.ShopifyOrderNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ReceiveOrder confirms one pending order and moves its quantity on hand.
func ReceiveOrder(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.ReceiveOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// ReceiveByToken confirms every pending order carrying the scanned
// verification token. Orders settle independently.
func ReceiveByToken(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := pathString(r, "token")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.ReceiveByToken(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": results})
	}
}

// ListPendingOrders returns the store's not-yet-received wholesale orders.
func ListPendingOrders(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListPending(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}
