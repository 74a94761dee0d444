package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/products"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type createProductRequest struct {
	OrgID            uuid.UUID `json:"org_id" validate:"required"`
	SKU              string    `json:"sku" validate:"required,min=2"`
	Name             string    `json:"name" validate:"required,min=2"`
	RetailPriceCents int       `json:"retail_price_cents" validate:"required,min=0"`
}

// CreateProduct registers a catalog product under an org.
func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), products.CreateInput{
			OrgID:            payload.OrgID,
			SKU:              payload.SKU,
			Name:             validators.SanitizeString(payload.Name, 255),
			RetailPriceCents: payload.RetailPriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct returns a product by SKU.
func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku, err := pathString(r, "sku")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetBySKU(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListOrgProducts returns the org's product catalog.
func ListOrgProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByOrg(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": list})
	}
}
