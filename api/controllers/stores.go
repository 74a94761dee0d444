package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/stores"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type registerStoreRequest struct {
	OrgID uuid.UUID `json:"org_id" validate:"required"`
	Name  string    `json:"name" validate:"required,min=2"`
	Phone string    `json:"phone,omitempty"`
	Email string    `json:"email,omitempty" validate:"omitempty,email"`
}

// RegisterStore creates a retail partner location.
func RegisterStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerStoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Register(r.Context(), stores.RegisterInput{
			OrgID: payload.OrgID,
			Name:  validators.SanitizeString(payload.Name, 255),
			Phone: payload.Phone,
			Email: payload.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, store)
	}
}

// GetStore returns the store record.
func GetStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.Get(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

// ListOrgStores returns the org's partner locations.
func ListOrgStores(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteSuccess(w, map[string]any{"stores": list})
	}
}
