package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/displays"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type createDisplayBatchRequest struct {
	OwnerOrgID uuid.UUID `json:"owner_org_id" validate:"required"`
	Count      int       `json:"count" validate:"required,min=1,max=500"`
	Prefix     string    `json:"prefix,omitempty" validate:"omitempty,alphanum,max=8"`
}

// CreateDisplayBatch mints a batch of display units in inventory state.
func CreateDisplayBatch(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createDisplayBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		batch, err := svc.CreateBatch(r.Context(), displays.CreateBatchInput{
			OwnerOrgID: payload.OwnerOrgID,
			Count:      payload.Count,
			Prefix:     payload.Prefix,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"displays": batch})
	}
}

type markSoldRequest struct {
	DisplayIDs    []string  `json:"display_ids" validate:"required,min=1,dive,required"`
	AssignedOrgID uuid.UUID `json:"assigned_org_id" validate:"required"`
}

// MarkDisplaysSold assigns a batch of inventory displays to a buying org.
func MarkDisplaysSold(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload markSoldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.MarkSold(r.Context(), payload.DisplayIDs, payload.AssignedOrgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"sold": count})
	}
}

type activateDisplayRequest struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
}

// ActivateDisplay binds a display to the store where it now lives.
func ActivateDisplay(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayID, err := pathString(r, "displayId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload activateDisplayRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		display, err := svc.Activate(r.Context(), displayID, payload.StoreID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, display)
	}
}

// ResetDisplay detaches an active display from its store for redeployment.
func ResetDisplay(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayID, err := pathString(r, "displayId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		display, err := svc.Reset(r.Context(), displayID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, display)
	}
}

// DeactivateDisplay retires a display from circulation.
func DeactivateDisplay(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayID, err := pathString(r, "displayId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		display, err := svc.Deactivate(r.Context(), displayID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, display)
	}
}

// GetDisplay returns the display record.
func GetDisplay(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayID, err := pathString(r, "displayId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		display, err := svc.Get(r.Context(), displayID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, display)
	}
}

// ListOrgDisplays returns every display unit minted for the org.
func ListOrgDisplays(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByOwner(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"displays": items})
	}
}

// DisplayRoute is the public QR entry point: it tells the scanner which
// flow the display should open.
func DisplayRoute(svc displays.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayID, err := pathString(r, "displayId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		route, err := svc.RouteFor(r.Context(), displayID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"route": string(route)})
	}
}
