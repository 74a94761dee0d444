package controllers

import (
	"net/http"

	"github.com/sampleloop/sampleloop-backend/api/responses"
	"github.com/sampleloop/sampleloop-backend/api/validators"
	"github.com/sampleloop/sampleloop-backend/internal/conversions"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

type createOrgRequest struct {
	Name                  string   `json:"name" validate:"required,min=2"`
	CommissionRate        *int     `json:"commission_rate,omitempty" validate:"omitempty,min=0,max=100"`
	AttributionWindowDays *int     `json:"attribution_window_days,omitempty" validate:"omitempty,min=0"`
	NotificationChannels  []string `json:"notification_channels,omitempty"`
}

// CreateOrg registers a brand organization with its commission settings.
func CreateOrg(svc orgs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrgRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Create(r.Context(), orgs.CreateInput{
			Name:                  validators.SanitizeString(payload.Name, 255),
			CommissionRate:        payload.CommissionRate,
			AttributionWindowDays: payload.AttributionWindowDays,
			NotificationChannels:  payload.NotificationChannels,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, org)
	}
}

// GetOrg returns the organization record.
func GetOrg(svc orgs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Get(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}

// GetOrgConfig returns the effective attribution and notification settings.
func GetOrgConfig(svc orgs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.ConfigFor(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cfg)
	}
}

// ListOrgConversions returns the org's attributed conversions, newest first.
func ListOrgConversions(rec conversions.Recorder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := pathUUID(r, "orgId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := rec.ListByOrg(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"conversions": list})
	}
}
