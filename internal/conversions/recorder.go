package conversions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/internal/attribution"
	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
)

// OrgConfigSource supplies commission rates and attribution windows.
type OrgConfigSource interface {
	ConfigFor(ctx context.Context, orgID uuid.UUID) (orgs.Config, error)
}

// Recorder turns committed domain events into attribution outcomes. It runs
// strictly after the ledger transaction commits and is the sole writer of
// conversion rows (and their commission amounts).
type Recorder interface {
	HandleEvent(ctx context.Context, event models.OutboxEvent) error
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Conversion, error)
}

type recorder struct {
	repo      Repository
	orgConfig OrgConfigSource
	logg      *logger.Logger
}

// NewRecorder wires the attribution recorder with its dependencies.
func NewRecorder(repo Repository, orgConfig OrgConfigSource, logg *logger.Logger) (Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("conversions repository required")
	}
	if orgConfig == nil {
		return nil, fmt.Errorf("org config source required")
	}
	return &recorder{repo: repo, orgConfig: orgConfig, logg: logg}, nil
}

// HandleEvent ignores event types the recorder does not care about, so it
// can sit on the same dispatch loop as the notification fan-out.
func (r *recorder) HandleEvent(ctx context.Context, event models.OutboxEvent) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event envelope")
	}

	switch event.EventType {
	case enums.EventSampleRedeemed:
		var payload inventory.SampleRedeemedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode sample event")
		}
		return r.recordSample(ctx, payload, envelope)
	case enums.EventIntentFulfilled:
		var payload fulfillment.IntentFulfilledEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode fulfillment event")
		}
		return r.recordPurchase(ctx, payload)
	default:
		return nil
	}
}

func (r *recorder) recordSample(ctx context.Context, payload inventory.SampleRedeemedEvent, envelope outbox.PayloadEnvelope) error {
	if payload.CustomerID == nil {
		return nil
	}

	stamped, err := r.repo.RecordCustomerSample(ctx, *payload.CustomerID, envelope.OccurredAt, payload.StoreID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record customer sample")
	}
	if !stamped && r.logg != nil {
		r.logg.Debug(ctx, fmt.Sprintf("customer %s already has a sample anchor", payload.CustomerID))
	}
	return nil
}

func (r *recorder) recordPurchase(ctx context.Context, payload fulfillment.IntentFulfilledEvent) error {
	exists, err := r.repo.ExistsForIntent(ctx, payload.IntentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing conversion")
	}
	if exists {
		return nil
	}

	customer, err := r.repo.FindCustomer(ctx, payload.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	store, err := r.repo.FindStore(ctx, payload.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	cfg, err := r.orgConfig.ConfigFor(ctx, store.OrgID)
	if err != nil {
		return err
	}

	decision := attribution.Evaluate(customer.SampleDate, customer.AttributedStoreID, payload.FulfilledAt, cfg.AttributionWindowDays)
	if !decision.Attributed {
		if r.logg != nil {
			r.logg.Debug(ctx, fmt.Sprintf("intent %s not attributed: %s", payload.IntentID, decision.Reason))
		}
		return nil
	}

	conversion := &models.Conversion{
		PurchaseIntentID:      payload.IntentID,
		CustomerID:            payload.CustomerID,
		OrgID:                 store.OrgID,
		StoreID:               *customer.AttributedStoreID,
		OrderTotalCents:       payload.FinalPriceCents,
		CommissionAmountCents: attribution.Commission(payload.FinalPriceCents, cfg.CommissionRate),
		PurchaseDate:          payload.FulfilledAt,
		DaysToConversion:      decision.DaysToConversion,
	}
	if err := r.repo.Create(ctx, conversion); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversion")
	}

	if r.logg != nil {
		r.logg.Info(ctx, fmt.Sprintf("conversion recorded for intent %s after %d days", payload.IntentID, decision.DaysToConversion))
	}
	return nil
}

func (r *recorder) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Conversion, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	list, err := r.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversions")
	}
	return list, nil
}
