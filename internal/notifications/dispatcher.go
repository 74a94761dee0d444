package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sampleloop/sampleloop-backend/internal/displays"
	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
)

// Sender delivers a notification over an external channel. Implementations
// are expected to be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, channel enums.NotificationChannel, recipient, title, body string) error
}

// OrgConfigSource supplies the channels an organization opted into.
type OrgConfigSource interface {
	ConfigFor(ctx context.Context, orgID uuid.UUID) (orgs.Config, error)
}

// Dispatcher turns committed domain events into store notifications. The
// in-app row is always written; external channels are best effort and a
// delivery failure never surfaces to the outbox loop.
type Dispatcher interface {
	HandleEvent(ctx context.Context, event models.OutboxEvent) error
}

type dispatcher struct {
	repo      Repository
	orgConfig OrgConfigSource
	sender    Sender
	logg      *logger.Logger
}

// NewDispatcher wires the notification fan-out. Sender may be nil, in which
// case only in-app notifications are written.
func NewDispatcher(repo Repository, orgConfig OrgConfigSource, sender Sender, logg *logger.Logger) (Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if orgConfig == nil {
		return nil, fmt.Errorf("org config source required")
	}
	return &dispatcher{repo: repo, orgConfig: orgConfig, sender: sender, logg: logg}, nil
}

func (d *dispatcher) HandleEvent(ctx context.Context, event models.OutboxEvent) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event envelope")
	}

	storeID, title, body, err := d.compose(event.EventType, envelope.Data)
	if err != nil {
		return err
	}
	if storeID == uuid.Nil {
		return nil
	}

	if err := d.repo.Create(ctx, &models.Notification{
		StoreID: storeID,
		Channel: enums.NotificationChannelInApp,
		Title:   title,
		Body:    body,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	d.deliverExternal(ctx, storeID, title, body)
	return nil
}

// compose maps an event to a store-facing message. A uuid.Nil store id means
// the event carries nothing a store needs to hear about.
func (d *dispatcher) compose(eventType enums.OutboxEventType, data json.RawMessage) (uuid.UUID, string, string, error) {
	switch eventType {
	case enums.EventWholesaleReceived:
		var payload inventory.WholesaleReceivedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return uuid.Nil, "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode receive event")
		}
		body := fmt.Sprintf("Received %d units of %s. %d now on hand.", payload.Quantity, payload.ProductSKU, payload.BalanceAfter)
		return payload.StoreID, "Stock received", body, nil
	case enums.EventIntentFulfilled:
		var payload fulfillment.IntentFulfilledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return uuid.Nil, "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode fulfillment event")
		}
		body := fmt.Sprintf("Sold %d x %s for %s.", payload.Quantity, payload.ProductSKU, formatCents(payload.FinalPriceCents))
		return payload.StoreID, "Sample purchase completed", body, nil
	case enums.EventDisplayActivated:
		var payload displays.DisplayActivatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return uuid.Nil, "", "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode display event")
		}
		body := fmt.Sprintf("Display %s is live at your store.", payload.DisplayID)
		return payload.StoreID, "Display activated", body, nil
	default:
		return uuid.Nil, "", "", nil
	}
}

func (d *dispatcher) deliverExternal(ctx context.Context, storeID uuid.UUID, title, body string) {
	if d.sender == nil {
		return
	}

	store, err := d.repo.FindStore(ctx, storeID)
	if err != nil {
		d.warn(ctx, fmt.Sprintf("store %s lookup failed, skipping external delivery", storeID), err)
		return
	}

	cfg, err := d.orgConfig.ConfigFor(ctx, store.OrgID)
	if err != nil {
		d.warn(ctx, fmt.Sprintf("org %s config lookup failed, skipping external delivery", store.OrgID), err)
		return
	}

	for _, channel := range cfg.NotificationChannels {
		recipient := ""
		switch enums.NotificationChannel(channel) {
		case enums.NotificationChannelSMS:
			recipient = store.Phone
		case enums.NotificationChannelEmail:
			recipient = store.Email
		default:
			continue
		}
		if recipient == "" {
			continue
		}
		if err := d.sender.Send(ctx, enums.NotificationChannel(channel), recipient, title, body); err != nil {
			d.warn(ctx, fmt.Sprintf("%s delivery to store %s failed", channel, storeID), err)
		}
	}
}

func (d *dispatcher) warn(ctx context.Context, msg string, err error) {
	if d.logg == nil {
		return
	}
	d.logg.Warn(ctx, fmt.Sprintf("%s: %v", msg, err))
}

func formatCents(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
