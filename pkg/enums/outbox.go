package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateStockRecord    OutboxAggregateType = "stock_record"
	AggregateIncomingOrder  OutboxAggregateType = "incoming_order"
	AggregateDisplay        OutboxAggregateType = "display"
	AggregatePurchaseIntent OutboxAggregateType = "purchase_intent"
	AggregateConversion     OutboxAggregateType = "conversion"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateStockRecord,
	AggregateIncomingOrder,
	AggregateDisplay,
	AggregatePurchaseIntent,
	AggregateConversion,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventWholesaleReceived OutboxEventType = "wholesale_received"
	EventStockAdjusted     OutboxEventType = "stock_adjusted"
	EventSampleRedeemed    OutboxEventType = "sample_redeemed"
	EventIntentCreated     OutboxEventType = "purchase_intent_created"
	EventIntentFulfilled   OutboxEventType = "purchase_intent_fulfilled"
	EventIntentCancelled   OutboxEventType = "purchase_intent_cancelled"
	EventDisplayActivated  OutboxEventType = "display_activated"
	EventDisplayReset      OutboxEventType = "display_reset"
)

var validOutboxEventTypes = []OutboxEventType{
	EventWholesaleReceived,
	EventStockAdjusted,
	EventSampleRedeemed,
	EventIntentCreated,
	EventIntentFulfilled,
	EventIntentCancelled,
	EventDisplayActivated,
	EventDisplayReset,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
