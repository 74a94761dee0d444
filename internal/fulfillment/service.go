package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockLedger is the slice of the inventory ledger engine fulfillment needs.
// Every intent reserves stock at creation; fulfillment consumes exactly that
// reservation, and cancellation returns it.
type StockLedger interface {
	ReserveTx(ctx context.Context, tx *gorm.DB, cmd inventory.ReserveCommand) error
	ReleaseTx(ctx context.Context, tx *gorm.DB, cmd inventory.ReleaseCommand) error
	ConsumeTx(ctx context.Context, tx *gorm.DB, cmd inventory.ConsumeCommand) error
}

// PointsSink awards staff commission points inside the fulfillment
// transaction; a failed award aborts the whole fulfillment.
type PointsSink interface {
	AwardTx(ctx context.Context, tx *gorm.DB, staffID uuid.UUID, amount int, reason string) error
}

// Service drives the purchase-intent lifecycle.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*models.PurchaseIntent, error)
	Fulfill(ctx context.Context, input FulfillInput) (*models.PurchaseIntent, error)
	Cancel(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error)
	Get(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error)
	ListPending(ctx context.Context, storeID uuid.UUID) ([]models.PurchaseIntent, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger StockLedger
	points PointsSink
	outbox outboxPublisher
}

// CreateIntentInput captures a customer's request to buy.
type CreateIntentInput struct {
	CustomerID      uuid.UUID
	StoreID         uuid.UUID
	ProductSKU      string
	Quantity        int
	DiscountPercent int
}

// FulfillInput captures a staff member completing a sale at the counter.
type FulfillInput struct {
	IntentID        uuid.UUID
	StaffID         uuid.UUID
	FinalPriceCents int
}

// IntentCreatedEvent is emitted when a customer starts a purchase.
type IntentCreatedEvent struct {
	IntentID   uuid.UUID `json:"intent_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StoreID    uuid.UUID `json:"store_id"`
	ProductSKU string    `json:"product_sku"`
	Quantity   int       `json:"quantity"`
}

// IntentFulfilledEvent is emitted after the fulfillment transaction commits;
// the attribution recorder consumes it.
type IntentFulfilledEvent struct {
	IntentID        uuid.UUID `json:"intent_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	StoreID         uuid.UUID `json:"store_id"`
	ProductSKU      string    `json:"product_sku"`
	Quantity        int       `json:"quantity"`
	FinalPriceCents int       `json:"final_price_cents"`
	StaffID         uuid.UUID `json:"staff_id"`
	FulfilledAt     time.Time `json:"fulfilled_at"`
}

// IntentCancelledEvent is emitted when a pending intent is abandoned.
type IntentCancelledEvent struct {
	IntentID   uuid.UUID `json:"intent_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StoreID    uuid.UUID `json:"store_id"`
	ProductSKU string    `json:"product_sku"`
	Quantity   int       `json:"quantity"`
}

// NewService wires purchase-intent fulfillment with its dependencies.
func NewService(repo Repository, tx txRunner, ledger StockLedger, points PointsSink, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if points == nil {
		return nil, fmt.Errorf("points sink required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		ledger: ledger,
		points: points,
		outbox: publisher,
	}, nil
}

func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*models.PurchaseIntent, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.ProductSKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}

	var created *models.PurchaseIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		intent := &models.PurchaseIntent{
			CustomerID:      input.CustomerID,
			StoreID:         input.StoreID,
			ProductSKU:      input.ProductSKU,
			Quantity:        input.Quantity,
			Status:          enums.PurchaseIntentStatusPending,
			DiscountPercent: input.DiscountPercent,
		}
		if err := repo.Create(ctx, intent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase intent")
		}

		notes := fmt.Sprintf("purchase intent %s", intent.ID)
		if err := s.ledger.ReserveTx(ctx, tx, inventory.ReserveCommand{
			StoreID:    input.StoreID,
			ProductSKU: input.ProductSKU,
			Quantity:   input.Quantity,
			Notes:      &notes,
		}); err != nil {
			return err
		}

		created = intent
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventIntentCreated,
			AggregateType: enums.AggregatePurchaseIntent,
			AggregateID:   intent.ID,
			Version:       1,
			Data: IntentCreatedEvent{
				IntentID:   intent.ID,
				CustomerID: intent.CustomerID,
				StoreID:    intent.StoreID,
				ProductSKU: intent.ProductSKU,
				Quantity:   intent.Quantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Fulfill settles a pending intent as one atomic unit: the status flip, the
// stock consumption, and the staff points award commit or roll back together.
func (s *service) Fulfill(ctx context.Context, input FulfillInput) (*models.PurchaseIntent, error) {
	if input.IntentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	if input.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	if input.FinalPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "final price cannot be negative")
	}

	var fulfilled *models.PurchaseIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		intent, err := s.load(ctx, repo, input.IntentID)
		if err != nil {
			return err
		}
		if intent.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("intent already %s", intent.Status))
		}

		ok, err := repo.MarkFulfilled(ctx, intent.ID, input.StaffID, input.FinalPriceCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark intent fulfilled")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "intent settled concurrently")
		}

		notes := fmt.Sprintf("fulfillment of intent %s", intent.ID)
		if err := s.ledger.ConsumeTx(ctx, tx, inventory.ConsumeCommand{
			StoreID:    intent.StoreID,
			ProductSKU: intent.ProductSKU,
			Quantity:   intent.Quantity,
			Notes:      &notes,
		}); err != nil {
			return err
		}

		if err := s.points.AwardTx(ctx, tx, input.StaffID, pointsFor(input.FinalPriceCents), "purchase fulfillment"); err != nil {
			return err
		}

		intent, err = s.load(ctx, repo, input.IntentID)
		if err != nil {
			return err
		}
		fulfilled = intent

		fulfilledAt := time.Now()
		if intent.FulfilledAt != nil {
			fulfilledAt = *intent.FulfilledAt
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventIntentFulfilled,
			AggregateType: enums.AggregatePurchaseIntent,
			AggregateID:   intent.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{StaffID: &input.StaffID, StoreID: &intent.StoreID},
			Data: IntentFulfilledEvent{
				IntentID:        intent.ID,
				CustomerID:      intent.CustomerID,
				StoreID:         intent.StoreID,
				ProductSKU:      intent.ProductSKU,
				Quantity:        intent.Quantity,
				FinalPriceCents: input.FinalPriceCents,
				StaffID:         input.StaffID,
				FulfilledAt:     fulfilledAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return fulfilled, nil
}

func (s *service) Cancel(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}

	var cancelled *models.PurchaseIntent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		intent, err := s.load(ctx, repo, intentID)
		if err != nil {
			return err
		}
		if intent.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("intent already %s", intent.Status))
		}

		ok, err := repo.MarkCancelled(ctx, intent.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark intent cancelled")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "intent settled concurrently")
		}

		notes := fmt.Sprintf("cancellation of intent %s", intent.ID)
		if err := s.ledger.ReleaseTx(ctx, tx, inventory.ReleaseCommand{
			StoreID:    intent.StoreID,
			ProductSKU: intent.ProductSKU,
			Quantity:   intent.Quantity,
			Notes:      &notes,
		}); err != nil {
			return err
		}

		intent, err = s.load(ctx, repo, intentID)
		if err != nil {
			return err
		}
		cancelled = intent

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventIntentCancelled,
			AggregateType: enums.AggregatePurchaseIntent,
			AggregateID:   intent.ID,
			Version:       1,
			Data: IntentCancelledEvent{
				IntentID:   intent.ID,
				CustomerID: intent.CustomerID,
				StoreID:    intent.StoreID,
				ProductSKU: intent.ProductSKU,
				Quantity:   intent.Quantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) Get(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error) {
	if intentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	return s.load(ctx, s.repo, intentID)
}

func (s *service) ListPending(ctx context.Context, storeID uuid.UUID) ([]models.PurchaseIntent, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	intents, err := s.repo.ListPendingByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending intents")
	}
	return intents, nil
}

func (s *service) load(ctx context.Context, repo Repository, intentID uuid.UUID) (*models.PurchaseIntent, error) {
	intent, err := repo.Find(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase intent")
	}
	return intent, nil
}

// pointsFor converts a sale price into commission points: one point per
// whole dollar, with a floor of one point so every completed sale counts.
func pointsFor(finalPriceCents int) int {
	points := finalPriceCents / 100
	if points < 1 {
		points = 1
	}
	return points
}
