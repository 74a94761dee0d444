package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/metrics"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
	"github.com/sampleloop/sampleloop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the ledger engine. Every mutating operation runs the stock
// snapshot update and its ledger append as one transaction; the Tx variants
// participate in a caller-owned transaction instead of opening their own.
type Service interface {
	ReceiveWholesale(ctx context.Context, orderID uuid.UUID) (*models.StockRecord, error)
	Reserve(ctx context.Context, cmd ReserveCommand) error
	Release(ctx context.Context, cmd ReleaseCommand) error
	ConsumeOnFulfillment(ctx context.Context, cmd ConsumeCommand) error
	RedeemSample(ctx context.Context, cmd RedeemSampleCommand) error
	Adjust(ctx context.Context, cmd AdjustCommand) (*models.LedgerEntry, error)
	GetStock(ctx context.Context, storeID uuid.UUID, sku string) (*models.StockRecord, error)
	ListLedger(ctx context.Context, query LedgerQuery) ([]models.LedgerEntry, *string, error)
	VerifyLedger(ctx context.Context, storeID uuid.UUID, sku string) (*VerifyResult, error)

	ReserveTx(ctx context.Context, tx *gorm.DB, cmd ReserveCommand) error
	ReleaseTx(ctx context.Context, tx *gorm.DB, cmd ReleaseCommand) error
	ConsumeTx(ctx context.Context, tx *gorm.DB, cmd ConsumeCommand) error
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.LedgerMetrics
}

// VerifyResult reports a ledger replay for one (store, SKU) pair.
type VerifyResult struct {
	Valid            bool       `json:"valid"`
	EntryCount       int        `json:"entry_count"`
	ComputedBalance  int        `json:"computed_balance"`
	RecordedBalance  int        `json:"recorded_balance"`
	FirstMismatchID  *uuid.UUID `json:"first_mismatch_id,omitempty"`
	MismatchExpected *int       `json:"mismatch_expected,omitempty"`
	MismatchRecorded *int       `json:"mismatch_recorded,omitempty"`
}

// WholesaleReceivedEvent is emitted when an incoming order lands in stock.
type WholesaleReceivedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	StoreID      uuid.UUID `json:"store_id"`
	ProductSKU   string    `json:"product_sku"`
	Quantity     int       `json:"quantity"`
	BalanceAfter int       `json:"balance_after"`
}

// StockAdjustedEvent is emitted for manual corrections.
type StockAdjustedEvent struct {
	StoreID      uuid.UUID `json:"store_id"`
	ProductSKU   string    `json:"product_sku"`
	Delta        int       `json:"delta"`
	Reason       string    `json:"reason"`
	BalanceAfter int       `json:"balance_after"`
}

// SampleRedeemedEvent is emitted when a sample unit leaves stock.
type SampleRedeemedEvent struct {
	StoreID      uuid.UUID  `json:"store_id"`
	ProductSKU   string     `json:"product_sku"`
	Quantity     int        `json:"quantity"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty"`
	BalanceAfter int        `json:"balance_after"`
}

// NewService wires the ledger engine with its dependencies. Metrics may be nil.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  publisher,
		metrics: ledgerMetrics,
	}, nil
}

func (s *service) instrument(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(operation)
		return err
	}
	s.metrics.IncSuccess(operation)
	return nil
}

func (s *service) ReceiveWholesale(ctx context.Context, orderID uuid.UUID) (*models.StockRecord, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var received *models.StockRecord
	err := s.instrument("receive_wholesale", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order, err := repo.FindIncomingOrder(ctx, orderID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "incoming order not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load incoming order")
			}
			if order.Status == enums.IncomingOrderStatusReceived {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already received")
			}

			ok, err := repo.MarkOrderReceived(ctx, order.ID, order.QuantityOrdered)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order received")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already received")
			}

			ok, err = repo.ReceiveStock(ctx, order.StockRecordID, order.QuantityOrdered)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply received stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "stock record missing or incoming below received quantity")
			}

			record, err := repo.FindStockRecord(ctx, order.StoreID, order.ProductSKU)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
			}

			notes := fmt.Sprintf("wholesale order %s", order.ID)
			entry := &models.LedgerEntry{
				StoreID:       order.StoreID,
				ProductSKU:    order.ProductSKU,
				Type:          enums.LedgerEntryTypeWholesaleReceived,
				QuantityDelta: order.QuantityOrdered,
				BalanceAfter:  record.QuantityOnHand,
				Notes:         &notes,
			}
			if err := repo.AppendEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
			}

			received = record
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventWholesaleReceived,
				AggregateType: enums.AggregateIncomingOrder,
				AggregateID:   order.ID,
				Version:       1,
				Data: WholesaleReceivedEvent{
					OrderID:      order.ID,
					StoreID:      order.StoreID,
					ProductSKU:   order.ProductSKU,
					Quantity:     order.QuantityOrdered,
					BalanceAfter: record.QuantityOnHand,
				},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return received, nil
}

func (s *service) Reserve(ctx context.Context, cmd ReserveCommand) error {
	return s.instrument("reserve", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.ReserveTx(ctx, tx, cmd)
		})
	})
}

func (s *service) ReserveTx(ctx context.Context, tx *gorm.DB, cmd ReserveCommand) error {
	if err := validateKeyAndQty(cmd.StoreID, cmd.ProductSKU, cmd.Quantity); err != nil {
		return err
	}
	repo := s.repo.WithTx(tx)

	ok, err := repo.ReserveStock(ctx, cmd.StoreID, cmd.ProductSKU, cmd.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}
	if !ok {
		return s.rejectedMutation(ctx, repo, cmd.StoreID, cmd.ProductSKU, "insufficient available stock")
	}

	return s.appendZeroDeltaEntry(ctx, repo, enums.LedgerEntryTypeReservation, cmd.StoreID, cmd.ProductSKU, cmd.Quantity, cmd.Notes)
}

func (s *service) Release(ctx context.Context, cmd ReleaseCommand) error {
	return s.instrument("release", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.ReleaseTx(ctx, tx, cmd)
		})
	})
}

func (s *service) ReleaseTx(ctx context.Context, tx *gorm.DB, cmd ReleaseCommand) error {
	if err := validateKeyAndQty(cmd.StoreID, cmd.ProductSKU, cmd.Quantity); err != nil {
		return err
	}
	repo := s.repo.WithTx(tx)

	ok, err := repo.ReleaseStock(ctx, cmd.StoreID, cmd.ProductSKU, cmd.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
	}
	if !ok {
		return s.rejectedMutation(ctx, repo, cmd.StoreID, cmd.ProductSKU, "release exceeds reserved stock")
	}

	return s.appendZeroDeltaEntry(ctx, repo, enums.LedgerEntryTypeRelease, cmd.StoreID, cmd.ProductSKU, cmd.Quantity, cmd.Notes)
}

func (s *service) ConsumeOnFulfillment(ctx context.Context, cmd ConsumeCommand) error {
	return s.instrument("consume", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.ConsumeTx(ctx, tx, cmd)
		})
	})
}

func (s *service) ConsumeTx(ctx context.Context, tx *gorm.DB, cmd ConsumeCommand) error {
	if err := validateKeyAndQty(cmd.StoreID, cmd.ProductSKU, cmd.Quantity); err != nil {
		return err
	}
	repo := s.repo.WithTx(tx)

	ok, err := repo.ConsumeStock(ctx, cmd.StoreID, cmd.ProductSKU, cmd.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume stock")
	}
	if !ok {
		return s.rejectedMutation(ctx, repo, cmd.StoreID, cmd.ProductSKU, "consume exceeds reserved stock")
	}

	record, err := repo.FindStockRecord(ctx, cmd.StoreID, cmd.ProductSKU)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
	}

	entry := &models.LedgerEntry{
		StoreID:       cmd.StoreID,
		ProductSKU:    cmd.ProductSKU,
		Type:          enums.LedgerEntryTypePurchaseFulfilled,
		QuantityDelta: -cmd.Quantity,
		BalanceAfter:  record.QuantityOnHand,
		Notes:         cmd.Notes,
	}
	if err := repo.AppendEntry(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return nil
}

func (s *service) RedeemSample(ctx context.Context, cmd RedeemSampleCommand) error {
	if err := validateKeyAndQty(cmd.StoreID, cmd.ProductSKU, cmd.Quantity); err != nil {
		return err
	}

	return s.instrument("redeem_sample", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			ok, err := repo.DeductStock(ctx, cmd.StoreID, cmd.ProductSKU, cmd.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct sample stock")
			}
			if !ok {
				return s.rejectedMutation(ctx, repo, cmd.StoreID, cmd.ProductSKU, "insufficient available stock")
			}

			record, err := repo.FindStockRecord(ctx, cmd.StoreID, cmd.ProductSKU)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
			}

			notes := "sample redemption"
			if cmd.CustomerID != nil {
				notes = fmt.Sprintf("sample redemption for customer %s", cmd.CustomerID)
			}
			entry := &models.LedgerEntry{
				StoreID:       cmd.StoreID,
				ProductSKU:    cmd.ProductSKU,
				Type:          enums.LedgerEntryTypeSampleRedeemed,
				QuantityDelta: -cmd.Quantity,
				BalanceAfter:  record.QuantityOnHand,
				Notes:         &notes,
			}
			if err := repo.AppendEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
			}

			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventSampleRedeemed,
				AggregateType: enums.AggregateStockRecord,
				AggregateID:   record.ID,
				Version:       1,
				Data: SampleRedeemedEvent{
					StoreID:      cmd.StoreID,
					ProductSKU:   cmd.ProductSKU,
					Quantity:     cmd.Quantity,
					CustomerID:   cmd.CustomerID,
					BalanceAfter: record.QuantityOnHand,
				},
			})
		})
	})
}

func (s *service) Adjust(ctx context.Context, cmd AdjustCommand) (*models.LedgerEntry, error) {
	if cmd.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if cmd.ProductSKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if cmd.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta cannot be zero")
	}
	if cmd.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason required")
	}

	var appended *models.LedgerEntry
	err := s.instrument("adjust", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			ok, err := repo.AdjustStock(ctx, cmd.StoreID, cmd.ProductSKU, cmd.Delta)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
			}
			if !ok {
				return s.rejectedMutation(ctx, repo, cmd.StoreID, cmd.ProductSKU, "adjustment would drive stock negative")
			}

			record, err := repo.FindStockRecord(ctx, cmd.StoreID, cmd.ProductSKU)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
			}

			entry := &models.LedgerEntry{
				StoreID:       cmd.StoreID,
				ProductSKU:    cmd.ProductSKU,
				Type:          enums.LedgerEntryTypeAdjustment,
				QuantityDelta: cmd.Delta,
				BalanceAfter:  record.QuantityOnHand,
				Notes:         &cmd.Reason,
			}
			if err := repo.AppendEntry(ctx, entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
			}
			appended = entry

			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventStockAdjusted,
				AggregateType: enums.AggregateStockRecord,
				AggregateID:   record.ID,
				Version:       1,
				Data: StockAdjustedEvent{
					StoreID:      cmd.StoreID,
					ProductSKU:   cmd.ProductSKU,
					Delta:        cmd.Delta,
					Reason:       cmd.Reason,
					BalanceAfter: record.QuantityOnHand,
				},
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return appended, nil
}

func (s *service) GetStock(ctx context.Context, storeID uuid.UUID, sku string) (*models.StockRecord, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}

	record, err := s.repo.FindStockRecord(ctx, storeID, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	return record, nil
}

func (s *service) ListLedger(ctx context.Context, query LedgerQuery) ([]models.LedgerEntry, *string, error) {
	if query.StoreID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if query.ProductSKU == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}

	cursor, err := pagination.ParseCursor(query.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(query.Limit)
	entries, err := s.repo.ListEntries(ctx, query.StoreID, query.ProductSKU, limit+1, cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	var nextCursor *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		nextCursor = &encoded
	}
	return entries, nextCursor, nil
}

func (s *service) VerifyLedger(ctx context.Context, storeID uuid.UUID, sku string) (*VerifyResult, error) {
	record, err := s.GetStock(ctx, storeID, sku)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntriesAscending(ctx, storeID, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entries")
	}

	result := &VerifyResult{
		EntryCount:      len(entries),
		RecordedBalance: record.QuantityOnHand,
	}
	running := 0
	for i := range entries {
		entry := entries[i]
		running += entry.QuantityDelta
		if running != entry.BalanceAfter {
			expected := running
			recorded := entry.BalanceAfter
			result.ComputedBalance = running
			result.FirstMismatchID = &entry.ID
			result.MismatchExpected = &expected
			result.MismatchRecorded = &recorded
			return result, nil
		}
	}
	result.ComputedBalance = running
	result.Valid = running == record.QuantityOnHand
	return result, nil
}

// rejectedMutation classifies a guarded update that matched no rows: either
// the record does not exist or the guard condition failed.
func (s *service) rejectedMutation(ctx context.Context, repo Repository, storeID uuid.UUID, sku, message string) error {
	if _, err := repo.FindStockRecord(ctx, storeID, sku); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock record not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message)
}

// appendZeroDeltaEntry records a reservation or release. Neither moves
// quantity_on_hand, so the replayable delta is zero and the moved quantity
// lives in the notes.
func (s *service) appendZeroDeltaEntry(ctx context.Context, repo Repository, entryType enums.LedgerEntryType, storeID uuid.UUID, sku string, qty int, notes *string) error {
	record, err := repo.FindStockRecord(ctx, storeID, sku)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stock record")
	}

	text := fmt.Sprintf("%s of %d units", entryType, qty)
	if notes != nil {
		text = fmt.Sprintf("%s of %d units: %s", entryType, qty, *notes)
	}
	entry := &models.LedgerEntry{
		StoreID:       storeID,
		ProductSKU:    sku,
		Type:          entryType,
		QuantityDelta: 0,
		BalanceAfter:  record.QuantityOnHand,
		Notes:         &text,
	}
	if err := repo.AppendEntry(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return nil
}

func validateKeyAndQty(storeID uuid.UUID, sku string, qty int) error {
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if sku == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
