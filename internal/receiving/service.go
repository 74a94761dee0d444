package receiving

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockReceiver lands a pending order in stock; the inventory ledger engine
// implements it.
type StockReceiver interface {
	ReceiveWholesale(ctx context.Context, orderID uuid.UUID) (*models.StockRecord, error)
}

// Service drives the wholesale receiving workflow.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.IncomingOrder, error)
	ReceiveOrder(ctx context.Context, orderID uuid.UUID) (*models.StockRecord, error)
	ReceiveByToken(ctx context.Context, token string) ([]ReceiveResult, error)
	ListPending(ctx context.Context, storeID uuid.UUID) ([]models.IncomingOrder, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	ledger StockReceiver
}

// PlaceOrderInput captures one wholesale line item being ordered.
type PlaceOrderInput struct {
	StoreID            uuid.UUID
	ProductSKU         string
	Quantity           int
	VerificationToken  string
	ShopifyOrderNumber *string
}

// ReceiveResult reports the outcome for one order in a token batch.
type ReceiveResult struct {
	OrderID    uuid.UUID `json:"order_id"`
	ProductSKU string    `json:"product_sku"`
	Received   bool      `json:"received"`
	Reason     string    `json:"reason,omitempty"`
}

// NewService wires the receiving workflow with its dependencies.
func NewService(repo Repository, tx txRunner, ledger StockReceiver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receiving repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock receiver required")
	}
	return &service{repo: repo, tx: tx, ledger: ledger}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.IncomingOrder, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.ProductSKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	token := input.VerificationToken
	if token == "" {
		token = uuid.NewString()
	}

	var placed *models.IncomingOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindStockRecord(ctx, input.StoreID, input.ProductSKU)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
			}
			record = &models.StockRecord{
				StoreID:    input.StoreID,
				ProductSKU: input.ProductSKU,
			}
			if err := repo.CreateStockRecord(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock record")
			}
		}

		order := &models.IncomingOrder{
			StockRecordID:      record.ID,
			StoreID:            input.StoreID,
			ProductSKU:         input.ProductSKU,
			QuantityOrdered:    input.Quantity,
			Status:             enums.IncomingOrderStatusPending,
			VerificationToken:  token,
			ShopifyOrderNumber: input.ShopifyOrderNumber,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create incoming order")
		}

		ok, err := repo.MarkIncoming(ctx, record.ID, input.Quantity, token, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark incoming stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeDependency, "stock record disappeared during placement")
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) ReceiveOrder(ctx context.Context, orderID uuid.UUID) (*models.StockRecord, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	return s.ledger.ReceiveWholesale(ctx, orderID)
}

// ReceiveByToken receives every order sharing a verification token. Each
// order keeps its own transaction, so one failure never unwinds the rest;
// already-received orders are reported rather than skipped.
func (s *service) ReceiveByToken(ctx context.Context, token string) ([]ReceiveResult, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification token required")
	}

	orders, err := s.repo.ListOrdersByToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by token")
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders for verification token")
	}

	results := make([]ReceiveResult, 0, len(orders))
	for _, order := range orders {
		result := ReceiveResult{OrderID: order.ID, ProductSKU: order.ProductSKU}
		if _, err := s.ledger.ReceiveWholesale(ctx, order.ID); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				result.Reason = typed.Message()
			} else {
				result.Reason = err.Error()
			}
		} else {
			result.Received = true
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) ListPending(ctx context.Context, storeID uuid.UUID) ([]models.IncomingOrder, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	orders, err := s.repo.ListPendingByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}
	return orders, nil
}
