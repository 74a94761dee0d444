package receiving

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Repository manages persistence for incoming wholesale orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStockRecord(ctx context.Context, storeID uuid.UUID, sku string) (*models.StockRecord, error)
	CreateStockRecord(ctx context.Context, record *models.StockRecord) error
	MarkIncoming(ctx context.Context, recordID uuid.UUID, qty int, token string, orderID uuid.UUID) (bool, error)
	CreateOrder(ctx context.Context, order *models.IncomingOrder) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.IncomingOrder, error)
	ListOrdersByToken(ctx context.Context, token string) ([]models.IncomingOrder, error)
	ListPendingByStore(ctx context.Context, storeID uuid.UUID) ([]models.IncomingOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a receiving repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStockRecord(ctx context.Context, storeID uuid.UUID, sku string) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_sku = ?", storeID, sku).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) CreateStockRecord(ctx context.Context, record *models.StockRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// MarkIncoming bumps the pending quantity and points the record at the open
// receiving batch.
func (r *repository) MarkIncoming(ctx context.Context, recordID uuid.UUID, qty int, token string, orderID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_incoming = quantity_incoming + ?,
			verification_token = ?,
			pending_order_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, token, orderID, recordID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.IncomingOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.IncomingOrder, error) {
	var order models.IncomingOrder
	if err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByToken(ctx context.Context, token string) ([]models.IncomingOrder, error) {
	var orders []models.IncomingOrder
	if err := r.db.WithContext(ctx).
		Where("verification_token = ?", token).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListPendingByStore(ctx context.Context, storeID uuid.UUID) ([]models.IncomingOrder, error) {
	var orders []models.IncomingOrder
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeID, "pending").
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
