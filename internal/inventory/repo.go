package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/pagination"
)

// Repository manages persistence for stock records and their ledger.
// The guarded updates return false when the conditional WHERE clause
// rejected the mutation, which callers translate into domain errors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStockRecord(ctx context.Context, storeID uuid.UUID, sku string) (*models.StockRecord, error)
	FindIncomingOrder(ctx context.Context, orderID uuid.UUID) (*models.IncomingOrder, error)
	MarkOrderReceived(ctx context.Context, orderID uuid.UUID, qty int) (bool, error)
	ReceiveStock(ctx context.Context, recordID uuid.UUID, qty int) (bool, error)
	ReserveStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error)
	ReleaseStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error)
	ConsumeStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error)
	DeductStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error)
	AdjustStock(ctx context.Context, storeID uuid.UUID, sku string, delta int) (bool, error)
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntries(ctx context.Context, storeID uuid.UUID, sku string, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error)
	ListEntriesAscending(ctx context.Context, storeID uuid.UUID, sku string) ([]models.LedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
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

func (r *repository) FindIncomingOrder(ctx context.Context, orderID uuid.UUID) (*models.IncomingOrder, error) {
	var order models.IncomingOrder
	if err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkOrderReceived flips a pending order to received exactly once. The
// status guard serializes concurrent receives of the same order.
func (r *repository) MarkOrderReceived(ctx context.Context, orderID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE incoming_orders
		SET status = 'received',
			quantity_received = ?,
			received_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'
	`, qty, orderID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReceiveStock moves a received quantity from incoming to on hand. The
// incoming guard makes a shortfall fail the update instead of clamping the
// counter to zero.
func (r *repository) ReceiveStock(ctx context.Context, recordID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_on_hand = quantity_on_hand + ?,
			quantity_incoming = quantity_incoming - ?,
			verification_token = NULL,
			pending_order_id = NULL,
			last_restocked = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity_incoming >= ?
	`, qty, qty, recordID, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ReserveStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_reserved = quantity_reserved + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_sku = ?
			AND quantity_on_hand - quantity_reserved >= ?
	`, qty, storeID, sku, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ReleaseStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_reserved = quantity_reserved - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_sku = ? AND quantity_reserved >= ?
	`, qty, storeID, sku, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ConsumeStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_on_hand = quantity_on_hand - ?,
			quantity_reserved = quantity_reserved - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_sku = ?
			AND quantity_reserved >= ? AND quantity_on_hand >= ?
	`, qty, qty, storeID, sku, qty, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeductStock removes unreserved stock, used for sample redemptions.
func (r *repository) DeductStock(ctx context.Context, storeID uuid.UUID, sku string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_on_hand = quantity_on_hand - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_sku = ?
			AND quantity_on_hand - quantity_reserved >= ?
	`, qty, storeID, sku, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AdjustStock(ctx context.Context, storeID uuid.UUID, sku string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE stock_records
		SET quantity_on_hand = quantity_on_hand + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE store_id = ? AND product_sku = ?
			AND quantity_on_hand + ? >= quantity_reserved
			AND quantity_on_hand + ? >= 0
	`, delta, storeID, sku, delta, delta)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, storeID uuid.UUID, sku string, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("store_id = ? AND product_sku = ?", storeID, sku).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListEntriesAscending(ctx context.Context, storeID uuid.UUID, sku string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_sku = ?", storeID, sku).
		Order("created_at ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
