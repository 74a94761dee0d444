package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Repository manages persistence for purchase intents. Terminal transitions
// are guarded on the pending status so each intent settles exactly once.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, intent *models.PurchaseIntent) error
	Find(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error)
	MarkFulfilled(ctx context.Context, intentID, staffID uuid.UUID, finalPriceCents int) (bool, error)
	MarkCancelled(ctx context.Context, intentID uuid.UUID) (bool, error)
	ListPendingByStore(ctx context.Context, storeID uuid.UUID) ([]models.PurchaseIntent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a fulfillment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, intent *models.PurchaseIntent) error {
	if intent.ID == uuid.Nil {
		intent.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *repository) Find(ctx context.Context, intentID uuid.UUID) (*models.PurchaseIntent, error) {
	var intent models.PurchaseIntent
	if err := r.db.WithContext(ctx).
		Where("id = ?", intentID).
		First(&intent).Error; err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) MarkFulfilled(ctx context.Context, intentID, staffID uuid.UUID, finalPriceCents int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE purchase_intents
		SET status = 'fulfilled',
			fulfilled_by_staff_id = ?,
			final_price_cents = ?,
			fulfilled_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'
	`, staffID, finalPriceCents, intentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkCancelled(ctx context.Context, intentID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE purchase_intents
		SET status = 'cancelled',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'
	`, intentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListPendingByStore(ctx context.Context, storeID uuid.UUID) ([]models.PurchaseIntent, error) {
	var intents []models.PurchaseIntent
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeID, "pending").
		Order("created_at ASC").
		Find(&intents).Error; err != nil {
		return nil, err
	}
	return intents, nil
}
