package displays

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Repository manages persistence for display units. Status transitions are
// guarded conditional updates keyed on the current status, which serializes
// concurrent transitions on the same display.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, display *models.Display) error
	FindByDisplayID(ctx context.Context, displayID string) (*models.Display, error)
	ListByOwner(ctx context.Context, ownerOrgID uuid.UUID) ([]models.Display, error)
	MarkSold(ctx context.Context, ids []uuid.UUID, assignedOrgID uuid.UUID) (int64, error)
	Activate(ctx context.Context, id uuid.UUID, storeID uuid.UUID) (bool, error)
	Reset(ctx context.Context, id uuid.UUID) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a display repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, display *models.Display) error {
	if display.ID == uuid.Nil {
		display.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(display).Error
}

func (r *repository) FindByDisplayID(ctx context.Context, displayID string) (*models.Display, error) {
	var display models.Display
	if err := r.db.WithContext(ctx).
		Where("display_id = ?", displayID).
		First(&display).Error; err != nil {
		return nil, err
	}
	return &display, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerOrgID uuid.UUID) ([]models.Display, error) {
	var displays []models.Display
	if err := r.db.WithContext(ctx).
		Where("owner_org_id = ?", ownerOrgID).
		Order("created_at ASC").
		Find(&displays).Error; err != nil {
		return nil, err
	}
	return displays, nil
}

func (r *repository) MarkSold(ctx context.Context, ids []uuid.UUID, assignedOrgID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE displays
		SET status = 'sold',
			assigned_org_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id IN ? AND status = 'inventory'
	`, assignedOrgID, ids)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) Activate(ctx context.Context, id uuid.UUID, storeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE displays
		SET status = 'active',
			store_id = ?,
			activated_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN ('inventory', 'sold')
	`, storeID, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Reset returns an active display to inventory. assigned_org_id is left
// untouched so a re-activation keeps the same brand binding.
func (r *repository) Reset(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE displays
		SET status = 'inventory',
			store_id = NULL,
			activated_at = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'active' AND store_id IS NOT NULL
	`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE displays
		SET status = 'inactive',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'inactive'
	`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
