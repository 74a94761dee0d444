package points

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Repository manages persistence for staff points.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStaff(ctx context.Context, staffID uuid.UUID) (*models.StaffMember, error)
	IncrementBalance(ctx context.Context, staffID uuid.UUID, amount int) (bool, error)
	AppendEntry(ctx context.Context, entry *models.PointsEntry) error
	ListEntries(ctx context.Context, staffID uuid.UUID) ([]models.PointsEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a points repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStaff(ctx context.Context, staffID uuid.UUID) (*models.StaffMember, error) {
	var staff models.StaffMember
	if err := r.db.WithContext(ctx).
		Where("id = ?", staffID).
		First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *repository) IncrementBalance(ctx context.Context, staffID uuid.UUID, amount int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE staff_members
		SET points_balance = points_balance + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, amount, staffID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AppendEntry(ctx context.Context, entry *models.PointsEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, staffID uuid.UUID) ([]models.PointsEntry, error) {
	var entries []models.PointsEntry
	if err := r.db.WithContext(ctx).
		Where("staff_id = ?", staffID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
