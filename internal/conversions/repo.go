package conversions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Repository manages persistence for conversions and the customer sample
// records attribution evaluates against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	RecordCustomerSample(ctx context.Context, customerID uuid.UUID, sampleDate time.Time, storeID uuid.UUID) (bool, error)
	FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	ExistsForIntent(ctx context.Context, intentID uuid.UUID) (bool, error)
	Create(ctx context.Context, conversion *models.Conversion) error
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Conversion, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a conversions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("id = ?", customerID).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// RecordCustomerSample stamps the first sample only; a later redemption
// never moves an existing attribution anchor.
func (r *repository) RecordCustomerSample(ctx context.Context, customerID uuid.UUID, sampleDate time.Time, storeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE customers
		SET sample_date = ?,
			attributed_store_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND sample_date IS NULL
	`, sampleDate, storeID, customerID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("id = ?", storeID).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) ExistsForIntent(ctx context.Context, intentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Conversion{}).
		Where("purchase_intent_id = ?", intentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Create(ctx context.Context, conversion *models.Conversion) error {
	if conversion.ID == uuid.Nil {
		conversion.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(conversion).Error
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Conversion, error) {
	var list []models.Conversion
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
