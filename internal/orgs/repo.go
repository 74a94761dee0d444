package orgs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Repository manages persistence for organizations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	Create(ctx context.Context, org *models.Organization) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orgs repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).
		Where("id = ?", orgID).
		First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *repository) Create(ctx context.Context, org *models.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(org).Error
}
