package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

// Repository manages persistence for retail stores.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Store, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stores repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("id = ?", storeID).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Store, error) {
	var list []models.Store
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Service exposes store registration and the existence lookups the core
// modules depend on.
type Service interface {
	Get(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	Register(ctx context.Context, input RegisterInput) (*models.Store, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Store, error)
}

// RegisterInput enrolls a retail location under an organization.
type RegisterInput struct {
	OrgID uuid.UUID
	Name  string
	Phone string
	Email string
}

type service struct {
	repo Repository
}

// NewService wires the stores service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	store, err := s.repo.Find(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Store, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}

	store := &models.Store{
		OrgID:  input.OrgID,
		Name:   input.Name,
		Phone:  input.Phone,
		Email:  input.Email,
		Active: true,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return store, nil
}

func (s *service) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Store, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	list, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	return list, nil
}
