package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sampleloop/sampleloop-backend/pkg/db"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

// Repository manages persistence for catalog products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a products repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Product, error) {
	var list []models.Product
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("sku ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Service exposes the catalog: SKU lookups for the core and product
// registration per organization.
type Service interface {
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Product, error)
}

// CreateInput registers one catalog entry.
type CreateInput struct {
	OrgID            uuid.UUID
	SKU              string
	Name             string
	RetailPriceCents int
}

type service struct {
	repo Repository
}

// NewService wires the products service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sku required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.RetailPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retail price cannot be negative")
	}

	product := &models.Product{
		OrgID:            input.OrgID,
		SKU:              strings.ToUpper(strings.TrimSpace(input.SKU)),
		Name:             input.Name,
		RetailPriceCents: input.RetailPriceCents,
		Active:           true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Product, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	list, err := s.repo.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}
