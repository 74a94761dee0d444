package orgs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appconfig "github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

// ConfigCache is the slice of the redis client this service uses. A nil
// cache degrades to direct database reads.
type ConfigCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	OrgConfigKey(orgID string) string
}

// Config is the per-organization tuning the core reads on every attribution
// and notification decision.
type Config struct {
	OrgID                 uuid.UUID `json:"org_id"`
	CommissionRate        int       `json:"commission_rate"`
	AttributionWindowDays int       `json:"attribution_window_days"`
	NotificationChannels  []string  `json:"notification_channels"`
}

// Service reads organization records and their cached configuration.
type Service interface {
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	Create(ctx context.Context, input CreateInput) (*models.Organization, error)
	ConfigFor(ctx context.Context, orgID uuid.UUID) (Config, error)
	InvalidateConfig(ctx context.Context, orgID uuid.UUID)
}

// CreateInput registers a brand tenant.
type CreateInput struct {
	Name                  string
	CommissionRate        *int
	AttributionWindowDays *int
	NotificationChannels  []string
}

type service struct {
	repo     Repository
	cache    ConfigCache
	defaults appconfig.OrgConfig
	logg     *logger.Logger
}

// NewService wires organization reads with a redis-backed config cache.
func NewService(repo Repository, cache ConfigCache, defaults appconfig.OrgConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orgs repository required")
	}
	return &service{repo: repo, cache: cache, defaults: defaults, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	org, err := s.repo.Find(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return org, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Organization, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name required")
	}

	org := &models.Organization{
		Name:                  input.Name,
		CommissionRate:        s.defaults.DefaultCommissionRate,
		AttributionWindowDays: s.defaults.DefaultAttributionWindowDays,
		NotificationChannels:  input.NotificationChannels,
	}
	if input.CommissionRate != nil {
		if *input.CommissionRate < 0 || *input.CommissionRate > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission rate must be between 0 and 100")
		}
		org.CommissionRate = *input.CommissionRate
	}
	if input.AttributionWindowDays != nil {
		if *input.AttributionWindowDays < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "attribution window cannot be negative")
		}
		org.AttributionWindowDays = *input.AttributionWindowDays
	}

	if err := s.repo.Create(ctx, org); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create organization")
	}
	return org, nil
}

// ConfigFor serves from the cache when possible and falls back to the
// database on a miss or any cache error; cache failures never fail a read.
func (s *service) ConfigFor(ctx context.Context, orgID uuid.UUID) (Config, error) {
	if orgID == uuid.Nil {
		return Config{}, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, s.cache.OrgConfigKey(orgID.String())); err == nil {
			var cached Config
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	org, err := s.Get(ctx, orgID)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		OrgID:                 org.ID,
		CommissionRate:        org.CommissionRate,
		AttributionWindowDays: org.AttributionWindowDays,
		NotificationChannels:  org.NotificationChannels,
	}

	if s.cache != nil {
		payload, err := json.Marshal(cfg)
		if err == nil {
			if err := s.cache.Set(ctx, s.cache.OrgConfigKey(orgID.String()), payload, s.defaults.ConfigCacheTTL); err != nil && s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("org config cache write failed: %v", err))
			}
		}
	}
	return cfg, nil
}

func (s *service) InvalidateConfig(ctx context.Context, orgID uuid.UUID) {
	if s.cache == nil || orgID == uuid.Nil {
		return
	}
	if err := s.cache.Del(ctx, s.cache.OrgConfigKey(orgID.String())); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("org config cache invalidation failed: %v", err))
	}
}
