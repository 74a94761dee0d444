package displays

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	"github.com/sampleloop/sampleloop-backend/pkg/enums"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
	"github.com/sampleloop/sampleloop-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Route tells the QR scan handler which customer flow a display leads to.
type Route string

const (
	// RouteActivation sends the scanner into the display activation flow.
	RouteActivation Route = "activation"
	// RoutePurchase sends the scanner into the sample and purchase flow.
	RoutePurchase Route = "purchase"
)

// Service drives the display unit lifecycle.
type Service interface {
	CreateBatch(ctx context.Context, input CreateBatchInput) ([]models.Display, error)
	MarkSold(ctx context.Context, displayIDs []string, assignedOrgID uuid.UUID) (int, error)
	Activate(ctx context.Context, displayID string, storeID uuid.UUID) (*models.Display, error)
	Reset(ctx context.Context, displayID string) (*models.Display, error)
	Deactivate(ctx context.Context, displayID string) (*models.Display, error)
	Get(ctx context.Context, displayID string) (*models.Display, error)
	ListByOwner(ctx context.Context, ownerOrgID uuid.UUID) ([]models.Display, error)
	RouteFor(ctx context.Context, displayID string) (Route, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// CreateBatchInput describes a bulk display production run.
type CreateBatchInput struct {
	OwnerOrgID uuid.UUID
	Count      int
	Prefix     string
}

// DisplayActivatedEvent is emitted when a display is bound to a store.
type DisplayActivatedEvent struct {
	DisplayID string    `json:"display_id"`
	StoreID   uuid.UUID `json:"store_id"`
}

// DisplayResetEvent is emitted when a display returns to inventory.
type DisplayResetEvent struct {
	DisplayID string     `json:"display_id"`
	StoreID   *uuid.UUID `json:"store_id,omitempty"`
}

const maxBatchSize = 500

// NewService wires the display lifecycle with its dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("displays repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher}, nil
}

func (s *service) CreateBatch(ctx context.Context, input CreateBatchInput) ([]models.Display, error) {
	if input.OwnerOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner org id required")
	}
	if input.Count <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch count must be positive")
	}
	if input.Count > maxBatchSize {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("batch count exceeds %d", maxBatchSize))
	}
	prefix := strings.TrimSpace(input.Prefix)
	if prefix == "" {
		prefix = "SL"
	}

	var created []models.Display
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created = make([]models.Display, 0, input.Count)
		for i := 0; i < input.Count; i++ {
			display := models.Display{
				DisplayID:  newDisplayLabel(prefix),
				Status:     enums.DisplayStatusInventory,
				OwnerOrgID: input.OwnerOrgID,
			}
			if err := repo.Create(ctx, &display); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create display")
			}
			created = append(created, display)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) MarkSold(ctx context.Context, displayIDs []string, assignedOrgID uuid.UUID) (int, error) {
	if len(displayIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "display ids required")
	}
	if assignedOrgID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "assigned org id required")
	}

	var updated int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(displayIDs))
		for _, label := range displayIDs {
			display, err := repo.FindByDisplayID(ctx, label)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("display %s not found", label))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load display")
			}
			if display.Status != enums.DisplayStatusInventory {
				return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("display %s is not in inventory", label))
			}
			ids = append(ids, display.ID)
		}

		count, err := repo.MarkSold(ctx, ids, assignedOrgID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark displays sold")
		}
		if count != int64(len(ids)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "display changed state during assignment")
		}
		updated = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(updated), nil
}

func (s *service) Activate(ctx context.Context, displayID string, storeID uuid.UUID) (*models.Display, error) {
	if displayID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display id required")
	}
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	var activated *models.Display
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		display, err := s.load(ctx, repo, displayID)
		if err != nil {
			return err
		}
		ok, err := repo.Activate(ctx, display.ID, storeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate display")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("display cannot be activated from %s", display.Status))
		}

		display, err = s.load(ctx, repo, displayID)
		if err != nil {
			return err
		}
		activated = display

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDisplayActivated,
			AggregateType: enums.AggregateDisplay,
			AggregateID:   display.ID,
			Version:       1,
			Data: DisplayActivatedEvent{
				DisplayID: display.DisplayID,
				StoreID:   storeID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func (s *service) Reset(ctx context.Context, displayID string) (*models.Display, error) {
	if displayID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display id required")
	}

	var reset *models.Display
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		display, err := s.load(ctx, repo, displayID)
		if err != nil {
			return err
		}
		if display.StoreID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "display not activated")
		}

		previousStore := display.StoreID
		ok, err := repo.Reset(ctx, display.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset display")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("display cannot be reset from %s", display.Status))
		}

		display, err = s.load(ctx, repo, displayID)
		if err != nil {
			return err
		}
		reset = display

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDisplayReset,
			AggregateType: enums.AggregateDisplay,
			AggregateID:   display.ID,
			Version:       1,
			Data: DisplayResetEvent{
				DisplayID: display.DisplayID,
				StoreID:   previousStore,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return reset, nil
}

func (s *service) Deactivate(ctx context.Context, displayID string) (*models.Display, error) {
	if displayID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display id required")
	}

	var deactivated *models.Display
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		display, err := s.load(ctx, repo, displayID)
		if err != nil {
			return err
		}
		if display.Status != enums.DisplayStatusInactive {
			if _, err := repo.Deactivate(ctx, display.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate display")
			}
		}
		display, err = s.load(ctx, repo, displayID)
		if err != nil {
			return err
		}
		deactivated = display
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deactivated, nil
}

func (s *service) Get(ctx context.Context, displayID string) (*models.Display, error) {
	if displayID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display id required")
	}
	return s.load(ctx, s.repo, displayID)
}

func (s *service) ListByOwner(ctx context.Context, ownerOrgID uuid.UUID) ([]models.Display, error) {
	if ownerOrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner org id required")
	}
	displays, err := s.repo.ListByOwner(ctx, ownerOrgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list displays by owner")
	}
	return displays, nil
}

// RouteFor is the scan-time routing oracle. Only an active display leads to
// the purchase flow; every other state, including unexpected ones, falls
// back to activation.
func (s *service) RouteFor(ctx context.Context, displayID string) (Route, error) {
	display, err := s.Get(ctx, displayID)
	if err != nil {
		return "", err
	}
	if display.Status == enums.DisplayStatusActive {
		return RoutePurchase, nil
	}
	return RouteActivation, nil
}

func (s *service) load(ctx context.Context, repo Repository, displayID string) (*models.Display, error) {
	display, err := repo.FindByDisplayID(ctx, displayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "display not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load display")
	}
	return display, nil
}

func newDisplayLabel(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%s", strings.ToUpper(prefix), strings.ToUpper(raw[:8]))
}
