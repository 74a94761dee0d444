package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

// Service maintains staff commission points. AwardTx participates in the
// caller's transaction so a failed award unwinds the whole fulfillment.
type Service interface {
	AwardTx(ctx context.Context, tx *gorm.DB, staffID uuid.UUID, amount int, reason string) error
	Balance(ctx context.Context, staffID uuid.UUID) (int, error)
	History(ctx context.Context, staffID uuid.UUID) ([]models.PointsEntry, error)
}

type service struct {
	repo Repository
}

// NewService wires the points sink with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("points repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) AwardTx(ctx context.Context, tx *gorm.DB, staffID uuid.UUID, amount int, reason string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for points award")
	}
	if staffID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points amount must be positive")
	}
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "points reason required")
	}

	repo := s.repo.WithTx(tx)
	ok, err := repo.IncrementBalance(ctx, staffID, amount)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment points balance")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
	}

	entry := &models.PointsEntry{
		StaffID: staffID,
		Amount:  amount,
		Reason:  reason,
	}
	if err := repo.AppendEntry(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append points entry")
	}
	return nil
}

func (s *service) Balance(ctx context.Context, staffID uuid.UUID) (int, error) {
	if staffID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	staff, err := s.repo.FindStaff(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff member")
	}
	return staff.PointsBalance, nil
}

func (s *service) History(ctx context.Context, staffID uuid.UUID) ([]models.PointsEntry, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	entries, err := s.repo.ListEntries(ctx, staffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list points entries")
	}
	return entries, nil
}
