package points

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:points_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StaffMember{}, &models.PointsEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestAwardTx(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	staff := models.StaffMember{ID: uuid.New(), StoreID: uuid.New(), Name: "Dana"}
	if err := conn.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		return svc.AwardTx(ctx, tx, staff.ID, 25, "sale commission")
	})
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	balance, err := svc.Balance(ctx, staff.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 25 {
		t.Fatalf("expected balance 25, got %d", balance)
	}

	history, err := svc.History(ctx, staff.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Amount != 25 || history[0].Reason != "sale commission" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestAwardTxRollsBackWithCaller(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	staff := models.StaffMember{ID: uuid.New(), StoreID: uuid.New(), Name: "Theo"}
	if err := conn.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	wantErr := pkgerrors.New(pkgerrors.CodeDependency, "forced failure")
	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.AwardTx(ctx, tx, staff.ID, 10, "sale commission"); err != nil {
			return err
		}
		return wantErr
	})
	if err == nil {
		t.Fatal("expected transaction to fail")
	}

	balance, err := svc.Balance(ctx, staff.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected award rolled back, got balance %d", balance)
	}
}

func TestAwardTxValidation(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	err = conn.Transaction(func(tx *gorm.DB) error {
		return svc.AwardTx(ctx, tx, uuid.New(), 5, "sale commission")
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown staff, got %v", err)
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		return svc.AwardTx(ctx, tx, uuid.New(), 0, "sale commission")
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation for zero amount, got %v", err)
	}
}
