package models_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
)

// Every model must migrate into sqlite; the test databases depend on it, so
// column tags cannot carry postgres-only expressions.
func TestModelsMigrateIntoSqlite(t *testing.T) {
	t.Parallel()

	dsn := "file:models_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = conn.AutoMigrate(
		&models.Organization{},
		&models.Store{},
		&models.Product{},
		&models.Customer{},
		&models.StaffMember{},
		&models.PointsEntry{},
		&models.StockRecord{},
		&models.LedgerEntry{},
		&models.IncomingOrder{},
		&models.Display{},
		&models.PurchaseIntent{},
		&models.Conversion{},
		&models.Notification{},
		&models.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	record := models.StockRecord{ID: uuid.New(), StoreID: uuid.New(), ProductSKU: "SKU-TEA"}
	if err := conn.Create(&record).Error; err != nil {
		t.Fatalf("insert stock record: %v", err)
	}
}
