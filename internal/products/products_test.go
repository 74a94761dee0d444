package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sampleloop/sampleloop-backend/pkg/db/models"
	pkgerrors "github.com/sampleloop/sampleloop-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestCreateAndLookup(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	orgID := uuid.New()

	created, err := svc.Create(ctx, CreateInput{OrgID: orgID, SKU: " sku-tonic ", Name: "Herbal Tonic", RetailPriceCents: 1299})
	require.NoError(t, err)
	require.Equal(t, "SKU-TONIC", created.SKU)

	found, err := svc.GetBySKU(ctx, "SKU-TONIC")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.GetBySKU(ctx, "SKU-MISSING")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Create(ctx, CreateInput{OrgID: orgID, SKU: "SKU-TONIC", Name: "Duplicate"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing org", CreateInput{SKU: "SKU-A", Name: "A"}},
		{"missing sku", CreateInput{OrgID: uuid.New(), Name: "A"}},
		{"missing name", CreateInput{OrgID: uuid.New(), SKU: "SKU-A"}},
		{"negative price", CreateInput{OrgID: uuid.New(), SKU: "SKU-A", Name: "A", RetailPriceCents: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}
