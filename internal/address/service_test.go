package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-checkout/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-checkout/pkg/errors"
)

func setupAddressService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS user_addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  label TEXT NOT NULL,
  recipient_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  line1 TEXT NOT NULL,
  line2 TEXT,
  city TEXT NOT NULL,
  province TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL DEFAULT 'ID',
  lat REAL NOT NULL,
  lng REAL NOT NULL,
  is_primary INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)

	svc, err := NewService(NewRepository(conn), db.NewFromGorm(conn))
	require.NoError(t, err)
	return svc, conn
}

func addressInput(label string) CreateInput {
	return CreateInput{
		Label:         label,
		RecipientName: "Sari Wulandari",
		Phone:         "+6281234567890",
		Line1:         "Jl. Kemang Raya No. 8",
		City:          "Jakarta Selatan",
		Province:      "DKI Jakarta",
		PostalCode:    "12730",
		Lat:           -6.2607,
		Lng:           106.8137,
	}
}

func primaryCount(t *testing.T, conn *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Table("user_addresses").Where("user_id = ? AND is_primary = ?", userID, true).Count(&count).Error)
	return count
}

func TestCreateFirstAddressBecomesPrimary(t *testing.T) {
	svc, conn := setupAddressService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, addressInput("Rumah"))
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)
	assert.Equal(t, "ID", first.Country)

	second, err := svc.Create(ctx, userID, addressInput("Kantor"))
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)
	assert.Equal(t, int64(1), primaryCount(t, conn, userID))

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestCreateWithMakePrimaryMovesFlag(t *testing.T) {
	svc, conn := setupAddressService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Create(ctx, userID, addressInput("Rumah"))
	require.NoError(t, err)

	input := addressInput("Kantor")
	input.MakePrimary = true
	second, err := svc.Create(ctx, userID, input)
	require.NoError(t, err)
	assert.True(t, second.IsPrimary)
	assert.Equal(t, int64(1), primaryCount(t, conn, userID))
}

func TestSetPrimaryClearsPrevious(t *testing.T) {
	svc, conn := setupAddressService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, addressInput("Rumah"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, addressInput("Kantor"))
	require.NoError(t, err)

	updated, err := svc.SetPrimary(ctx, userID, second.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPrimary)
	assert.Equal(t, int64(1), primaryCount(t, conn, userID))

	reloaded, err := svc.Get(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsPrimary)

	_, err = svc.SetPrimary(ctx, uuid.New(), second.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeletePrimaryPromotesOldest(t *testing.T) {
	svc, conn := setupAddressService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, addressInput("Rumah"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, userID, addressInput("Kantor"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, addressInput("Kos"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, userID, first.ID))
	assert.Equal(t, int64(1), primaryCount(t, conn, userID))

	promoted, err := svc.Get(ctx, userID, second.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsPrimary)

	err = svc.Delete(ctx, userID, first.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := setupAddressService(t)

	input := addressInput("")
	input.Lat, input.Lng = 0, 0
	_, err := svc.Create(context.Background(), uuid.New(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "label")
	assert.Contains(t, details, "location")
}
