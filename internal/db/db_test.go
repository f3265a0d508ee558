package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"totestore/internal/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", false)
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestOpenMemoryMigratesSchema(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, table := range []string{"users", "auth_tokens", "products", "product_images"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn(&models.ProductImage{}, "display_order"))
}

func TestUniqueViolationIsTranslated(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.User{Username: "ivy", Email: "ivy@example.com", PasswordHash: "x"}).Error)
	err = db.Create(&models.User{Username: "ivy", Email: "other@example.com", PasswordHash: "x"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestEnumsRoundTrip(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	p := models.Product{Title: "Tee", Description: "d", Price: decimal.RequireFromString("20.00"), ProductType: models.ProductTypeTShirt}
	require.NoError(t, db.Create(&p).Error)
	blue := models.ColorBlue
	require.NoError(t, db.Create(&models.ProductImage{ProductID: p.ID, Image: "k1", Color: &blue}).Error)
	require.NoError(t, db.Create(&models.ProductImage{ProductID: p.ID, Image: "k2"}).Error)

	var got models.Product
	require.NoError(t, db.Preload("Images").First(&got, p.ID).Error)
	assert.Equal(t, models.ProductTypeTShirt, got.ProductType)
	assert.Equal(t, "20.00", got.Price.StringFixed(2))
	require.Len(t, got.Images, 2)
	require.NotNil(t, got.Images[0].Color)
	assert.Equal(t, models.ColorBlue, *got.Images[0].Color)
	assert.Nil(t, got.Images[1].Color)
	assert.EqualValues(t, 1, got.Version)
}
