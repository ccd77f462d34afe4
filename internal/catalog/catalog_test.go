package catalog

import (
	"testing"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/database"
	"tableside/internal/errs"
	"tableside/internal/models"
)

func testCatalog(t *testing.T) (*Catalog, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedMenu(db))
	t.Cleanup(func() { db.Close() })

	return New(db), db
}

func TestFind(t *testing.T) {
	c, _ := testCatalog(t)

	item, err := c.Find(1)
	require.NoError(t, err)
	assert.NotEmpty(t, item.NameEN)

	_, err = c.Find(999)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListByCategory(t *testing.T) {
	c, db := testCatalog(t)

	specials, err := c.ListByCategory(models.MenuCategorySpecialMenu, false)
	require.NoError(t, err)
	require.NotEmpty(t, specials)
	for _, item := range specials {
		assert.Equal(t, models.MenuCategorySpecialMenu, item.Category)
		assert.Greater(t, item.Price, 0.0)
	}

	// Buffet-included items carry no per-item price.
	starters, err := c.ListByCategory(models.MenuCategoryStarterBuffet, false)
	require.NoError(t, err)
	require.NotEmpty(t, starters)
	for _, item := range starters {
		assert.Equal(t, 0.0, item.Price)
	}

	// availableOnly filters out-of-stock items.
	require.NoError(t, db.Model(&models.MenuItem{}).
		Where("id = ?", specials[0].ID).
		Update("availability", models.MenuOutOfStock).Error)

	available, err := c.ListByCategory(models.MenuCategorySpecialMenu, true)
	require.NoError(t, err)
	assert.Len(t, available, len(specials)-1)
}

func TestSetAvailability(t *testing.T) {
	c, _ := testCatalog(t)

	item, err := c.SetAvailability(1, models.MenuOutOfStock)
	require.NoError(t, err)
	assert.Equal(t, models.MenuOutOfStock, item.Availability)
	assert.False(t, item.CanOrder())

	item, err = c.SetAvailability(1, models.MenuAvailable)
	require.NoError(t, err)
	assert.True(t, item.CanOrder())

	_, err = c.SetAvailability(999, models.MenuOutOfStock)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestListAll(t *testing.T) {
	c, _ := testCatalog(t)

	items, err := c.List(false)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
