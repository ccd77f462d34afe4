// Package catalog provides read access to the menu. The catalog is
// read-mostly: items are seeded at startup and toggled between available
// and out-of-stock during service.
package catalog

import (
	"github.com/jinzhu/gorm"

	"tableside/internal/errs"
	"tableside/internal/models"
)

// Catalog looks up and lists menu items.
type Catalog struct {
	db *gorm.DB
}

// New creates a Catalog backed by the given database.
func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Find returns the menu item with the given id.
func (c *Catalog) Find(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := c.db.First(&item, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("menu item %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCategory returns items in a category, optionally only those that
// can currently be ordered.
func (c *Catalog) ListByCategory(category models.MenuCategory, availableOnly bool) ([]models.MenuItem, error) {
	query := c.db.Where("category = ?", category)
	if availableOnly {
		query = query.Where("availability = ?", models.MenuAvailable)
	}

	var items []models.MenuItem
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List returns the whole menu, optionally filtered to orderable items.
func (c *Catalog) List(availableOnly bool) ([]models.MenuItem, error) {
	query := c.db.New()
	if availableOnly {
		query = query.Where("availability = ?", models.MenuAvailable)
	}

	var items []models.MenuItem
	if err := query.Order("category asc, id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SetAvailability marks an item available or out of stock.
func (c *Catalog) SetAvailability(id uint, availability models.MenuAvailability) (*models.MenuItem, error) {
	item, err := c.Find(id)
	if err != nil {
		return nil, err
	}

	item.Availability = availability
	if err := c.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
