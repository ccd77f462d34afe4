package models

import "github.com/jinzhu/gorm"

// MenuCategory determines whether an item is covered by a buffet tier or
// billed à la carte.
type MenuCategory string

const (
	MenuCategoryStarterBuffet MenuCategory = "starter_buffet"
	MenuCategoryPremiumBuffet MenuCategory = "premium_buffet"
	MenuCategorySpecialMenu   MenuCategory = "special_menu"
)

// MenuAvailability represents whether an item can currently be ordered.
type MenuAvailability string

const (
	MenuAvailable  MenuAvailability = "available"
	MenuOutOfStock MenuAvailability = "out_of_stock"
)

// MenuItem is a sellable dish. Buffet-included items carry a zero price;
// special-menu items carry the à-la-carte price. Orders and bills snapshot
// name and price at order time, so editing or removing a menu item never
// changes historical records.
type MenuItem struct {
	gorm.Model
	NameEN       string           `gorm:"not null" json:"name_en"`
	NameTH       string           `json:"name_th"`
	Category     MenuCategory     `gorm:"type:varchar(24);not null;index" json:"category"`
	Price        float64          `json:"price"`
	Availability MenuAvailability `gorm:"type:varchar(16);not null;default:'available'" json:"availability"`
}

// IsSpecial reports whether the item is billed à la carte.
func (mi *MenuItem) IsSpecial() bool {
	return mi.Category == MenuCategorySpecialMenu
}

// CanOrder reports whether the item is currently sellable.
func (mi *MenuItem) CanOrder() bool {
	return mi.Availability == MenuAvailable
}

// IsInCategory checks if the item belongs to a specific category.
func (mi *MenuItem) IsInCategory(category MenuCategory) bool {
	return mi.Category == category
}
