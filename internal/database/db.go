package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"tableside/internal/models"
)

// Open connects to the SQLite database and runs migrations. The handle is
// returned rather than stored globally so each test can get its own
// isolated instance.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema for every entity.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Table{},
		&models.TableSessionRecord{},
		&models.Bill{},
		&models.BillItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.MenuItem{},
		&models.Reservation{},
		&models.WaitlistEntry{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedTables creates table rows 1..count if they do not already exist.
// Tables are created once at system init and never deleted.
func SeedTables(db *gorm.DB, count int) error {
	for n := 1; n <= count; n++ {
		var existing models.Table
		err := db.Where("table_number = ?", n).First(&existing).Error
		if err == nil {
			continue
		}
		if !gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("failed to check table %d: %w", n, err)
		}

		table := models.Table{
			TableNumber: n,
			Status:      models.TableStatusAvailable,
			BuffetTier:  models.BuffetTierNone,
		}
		if err := db.Create(&table).Error; err != nil {
			return fmt.Errorf("failed to seed table %d: %w", n, err)
		}
	}
	return nil
}

// SeedMenu loads the default menu if the catalog is empty.
func SeedMenu(db *gorm.DB) error {
	var count int
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count menu items: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := []models.MenuItem{
		{NameEN: "Pork Slices", NameTH: "หมูสไลซ์", Category: models.MenuCategoryStarterBuffet},
		{NameEN: "Chicken Slices", NameTH: "ไก่สไลซ์", Category: models.MenuCategoryStarterBuffet},
		{NameEN: "Fresh Vegetables", NameTH: "ผักรวม", Category: models.MenuCategoryStarterBuffet},
		{NameEN: "Egg Noodles", NameTH: "บะหมี่ไข่", Category: models.MenuCategoryStarterBuffet},
		{NameEN: "Beef Slices", NameTH: "เนื้อสไลซ์", Category: models.MenuCategoryPremiumBuffet},
		{NameEN: "Salmon", NameTH: "แซลมอน", Category: models.MenuCategoryPremiumBuffet},
		{NameEN: "Tiger Prawns", NameTH: "กุ้งลายเสือ", Category: models.MenuCategoryPremiumBuffet},
		{NameEN: "Wagyu Beef", NameTH: "เนื้อวากิว", Category: models.MenuCategorySpecialMenu, Price: 180},
		{NameEN: "River Prawn", NameTH: "กุ้งแม่น้ำ", Category: models.MenuCategorySpecialMenu, Price: 220},
		{NameEN: "Thai Milk Tea", NameTH: "ชาไทย", Category: models.MenuCategorySpecialMenu, Price: 45},
		{NameEN: "Coconut Ice Cream", NameTH: "ไอศกรีมกะทิ", Category: models.MenuCategorySpecialMenu, Price: 60},
	}

	for i := range items {
		items[i].Availability = models.MenuAvailable
		if err := db.Create(&items[i]).Error; err != nil {
			return fmt.Errorf("failed to seed menu item %q: %w", items[i].NameEN, err)
		}
	}
	return nil
}
