package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// BillStatus represents the lifecycle state of a bill.
type BillStatus string

const (
	BillStatusActive   BillStatus = "active"
	BillStatusArchived BillStatus = "archived"
)

// Bill is the running charge sheet for one table session. At most one
// active bill exists per table; bills are archived on close, never deleted.
type Bill struct {
	gorm.Model
	TableNumber          int        `gorm:"index;not null" json:"table_number"`
	CustomerCount        int        `json:"customer_count"`
	BuffetTier           BuffetTier `gorm:"type:varchar(16)" json:"buffet_tier"`
	BuffetPricePerPerson float64    `json:"buffet_price_per_person"`
	BuffetCharges        float64    `json:"buffet_charges"`
	SpecialItems         []BillItem `gorm:"foreignkey:BillID" json:"special_items"`
	SpecialItemsTotal    float64    `json:"special_items_total"`
	Total                float64    `json:"total"`
	PreVatSubtotal       float64    `json:"pre_vat_subtotal"`
	VatAmount            float64    `json:"vat_amount"`
	Status               BillStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	ArchivedAt           *time.Time `json:"archived_at,omitempty"`
}

// IsArchived reports whether the bill has been finalized.
func (b *Bill) IsArchived() bool {
	return b.Status == BillStatusArchived
}

// BillItem is one à-la-carte line on a bill. Name and price are snapshots
// taken at order time; later menu edits do not affect them.
type BillItem struct {
	gorm.Model
	BillID     uint    `gorm:"index;not null" json:"bill_id"`
	MenuItemID uint    `json:"menu_item_id"`
	NameEN     string  `json:"name_en"`
	NameTH     string  `json:"name_th"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}
