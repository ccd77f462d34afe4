package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// TableStatus represents the lifecycle state of a dining table.
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusReserved  TableStatus = "reserved"
	TableStatusOpen      TableStatus = "open"
	TableStatusClosed    TableStatus = "closed"
)

// BuffetTier is the per-person all-you-can-eat plan a table is seated under.
type BuffetTier string

const (
	BuffetTierNone    BuffetTier = "none"
	BuffetTierStarter BuffetTier = "starter"
	BuffetTierPremium BuffetTier = "premium"
)

// Table is one physical dining table. Rows are seeded once at startup and
// mutated only through session transitions, never deleted.
type Table struct {
	gorm.Model
	TableNumber          int         `gorm:"unique_index;not null" json:"table_number"`
	Status               TableStatus `gorm:"type:varchar(16);not null;default:'available'" json:"status"`
	CustomerCount        int         `json:"customer_count"`
	BuffetTier           BuffetTier  `gorm:"type:varchar(16);not null;default:'none'" json:"buffet_tier"`
	BuffetPrice          float64     `json:"buffet_price"`
	OpenedAt             *time.Time  `json:"opened_at,omitempty"`
	ReservedAt           *time.Time  `json:"reserved_at,omitempty"`
	ReservationExpiresAt *time.Time  `json:"reservation_expires_at,omitempty"`
	ReservationNote      string      `json:"reservation_note,omitempty"`
	CurrentBillID        *uint       `json:"current_bill_id,omitempty"`
	PIN                  string      `gorm:"column:pin" json:"-"`
	SessionToken         string      `json:"-"`
}

// IsAvailable reports whether the table can be reserved or opened.
func (t *Table) IsAvailable() bool {
	return t.Status == TableStatusAvailable
}

// IsOpen reports whether a dining session is in progress.
func (t *Table) IsOpen() bool {
	return t.Status == TableStatusOpen
}

// TableSessionRecord is the audit snapshot captured when a session closes.
type TableSessionRecord struct {
	gorm.Model
	TableNumber   int        `gorm:"index" json:"table_number"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      time.Time  `json:"closed_at"`
	CustomerCount int        `json:"customer_count"`
	BuffetTier    BuffetTier `gorm:"type:varchar(16)" json:"buffet_tier"`
	BuffetPrice   float64    `json:"buffet_price"`
	BillID        uint       `json:"bill_id"`
}
