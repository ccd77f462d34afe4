package models

import "github.com/jinzhu/gorm"

// WaitlistEntry is a walk-in party queued for the next free table.
// Entries form a pure FIFO keyed on CreatedAt and are removed on seat
// or cancel, unlike reservations which transition to terminal states.
type WaitlistEntry struct {
	gorm.Model
	PublicID      string `gorm:"unique_index;not null" json:"public_id"`
	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	PartySize     int    `gorm:"not null" json:"party_size"`
}
