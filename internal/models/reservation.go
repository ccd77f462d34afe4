package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// ReservationStatus represents the lifecycle state of a reservation.
// Active is the only non-terminal state.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusConverted ReservationStatus = "converted"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// Reservation is a held seating request, optionally bound to a specific
// table. It expires a fixed hold period after creation unless converted
// into an open table session or cancelled first.
type Reservation struct {
	gorm.Model
	CustomerName    string            `gorm:"not null" json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	PartySize       int               `gorm:"not null" json:"party_size"`
	ReservationTime time.Time         `json:"reservation_time"`
	ExpiresAt       time.Time         `gorm:"index" json:"expires_at"`
	Status          ReservationStatus `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	TableNumber     *int              `json:"table_number,omitempty"`
}

// IsActive reports whether the reservation can still be converted or
// cancelled.
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusActive
}
