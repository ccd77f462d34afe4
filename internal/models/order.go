package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// QueueType is the kitchen fulfillment lane an order is routed to.
// Buffet-included items go to the normal lane, à-la-carte items to the
// special lane, so the two stations work independent FIFO queues.
type QueueType string

const (
	QueueTypeNormal  QueueType = "normal"
	QueueTypeSpecial QueueType = "special"
)

// OrderStatus represents the possible states of a kitchen order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is one submission batch for a single table and queue type.
// CreatedAt (from gorm.Model) is the FIFO ordering key.
type Order struct {
	gorm.Model
	TableNumber int         `gorm:"index;not null" json:"table_number"`
	QueueType   QueueType   `gorm:"type:varchar(16);not null;index" json:"queue_type"`
	Items       []OrderItem `gorm:"foreignkey:OrderID" json:"items"`
	Status      OrderStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Notes       string      `json:"notes,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// IsPending reports whether the order is still waiting in its queue.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// OrderItem is one line in an order, with name and price snapshotted from
// the menu at order time.
type OrderItem struct {
	gorm.Model
	OrderID    uint    `gorm:"index;not null" json:"order_id"`
	MenuItemID uint    `json:"menu_item_id"`
	NameEN     string  `json:"name_en"`
	NameTH     string  `json:"name_th"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}
