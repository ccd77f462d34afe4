// Package ordering routes customer orders into the two kitchen lanes and
// exposes the FIFO queue views the kitchen works from.
package ordering

import (
	"time"

	"github.com/jinzhu/gorm"

	"tableside/internal/billing"
	"tableside/internal/catalog"
	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/pkg/keylock"
	"tableside/pkg/logger"
)

// Router validates incoming orders, splits them into the normal and
// special lanes and forwards à-la-carte charges to the table's bill.
type Router struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	billing *billing.Engine
	locks   *keylock.KeyedMutex
	log     *logger.Logger
	now     func() time.Time
}

// NewRouter creates an order router sharing the per-table locks with the
// session manager.
func NewRouter(db *gorm.DB, cat *catalog.Catalog, engine *billing.Engine, locks *keylock.KeyedMutex, log *logger.Logger) *Router {
	return &Router{
		db:      db,
		catalog: cat,
		billing: engine,
		locks:   locks,
		log:     log.WithComponent("ordering"),
		now:     time.Now,
	}
}

// OrderLine is one requested item in an order submission.
type OrderLine struct {
	MenuItemID uint `json:"menu_item_id"`
	Quantity   int  `json:"quantity"`
}

// PlaceOrder accepts an order for an open table. Items resolve against the
// menu, split by category into the normal and special lanes, and at most
// one order record is created per non-empty lane. Special items are also
// charged to the table's active bill.
func (r *Router) PlaceOrder(tableNumber int, lines []OrderLine, notes string) ([]models.Order, error) {
	if len(lines) == 0 {
		return nil, errs.Validationf("order must contain at least one item")
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, errs.Validationf("quantity must be at least 1, got %d for item %d", line.Quantity, line.MenuItemID)
		}
	}

	r.locks.Lock(tableNumber)
	defer r.locks.Unlock(tableNumber)

	var table models.Table
	err := r.db.Where("table_number = ?", tableNumber).First(&table).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("table %d not found", tableNumber)
	}
	if err != nil {
		return nil, err
	}
	if !table.IsOpen() {
		return nil, errs.InvalidStatef("table %d is %s; orders require an open session", tableNumber, table.Status)
	}
	if table.CurrentBillID == nil {
		return nil, errs.InvalidStatef("table %d has no active bill", tableNumber)
	}

	var normal, special []models.OrderItem
	for _, line := range lines {
		item, err := r.catalog.Find(line.MenuItemID)
		if err != nil {
			return nil, err
		}
		if !item.CanOrder() {
			return nil, errs.Unavailablef("menu item %q is out of stock", item.NameEN)
		}

		enriched := models.OrderItem{
			MenuItemID: item.ID,
			NameEN:     item.NameEN,
			NameTH:     item.NameTH,
			Price:      item.Price,
			Quantity:   line.Quantity,
		}
		if item.IsSpecial() {
			special = append(special, enriched)
		} else {
			normal = append(normal, enriched)
		}
	}

	var created []models.Order
	if len(normal) > 0 {
		order, err := r.createOrder(tableNumber, models.QueueTypeNormal, normal, notes)
		if err != nil {
			return nil, err
		}
		created = append(created, *order)
	}
	if len(special) > 0 {
		order, err := r.createOrder(tableNumber, models.QueueTypeSpecial, special, notes)
		if err != nil {
			return nil, err
		}
		created = append(created, *order)

		for _, item := range special {
			_, err := r.billing.AddItem(*table.CurrentBillID, billing.SpecialItem{
				MenuItemID: item.MenuItemID,
				NameEN:     item.NameEN,
				NameTH:     item.NameTH,
				Price:      item.Price,
				Quantity:   item.Quantity,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	r.log.Info("order placed",
		"table_number", tableNumber,
		"orders", len(created),
		"normal_items", len(normal),
		"special_items", len(special))
	return created, nil
}

func (r *Router) createOrder(tableNumber int, queueType models.QueueType, items []models.OrderItem, notes string) (*models.Order, error) {
	order := models.Order{
		TableNumber: tableNumber,
		QueueType:   queueType,
		Items:       items,
		Status:      models.OrderStatusPending,
		Notes:       notes,
	}
	if err := r.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
