package ordering

import (
	"time"

	"github.com/jinzhu/gorm"

	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/pkg/logger"
)

// Queue is the FIFO view over pending orders within one lane. It is
// backed entirely by the persisted order records, ordered by submission
// time; nothing is held in memory, so the view survives restarts.
type Queue struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// NewQueue creates the fulfillment queue view.
func NewQueue(db *gorm.DB, log *logger.Logger) *Queue {
	return &Queue{
		db:  db,
		log: log.WithComponent("queue"),
		now: time.Now,
	}
}

// SetClock overrides the queue's time source; used in tests.
func (q *Queue) SetClock(now func() time.Time) {
	q.now = now
}

// PeekFirst returns the oldest pending order in a lane without mutating
// anything.
func (q *Queue) PeekFirst(queueType models.QueueType) (*models.Order, error) {
	var order models.Order
	err := q.db.Preload("Items").
		Where("queue_type = ? AND status = ?", queueType, models.OrderStatusPending).
		Order("created_at asc, id asc").
		First(&order).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("no pending orders in %s queue", queueType)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Pending returns a lane's full FIFO backlog, oldest first.
func (q *Queue) Pending(queueType models.QueueType) ([]models.Order, error) {
	var orders []models.Order
	err := q.db.Preload("Items").
		Where("queue_type = ? AND status = ?", queueType, models.OrderStatusPending).
		Order("created_at asc, id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Complete marks an order served. Staff may complete orders out of queue
// order; the data layer permits it even though the kitchen display leads
// with the head of the queue.
func (q *Queue) Complete(orderID uint) (*models.Order, error) {
	var order models.Order
	err := q.db.Preload("Items").First(&order, orderID).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("order %d not found", orderID)
	}
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCompleted {
		return nil, errs.Conflictf("order %d is already completed", orderID)
	}

	completedAt := q.now()
	order.Status = models.OrderStatusCompleted
	order.CompletedAt = &completedAt
	if err := q.db.Save(&order).Error; err != nil {
		return nil, err
	}

	q.log.Info("order completed", "order_id", order.ID, "queue_type", order.QueueType)
	return &order, nil
}

// ListByTable returns every order for a table regardless of status,
// newest first; used for the session audit view.
func (q *Queue) ListByTable(tableNumber int) ([]models.Order, error) {
	var orders []models.Order
	err := q.db.Preload("Items").
		Where("table_number = ?", tableNumber).
		Order("created_at desc, id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
