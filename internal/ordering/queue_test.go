package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/errs"
	"tableside/internal/models"
)

// seedOrder inserts a pending order with an explicit submission time so
// FIFO behavior can be tested independent of insertion order.
func seedOrder(t *testing.T, f *fixture, tableNumber int, queueType models.QueueType, createdAt time.Time) models.Order {
	t.Helper()

	order := models.Order{
		TableNumber: tableNumber,
		QueueType:   queueType,
		Status:      models.OrderStatusPending,
	}
	order.CreatedAt = createdAt
	require.NoError(t, f.db.Create(&order).Error)
	return order
}

func TestPeekFirstReturnsOldestPending(t *testing.T) {
	f := setup(t)
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	// Insert out of chronological order on purpose.
	seedOrder(t, f, 2, models.QueueTypeNormal, base.Add(10*time.Minute))
	oldest := seedOrder(t, f, 3, models.QueueTypeNormal, base)
	seedOrder(t, f, 4, models.QueueTypeNormal, base.Add(5*time.Minute))

	// A different lane never leaks into this one.
	seedOrder(t, f, 5, models.QueueTypeSpecial, base.Add(-time.Hour))

	head, err := f.queue.PeekFirst(models.QueueTypeNormal)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, head.ID)

	// Peek does not mutate: the same order stays at the head.
	again, err := f.queue.PeekFirst(models.QueueTypeNormal)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, again.ID)
}

func TestPeekFirstSkipsCompleted(t *testing.T) {
	f := setup(t)
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	first := seedOrder(t, f, 2, models.QueueTypeNormal, base)
	second := seedOrder(t, f, 3, models.QueueTypeNormal, base.Add(time.Minute))

	_, err := f.queue.Complete(first.ID)
	require.NoError(t, err)

	head, err := f.queue.PeekFirst(models.QueueTypeNormal)
	require.NoError(t, err)
	assert.Equal(t, second.ID, head.ID)
}

func TestPeekFirstEmptyQueue(t *testing.T) {
	f := setup(t)

	_, err := f.queue.PeekFirst(models.QueueTypeSpecial)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestPendingListsLaneInFIFOOrder(t *testing.T) {
	f := setup(t)
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	third := seedOrder(t, f, 2, models.QueueTypeSpecial, base.Add(2*time.Minute))
	first := seedOrder(t, f, 3, models.QueueTypeSpecial, base)
	second := seedOrder(t, f, 4, models.QueueTypeSpecial, base.Add(time.Minute))

	orders, err := f.queue.Pending(models.QueueTypeSpecial)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
	assert.Equal(t, third.ID, orders[2].ID)
}

func TestCompleteOrder(t *testing.T) {
	f := setup(t)
	completedAt := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	f.queue.SetClock(func() time.Time { return completedAt })

	order := seedOrder(t, f, 3, models.QueueTypeNormal, completedAt.Add(-10*time.Minute))

	done, err := f.queue.Complete(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, completedAt, done.CompletedAt.UTC())
}

func TestCompleteErrors(t *testing.T) {
	f := setup(t)

	_, err := f.queue.Complete(999)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	order := seedOrder(t, f, 3, models.QueueTypeNormal, time.Now())
	_, err = f.queue.Complete(order.ID)
	require.NoError(t, err)

	_, err = f.queue.Complete(order.ID)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

// Out-of-order completion is allowed at the data layer; the queue view
// simply moves on to the next oldest order.
func TestOutOfOrderCompletionPermitted(t *testing.T) {
	f := setup(t)
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	head := seedOrder(t, f, 2, models.QueueTypeNormal, base)
	tail := seedOrder(t, f, 3, models.QueueTypeNormal, base.Add(time.Minute))

	_, err := f.queue.Complete(tail.ID)
	require.NoError(t, err)

	current, err := f.queue.PeekFirst(models.QueueTypeNormal)
	require.NoError(t, err)
	assert.Equal(t, head.ID, current.ID)
}

func TestListByTableNewestFirstAllStatuses(t *testing.T) {
	f := setup(t)
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	first := seedOrder(t, f, 3, models.QueueTypeNormal, base)
	second := seedOrder(t, f, 3, models.QueueTypeSpecial, base.Add(time.Minute))
	seedOrder(t, f, 4, models.QueueTypeNormal, base.Add(2*time.Minute))

	_, err := f.queue.Complete(first.ID)
	require.NoError(t, err)

	orders, err := f.queue.ListByTable(3)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
	assert.Equal(t, models.OrderStatusCompleted, orders[1].Status)
}
