package ordering

import (
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableside/internal/billing"
	"tableside/internal/catalog"
	"tableside/internal/credentials"
	"tableside/internal/database"
	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/internal/session"
	"tableside/pkg/keylock"
	"tableside/pkg/logger"
)

type fixture struct {
	db       *gorm.DB
	router   *Router
	queue    *Queue
	sessions *session.Manager
	billing  *billing.Engine

	buffetItem  models.MenuItem
	specialItem models.MenuItem
	soldOut     models.MenuItem
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedTables(db, 10))
	t.Cleanup(func() { db.Close() })

	log := logger.Discard()
	locks := keylock.New()
	engine := billing.NewEngine(db, 0.07, log)
	cat := catalog.New(db)
	sessions := session.NewManager(db, engine, credentials.NewIssuer("test-secret"), session.Config{
		SessionDuration: 90 * time.Minute,
		ReservationHold: 15 * time.Minute,
		MaxGuests:       4,
		TierPrices: map[models.BuffetTier]float64{
			models.BuffetTierStarter: 259,
			models.BuffetTierPremium: 299,
		},
	}, locks, log)

	f := &fixture{
		db:       db,
		router:   NewRouter(db, cat, engine, locks, log),
		queue:    NewQueue(db, log),
		sessions: sessions,
		billing:  engine,
	}

	f.buffetItem = models.MenuItem{
		NameEN: "Pork Slices", NameTH: "หมูสไลซ์",
		Category: models.MenuCategoryStarterBuffet, Availability: models.MenuAvailable,
	}
	f.specialItem = models.MenuItem{
		NameEN: "Wagyu Beef", NameTH: "เนื้อวากิว",
		Category: models.MenuCategorySpecialMenu, Price: 180, Availability: models.MenuAvailable,
	}
	f.soldOut = models.MenuItem{
		NameEN: "River Prawn", NameTH: "กุ้งแม่น้ำ",
		Category: models.MenuCategorySpecialMenu, Price: 220, Availability: models.MenuOutOfStock,
	}
	require.NoError(t, db.Create(&f.buffetItem).Error)
	require.NoError(t, db.Create(&f.specialItem).Error)
	require.NoError(t, db.Create(&f.soldOut).Error)

	return f
}

func (f *fixture) openTable(t *testing.T, number int) {
	t.Helper()
	_, err := f.sessions.Open(number, 2, models.BuffetTierStarter)
	require.NoError(t, err)
}

func TestPlaceOrderSplitsIntoTwoQueues(t *testing.T) {
	f := setup(t)
	f.openTable(t, 3)

	orders, err := f.router.PlaceOrder(3, []OrderLine{
		{MenuItemID: f.buffetItem.ID, Quantity: 1},
		{MenuItemID: f.specialItem.ID, Quantity: 2},
	}, "no spice")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	byQueue := map[models.QueueType]models.Order{}
	for _, o := range orders {
		byQueue[o.QueueType] = o
		assert.Equal(t, models.OrderStatusPending, o.Status)
		assert.Equal(t, 3, o.TableNumber)
		assert.Equal(t, "no spice", o.Notes)
	}

	normal := byQueue[models.QueueTypeNormal]
	require.Len(t, normal.Items, 1)
	assert.Equal(t, "Pork Slices", normal.Items[0].NameEN)
	assert.Equal(t, 0.0, normal.Items[0].Price)

	special := byQueue[models.QueueTypeSpecial]
	require.Len(t, special.Items, 1)
	assert.Equal(t, "Wagyu Beef", special.Items[0].NameEN)
	assert.Equal(t, 180.0, special.Items[0].Price)
	assert.Equal(t, 2, special.Items[0].Quantity)

	// The special item must land on the table's active bill.
	bill, err := f.billing.ActiveForTable(3)
	require.NoError(t, err)
	require.Len(t, bill.SpecialItems, 1)
	assert.Equal(t, 360.0, bill.SpecialItemsTotal)
	assert.Equal(t, 878.0, bill.Total)
	assert.Equal(t, 820.56, bill.PreVatSubtotal)
	assert.Equal(t, 57.44, bill.VatAmount)
}

func TestPlaceOrderBuffetOnlyCreatesOneOrder(t *testing.T) {
	f := setup(t)
	f.openTable(t, 3)

	orders, err := f.router.PlaceOrder(3, []OrderLine{
		{MenuItemID: f.buffetItem.ID, Quantity: 3},
	}, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.QueueTypeNormal, orders[0].QueueType)

	// Buffet items never touch the bill.
	bill, err := f.billing.ActiveForTable(3)
	require.NoError(t, err)
	assert.Empty(t, bill.SpecialItems)
	assert.Equal(t, 518.0, bill.Total)
}

func TestPlaceOrderSpecialOnlyCreatesOneOrder(t *testing.T) {
	f := setup(t)
	f.openTable(t, 3)

	orders, err := f.router.PlaceOrder(3, []OrderLine{
		{MenuItemID: f.specialItem.ID, Quantity: 1},
	}, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.QueueTypeSpecial, orders[0].QueueType)
}

func TestPlaceOrderValidation(t *testing.T) {
	f := setup(t)
	f.openTable(t, 3)

	_, err := f.router.PlaceOrder(3, nil, "")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = f.router.PlaceOrder(3, []OrderLine{{MenuItemID: f.buffetItem.ID, Quantity: 0}}, "")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestPlaceOrderTableStates(t *testing.T) {
	f := setup(t)

	_, err := f.router.PlaceOrder(99, []OrderLine{{MenuItemID: f.buffetItem.ID, Quantity: 1}}, "")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	// A table without an open session rejects orders.
	_, err = f.router.PlaceOrder(4, []OrderLine{{MenuItemID: f.buffetItem.ID, Quantity: 1}}, "")
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestPlaceOrderUnknownAndSoldOutItems(t *testing.T) {
	f := setup(t)
	f.openTable(t, 3)

	_, err := f.router.PlaceOrder(3, []OrderLine{{MenuItemID: 999, Quantity: 1}}, "")
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	_, err = f.router.PlaceOrder(3, []OrderLine{{MenuItemID: f.soldOut.ID, Quantity: 1}}, "")
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
}
