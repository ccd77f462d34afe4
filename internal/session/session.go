// Package session implements the per-table state machine: Available →
// Reserved → Available and Available → Open → Available. Every mutating
// operation serializes on the table's lock, so two concurrent requests can
// never both pass a status check and commit conflicting transitions.
package session

import (
	"time"

	"github.com/jinzhu/gorm"

	"tableside/internal/billing"
	"tableside/internal/credentials"
	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/pkg/keylock"
	"tableside/pkg/logger"
)

// Config holds the operating parameters the session manager depends on.
type Config struct {
	SessionDuration time.Duration
	ReservationHold time.Duration
	MaxGuests       int
	TierPrices      map[models.BuffetTier]float64
}

// Manager drives table lifecycle transitions.
type Manager struct {
	db      *gorm.DB
	billing *billing.Engine
	creds   *credentials.Issuer
	cfg     Config
	locks   *keylock.KeyedMutex
	log     *logger.Logger
	now     func() time.Time
}

// NewManager creates a session manager. The locks argument is shared with
// every other service that mutates tables.
func NewManager(db *gorm.DB, engine *billing.Engine, creds *credentials.Issuer, cfg Config, locks *keylock.KeyedMutex, log *logger.Logger) *Manager {
	return &Manager{
		db:      db,
		billing: engine,
		creds:   creds,
		cfg:     cfg,
		locks:   locks,
		log:     log.WithComponent("session"),
		now:     time.Now,
	}
}

// SetClock overrides the manager's time source; used in tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Lock acquires the mutex for a table so a caller can compose multiple
// table operations into one critical section.
func (m *Manager) Lock(tableNumber int)   { m.locks.Lock(tableNumber) }
func (m *Manager) Unlock(tableNumber int) { m.locks.Unlock(tableNumber) }

// TableView is a table snapshot plus the derived countdowns, computed
// fresh on every read so overtime warnings are never stale.
type TableView struct {
	models.Table
	DiningSecondsRemaining      int `json:"dining_seconds_remaining"`
	ReservationSecondsRemaining int `json:"reservation_seconds_remaining"`
}

// OpenResult is returned from Open. The PIN appears here once and is
// never readable again through the API.
type OpenResult struct {
	Table models.Table `json:"table"`
	PIN   string       `json:"pin"`
}

// CloseResult is returned from Close.
type CloseResult struct {
	Table          models.Table              `json:"table"`
	ArchivedBillID uint                      `json:"archived_bill_id"`
	SessionHistory models.TableSessionRecord `json:"session_history"`
}

func (m *Manager) find(tableNumber int) (*models.Table, error) {
	var table models.Table
	err := m.db.Where("table_number = ?", tableNumber).First(&table).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("table %d not found", tableNumber)
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// Open starts a dining session on an available table: validates the party,
// resolves the tier price, issues fresh credentials and creates the bill.
func (m *Manager) Open(tableNumber, customerCount int, tier models.BuffetTier) (*OpenResult, error) {
	m.locks.Lock(tableNumber)
	defer m.locks.Unlock(tableNumber)
	return m.open(tableNumber, customerCount, tier, false)
}

// OpenFromReserved performs the same transition for reservation
// conversion, accepting a table currently in Reserved state. The caller
// must already hold the table's lock.
func (m *Manager) OpenFromReserved(tableNumber, customerCount int, tier models.BuffetTier) (*OpenResult, error) {
	return m.open(tableNumber, customerCount, tier, true)
}

func (m *Manager) open(tableNumber, customerCount int, tier models.BuffetTier, allowReserved bool) (*OpenResult, error) {
	if customerCount < 1 || customerCount > m.cfg.MaxGuests {
		return nil, errs.Validationf("customer count must be between 1 and %d, got %d", m.cfg.MaxGuests, customerCount)
	}
	price, ok := m.cfg.TierPrices[tier]
	if !ok {
		return nil, errs.Validationf("unknown buffet tier %q", tier)
	}

	table, err := m.find(tableNumber)
	if err != nil {
		return nil, err
	}
	switch {
	case table.IsAvailable():
	case allowReserved && table.Status == models.TableStatusReserved:
	default:
		return nil, errs.InvalidStatef("table %d is %s, not available", tableNumber, table.Status)
	}

	openedAt := m.now()
	pin, err := m.creds.IssuePIN()
	if err != nil {
		return nil, err
	}
	token, err := m.creds.IssueSessionToken(tableNumber, openedAt)
	if err != nil {
		return nil, err
	}

	bill, err := m.billing.Create(tableNumber, customerCount, tier, price)
	if err != nil {
		return nil, err
	}

	table.Status = models.TableStatusOpen
	table.CustomerCount = customerCount
	table.BuffetTier = tier
	table.BuffetPrice = price
	table.OpenedAt = &openedAt
	table.ReservedAt = nil
	table.ReservationExpiresAt = nil
	table.ReservationNote = ""
	table.CurrentBillID = &bill.ID
	table.PIN = pin
	table.SessionToken = token

	if err := m.db.Save(table).Error; err != nil {
		return nil, err
	}

	m.log.Info("table opened",
		"table_number", tableNumber,
		"customer_count", customerCount,
		"buffet_tier", tier,
		"bill_id", bill.ID)
	return &OpenResult{Table: *table, PIN: pin}, nil
}

// Reserve holds an available table for the configured hold period.
func (m *Manager) Reserve(tableNumber int, note string) (*models.Table, error) {
	m.locks.Lock(tableNumber)
	defer m.locks.Unlock(tableNumber)

	table, err := m.find(tableNumber)
	if err != nil {
		return nil, err
	}
	if !table.IsAvailable() {
		return nil, errs.InvalidStatef("table %d is %s, not available", tableNumber, table.Status)
	}

	reservedAt := m.now()
	expiresAt := reservedAt.Add(m.cfg.ReservationHold)
	table.Status = models.TableStatusReserved
	table.ReservedAt = &reservedAt
	table.ReservationExpiresAt = &expiresAt
	table.ReservationNote = note

	if err := m.db.Save(table).Error; err != nil {
		return nil, err
	}

	m.log.Info("table reserved", "table_number", tableNumber, "expires_at", expiresAt)
	return table, nil
}

// CancelReservation releases a reserved table back to available.
func (m *Manager) CancelReservation(tableNumber int) (*models.Table, error) {
	m.locks.Lock(tableNumber)
	defer m.locks.Unlock(tableNumber)
	return m.cancelReservation(tableNumber)
}

func (m *Manager) cancelReservation(tableNumber int) (*models.Table, error) {
	table, err := m.find(tableNumber)
	if err != nil {
		return nil, err
	}
	if table.Status != models.TableStatusReserved {
		return nil, errs.InvalidStatef("table %d is %s, not reserved", tableNumber, table.Status)
	}

	table.Status = models.TableStatusAvailable
	table.ReservedAt = nil
	table.ReservationExpiresAt = nil
	table.ReservationNote = ""

	if err := m.db.Save(table).Error; err != nil {
		return nil, err
	}

	m.log.Info("reservation cancelled", "table_number", tableNumber)
	return table, nil
}

// Close ends a dining session: captures the audit snapshot, archives the
// bill and resets every session field. A bill that somehow archived early
// does not block the close.
func (m *Manager) Close(tableNumber int) (*CloseResult, error) {
	m.locks.Lock(tableNumber)
	defer m.locks.Unlock(tableNumber)

	table, err := m.find(tableNumber)
	if err != nil {
		return nil, err
	}
	if !table.IsOpen() {
		return nil, errs.InvalidStatef("table %d is %s, not open", tableNumber, table.Status)
	}

	closedAt := m.now()
	var billID uint
	if table.CurrentBillID != nil {
		billID = *table.CurrentBillID
		if _, err := m.billing.Archive(billID); err != nil {
			// Already-archived is fine here; the table still resets.
			if !errs.IsKind(err, errs.KindConflict) {
				return nil, err
			}
			m.log.Warn("bill was already archived at close", "table_number", tableNumber, "bill_id", billID)
		}
	}

	record := models.TableSessionRecord{
		TableNumber:   tableNumber,
		OpenedAt:      *table.OpenedAt,
		ClosedAt:      closedAt,
		CustomerCount: table.CustomerCount,
		BuffetTier:    table.BuffetTier,
		BuffetPrice:   table.BuffetPrice,
		BillID:        billID,
	}
	if err := m.db.Create(&record).Error; err != nil {
		return nil, err
	}

	table.Status = models.TableStatusAvailable
	table.CustomerCount = 0
	table.BuffetTier = models.BuffetTierNone
	table.BuffetPrice = 0
	table.OpenedAt = nil
	table.ReservedAt = nil
	table.ReservationExpiresAt = nil
	table.ReservationNote = ""
	table.CurrentBillID = nil
	table.PIN = ""
	table.SessionToken = ""

	if err := m.db.Save(table).Error; err != nil {
		return nil, err
	}

	m.log.Info("table closed", "table_number", tableNumber, "bill_id", billID)
	return &CloseResult{Table: *table, ArchivedBillID: billID, SessionHistory: record}, nil
}

// Get returns one table with its countdowns.
func (m *Manager) Get(tableNumber int) (*TableView, error) {
	table, err := m.find(tableNumber)
	if err != nil {
		return nil, err
	}
	view := m.view(table)
	return &view, nil
}

// List returns all tables ordered by table number, with countdowns.
func (m *Manager) List() ([]TableView, error) {
	var tables []models.Table
	if err := m.db.Order("table_number asc").Find(&tables).Error; err != nil {
		return nil, err
	}

	views := make([]TableView, 0, len(tables))
	for i := range tables {
		views = append(views, m.view(&tables[i]))
	}
	return views, nil
}

func (m *Manager) view(table *models.Table) TableView {
	now := m.now()

	// Default to the full session length; the countdown only runs while
	// the table is open.
	dining := m.cfg.SessionDuration
	if table.IsOpen() && table.OpenedAt != nil {
		dining = m.cfg.SessionDuration - now.Sub(*table.OpenedAt)
		if dining < 0 {
			dining = 0
		}
	}

	var reservation time.Duration
	if table.Status == models.TableStatusReserved && table.ReservationExpiresAt != nil {
		reservation = table.ReservationExpiresAt.Sub(now)
		if reservation < 0 {
			reservation = 0
		}
	}

	return TableView{
		Table:                       *table,
		DiningSecondsRemaining:      int(dining.Seconds()),
		ReservationSecondsRemaining: int(reservation.Seconds()),
	}
}

// VerifyPIN checks a submitted PIN against the table's current session.
func (m *Manager) VerifyPIN(tableNumber int, pin string) (bool, error) {
	table, err := m.find(tableNumber)
	if err != nil {
		return false, err
	}
	if !table.IsOpen() {
		return false, nil
	}
	return credentials.VerifyPIN(table.PIN, pin), nil
}

// SweepExpiredReservations releases every reserved table whose hold has
// lapsed. A failure on one table is logged and does not stop the sweep.
// Returns the table numbers released.
func (m *Manager) SweepExpiredReservations(now time.Time) []int {
	var tables []models.Table
	err := m.db.Where("status = ? AND reservation_expires_at <= ?", models.TableStatusReserved, now).
		Find(&tables).Error
	if err != nil {
		m.log.Error("reservation sweep query failed", "error", err)
		return nil
	}

	var released []int
	for i := range tables {
		n := tables[i].TableNumber
		m.locks.Lock(n)
		_, err := m.cancelReservation(n)
		m.locks.Unlock(n)
		if err != nil {
			// The table may have been opened or released since the query.
			m.log.Warn("failed to release expired reservation", "table_number", n, "error", err)
			continue
		}
		m.log.Info("reservation expired", "table_number", n)
		released = append(released, n)
	}
	return released
}
