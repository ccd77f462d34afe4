package reservation

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/pkg/logger"
)

// Waitlist is the walk-in queue. Entries are strictly FIFO on arrival time
// and are removed outright when a party is seated or gives up, unlike
// reservations which keep a terminal status for history.
type Waitlist struct {
	db       *gorm.DB
	maxParty int
	log      *logger.Logger
}

// NewWaitlist creates the walk-in queue.
func NewWaitlist(db *gorm.DB, maxParty int, log *logger.Logger) *Waitlist {
	return &Waitlist{
		db:       db,
		maxParty: maxParty,
		log:      log.WithComponent("waitlist"),
	}
}

// Join enqueues a walk-in party.
func (w *Waitlist) Join(customerName, customerPhone string, partySize int) (*models.WaitlistEntry, error) {
	if customerName == "" {
		return nil, errs.Validationf("customer name is required")
	}
	if partySize < 1 || partySize > w.maxParty {
		return nil, errs.Validationf("party size must be between 1 and %d, got %d", w.maxParty, partySize)
	}

	entry := models.WaitlistEntry{
		PublicID:      uuid.NewString(),
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		PartySize:     partySize,
	}
	if err := w.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	w.log.Info("party joined waitlist", "public_id", entry.PublicID, "party_size", partySize)
	return &entry, nil
}

// Next dequeues the party that has waited longest.
func (w *Waitlist) Next() (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := w.db.Order("created_at asc, id asc").First(&entry).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("waitlist is empty")
	}
	if err != nil {
		return nil, err
	}

	if err := w.db.Delete(&entry).Error; err != nil {
		return nil, err
	}

	w.log.Info("party called from waitlist", "public_id", entry.PublicID)
	return &entry, nil
}

// Remove drops an entry by its public id.
func (w *Waitlist) Remove(publicID string) error {
	var entry models.WaitlistEntry
	err := w.db.Where("public_id = ?", publicID).First(&entry).Error
	if gorm.IsRecordNotFoundError(err) {
		return errs.NotFoundf("waitlist entry %s not found", publicID)
	}
	if err != nil {
		return err
	}

	if err := w.db.Delete(&entry).Error; err != nil {
		return err
	}

	w.log.Info("party removed from waitlist", "public_id", publicID)
	return nil
}

// List returns the queue in FIFO order.
func (w *Waitlist) List() ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	if err := w.db.Order("created_at asc, id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
