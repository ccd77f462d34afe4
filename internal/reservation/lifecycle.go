// Package reservation manages held seatings and the walk-in waitlist.
// A reservation holds a table for a fixed period; it either converts into
// an open dining session, gets cancelled, or expires.
package reservation

import (
	"time"

	"github.com/jinzhu/gorm"

	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/internal/session"
	"tableside/pkg/logger"
)

// Service drives the reservation lifecycle.
type Service struct {
	db       *gorm.DB
	sessions *session.Manager
	hold     time.Duration
	maxParty int
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates the reservation service.
func NewService(db *gorm.DB, sessions *session.Manager, hold time.Duration, maxParty int, log *logger.Logger) *Service {
	return &Service{
		db:       db,
		sessions: sessions,
		hold:     hold,
		maxParty: maxParty,
		log:      log.WithComponent("reservation"),
		now:      time.Now,
	}
}

// SetClock overrides the service's time source; used in tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateRequest is the input for Create.
type CreateRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	PartySize     int    `json:"party_size"`
	TableNumber   *int   `json:"table_number,omitempty"`
}

// Create places a reservation. When a specific table is requested the
// table is moved to Reserved first; if the reservation record then fails
// to persist, the table is released again so neither entity dangles.
func (s *Service) Create(req CreateRequest) (*models.Reservation, error) {
	if req.CustomerName == "" {
		return nil, errs.Validationf("customer name is required")
	}
	if req.PartySize < 1 || req.PartySize > s.maxParty {
		return nil, errs.Validationf("party size must be between 1 and %d, got %d", s.maxParty, req.PartySize)
	}

	if req.TableNumber != nil {
		if _, err := s.sessions.Reserve(*req.TableNumber, req.CustomerName); err != nil {
			return nil, err
		}
	}

	reservedAt := s.now()
	res := models.Reservation{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		PartySize:       req.PartySize,
		ReservationTime: reservedAt,
		ExpiresAt:       reservedAt.Add(s.hold),
		Status:          models.ReservationStatusActive,
		TableNumber:     req.TableNumber,
	}
	if err := s.db.Create(&res).Error; err != nil {
		if req.TableNumber != nil {
			if _, relErr := s.sessions.CancelReservation(*req.TableNumber); relErr != nil {
				s.log.Error("failed to release table after reservation create failure",
					"table_number", *req.TableNumber, "error", relErr)
			}
		}
		return nil, err
	}

	s.log.Info("reservation created",
		"reservation_id", res.ID,
		"party_size", res.PartySize,
		"expires_at", res.ExpiresAt)
	return &res, nil
}

func (s *Service) find(id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.First(&res, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("reservation %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Get returns one reservation.
func (s *Service) Get(id uint) (*models.Reservation, error) {
	return s.find(id)
}

// Cancel voids an active reservation and releases any bound table.
func (s *Service) Cancel(id uint) (*models.Reservation, error) {
	res, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !res.IsActive() {
		return nil, errs.Conflictf("reservation %d is %s, not active", id, res.Status)
	}

	res.Status = models.ReservationStatusCancelled
	if err := s.db.Save(res).Error; err != nil {
		return nil, err
	}

	if res.TableNumber != nil {
		if _, err := s.sessions.CancelReservation(*res.TableNumber); err != nil {
			s.log.Warn("failed to release table on reservation cancel",
				"table_number", *res.TableNumber, "error", err)
		}
	}

	s.log.Info("reservation cancelled", "reservation_id", res.ID)
	return res, nil
}

// ConvertResult is returned from ConvertToOpenTable.
type ConvertResult struct {
	Reservation models.Reservation `json:"reservation"`
	Table       models.Table       `json:"table"`
	PIN         string             `json:"pin"`
}

// ConvertToOpenTable seats an active reservation: its bound table if any,
// otherwise the first available table. The Reserved → Open transition
// happens under the table's lock, so no other caller can slip in between
// the release and the open.
func (s *Service) ConvertToOpenTable(id uint, customerCount int, tier models.BuffetTier) (*ConvertResult, error) {
	res, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !res.IsActive() {
		return nil, errs.Conflictf("reservation %d is %s, not active", id, res.Status)
	}

	tableNumber, err := s.resolveTable(res)
	if err != nil {
		return nil, err
	}

	s.sessions.Lock(tableNumber)
	opened, err := s.sessions.OpenFromReserved(tableNumber, customerCount, tier)
	s.sessions.Unlock(tableNumber)
	if err != nil {
		return nil, err
	}

	res.Status = models.ReservationStatusConverted
	res.TableNumber = &tableNumber
	if err := s.db.Save(res).Error; err != nil {
		return nil, err
	}

	s.log.Info("reservation converted",
		"reservation_id", res.ID,
		"table_number", tableNumber)
	return &ConvertResult{Reservation: *res, Table: opened.Table, PIN: opened.PIN}, nil
}

func (s *Service) resolveTable(res *models.Reservation) (int, error) {
	if res.TableNumber != nil {
		return *res.TableNumber, nil
	}

	var table models.Table
	err := s.db.Where("status = ?", models.TableStatusAvailable).
		Order("table_number asc").
		First(&table).Error
	if gorm.IsRecordNotFoundError(err) {
		return 0, errs.NoCapacityf("no table available for reservation %d", res.ID)
	}
	if err != nil {
		return 0, err
	}
	return table.TableNumber, nil
}

// ExpireSweep expires every active reservation whose hold has lapsed and
// releases any bound tables. One reservation's failure never stops the
// sweep. Returns the ids expired.
func (s *Service) ExpireSweep(now time.Time) []uint {
	var due []models.Reservation
	err := s.db.Where("status = ? AND expires_at <= ?", models.ReservationStatusActive, now).
		Find(&due).Error
	if err != nil {
		s.log.Error("expiry sweep query failed", "error", err)
		return nil
	}

	var expired []uint
	for i := range due {
		res := &due[i]
		res.Status = models.ReservationStatusExpired
		if err := s.db.Save(res).Error; err != nil {
			s.log.Warn("failed to expire reservation", "reservation_id", res.ID, "error", err)
			continue
		}
		if res.TableNumber != nil {
			if _, err := s.sessions.CancelReservation(*res.TableNumber); err != nil {
				s.log.Warn("failed to release table on reservation expiry",
					"table_number", *res.TableNumber, "error", err)
			}
		}
		s.log.Info("reservation expired", "reservation_id", res.ID)
		expired = append(expired, res.ID)
	}
	return expired
}

// Stats summarizes the active reservation load.
type Stats struct {
	ActiveCount int `json:"active_count"`
	TotalGuests int `json:"total_guests"`
}

// ActiveStats returns the count of active reservations and the sum of
// their party sizes.
func (s *Service) ActiveStats() (*Stats, error) {
	var result struct {
		Count int
		Sum   int
	}
	err := s.db.Model(&models.Reservation{}).
		Select("count(*) as count, coalesce(sum(party_size), 0) as sum").
		Where("status = ?", models.ReservationStatusActive).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return &Stats{ActiveCount: result.Count, TotalGuests: result.Sum}, nil
}

// List returns reservations, newest first, optionally filtered by status.
func (s *Service) List(status models.ReservationStatus) ([]models.Reservation, error) {
	query := s.db.New()
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("created_at desc").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
