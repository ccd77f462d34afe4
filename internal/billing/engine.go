// Package billing computes and mutates table bills. Pricing is
// VAT-inclusive: every total carries an embedded 7% tax that is decomposed
// into subtotal and tax on each recompute.
package billing

import (
	"time"

	"github.com/jinzhu/gorm"

	"tableside/internal/errs"
	"tableside/internal/models"
	"tableside/pkg/logger"
)

// Engine creates, mutates and archives bills.
type Engine struct {
	db      *gorm.DB
	vatRate float64
	log     *logger.Logger
	now     func() time.Time
}

// NewEngine creates a billing engine with the given VAT rate.
func NewEngine(db *gorm.DB, vatRate float64, log *logger.Logger) *Engine {
	return &Engine{
		db:      db,
		vatRate: vatRate,
		log:     log.WithComponent("billing"),
		now:     time.Now,
	}
}

// SetClock overrides the engine's time source; used in tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SpecialItem is an à-la-carte charge forwarded onto a bill, carrying the
// menu snapshot taken at order time.
type SpecialItem struct {
	MenuItemID uint
	NameEN     string
	NameTH     string
	Price      float64
	Quantity   int
}

// Create opens a new active bill for a table. At most one active bill may
// exist per table; a second create is a conflict.
func (e *Engine) Create(tableNumber, customerCount int, tier models.BuffetTier, pricePerPerson float64) (*models.Bill, error) {
	var existing models.Bill
	err := e.db.Where("table_number = ? AND status = ?", tableNumber, models.BillStatusActive).
		First(&existing).Error
	if err == nil {
		return nil, errs.Conflictf("table %d already has an active bill", tableNumber)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	buffetCharges := round2(float64(customerCount) * pricePerPerson)
	preVat, vat := DecomposeVAT(buffetCharges, e.vatRate)

	bill := models.Bill{
		TableNumber:          tableNumber,
		CustomerCount:        customerCount,
		BuffetTier:           tier,
		BuffetPricePerPerson: pricePerPerson,
		BuffetCharges:        buffetCharges,
		SpecialItems:         []models.BillItem{},
		SpecialItemsTotal:    0,
		Total:                buffetCharges,
		PreVatSubtotal:       preVat,
		VatAmount:            vat,
		Status:               models.BillStatusActive,
	}
	if err := e.db.Create(&bill).Error; err != nil {
		return nil, err
	}

	e.log.Info("bill created",
		"bill_id", bill.ID,
		"table_number", tableNumber,
		"buffet_charges", buffetCharges)
	return &bill, nil
}

// AddItem appends an à-la-carte line to an active bill and recomputes
// every derived sum. Totals are recomputed from the full item list rather
// than incremented, so repeated mutations cannot drift. All derived fields
// commit together or not at all.
func (e *Engine) AddItem(billID uint, item SpecialItem) (*models.Bill, error) {
	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	bill, err := e.addItemTx(tx, billID, item)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	e.log.Info("special item added",
		"bill_id", bill.ID,
		"item", item.NameEN,
		"quantity", item.Quantity,
		"total", bill.Total)
	return bill, nil
}

func (e *Engine) addItemTx(tx *gorm.DB, billID uint, item SpecialItem) (*models.Bill, error) {
	var bill models.Bill
	err := tx.First(&bill, billID).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("bill %d not found", billID)
	}
	if err != nil {
		return nil, err
	}
	if bill.IsArchived() {
		return nil, errs.InvalidStatef("cannot modify archived bill %d", billID)
	}

	line := models.BillItem{
		BillID:     bill.ID,
		MenuItemID: item.MenuItemID,
		NameEN:     item.NameEN,
		NameTH:     item.NameTH,
		Price:      item.Price,
		Quantity:   item.Quantity,
		Subtotal:   round2(item.Price * float64(item.Quantity)),
	}
	if err := tx.Create(&line).Error; err != nil {
		return nil, err
	}

	var items []models.BillItem
	if err := tx.Where("bill_id = ?", bill.ID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}

	var specialTotal float64
	for _, it := range items {
		specialTotal += it.Subtotal
	}
	specialTotal = round2(specialTotal)

	bill.SpecialItemsTotal = specialTotal
	bill.Total = round2(bill.BuffetCharges + specialTotal)
	bill.PreVatSubtotal, bill.VatAmount = DecomposeVAT(bill.Total, e.vatRate)

	if err := tx.Save(&bill).Error; err != nil {
		return nil, err
	}

	bill.SpecialItems = items
	return &bill, nil
}

// Get returns a bill with its items.
func (e *Engine) Get(billID uint) (*models.Bill, error) {
	var bill models.Bill
	err := e.db.Preload("SpecialItems").First(&bill, billID).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("bill %d not found", billID)
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// ActiveForTable returns the table's active bill.
func (e *Engine) ActiveForTable(tableNumber int) (*models.Bill, error) {
	var bill models.Bill
	err := e.db.Preload("SpecialItems").
		Where("table_number = ? AND status = ?", tableNumber, models.BillStatusActive).
		First(&bill).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, errs.NotFoundf("no active bill for table %d", tableNumber)
	}
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// Archive finalizes a bill. Archiving an already-archived bill is a
// conflict; callers closing a table treat that conflict as success.
func (e *Engine) Archive(billID uint) (*models.Bill, error) {
	bill, err := e.Get(billID)
	if err != nil {
		return nil, err
	}
	if bill.IsArchived() {
		return nil, errs.Conflictf("bill %d is already archived", billID)
	}

	archivedAt := e.now()
	bill.Status = models.BillStatusArchived
	bill.ArchivedAt = &archivedAt
	if err := e.db.Save(bill).Error; err != nil {
		return nil, err
	}

	e.log.Info("bill archived", "bill_id", bill.ID, "total", bill.Total)
	return bill, nil
}

// HistoryFilter narrows and pages the archived bill listing.
type HistoryFilter struct {
	TableNumber int // 0 means all tables
	From        *time.Time
	To          *time.Time
	Page        int // 1-based
	PerPage     int
}

// History returns archived bills, newest archive first.
func (e *Engine) History(filter HistoryFilter) ([]models.Bill, int, error) {
	query := e.db.Model(&models.Bill{}).Where("status = ?", models.BillStatusArchived)
	if filter.TableNumber > 0 {
		query = query.Where("table_number = ?", filter.TableNumber)
	}
	if filter.From != nil {
		query = query.Where("archived_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("archived_at <= ?", *filter.To)
	}

	var total int
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}

	var bills []models.Bill
	err := query.Preload("SpecialItems").
		Order("archived_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// ReceiptLine is one printable line on a receipt.
type ReceiptLine struct {
	NameEN    string  `json:"name_en"`
	NameTH    string  `json:"name_th"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

// Receipt is the line-item projection of a table's active bill.
type Receipt struct {
	TableNumber    int           `json:"table_number"`
	Lines          []ReceiptLine `json:"lines"`
	Total          float64       `json:"total"`
	PreVatSubtotal float64       `json:"pre_vat_subtotal"`
	VatAmount      float64       `json:"vat_amount"`
	IssuedAt       time.Time     `json:"issued_at"`
}

var buffetLineNames = map[models.BuffetTier][2]string{
	models.BuffetTierStarter: {"Starter Buffet", "บุฟเฟ่ต์สตาร์ทเตอร์"},
	models.BuffetTierPremium: {"Premium Buffet", "บุฟเฟ่ต์พรีเมียม"},
}

// Printable projects the active bill of a table into a receipt view. It is
// a pure read; the bill is not mutated.
func (e *Engine) Printable(tableNumber int) (*Receipt, error) {
	bill, err := e.ActiveForTable(tableNumber)
	if err != nil {
		return nil, err
	}

	names := buffetLineNames[bill.BuffetTier]
	lines := []ReceiptLine{{
		NameEN:    names[0],
		NameTH:    names[1],
		Quantity:  bill.CustomerCount,
		UnitPrice: bill.BuffetPricePerPerson,
		Amount:    bill.BuffetCharges,
	}}

	for _, item := range bill.SpecialItems {
		lines = append(lines, ReceiptLine{
			NameEN:    item.NameEN,
			NameTH:    item.NameTH,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Amount:    item.Subtotal,
		})
	}

	return &Receipt{
		TableNumber:    tableNumber,
		Lines:          lines,
		Total:          bill.Total,
		PreVatSubtotal: bill.PreVatSubtotal,
		VatAmount:      bill.VatAmount,
		IssuedAt:       e.now(),
	}, nil
}
