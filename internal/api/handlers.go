package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tableside/internal/billing"
	"tableside/internal/models"
	"tableside/internal/ordering"
	"tableside/internal/reservation"
)

func paramInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// Table session handlers

func (s *Server) handleListTables(c *gin.Context) {
	views, err := s.sessions.List()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) handleGetTable(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	view, err := s.sessions.Get(number)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleOpenTable(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	var req struct {
		CustomerCount int               `json:"customer_count"`
		BuffetTier    models.BuffetTier `json:"buffet_tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.sessions.Open(number, req.CustomerCount, req.BuffetTier)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.TablesOpen.Inc()
	s.monitor.Incr("tables_opened")
	s.broadcastTables()
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleReserveTable(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	// Body is optional; reserving without a note is fine.
	var req struct {
		Note string `json:"note"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	table, err := s.sessions.Reserve(number, req.Note)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.broadcastTables()
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleCancelTableReservation(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	table, err := s.sessions.CancelReservation(number)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.broadcastTables()
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleCloseTable(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	result, err := s.sessions.Close(number)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.TablesOpen.Dec()
	s.metrics.BillsArchived.Inc()
	s.monitor.Incr("tables_closed")
	s.broadcastTables()
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleVerifyPIN(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	valid, err := s.sessions.VerifyPIN(number, req.PIN)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// Menu handlers

func (s *Server) handleListMenu(c *gin.Context) {
	availableOnly := c.Query("available") == "true"

	if category := c.Query("category"); category != "" {
		items, err := s.catalog.ListByCategory(models.MenuCategory(category), availableOnly)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	items, err := s.catalog.List(availableOnly)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Billing handlers

func (s *Server) handleActiveBill(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	bill, err := s.billing.ActiveForTable(number)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) handleReceipt(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	receipt, err := s.billing.Printable(number)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (s *Server) handleBillHistory(c *gin.Context) {
	filter := billing.HistoryFilter{}
	if v := c.Query("table_number"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table_number"})
			return
		}
		filter.TableNumber = n
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		filter.To = &t
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	bills, total, err := s.billing.History(filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills, "total": total})
}

// Order handlers

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req struct {
		TableNumber int                  `json:"table_number"`
		Items       []ordering.OrderLine `json:"items"`
		Notes       string               `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := s.orders.PlaceOrder(req.TableNumber, req.Items, req.Notes)
	if err != nil {
		s.fail(c, err)
		return
	}

	for _, o := range orders {
		s.metrics.OrdersPlaced.WithLabelValues(string(o.QueueType)).Inc()
		s.metrics.PendingOrders.WithLabelValues(string(o.QueueType)).Inc()
	}
	s.monitor.Incr("orders_placed")
	c.JSON(http.StatusCreated, gin.H{"orders": orders})
}

func (s *Server) handleCompleteOrder(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	order, err := s.queue.Complete(uint(id))
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.OrdersCompleted.Inc()
	s.metrics.PendingOrders.WithLabelValues(string(order.QueueType)).Dec()
	s.monitor.Incr("orders_completed")
	c.JSON(http.StatusOK, order)
}

func queueTypeParam(c *gin.Context) (models.QueueType, bool) {
	switch c.Param("type") {
	case string(models.QueueTypeNormal):
		return models.QueueTypeNormal, true
	case string(models.QueueTypeSpecial):
		return models.QueueTypeSpecial, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "queue type must be normal or special"})
		return "", false
	}
}

func (s *Server) handlePeekQueue(c *gin.Context) {
	queueType, ok := queueTypeParam(c)
	if !ok {
		return
	}

	order, err := s.queue.PeekFirst(queueType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleListQueue(c *gin.Context) {
	queueType, ok := queueTypeParam(c)
	if !ok {
		return
	}

	orders, err := s.queue.Pending(queueType)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) handleOrdersByTable(c *gin.Context) {
	number, ok := paramInt(c, "number")
	if !ok {
		return
	}

	orders, err := s.queue.ListByTable(number)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Reservation handlers

func (s *Server) handleCreateReservation(c *gin.Context) {
	var req reservation.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.reservations.Create(req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.broadcastTables()
	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleListReservations(c *gin.Context) {
	status := models.ReservationStatus(c.Query("status"))
	reservations, err := s.reservations.List(status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (s *Server) handleCancelReservation(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	res, err := s.reservations.Cancel(uint(id))
	if err != nil {
		s.fail(c, err)
		return
	}

	s.broadcastTables()
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleConvertReservation(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req struct {
		CustomerCount int               `json:"customer_count"`
		BuffetTier    models.BuffetTier `json:"buffet_tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.reservations.ConvertToOpenTable(uint(id), req.CustomerCount, req.BuffetTier)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.metrics.TablesOpen.Inc()
	s.monitor.Incr("reservations_converted")
	s.broadcastTables()
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReservationStats(c *gin.Context) {
	stats, err := s.reservations.ActiveStats()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Waitlist handlers

func (s *Server) handleJoinWaitlist(c *gin.Context) {
	var req struct {
		CustomerName  string `json:"customer_name"`
		CustomerPhone string `json:"customer_phone"`
		PartySize     int    `json:"party_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := s.waitlist.Join(req.CustomerName, req.CustomerPhone, req.PartySize)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleListWaitlist(c *gin.Context) {
	entries, err := s.waitlist.List()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleNextWaitlist(c *gin.Context) {
	entry, err := s.waitlist.Next()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleRemoveWaitlist(c *gin.Context) {
	if err := s.waitlist.Remove(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

// Ops handlers

func (s *Server) handleStatus(c *gin.Context) {
	snapshot := s.monitor.Snapshot()
	snapshot["live_clients"] = s.hub.ClientCount()
	c.JSON(http.StatusOK, snapshot)
}
