// Package api exposes the core services over HTTP. Handlers are thin:
// they bind input, call one service operation and map the error kind to a
// status code. All business rules live in the service packages.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tableside/internal/billing"
	"tableside/internal/catalog"
	"tableside/internal/errs"
	"tableside/internal/live"
	"tableside/internal/monitoring"
	"tableside/internal/ordering"
	"tableside/internal/reservation"
	"tableside/internal/session"
	"tableside/pkg/logger"
)

// Server wires all services behind the HTTP API.
type Server struct {
	router       *gin.Engine
	sessions     *session.Manager
	billing      *billing.Engine
	orders       *ordering.Router
	queue        *ordering.Queue
	reservations *reservation.Service
	waitlist     *reservation.Waitlist
	catalog      *catalog.Catalog
	hub          *live.Hub
	monitor      *monitoring.Monitor
	metrics      *monitoring.Metrics
	log          *logger.Logger
}

// Deps carries the constructed services into the server.
type Deps struct {
	Sessions     *session.Manager
	Billing      *billing.Engine
	Orders       *ordering.Router
	Queue        *ordering.Queue
	Reservations *reservation.Service
	Waitlist     *reservation.Waitlist
	Catalog      *catalog.Catalog
	Hub          *live.Hub
	Monitor      *monitoring.Monitor
	Metrics      *monitoring.Metrics
	Log          *logger.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(deps Deps) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:       router,
		sessions:     deps.Sessions,
		billing:      deps.Billing,
		orders:       deps.Orders,
		queue:        deps.Queue,
		reservations: deps.Reservations,
		waitlist:     deps.Waitlist,
		catalog:      deps.Catalog,
		hub:          deps.Hub,
		monitor:      deps.Monitor,
		metrics:      deps.Metrics,
		log:          deps.Log.WithComponent("api"),
	}

	router.Use(s.requestLogger())
	s.setupRoutes()
	return s
}

// Router returns the Gin router.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/ws", s.hub.HandleWS)

	v1 := s.router.Group("/api/v1")
	{
		// Table sessions
		v1.GET("/tables", s.handleListTables)
		v1.GET("/tables/:number", s.handleGetTable)
		v1.POST("/tables/:number/open", s.handleOpenTable)
		v1.POST("/tables/:number/reserve", s.handleReserveTable)
		v1.DELETE("/tables/:number/reservation", s.handleCancelTableReservation)
		v1.POST("/tables/:number/close", s.handleCloseTable)
		v1.POST("/tables/:number/verify-pin", s.handleVerifyPIN)

		// Menu
		v1.GET("/menu", s.handleListMenu)

		// Billing
		v1.GET("/tables/:number/bill", s.handleActiveBill)
		v1.GET("/tables/:number/receipt", s.handleReceipt)
		v1.GET("/bills/history", s.handleBillHistory)

		// Orders and kitchen queues
		v1.POST("/orders", s.handlePlaceOrder)
		v1.POST("/orders/:id/complete", s.handleCompleteOrder)
		v1.GET("/queues/:type/next", s.handlePeekQueue)
		v1.GET("/queues/:type", s.handleListQueue)
		v1.GET("/tables/:number/orders", s.handleOrdersByTable)

		// Reservations
		v1.POST("/reservations", s.handleCreateReservation)
		v1.GET("/reservations", s.handleListReservations)
		v1.POST("/reservations/:id/cancel", s.handleCancelReservation)
		v1.POST("/reservations/:id/convert", s.handleConvertReservation)
		v1.GET("/reservations/stats", s.handleReservationStats)

		// Waitlist
		v1.POST("/waitlist", s.handleJoinWaitlist)
		v1.GET("/waitlist", s.handleListWaitlist)
		v1.POST("/waitlist/next", s.handleNextWaitlist)
		v1.DELETE("/waitlist/:id", s.handleRemoveWaitlist)

		// Ops
		v1.GET("/status", s.handleStatus)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Next()

		s.log.Info("request handled",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}

// statusFor maps a core error kind to an HTTP status.
func statusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindInvalidState, errs.KindConflict, errs.KindNoCapacity:
		return http.StatusConflict
	case errs.KindUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  string(errs.KindOf(err)),
	})
}

// broadcastTables pushes the current table board to live clients.
func (s *Server) broadcastTables() {
	views, err := s.sessions.List()
	if err != nil {
		s.log.Warn("failed to load tables for broadcast", "error", err)
		return
	}
	s.hub.Broadcast(gin.H{"type": "tables", "tables": views})
}
