package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"innkeep/internal/infra/config"
	"innkeep/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	MyBookings(c *gin.Context)
	AssignRooms(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	Cancel(c *gin.Context)
	NoShow(c *gin.Context)
	EditDates(c *gin.Context)
	CreateDirect(c *gin.Context)
}

type AvailabilityHTTP interface {
	Search(c *gin.Context)
}

type PaymentHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	ListByBooking(c *gin.Context)
	RequestRefund(c *gin.Context)
}

type WebhookHTTP interface {
	BankCallback(c *gin.Context)
	CardEvent(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Availability   AvailabilityHTTP
	Payment        PaymentHTTP
	Webhook        WebhookHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	// Webhooks are signed by the provider, never by a bearer token, and
	// live outside the versioned API.
	if h.Webhook != nil {
		webhooks := router.Group("/webhooks")
		webhooks.POST("/bank", h.Webhook.BankCallback)
		webhooks.POST("/card", h.Webhook.CardEvent)
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PATCH("/bookings/:id/dates", h.Booking.EditDates)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.GET("/me/bookings", h.Booking.MyBookings)

		deskGroup := api.Group("/desk")
		deskGroup.POST("/bookings", h.Booking.CreateDirect)
		deskGroup.POST("/bookings/:id/rooms", h.Booking.AssignRooms)
		deskGroup.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		deskGroup.POST("/bookings/:id/check-out", h.Booking.CheckOut)
		deskGroup.POST("/bookings/:id/no-show", h.Booking.NoShow)
	}
	if h.Availability != nil {
		api.GET("/availability", h.Availability.Search)
	}
	if h.Payment != nil {
		api.POST("/bookings/:id/payments", h.Payment.Create)
		api.GET("/bookings/:id/payments", h.Payment.ListByBooking)
		api.GET("/payments/:id", h.Payment.Get)
		api.POST("/payments/:id/refunds", h.Payment.RequestRefund)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
