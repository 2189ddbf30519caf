// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secrethouse/internal/http/handlers"
	"secrethouse/internal/http/middleware"
	"secrethouse/internal/modules/pricing"
)

type RouterDeps struct {
	Conversations handlers.Conversations
	Pricing       *pricing.Service
	Availability  handlers.Availability
	Bookings      handlers.Bookings
	Location      *time.Location
	APIKey        string
	Logger        *zap.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.Recovery(d.Logger), middleware.Logging(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	conv := handlers.NewConversationHandler(d.Conversations)
	api.POST("/conversations/:id/messages", conv.Message)
	api.POST("/conversations/:id/payment-proof", conv.PaymentProof)
	api.DELETE("/conversations/:id", conv.Reset)

	prices := handlers.NewPricingHandler(d.Pricing, d.Location)
	api.GET("/tariffs", prices.Tariffs)
	api.GET("/tariffs/summary", prices.Summary)
	api.POST("/pricing/quote", prices.Quote)

	if d.Availability != nil {
		avail := handlers.NewAvailabilityHandler(d.Availability, d.Location)
		api.GET("/availability", avail.Get)
	}

	if d.Bookings != nil {
		bookings := handlers.NewBookingHandler(d.Bookings)
		admin := api.Group("/bookings", middleware.APIKey(d.APIKey))
		admin.GET("/:id", bookings.Get)
		admin.POST("/:id/approve", bookings.Approve)
		admin.POST("/:id/reject", bookings.Reject)
	}

	return r
}
