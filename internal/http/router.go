// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"roadbook/internal/http/handlers"
	"roadbook/internal/http/middleware"
	"roadbook/internal/infra"
)

type RouterDeps struct {
	Search    handlers.Searcher
	Bookings  handlers.Bookings
	Pricing   handlers.PricingAdmin
	Fleet     handlers.FleetAdmin
	Ordering  handlers.Collections
	Locations handlers.LocationLister
	Verifier  infra.TokenVerifier
	Log       logrus.FieldLogger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Log), middleware.Logging(d.Log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	public := api.Group("", middleware.OptionalAuth(d.Verifier))
	searchHandler := handlers.NewSearchHandler(d.Search)
	public.GET("/search", searchHandler.Search)

	locationHandler := handlers.NewLocationHandler(d.Locations)
	public.GET("/locations", locationHandler.List)

	bookingHandler := handlers.NewBookingHandler(d.Bookings)
	public.POST("/bookings", bookingHandler.Create)

	authed := api.Group("", middleware.Auth(d.Verifier))
	authed.GET("/bookings", bookingHandler.List)
	authed.GET("/bookings/:id", bookingHandler.Get)
	authed.GET("/bookings/:id/events", bookingHandler.Events)
	authed.POST("/bookings/:id/transitions", bookingHandler.Transition)

	admin := api.Group("/admin", middleware.Auth(d.Verifier), middleware.RequireRole("admin"))
	adminHandler := handlers.NewAdminHandler(d.Pricing, d.Fleet, d.Ordering)
	admin.GET("/pricing/settings", adminHandler.GetSettings)
	admin.PUT("/pricing/settings", adminHandler.UpdateSettings)
	admin.PUT("/drivers/:id/pricing-override", adminHandler.SetOverride)
	admin.DELETE("/drivers/:id/pricing-override", adminHandler.DeleteOverride)
	admin.PUT("/vehicles/:id/verification", adminHandler.SetVerification)
	admin.PUT("/vehicles/:id/active", adminHandler.SetActive)
	admin.GET("/collections/:type", adminHandler.ListCollection)
	admin.PUT("/collections/:type/order", adminHandler.Reorder)

	return r
}
