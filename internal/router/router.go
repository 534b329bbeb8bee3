// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/campuslife/court-reservation/internal/config"
	"github.com/campuslife/court-reservation/internal/handler"
	"github.com/campuslife/court-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated, read-only court
// endpoints. The court catalog is response-cached; availability is not,
// because a cached answer could contradict a booking committed a moment
// earlier. Both routes sit behind the shared rate limiter so anonymous
// polling cannot starve the service.
func RegisterPublic(e *echo.Echo, h *handler.CourtHandler, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/v1/courts", h.ListCourts, limiter, cache)
	e.GET("/v1/courts/:id/available-slots", h.AvailableSlots, limiter)
}

// RegisterBooking registers the authenticated booking endpoints under
// /v1. Every route requires a valid access token; both members and
// admins may book courts for themselves.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, rdb *redis.Client, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MEMBER", "ADMIN"),
	)
	g.POST("/courts/:id/reservations", h.CreateReservation)
	g.DELETE("/courts/:id/reservations", h.CancelReservation)
	g.GET("/my-reservations", h.ListMyReservations)
}

// RegisterAdmin registers court-catalog management under /v1 for
// facilities staff. Only the ADMIN role may create or retire courts.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/courts", h.CreateCourt)
	g.DELETE("/courts/:id", h.DeleteCourt)
}
