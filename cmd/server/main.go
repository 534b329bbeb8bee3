package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campuslife/court-reservation/internal/availability"
	"github.com/campuslife/court-reservation/internal/booking"
	"github.com/campuslife/court-reservation/internal/config"
	"github.com/campuslife/court-reservation/internal/database"
	"github.com/campuslife/court-reservation/internal/handler"
	"github.com/campuslife/court-reservation/internal/queue"
	"github.com/campuslife/court-reservation/internal/repository"
	"github.com/campuslife/court-reservation/internal/router"
	queuepublisher "github.com/campuslife/court-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("database migrate failed: %v", err)
	}
	cancel()

	// Redis is optional: when unreachable, rate limiting and caching turn
	// off and bookings rely on the in-process lock plus the unique index.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, continuing without cache/ratelimit/distributed locks")
	}

	courtRepo := repository.NewCourtRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	engine := availability.NewEngine(courtRepo, reservationRepo)
	coordinator := booking.NewCoordinator(reservationRepo, rdb, cfg.BookingWait, cfg.BookingLockTTL)

	courtHandler := handler.NewCourtHandler(courtRepo, engine)
	bookingHandler := handler.NewBookingHandler(courtRepo, coordinator, reservationRepo, queuepublisher.PublishCourtReserved)
	adminHandler := handler.NewAdminHandler(courtRepo)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterPublic(e, courtHandler, rdb)
	router.RegisterBooking(e, bookingHandler, rdb, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	// Consume court.reserved events in the background; the consumer runs
	// its own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
