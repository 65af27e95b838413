package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/courtside/arena-booking/internal/booking"
	"github.com/courtside/arena-booking/internal/config"
	"github.com/courtside/arena-booking/internal/database"
	"github.com/courtside/arena-booking/internal/handler"
	"github.com/courtside/arena-booking/internal/middleware"
	"github.com/courtside/arena-booking/internal/payment"
	"github.com/courtside/arena-booking/internal/queue"
	"github.com/courtside/arena-booking/internal/repository"
	"github.com/courtside/arena-booking/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	arenaRepo := repository.NewArenaRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	// Booking engine with the Stripe gateway and the SQL store.
	stripe := payment.NewStripeClient(cfg.StripeAPIBase, cfg.StripeSecret)
	engine := booking.NewEngine(arenaRepo, stripe, bookingRepo)

	// Handlers.
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	arenaHandler := handler.NewArenaHandler(arenaRepo)
	bookingHandler := handler.NewBookingHandler(engine)

	// Redis-backed middleware degrades to passthrough when Redis is down.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Booking event consumer writes logs/booking.log; runs for the process
	// lifetime and reconnects on broker failures.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, arenaHandler, cache)
	router.RegisterOwnerArenas(e, arenaHandler, cfg.JWTSecret)
	router.RegisterBookings(e, bookingHandler, cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
