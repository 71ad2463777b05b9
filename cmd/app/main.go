package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akulagin/flightbook/config"
	"github.com/akulagin/flightbook/internal/bootstrap"
	"github.com/akulagin/flightbook/internal/cache"
	"github.com/akulagin/flightbook/internal/kafka"
	"github.com/akulagin/flightbook/internal/repository"
	"github.com/akulagin/flightbook/internal/service/booking"
	"github.com/akulagin/flightbook/internal/service/fare"
	"github.com/akulagin/flightbook/internal/service/flights"
	"github.com/akulagin/flightbook/internal/service/issuance"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	flightService := flights.NewService(flightRepo, redisCache)
	fareService := fare.NewService(flightRepo, redisCache)
	ticketService := issuance.NewService(
		ticketRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.SeatHoldTTLSeconds)*time.Second,
	)
	bookingService := booking.NewService(
		bookingRepo,
		ticketRepo,
		redisCache,
		producer,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.CancellationCutoffHours)*time.Hour,
	)

	if err := bootstrap.Run(ctx, cfg, flightService, fareService, ticketService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
