package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/buildcode/rideservice/config"
	"github.com/buildcode/rideservice/internal/bootstrap"
	"github.com/buildcode/rideservice/internal/cache"
	"github.com/buildcode/rideservice/internal/kafka"
	"github.com/buildcode/rideservice/internal/ledger"
	"github.com/buildcode/rideservice/internal/logging"
	"github.com/buildcode/rideservice/internal/notify"
	"github.com/buildcode/rideservice/internal/repository"
	"github.com/buildcode/rideservice/internal/service/booking"
	"github.com/buildcode/rideservice/internal/service/ride"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Ledger.DedupTTL())
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	chain := ledger.NewClient(cfg.Ledger)
	subscriber := ledger.NewSubscriber(cfg.Ledger, logger)
	notifier := notify.NewLogSender(logger)

	dispatcher := ledger.NewDispatcher(subscriber, redisCache, producer, cfg.Kafka.RideCreatedTopic, cfg.Kafka.NotificationsTopic, logger)

	rideRepo := repository.NewRideRepository(pool)
	bookingRepo := repository.NewBookingRequestRepository(pool)

	bookingService := booking.NewBookingService(bookingRepo, notifier, logger)
	rideService := ride.NewRideService(rideRepo, bookingService, chain, dispatcher, logger)
	dispatcher.SetRideUpdateHandler(rideService)

	if err := bootstrap.Run(ctx, cfg, rideService, bookingService, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}

	// Drain in-flight event watches before exit.
	dispatcher.Close()
}
