package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildcode/rideservice/config"
	"github.com/buildcode/rideservice/internal/cache"
	"github.com/buildcode/rideservice/internal/domain"
	"github.com/buildcode/rideservice/internal/kafka"
	"github.com/buildcode/rideservice/internal/ledger"
	"github.com/buildcode/rideservice/internal/logging"
	"github.com/buildcode/rideservice/internal/notify"
	"github.com/buildcode/rideservice/internal/repository"
	"github.com/buildcode/rideservice/internal/service/booking"
	"github.com/buildcode/rideservice/internal/service/ride"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	defer dispatcher.Close()

	rideRepo := repository.NewRideRepository(pool)
	bookingRepo := repository.NewBookingRequestRepository(pool)
	bookingService := booking.NewBookingService(bookingRepo, notifier, logger)
	rideService := ride.NewRideService(rideRepo, bookingService, chain, dispatcher, logger)
	dispatcher.SetRideUpdateHandler(rideService)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var payload domain.RideNotificationPayload
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				logger.Warn("skipping undecodable notification", slog.String("error", err.Error()))
				return nil
			}
			body := fmt.Sprintf("Ride from %s to %s is now %s", payload.Source, payload.Destination, payload.RiderStatus)
			return notifier.Send(ctx, payload.RiderID, "Ride Update", body)
		}); err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", slog.String("error", err.Error()))
		}
	}()

	sweepMinutes := cfg.Worker.ReconcileSweepMinutes
	if sweepMinutes <= 0 {
		sweepMinutes = 5
	}
	reconcileTicker := time.NewTicker(time.Duration(sweepMinutes) * time.Minute)
	defer reconcileTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-reconcileTicker.C:
			recovered, err := rideService.Reconcile(ctx)
			if err != nil {
				logger.Error("reconcile sweep failed", slog.String("error", err.Error()))
				continue
			}
			if recovered > 0 {
				logger.Info("reconciled pending rides", slog.Int("count", recovered))
			}
		case s := <-sig:
			logger.Info("shutting down", slog.String("signal", s.String()))
			return
		}
	}
}
