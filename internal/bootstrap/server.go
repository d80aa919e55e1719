package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/buildcode/rideservice/api"
	"github.com/buildcode/rideservice/config"
	"github.com/buildcode/rideservice/internal/service/booking"
	"github.com/buildcode/rideservice/internal/service/ride"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails. Shutdown is graceful: in-flight requests get a bounded
// window to finish.
func Run(ctx context.Context, cfg *config.Config, rideSvc ride.RideUseCase, bookingSvc booking.BookingUseCase, logger *slog.Logger) error {
	router := newRouter(rideSvc, bookingSvc, logger)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(rideSvc ride.RideUseCase, bookingSvc booking.BookingUseCase, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1.0")
	api.NewRideHandler(rideSvc, logger).Register(v1.Group("/rides"))
	api.NewBookingHandler(bookingSvc, rideSvc, logger).Register(v1.Group("/booking-requests"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
