package api

import (
	"log/slog"
	"net/http"

	"github.com/buildcode/rideservice/internal/service/booking"
	"github.com/buildcode/rideservice/internal/service/ride"
	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking-request sub-resource. Reads go to the
// state machine directly; owner decisions go through the ride coordinator
// so authorization and the on-chain acceptance path apply.
type BookingHandler struct {
	bookings booking.BookingUseCase
	rides    ride.RideUseCase
	logger   *slog.Logger
}

type ownerDecisionBody struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

type cancelBody struct {
	UserID string `json:"user_id" binding:"required"`
}

func NewBookingHandler(bookings booking.BookingUseCase, rides ride.RideUseCase, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, rides: rides, logger: logger}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
	router.POST("/:id/accept", h.accept)
	router.POST("/:id/reject", h.reject)
	router.POST("/:id/cancel", h.cancel)
}

func (h *BookingHandler) get(c *gin.Context) {
	request, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *BookingHandler) accept(c *gin.Context) {
	var body ownerDecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.rides.Accept(c.Request.Context(), c.Param("id"), body.OwnerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func (h *BookingHandler) reject(c *gin.Context) {
	var body ownerDecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.rides.Reject(c.Request.Context(), c.Param("id"), body.OwnerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var body cancelBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.rides.Cancel(c.Request.Context(), c.Param("id"), body.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}
