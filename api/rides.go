package api

import (
	"log/slog"
	"net/http"

	"github.com/buildcode/rideservice/internal/service/ride"
	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	service ride.RideUseCase
	logger  *slog.Logger
}

type createRideRequest struct {
	OwnerID       string `json:"owner_id" binding:"required"`
	Source        string `json:"source" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	Fare          int64  `json:"fare"`
	Seats         int32  `json:"seats" binding:"required"`
	VehicleNumber string `json:"vehicle_number"`
}

type requestRideBody struct {
	UserID string `json:"user_id" binding:"required"`
}

func NewRideHandler(service ride.RideUseCase, logger *slog.Logger) *RideHandler {
	return &RideHandler{service: service, logger: logger}
}

func (h *RideHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.delete)
	router.PATCH("/:id", h.update)
	router.POST("/:id/request", h.request)
}

func (h *RideHandler) create(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Create(c.Request.Context(), ride.CreateRideInput{
		OwnerID:       req.OwnerID,
		Source:        req.Source,
		Destination:   req.Destination,
		Fare:          req.Fare,
		Seats:         req.Seats,
		VehicleNumber: req.VehicleNumber,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *RideHandler) get(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) delete(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}

	ok, err := h.service.Delete(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func (h *RideHandler) update(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.Update(c.Request.Context(), c.Param("id"), ride.CreateRideInput{
		OwnerID:       req.OwnerID,
		Source:        req.Source,
		Destination:   req.Destination,
		Fare:          req.Fare,
		Seats:         req.Seats,
		VehicleNumber: req.VehicleNumber,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) request(c *gin.Context) {
	var body requestRideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.Request(c.Request.Context(), c.Param("id"), body.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}
