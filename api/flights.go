package api

import (
	"net/http"
	"strconv"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/service/fare"
	"github.com/akulagin/flightbook/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	fares   fare.FareUseCase
}

func NewFlightHandler(service flights.FlightUseCase, fares fare.FareUseCase) *FlightHandler {
	return &FlightHandler{service: service, fares: fares}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.POST("/:id/fare", h.recalculateFare)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

type recalculateFareRequest struct {
	Cabin string `json:"cabin"`
}

type recalculateFareResponse struct {
	FlightID             int64  `json:"flight_id"`
	Cabin                string `json:"cabin"`
	NewCurrentPriceCents int64  `json:"new_current_price_cents"`
}

func (h *FlightHandler) recalculateFare(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req recalculateFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := h.fares.Recalculate(c.Request.Context(), id, domain.Cabin(req.Cabin))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recalculateFareResponse{
		FlightID:             id,
		Cabin:                req.Cabin,
		NewCurrentPriceCents: price,
	})
}
