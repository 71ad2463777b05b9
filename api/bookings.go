package api

import (
	"net/http"
	"strconv"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CustomerID    int64   `json:"customer_id"`
	CustomerEmail string  `json:"customer_email"`
	TicketIDs     []int64 `json:"ticket_ids"`
}

type bookingResponse struct {
	BookingID        int64           `json:"booking_id"`
	ConfirmationCode string          `json:"confirmation_code"`
	TotalPriceCents  int64           `json:"total_price_cents"`
	Confirmed        bool            `json:"confirmed"`
	Tickets          []domain.Ticket `json:"tickets,omitempty"`
}

type cancelBookingResponse struct {
	Released bool `json:"released"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		TicketIDs:     req.TicketIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResponse{
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		TotalPriceCents:  b.TotalPriceCents,
		Confirmed:        b.Confirmed,
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	b, tickets, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookingResponse{
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		TotalPriceCents:  b.TotalPriceCents,
		Confirmed:        b.Confirmed,
		Tickets:          tickets,
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if _, err := h.service.CancelBooking(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelBookingResponse{Released: true})
}
