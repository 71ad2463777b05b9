package api

import (
	"net/http"
	"time"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/service/issuance"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service issuance.TicketUseCase
}

type issueTicketRequest struct {
	CustomerID        int64  `json:"customer_id"`
	CustomerEmail     string `json:"customer_email"`
	PassengerName     string `json:"passenger_name"`
	PassengerDOB      string `json:"passenger_dob"`
	Cabin             string `json:"cabin"`
	DepartureFlightID int64  `json:"departure_flight_id"`
	DepartureSeat     int    `json:"departure_seat"`
	ReturnFlightID    *int64 `json:"return_flight_id,omitempty"`
	ReturnSeat        *int   `json:"return_seat,omitempty"`
}

type issueTicketResponse struct {
	TicketID   int64 `json:"ticket_id"`
	PriceCents int64 `json:"price_cents"`
}

func NewTicketHandler(service issuance.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.issue)
}

func (h *TicketHandler) issue(c *gin.Context) {
	var req issueTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dob, err := time.Parse("2006-01-02", req.PassengerDOB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passenger_dob must be YYYY-MM-DD"})
		return
	}

	ticket, err := h.service.IssueTicket(c.Request.Context(), issuance.IssueTicketInput{
		CustomerID:        req.CustomerID,
		CustomerEmail:     req.CustomerEmail,
		PassengerName:     req.PassengerName,
		PassengerDOB:      dob,
		Cabin:             domain.Cabin(req.Cabin),
		DepartureFlightID: req.DepartureFlightID,
		DepartureSeat:     req.DepartureSeat,
		ReturnFlightID:    req.ReturnFlightID,
		ReturnSeat:        req.ReturnSeat,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issueTicketResponse{
		TicketID:   ticket.ID,
		PriceCents: ticket.PriceCents,
	})
}
