package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, []domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).([]domain.Ticket), args.Error(2)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	input := booking.CreateBookingInput{
		CustomerID:    7,
		CustomerEmail: "test@example.com",
		TicketIDs:     []int64{1, 2},
	}
	w, c := postJSON(t, createBookingRequest{
		CustomerID:    input.CustomerID,
		CustomerEmail: input.CustomerEmail,
		TicketIDs:     input.TicketIDs,
	})

	created := &domain.Booking{
		ID:               11,
		CustomerID:       7,
		ConfirmationCode: "AB12CD",
		TotalPriceCents:  1800,
		Confirmed:        true,
	}
	mockService.On("CreateBooking", c.Request.Context(), input).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(11), response.BookingID)
	assert.Equal(t, "AB12CD", response.ConfirmationCode)
	assert.Equal(t, int64(1800), response.TotalPriceCents)
	assert.True(t, response.Confirmed)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_NoAdult(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	w, c := postJSON(t, createBookingRequest{CustomerID: 7, TicketIDs: []int64{2}})

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).
		Return(nil, domain.BusinessRulef("at least one passenger must be 18 or older")).Once()

	handler.create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/bookings/11", nil)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	b := &domain.Booking{ID: 11, ConfirmationCode: "AB12CD", TotalPriceCents: 1800, Confirmed: true}
	tickets := []domain.Ticket{{ID: 1, PriceCents: 1800}}
	mockService.On("GetBooking", c.Request.Context(), int64(11)).Return(b, tickets, nil).Once()

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(11), response.BookingID)
	assert.Len(t, response.Tickets, 1)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/11", nil)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	cancelled := &domain.Booking{ID: 11, Confirmed: false}
	mockService.On("CancelBooking", c.Request.Context(), int64(11)).Return(cancelled, nil).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response cancelBookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Released)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_InsideCutoff(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/11", nil)
	c.Params = gin.Params{{Key: "id", Value: "11"}}

	mockService.On("CancelBooking", c.Request.Context(), int64(11)).
		Return(nil, domain.BusinessRulef("booking 11 departs in less than 24h0m0s and can no longer be cancelled")).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/404", nil)
	c.Params = gin.Params{{Key: "id", Value: "404"}}

	mockService.On("CancelBooking", c.Request.Context(), int64(404)).
		Return(nil, domain.NotFoundf("booking 404 not found")).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_InvalidID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("DELETE", "/bookings/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.cancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CancelBooking")
}
