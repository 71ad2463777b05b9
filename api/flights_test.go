package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockFareUseCase struct {
	mock.Mock
}

func (m *MockFareUseCase) Recalculate(ctx context.Context, flightID int64, cabin domain.Cabin) (int64, error) {
	args := m.Called(ctx, flightID, cabin)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFareUseCase) ReconcileAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, &MockFareUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	listed := []domain.Flight{{ID: 1, FromAirport: "LED", ToAirport: "SVO"}}
	mockService.On("List", c.Request.Context()).Return(listed, nil).Once()

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, &MockFareUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/404", nil)
	c.Params = gin.Params{{Key: "id", Value: "404"}}

	mockService.On("GetByID", c.Request.Context(), int64(404)).
		Return(nil, domain.NotFoundf("flight 404 not found")).Once()

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, &MockFareUseCase{})

	departure := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	input := flights.CreateFlightInput{
		FromAirport:            "LED",
		ToAirport:              "SVO",
		DepartureTime:          departure,
		ArrivalTime:            departure.Add(90 * time.Minute),
		EconomyCapacity:        12,
		EconomyBasePriceCents:  1000,
		BusinessCapacity:       4,
		BusinessBasePriceCents: 5000,
	}
	w, c := postJSON(t, input)

	created := &domain.Flight{ID: 4, FromAirport: "LED", ToAirport: "SVO"}
	mockService.On("Create", c.Request.Context(), input).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_recalculateFare(t *testing.T) {
	mockFares := &MockFareUseCase{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockFares)

	w, c := postJSON(t, recalculateFareRequest{Cabin: "ECONOMY"})
	c.Params = gin.Params{{Key: "id", Value: "4"}}

	mockFares.On("Recalculate", c.Request.Context(), int64(4), domain.CabinEconomy).
		Return(int64(1083), nil).Once()

	handler.recalculateFare(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response recalculateFareResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1083), response.NewCurrentPriceCents)
	assert.Equal(t, int64(4), response.FlightID)
	mockFares.AssertExpectations(t)
}

func TestFlightHandler_recalculateFare_InvalidCabin(t *testing.T) {
	mockFares := &MockFareUseCase{}
	handler := NewFlightHandler(&MockFlightUseCase{}, mockFares)

	w, c := postJSON(t, recalculateFareRequest{Cabin: "FIRST"})
	c.Params = gin.Params{{Key: "id", Value: "4"}}

	mockFares.On("Recalculate", c.Request.Context(), int64(4), domain.Cabin("FIRST")).
		Return(int64(0), domain.Validationf("cabin must be ECONOMY or BUSINESS")).Once()

	handler.recalculateFare(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockFares.AssertExpectations(t)
}
