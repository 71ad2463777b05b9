package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/akulagin/flightbook/internal/service/issuance"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) IssueTicket(ctx context.Context, input issuance.IssueTicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func postJSON(t *testing.T, body interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(body)
	assert.NoError(t, err)
	c.Request = httptest.NewRequest("POST", "/", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func TestTicketHandler_issue(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)

	w, c := postJSON(t, issueTicketRequest{
		CustomerID:        7,
		CustomerEmail:     "test@example.com",
		PassengerName:     "Anna Petrova",
		PassengerDOB:      "1990-05-01",
		Cabin:             "ECONOMY",
		DepartureFlightID: 4,
		DepartureSeat:     10,
	})

	issued := &domain.Ticket{ID: 42, PriceCents: 1000}
	mockService.On("IssueTicket", c.Request.Context(), mock.AnythingOfType("issuance.IssueTicketInput")).Return(issued, nil).Once()

	handler.issue(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response issueTicketResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(42), response.TicketID)
	assert.Equal(t, int64(1000), response.PriceCents)
	mockService.AssertExpectations(t)
}

func TestTicketHandler_issue_BadDOB(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)

	w, c := postJSON(t, issueTicketRequest{
		CustomerID:        7,
		PassengerName:     "Anna Petrova",
		PassengerDOB:      "01.05.1990",
		Cabin:             "ECONOMY",
		DepartureFlightID: 4,
		DepartureSeat:     10,
	})

	handler.issue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "IssueTicket")
}

func TestTicketHandler_issue_SeatConflict(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)

	w, c := postJSON(t, issueTicketRequest{
		CustomerID:        7,
		PassengerName:     "Anna Petrova",
		PassengerDOB:      "1990-05-01",
		Cabin:             "ECONOMY",
		DepartureFlightID: 4,
		DepartureSeat:     10,
	})

	mockService.On("IssueTicket", c.Request.Context(), mock.Anything).
		Return(nil, domain.Conflictf("seat 10 on flight 4 is already occupied")).Once()

	handler.issue(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already occupied")
	mockService.AssertExpectations(t)
}

func TestTicketHandler_issue_ValidationError(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)

	w, c := postJSON(t, issueTicketRequest{
		CustomerID:        0,
		PassengerName:     "",
		PassengerDOB:      "1990-05-01",
		Cabin:             "ECONOMY",
		DepartureFlightID: 4,
		DepartureSeat:     10,
	})

	mockService.On("IssueTicket", c.Request.Context(), mock.Anything).
		Return(nil, domain.Validationf("customer id is required")).Once()

	handler.issue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}
