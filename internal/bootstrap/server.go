package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akulagin/flightbook/api"
	"github.com/akulagin/flightbook/config"
	"github.com/akulagin/flightbook/internal/service/booking"
	"github.com/akulagin/flightbook/internal/service/fare"
	"github.com/akulagin/flightbook/internal/service/flights"
	"github.com/akulagin/flightbook/internal/service/issuance"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	flightSvc flights.FlightUseCase,
	fareSvc fare.FareUseCase,
	ticketSvc issuance.TicketUseCase,
	bookingSvc booking.BookingUseCase,
) error {
	router := gin.Default()

	api.NewFlightHandler(flightSvc, fareSvc).Register(router.Group("/flights"))
	api.NewTicketHandler(ticketSvc).Register(router.Group("/tickets"))
	api.NewBookingHandler(bookingSvc).Register(router.Group("/bookings"))

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
