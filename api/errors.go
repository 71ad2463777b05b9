package api

import (
	"net/http"

	"github.com/akulagin/flightbook/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps the domain error kind to a stable HTTP status; the message
// is the human-readable reason.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"kind": string(domain.KindOf(err)), "error": err.Error()})
}
