// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"secrethouse/internal/dates"
	"secrethouse/internal/modules/availability"
	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts uuids and chat ids: letters, digits, '-', '_' up to 64 chars.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest), errors.Is(err, availability.ErrInvalidPeriod):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, pricing.ErrUnknownTariff):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict), errors.Is(err, booking.ErrNoPendingPayment):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// parseDay reads YYYY-MM-DD or DD.MM.YYYY in loc.
func parseDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	if t, err := dates.ParseDate(s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
