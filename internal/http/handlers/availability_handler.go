// README: Availability lookups by period or free text.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secrethouse/internal/modules/availability"
)

type Availability interface {
	ForPeriod(ctx context.Context, start, end time.Time) (availability.Period, error)
	Check(ctx context.Context, text string) (string, error)
}

type AvailabilityHandler struct {
	availability Availability
	loc          *time.Location
}

func NewAvailabilityHandler(svc Availability, loc *time.Location) *AvailabilityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityHandler{availability: svc, loc: loc}
}

// Get handles GET /api/availability?from=&to= or ?q=.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	if q := c.Query("q"); q != "" {
		reply, err := h.availability.Check(c.Request.Context(), q)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		writeJSON(c, http.StatusOK, map[string]any{"reply": reply})
		return
	}

	from, okFrom := parseDay(c.Query("from"), h.loc)
	to, okTo := parseDay(c.Query("to"), h.loc)
	if !okFrom || !okTo {
		writeError(c, http.StatusBadRequest, "from and to are required (YYYY-MM-DD)")
		return
	}
	to = to.Add(24*time.Hour - time.Nanosecond)
	p, err := h.availability.ForPeriod(c.Request.Context(), from, to)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	free := p.FreeDates()
	days := make([]string, len(free))
	for i, d := range free {
		days[i] = d.Format("2006-01-02")
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"from":      from.Format("2006-01-02"),
		"to":        to.Format("2006-01-02"),
		"available": p.Available,
		"free":      days,
		"reply":     availability.Format(p, from.Format("02.01")+"-"+to.Format("02.01")),
	})
}
