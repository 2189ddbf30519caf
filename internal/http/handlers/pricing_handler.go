// README: Tariff listing and price quotes.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secrethouse/internal/modules/pricing"
)

type PricingHandler struct {
	pricing *pricing.Service
	loc     *time.Location
}

func NewPricingHandler(svc *pricing.Service, loc *time.Location) *PricingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PricingHandler{pricing: svc, loc: loc}
}

// Tariffs handles GET /api/tariffs.
func (h *PricingHandler) Tariffs(c *gin.Context) {
	writeJSON(c, http.StatusOK, map[string]any{"tariffs": h.pricing.Tariffs()})
}

// Summary handles GET /api/tariffs/summary.
func (h *PricingHandler) Summary(c *gin.Context) {
	writeJSON(c, http.StatusOK, map[string]any{"summary": h.pricing.SummarizeAllTariffs()})
}

type quoteReq struct {
	TariffID   *int     `json:"tariff_id"`
	Tariff     string   `json:"tariff"`
	Days       int      `json:"days"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	AddOns     []string `json:"add_ons"`
	Guests     int      `json:"guests"`
	ExtraHours int      `json:"extra_hours"`
}

var knownAddOns = map[pricing.AddOn]bool{
	pricing.AddOnSauna:         true,
	pricing.AddOnSecretRoom:    true,
	pricing.AddOnSecondBedroom: true,
	pricing.AddOnPhotoshoot:    true,
}

// Quote handles POST /api/pricing/quote.
func (h *PricingHandler) Quote(c *gin.Context) {
	var body quoteReq
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Days < 0 || body.Guests < 0 || body.ExtraHours < 0 {
		writeError(c, http.StatusBadRequest, "negative values are not allowed")
		return
	}

	req := pricing.Request{Tariff: body.Tariff, Days: body.Days, Guests: body.Guests, ExtraHours: body.ExtraHours}
	if body.TariffID != nil {
		id := pricing.TariffID(*body.TariffID)
		req.TariffID = &id
	}
	for _, a := range body.AddOns {
		addOn := pricing.AddOn(a)
		if !knownAddOns[addOn] {
			writeError(c, http.StatusBadRequest, "unknown add-on: "+a)
			return
		}
		req.AddOns = append(req.AddOns, addOn)
	}
	if body.StartDate != "" || body.EndDate != "" {
		start, okStart := parseDay(body.StartDate, h.loc)
		end, okEnd := parseDay(body.EndDate, h.loc)
		if !okStart || !okEnd || end.Before(start) {
			writeError(c, http.StatusBadRequest, "invalid start_date/end_date")
			return
		}
		req.Start, req.End = start, end
	}

	b, err := h.pricing.Calculate(c.Request.Context(), req)
	if errors.Is(err, pricing.ErrUnknownTariff) {
		writeJSON(c, http.StatusNotFound, map[string]any{
			"error":   err.Error(),
			"tariffs": h.pricing.Tariffs(),
			"summary": h.pricing.SummarizeAllTariffs(),
		})
		return
	}
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"breakdown": b, "message": pricing.FormatBreakdown(b)})
}
