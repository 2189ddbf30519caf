// README: Per-day availability of the house.
package availability

import (
    "errors"
    "time"

    "secrethouse/internal/types"
)

var ErrInvalidPeriod = errors.New("invalid availability period")

// Slot is one calendar day.
type Slot struct {
    Date      time.Time `json:"date"`
    Available bool      `json:"available"`
    BookingID types.ID  `json:"booking_id,omitempty"`
}

// Period is the availability of consecutive days.
type Period struct {
    Start     time.Time `json:"start"`
    End       time.Time `json:"end"`
    Slots     []Slot    `json:"slots"`
    Available int       `json:"available_days"`
}

// FreeDates lists the available days.
func (p Period) FreeDates() []time.Time {
    var out []time.Time
    for _, s := range p.Slots {
        if s.Available {
            out = append(out, s.Date)
        }
    }
    return out
}
