// README: Per-conversation turn state and intent names.
package dialog

import (
	"time"

	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/faq"
	"secrethouse/internal/modules/pricing"
)

type Intent string

const (
	IntentBooking      Intent = "booking"
	IntentPrice        Intent = "price"
	IntentAvailability Intent = "availability"
	IntentChange       Intent = "change"
	IntentFAQ          Intent = "faq"
	IntentUnknown      Intent = "unknown"
)

// Flow names a multi-turn flow that owns the conversation.
type Flow string

const (
	FlowNone    Flow = ""
	FlowBooking Flow = "booking"
)

// TurnState is everything remembered about a conversation between turns.
type TurnState struct {
	Text       string          `json:"text"`
	UserID     string          `json:"user_id,omitempty"`
	Intent     Intent          `json:"intent,omitempty"`
	ActiveFlow Flow            `json:"active_flow,omitempty"`
	Booking    booking.Session `json:"booking"`
	FAQ        *faq.Context    `json:"faq,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// LastPricing holds the breakdown computed during the current turn only.
	LastPricing *pricing.Breakdown `json:"-"`
}

// Reply is what the guest sees after a turn.
type Reply struct {
	Text        string        `json:"reply"`
	Intent      Intent        `json:"intent"`
	Stage       booking.Stage `json:"stage,omitempty"`
	NeedsHuman  bool          `json:"needs_human,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
	BookingRef  string        `json:"booking_ref,omitempty"`
}
