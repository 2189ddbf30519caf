// README: FAQ conversation context, responses and quota errors.
package faq

import (
	"errors"
	"time"

	"secrethouse/internal/ai"
)

// ErrQuotaExceeded is returned when a user has no questions left for today.
var ErrQuotaExceeded = errors.New("daily question quota exceeded")

// DefaultDailyQuestions is the number of FAQ questions granted per user per day.
const DefaultDailyQuestions = 50

// AdminContact is where unanswered questions are sent.
const AdminContact = "@the_secret_house"

// Context keeps the FAQ conversation between turns.
type Context struct {
	History   []ai.Message `json:"history"`
	Questions int          `json:"questions"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Expired reports whether the context is older than ttl. A non-positive ttl never expires.
func (c *Context) Expired(now time.Time, ttl time.Duration) bool {
	if c == nil || ttl <= 0 {
		return false
	}
	return now.Sub(c.UpdatedAt) > ttl
}

// Response is one FAQ answer.
type Response struct {
	Answer      string
	NeedsHuman  bool
	Suggestions []string
}
