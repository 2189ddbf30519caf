// README: LLM capabilities consumed by the booking flow and the FAQ.
package ai

import (
	"context"
)

// FieldExtractor turns free text into booking fields. Implementations are
// best-effort: callers must tolerate a nil result as well as an error.
type FieldExtractor interface {
	ExtractBookingFields(ctx context.Context, text string) (*BookingFields, error)
}

// Answerer produces a conversational answer to a question, given a system
// prompt and the recent history of the conversation.
type Answerer interface {
	Answer(ctx context.Context, system string, history []Message, question string) (string, error)
}
