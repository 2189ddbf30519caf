package ai

import "strings"

// BookingFields captures the structured output of the booking extractor.
// Every field is optional: nil means the model did not find it.
type BookingFields struct {
	// Tariff is the tariff name as written by the model (e.g. "12 часов").
	Tariff *string `json:"tariff,omitempty"`

	// StartDate and FinishDate use DD.MM.YYYY.
	StartDate  *string `json:"start_date,omitempty"`
	FinishDate *string `json:"finish_date,omitempty"`

	// StartTime and FinishTime use 24h HH:MM.
	StartTime  *string `json:"start_time,omitempty"`
	FinishTime *string `json:"finish_time,omitempty"`

	FirstBedroom  *bool `json:"first_bedroom,omitempty"`
	SecondBedroom *bool `json:"second_bedroom,omitempty"`
	Sauna         *bool `json:"sauna,omitempty"`
	Photoshoot    *bool `json:"photoshoot,omitempty"`
	SecretRoom    *bool `json:"secret_room,omitempty"`

	NumberGuests *int    `json:"number_guests,omitempty"`
	Contact      *string `json:"contact,omitempty"`
	Comment      *string `json:"comment,omitempty"`
}

// Empty reports whether no field was extracted.
func (f *BookingFields) Empty() bool {
	if f == nil {
		return true
	}
	return blank(f.Tariff) && blank(f.StartDate) && blank(f.FinishDate) &&
		blank(f.StartTime) && blank(f.FinishTime) &&
		f.FirstBedroom == nil && f.SecondBedroom == nil && f.Sauna == nil &&
		f.Photoshoot == nil && f.SecretRoom == nil &&
		f.NumberGuests == nil && blank(f.Contact) && blank(f.Comment)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// Role of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
