package dialog

import (
	"regexp"
	"strings"

	"secrethouse/internal/modules/booking"
)

type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

var bookingPattern = regexp.MustCompile(`(заброниров|бронь|арендовать)`)

// intentRules are checked in order; the first match wins.
var intentRules = []intentRule{
	{IntentBooking, []*regexp.Regexp{bookingPattern}},
	{IntentPrice, []*regexp.Regexp{
		regexp.MustCompile(`(цен[аыу]|стоимост|сколько.*стоит|прайс|тариф|расценк|price|cost|how much)`),
	}},
	{IntentAvailability, []*regexp.Regexp{regexp.MustCompile(`(свободн|дат[ыа]|календар)`)}},
	{IntentChange, []*regexp.Regexp{regexp.MustCompile(`(измен|перенос)`)}},
	{IntentFAQ, []*regexp.Regexp{
		regexp.MustCompile(`(правил|что такое|faq)`),
		regexp.MustCompile(`(что.*есть|что.*включ|что.*входит|какие.*услуги|какие.*удобства|какие.*комнат)`),
		regexp.MustCompile(`(как.*работает|как.*добраться|как.*заселиться|как.*оплатить)`),
		regexp.MustCompile(`(где.*находится|где.*дом|где.*расположен|где.*парков)`),
		regexp.MustCompile(`(можно ли|нельзя ли|разрешено ли|есть ли)`),
		regexp.MustCompile(`(расскажи|опиши|покажи|информац|подробнее)`),
		regexp.MustCompile(`(условия|требования|политика|ограничения)`),
		regexp.MustCompile(`(оборудование|мебель|аксессуар|техника)`),
		regexp.MustCompile(`(секретн.*комнат|зелен.*спальн|бел.*спальн|сауна|кухн|гостин)`),
		regexp.MustCompile(`(what.*is|what.*include|how.*work|where.*located|can.*i|may.*i)`),
	}},
}

// Route picks the handler for the current turn. It is a pure function of st;
// the returned Flow is FlowBooking when the turn enters or stays in booking,
// otherwise st.ActiveFlow unchanged.
func Route(st TurnState) (Intent, Flow) {
	b := st.Booking
	switch {
	case st.ActiveFlow == FlowBooking && b.AwaitInput && !b.Done:
		return IntentBooking, FlowBooking
	case !b.Context.IsEmpty() && st.ActiveFlow == FlowNone && !b.Done:
		return IntentBooking, FlowBooking
	case b.Done && booking.IsConfirmation(st.Text):
		return IntentBooking, FlowBooking
	case st.FAQ != nil:
		return IntentFAQ, st.ActiveFlow
	}

	intent := classify(st.Text)
	if intent == IntentBooking {
		return intent, FlowBooking
	}
	return intent, st.ActiveFlow
}

func classify(text string) Intent {
	t := strings.ToLower(text)
	for _, r := range intentRules {
		for _, re := range r.patterns {
			if re.MatchString(t) {
				return r.intent
			}
		}
	}
	return IntentUnknown
}

// IsBookingRequest reports whether text explicitly asks to book.
func IsBookingRequest(text string) bool {
	return bookingPattern.MatchString(strings.ToLower(text))
}
