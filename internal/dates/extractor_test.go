package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var minsk = time.FixedZone("Europe/Minsk", 3*60*60)

func fixedExtractor() *Extractor {
	return NewExtractor(minsk, func() time.Time {
		return time.Date(2025, 3, 15, 12, 0, 0, 0, minsk)
	})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, minsk)
}

func TestExtractDate(t *testing.T) {
	e := fixedExtractor()
	cases := []struct {
		text  string
		want  time.Time
		label string
	}{
		{"20 марта", day(2025, 3, 20), "20 марта"},
		{"10 марта", day(2026, 3, 10), "10 марта"}, // already passed this year
		{"March 25", day(2025, 3, 25), "march 25"},
		{"25 march", day(2025, 3, 25), "25 march"},
		{"25.03", day(2025, 3, 25), "25.03"},
		{"25.03.2025", day(2025, 3, 25), "25.03.2025"},
		{"25/03", day(2025, 3, 25), "25/03"},
		{"2025-3-5", day(2025, 3, 5), "2025-03-05"},
		{"Хотел бы забронировать дом на 25 марта, если это возможно", day(2025, 3, 25), "25 марта"},
		{"приедем 1 мая", day(2025, 5, 1), "1 мая"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, label, ok := e.ExtractDate(tc.text)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got), "got %s", got)
			assert.Equal(t, tc.label, label)
		})
	}
}

func TestExtractDateRejectsInvalid(t *testing.T) {
	e := fixedExtractor()
	for _, text := range []string{"32 марта", "15.13", "завтра будет хороший день", "31.02.2025", ""} {
		t.Run(text, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, _, ok := e.ExtractDate(text)
				assert.False(t, ok)
			})
		})
	}
}

func TestExtractRange(t *testing.T) {
	e := fixedExtractor()
	cases := []struct {
		text       string
		start, end time.Time
		label      string
	}{
		{"20-25 марта", day(2025, 3, 20), day(2025, 3, 25), "20-25 марта"},
		{"20—25 марта", day(2025, 3, 20), day(2025, 3, 25), "20—25 марта"},
		{"20 - 25 марта", day(2025, 3, 20), day(2025, 3, 25), "20 - 25 марта"},
		{"20— 25 марта", day(2025, 3, 20), day(2025, 3, 25), "20— 25 марта"},
		{"с 20 по 25 марта", day(2025, 3, 20), day(2025, 3, 25), "20 по 25 марта"},
		{"March 20-25", day(2025, 3, 20), day(2025, 3, 25), "march 20-25"},
		{"20.03-25.03", day(2025, 3, 20), day(2025, 3, 25), "20.03-25.03"},
		{"28.03-05.04", day(2025, 3, 28), day(2025, 4, 5), "28.03-05.04"},
		{"28.12-05.01", day(2025, 12, 28), day(2026, 1, 5), "28.12-05.01"},
		{"2025-03-20 to 2025-03-25", day(2025, 3, 20), day(2025, 3, 25), "2025-03-20 to 2025-03-25"},
		{"2025-03-20 до 2025-03-25", day(2025, 3, 20), day(2025, 3, 25), "2025-03-20 до 2025-03-25"},
		{"2025-03-20 по 2025-03-25", day(2025, 3, 20), day(2025, 3, 25), "2025-03-20 по 2025-03-25"},
		{"2025-03-20 - 2025-03-25", day(2025, 3, 20), day(2025, 3, 25), "2025-03-20 - 2025-03-25"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r, ok := e.ExtractRange(tc.text)
			require.True(t, ok)
			assert.True(t, tc.start.Equal(r.Start), "start %s", r.Start)
			assert.True(t, endOfDay(tc.end).Equal(r.End), "end %s", r.End)
			assert.Equal(t, tc.label, r.Label)
		})
	}
}

func TestExtractRangeRejectsReversed(t *testing.T) {
	e := fixedExtractor()
	_, ok := e.ExtractRange("25-20 марта")
	assert.False(t, ok)
	_, ok = e.ExtractRange("завтра будет хороший день")
	assert.False(t, ok)
}

func TestExtractDatesPrioritisation(t *testing.T) {
	e := fixedExtractor()

	r := e.ExtractDates("20-25 марта")
	assert.Equal(t, "20-25 марта", r.Label)
	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, minsk), r.Start)
	assert.Equal(t, time.Date(2025, 3, 25, 23, 59, 59, 999999000, minsk), r.End)

	r = e.ExtractDates("20 марта")
	assert.Equal(t, "20 марта", r.Label)
	assert.Equal(t, 20, r.Start.Day())
	assert.Equal(t, 20, r.End.Day())
	assert.Equal(t, 0, r.Start.Hour())
	assert.Equal(t, 23, r.End.Hour())
	assert.Equal(t, 999999000, r.End.Nanosecond())

	r = e.ExtractDates("март")
	assert.Equal(t, "март", r.Label)
	assert.Equal(t, day(2025, 3, 1), r.Start)
	assert.Equal(t, 31, r.End.Day())
	assert.Equal(t, time.March, r.End.Month())
}

func TestMonthBounds(t *testing.T) {
	e := fixedExtractor()
	cases := []struct {
		text  string
		start time.Time
		last  time.Time
		label string
	}{
		{"что свободно в марте", day(2025, 3, 1), day(2025, 3, 31), "марте"},
		{"февраль", day(2026, 2, 1), day(2026, 2, 28), "февраль"},
		{"свободные даты в следующем месяце", day(2025, 4, 1), day(2025, 4, 30), labelNextMonth},
		{"next month please", day(2025, 4, 1), day(2025, 4, 30), labelNextMonth},
		{"в этом месяце", day(2025, 3, 1), day(2025, 3, 31), labelCurrentMonth},
		{"когда свободно?", day(2025, 3, 1), day(2025, 3, 31), labelCurrentMonth},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r := e.MonthBounds(tc.text)
			assert.Equal(t, tc.start, r.Start)
			assert.Equal(t, endOfDay(tc.last), r.End)
			assert.Equal(t, tc.label, r.Label)
		})
	}
}

func TestMonthBoundsDecemberRollsIntoNextYear(t *testing.T) {
	e := NewExtractor(minsk, func() time.Time { return time.Date(2025, 12, 10, 9, 0, 0, 0, minsk) })
	r := e.MonthBounds("next month")
	assert.Equal(t, day(2026, 1, 1), r.Start)
	assert.Equal(t, endOfDay(day(2026, 1, 31)), r.End)
}

func TestValidateRange(t *testing.T) {
	assert.True(t, ValidateRange(day(2025, 3, 20), day(2025, 3, 25)))
	assert.True(t, ValidateRange(day(2025, 3, 20), day(2025, 3, 20)))
	assert.False(t, ValidateRange(day(2025, 3, 25), day(2025, 3, 20)))
	assert.False(t, ValidateRange(day(2025, 1, 1), day(2026, 2, 1)))
	assert.True(t, ValidateRange(day(2025, 1, 1), day(2026, 1, 1)))
}

func TestExtractDatesIsIdempotent(t *testing.T) {
	e := fixedExtractor()
	for _, text := range []string{"20-25 марта", "10 марта", "March 25", "следующий месяц", "ничего"} {
		assert.Equal(t, e.ExtractDates(text), e.ExtractDates(text), text)
	}
}

func TestRangeDays(t *testing.T) {
	e := fixedExtractor()
	r, ok := e.ExtractRange("20-25 марта")
	require.True(t, ok)
	assert.Equal(t, 5, r.Days())

	single, ok := e.ExtractExplicit("20 марта")
	require.True(t, ok)
	assert.Equal(t, 0, single.Days())
}
