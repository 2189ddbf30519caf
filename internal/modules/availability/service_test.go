package availability

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "secrethouse/internal/dates"
    "secrethouse/internal/modules/booking"
)

var minsk = time.FixedZone("Europe/Minsk", 3*60*60)

type fakeOccupancy struct {
    periods []booking.Period
    err     error
    from    time.Time
    to      time.Time
}

func (f *fakeOccupancy) Occupied(ctx context.Context, from, to time.Time) ([]booking.Period, error) {
    f.from, f.to = from, to
    return f.periods, f.err
}

func day(m time.Month, d int) time.Time {
    return time.Date(2025, m, d, 0, 0, 0, 0, minsk)
}

func newTestService(occ Occupancy) *Service {
    ex := dates.NewExtractor(minsk, func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, minsk) })
    return NewService(occ, ex, nil)
}

func TestForPeriodMarksBookedDays(t *testing.T) {
    occ := &fakeOccupancy{periods: []booking.Period{
        {BookingID: "b1", Start: day(3, 21), End: day(3, 22).Add(23 * time.Hour), Status: booking.StatusApproved},
    }}
    svc := newTestService(occ)

    p, err := svc.ForPeriod(context.Background(), day(3, 20), day(3, 24).Add(23*time.Hour))
    require.NoError(t, err)
    require.Len(t, p.Slots, 5)
    assert.Equal(t, 3, p.Available)
    assert.True(t, p.Slots[0].Available)
    assert.False(t, p.Slots[1].Available)
    assert.Equal(t, "b1", string(p.Slots[1].BookingID))
    assert.False(t, p.Slots[2].Available)
    assert.True(t, p.Slots[3].Available)
    assert.Equal(t, day(3, 20), occ.from)
}

func TestForPeriodRejectsInvalidRange(t *testing.T) {
    svc := newTestService(nil)
    _, err := svc.ForPeriod(context.Background(), day(3, 25), day(3, 20))
    assert.ErrorIs(t, err, ErrInvalidPeriod)

    _, err = svc.ForPeriod(context.Background(), day(1, 1), day(1, 1).AddDate(2, 0, 0))
    assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestForPeriodPropagatesStoreErrors(t *testing.T) {
    svc := newTestService(&fakeOccupancy{err: errors.New("db down")})
    _, err := svc.ForPeriod(context.Background(), day(3, 20), day(3, 21))
    assert.Error(t, err)
}

func TestCheckFormatsReply(t *testing.T) {
    svc := newTestService(&fakeOccupancy{})
    reply, err := svc.Check(context.Background(), "свободно ли 20-25 марта?")
    require.NoError(t, err)
    assert.Contains(t, reply, "Все 6 дней в 20-25 марта свободны")

    svc = newTestService(&fakeOccupancy{periods: []booking.Period{{BookingID: "b", Start: day(3, 1), End: day(3, 31)}}})
    reply, err = svc.Check(context.Background(), "что свободно в марте")
    require.NoError(t, err)
    assert.Contains(t, reply, "нет свободных дней")
}

func TestFormatListsFewFreeDates(t *testing.T) {
    p := Period{Slots: []Slot{
        {Date: day(3, 20), Available: true},
        {Date: day(3, 21)},
        {Date: day(3, 22), Available: true},
    }, Available: 2}
    reply := Format(p, "20-22 марта")
    assert.Contains(t, reply, "В 20-22 марта свободно 2 из 3 дней.")
    assert.Contains(t, reply, "Свободные даты: 20.03, 22.03")

    var many []Slot
    for i := 1; i <= 20; i++ {
        many = append(many, Slot{Date: day(4, i), Available: i != 5})
    }
    reply = Format(Period{Slots: many, Available: 19}, "апрель")
    assert.NotContains(t, reply, "Свободные даты")

    reply = Format(Period{Slots: []Slot{{Date: day(3, 20), Available: true}}, Available: 1}, "20.03.2025")
    assert.Contains(t, reply, "20.03.2025 свободно")
}
