// README: Availability service builds day slots from stored bookings.
package availability

import (
    "context"
    "fmt"
    "strings"
    "time"

    "go.uber.org/zap"

    "secrethouse/internal/dates"
    "secrethouse/internal/modules/booking"
)

// maxListedDates caps the explicit date list in replies.
const maxListedDates = 10

// Occupancy lists bookings that hold the house.
type Occupancy interface {
    Occupied(ctx context.Context, from, to time.Time) ([]booking.Period, error)
}

type Service struct {
    occupancy Occupancy
    dates     *dates.Extractor
    logger    *zap.Logger
}

func NewService(occupancy Occupancy, ex *dates.Extractor, logger *zap.Logger) *Service {
    if ex == nil {
        ex = dates.NewExtractor(nil, nil)
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Service{occupancy: occupancy, dates: ex, logger: logger}
}

// ForPeriod returns one slot per calendar day between start and end.
func (s *Service) ForPeriod(ctx context.Context, start, end time.Time) (Period, error) {
    loc := s.dates.Location()
    start, end = start.In(loc), end.In(loc)
    if !dates.ValidateRange(start, end) {
        return Period{}, fmt.Errorf("%w: %s - %s", ErrInvalidPeriod, dates.FormatDate(start), dates.FormatDate(end))
    }

    var occupied []booking.Period
    if s.occupancy != nil {
        var err error
        occupied, err = s.occupancy.Occupied(ctx, start, end)
        if err != nil {
            return Period{}, fmt.Errorf("load bookings: %w", err)
        }
    }

    p := Period{Start: start, End: end}
    first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
    last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
    for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
        slot := Slot{Date: day, Available: true}
        for _, o := range occupied {
            if covers(o, day) {
                slot.Available = false
                slot.BookingID = o.BookingID
                break
            }
        }
        if slot.Available {
            p.Available++
        }
        p.Slots = append(p.Slots, slot)
    }
    return p, nil
}

// covers compares calendar days in the day's location.
func covers(o booking.Period, day time.Time) bool {
    loc := day.Location()
    s, e := o.Start.In(loc), o.End.In(loc)
    from := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
    to := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)
    return !day.Before(from) && !day.After(to)
}

// Check answers a free-text availability question.
func (s *Service) Check(ctx context.Context, text string) (string, error) {
    r := s.dates.ExtractDates(text)
    s.logger.Debug("availability request",
        zap.String("label", r.Label),
        zap.Time("start", r.Start),
        zap.Time("end", r.End),
    )
    p, err := s.ForPeriod(ctx, r.Start, r.End)
    if err != nil {
        return "", err
    }
    return Format(p, r.Label), nil
}

// Format renders the Russian reply for a period.
func Format(p Period, label string) string {
    total := len(p.Slots)
    var sb strings.Builder
    switch {
    case p.Available == 0:
        fmt.Fprintf(&sb, "К сожалению, на %s нет свободных дней.", label)
        sb.WriteString("\n\nПопробуйте выбрать другие даты или свяжитесь с нами для уточнения возможностей.")
    case p.Available == total:
        if total == 1 {
            fmt.Fprintf(&sb, "Отлично! %s свободно для бронирования.", label)
        } else {
            fmt.Fprintf(&sb, "Отлично! Все %d дней в %s свободны для бронирования.", total, label)
        }
        sb.WriteString("\n\nХотите забронировать? Напишите даты и время, которые вас интересуют.")
    default:
        fmt.Fprintf(&sb, "В %s свободно %d из %d дней.", label, p.Available, total)
        if free := p.FreeDates(); len(free) <= maxListedDates {
            parts := make([]string, len(free))
            for i, d := range free {
                parts[i] = d.Format("02.01")
            }
            fmt.Fprintf(&sb, "\n\nСвободные даты: %s", strings.Join(parts, ", "))
        }
        sb.WriteString("\n\nХотите забронировать одну из свободных дат? Напишите конкретную дату и время.")
    }
    return sb.String()
}
