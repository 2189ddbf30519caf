// README: Booking service persists finalized bookings and runs the admin review.
package booking

import (
    "context"
    "errors"
    "time"

    "go.uber.org/zap"

    "secrethouse/internal/dates"
    "secrethouse/internal/types"
)

var (
    ErrInvalidState = errors.New("invalid state transition")
    ErrNotFound     = errors.New("booking not found")
    ErrConflict     = errors.New("booking state conflict")
    ErrBadRequest   = errors.New("bad request")
)

// ReviewSink receives finalized bookings.
type ReviewSink interface {
    Submit(ctx context.Context, cmd SubmitCommand) (*Record, error)
}

// Notifier tells the admins (and the guest) about review events.
type Notifier interface {
    NotifyNewBooking(ctx context.Context, r *Record) error
    NotifyDecision(ctx context.Context, r *Record, actorID string) error
}

// Notifiers fans review events out to several notifiers. Every notifier is
// called; the errors are joined.
type Notifiers []Notifier

func (ns Notifiers) NotifyNewBooking(ctx context.Context, r *Record) error {
    var errs []error
    for _, n := range ns {
        if err := n.NotifyNewBooking(ctx, r); err != nil {
            errs = append(errs, err)
        }
    }
    return errors.Join(errs...)
}

func (ns Notifiers) NotifyDecision(ctx context.Context, r *Record, actorID string) error {
    var errs []error
    for _, n := range ns {
        if err := n.NotifyDecision(ctx, r, actorID); err != nil {
            errs = append(errs, err)
        }
    }
    return errors.Join(errs...)
}

type SubmitCommand struct {
    Ref            types.ID
    ConversationID string
    UserID         string
    Context        Context
    Proof          PaymentProof
}

type ReviewCommand struct {
    BookingID types.ID
    Decision  Status
    ActorID   string
}

type Service struct {
    store    *Store
    notifier Notifier
    loc      *time.Location
    logger   *zap.Logger
}

func NewService(store *Store, notifier Notifier, loc *time.Location, logger *zap.Logger) *Service {
    if loc == nil {
        loc = time.UTC
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Service{store: store, notifier: notifier, loc: loc, logger: logger}
}

// SetNotifier replaces the notifier. Safe only before the service is shared.
func (s *Service) SetNotifier(n Notifier) {
    s.notifier = n
}

// Submit stores a finalized booking as pending review and notifies the admins.
// A failed notification is logged; the booking stays stored.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*Record, error) {
    if cmd.Ref == "" || cmd.ConversationID == "" {
        return nil, ErrBadRequest
    }
    r := s.newRecord(cmd)
    if err := s.store.Create(ctx, r); err != nil {
        return nil, err
    }
    _ = s.store.AppendEvent(ctx, &Event{
        BookingID:  r.ID,
        FromStatus: StatusNone,
        ToStatus:   StatusPending,
        ActorType:  "guest",
        ActorID:    &r.UserID,
        CreatedAt:  r.CreatedAt,
    })
    if s.notifier != nil {
        if err := s.notifier.NotifyNewBooking(ctx, r); err != nil {
            s.logger.Error("admin notification failed", zap.String("booking_id", string(r.ID)), zap.Error(err))
        }
    }
    return r, nil
}

func (s *Service) newRecord(cmd SubmitCommand) *Record {
    r := &Record{
        ID:             cmd.Ref,
        ConversationID: cmd.ConversationID,
        UserID:         cmd.UserID,
        Context:        cmd.Context,
        Total:          types.Money{Currency: types.DefaultCurrency},
        Status:         StatusPending,
        Proof:          cmd.Proof,
        CreatedAt:      time.Now(),
    }
    if cmd.Context.TotalCost != nil {
        r.Total.Amount = *cmd.Context.TotalCost
    }
    if start, err := dates.ParseDate(cmd.Context.StartDate, s.loc); err == nil {
        r.StartAt = &start
    }
    if end, err := dates.ParseDate(cmd.Context.FinishDate, s.loc); err == nil {
        end = end.Add(24*time.Hour - time.Microsecond)
        r.EndAt = &end
    }
    return r
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Record, error) {
    return s.store.Get(ctx, id)
}

// Review moves a pending booking to the admin's decision.
func (s *Service) Review(ctx context.Context, cmd ReviewCommand) (*Record, error) {
    r, err := s.store.Get(ctx, cmd.BookingID)
    if err != nil {
        return nil, err
    }
    if !CanReview(r.Status, cmd.Decision) {
        return nil, ErrInvalidState
    }
    ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, cmd.Decision, r.StatusVersion)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrConflict
    }
    var actor *string
    if cmd.ActorID != "" {
        actor = &cmd.ActorID
    }
    _ = s.store.AppendEvent(ctx, &Event{
        BookingID:  r.ID,
        FromStatus: r.Status,
        ToStatus:   cmd.Decision,
        ActorType:  "admin",
        ActorID:    actor,
        CreatedAt:  time.Now(),
    })

    r.Status = cmd.Decision
    r.StatusVersion++
    if s.notifier != nil {
        if err := s.notifier.NotifyDecision(ctx, r, cmd.ActorID); err != nil {
            s.logger.Error("decision notification failed", zap.String("booking_id", string(r.ID)), zap.Error(err))
        }
    }
    return r, nil
}

func (s *Service) Approve(ctx context.Context, id types.ID, actorID string) (*Record, error) {
    return s.Review(ctx, ReviewCommand{BookingID: id, Decision: StatusApproved, ActorID: actorID})
}

func (s *Service) Reject(ctx context.Context, id types.ID, actorID string) (*Record, error) {
    return s.Review(ctx, ReviewCommand{BookingID: id, Decision: StatusRejected, ActorID: actorID})
}

func (s *Service) Cancel(ctx context.Context, id types.ID, actorID string) (*Record, error) {
    return s.Review(ctx, ReviewCommand{BookingID: id, Decision: StatusCancelled, ActorID: actorID})
}
