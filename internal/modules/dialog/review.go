// README: Mirrors admin review decisions into the guest's turn state.
package dialog

import (
	"context"

	"secrethouse/internal/modules/booking"
)

// ApplyDecision records the admin's decision on the payment status of the
// conversation's latest booking. Decisions for an older booking are ignored.
func (s *Service) ApplyDecision(ctx context.Context, conversationID string, r *booking.Record) error {
	unlock := s.locks.Lock(conversationID)
	defer unlock()

	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return err
	}
	if st.Booking.Ref != r.ID {
		return nil
	}
	switch r.Status {
	case booking.StatusApproved:
		st.Booking.PaymentStatus = booking.PaymentApproved
	case booking.StatusRejected, booking.StatusCancelled:
		st.Booking.PaymentStatus = booking.PaymentRejected
	default:
		return nil
	}
	st.UpdatedAt = s.now()
	return s.store.Save(ctx, conversationID, st)
}

// ReviewListener adapts the orchestrator to booking.Notifier so review
// decisions reach the conversation state.
type ReviewListener struct {
	svc *Service
}

func NewReviewListener(svc *Service) *ReviewListener {
	return &ReviewListener{svc: svc}
}

func (l *ReviewListener) NotifyNewBooking(ctx context.Context, r *booking.Record) error {
	return nil
}

func (l *ReviewListener) NotifyDecision(ctx context.Context, r *booking.Record, actorID string) error {
	return l.svc.ApplyDecision(ctx, r.ConversationID, r)
}
