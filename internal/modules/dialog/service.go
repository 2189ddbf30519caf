// README: Orchestrator: loads turn state, routes, dispatches to handlers, saves.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/faq"
	"secrethouse/internal/modules/pricing"
)

// PricingEngine is the slice of *pricing.Service the orchestrator needs.
type PricingEngine interface {
	Calculate(ctx context.Context, req pricing.Request) (pricing.Breakdown, error)
	SummarizeAllTariffs() string
}

// AvailabilityChecker answers free-text availability questions.
type AvailabilityChecker interface {
	Check(ctx context.Context, text string) (string, error)
}

// FAQAnswerer answers house questions. *faq.Service satisfies it.
type FAQAnswerer interface {
	Answer(ctx context.Context, userID, question string, fc *faq.Context) (faq.Response, *faq.Context)
	TTL() time.Duration
}

// Deps wires the orchestrator. Flow and Store are required; a nil optional
// handler makes its intent fall back to the generic reply.
type Deps struct {
	Store        StateStore
	Flow         *booking.Flow
	Pricing      PricingEngine
	Parser       *pricing.Parser
	Availability AvailabilityChecker
	FAQ          FAQAnswerer
	Sink         booking.ReviewSink
	Logger       *zap.Logger
}

type Service struct {
	store        StateStore
	flow         *booking.Flow
	pricing      PricingEngine
	parser       *pricing.Parser
	availability AvailabilityChecker
	faq          FAQAnswerer
	sink         booking.ReviewSink
	locks        *keyedMutex
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Parser == nil {
		d.Parser = pricing.NewParser(nil)
	}
	return &Service{
		store:        d.Store,
		flow:         d.Flow,
		pricing:      d.Pricing,
		parser:       d.Parser,
		availability: d.Availability,
		faq:          d.FAQ,
		sink:         d.Sink,
		locks:        newKeyedMutex(),
		logger:       d.Logger,
		now:          time.Now,
	}
}

// HandleMessage runs one turn for the conversation. Only state store
// failures are returned as errors; everything else becomes a reply.
func (s *Service) HandleMessage(ctx context.Context, conversationID, userID, text string) (Reply, error) {
	unlock := s.locks.Lock(conversationID)
	defer unlock()

	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return Reply{}, err
	}
	if userID != "" {
		st.UserID = userID
	}
	st.Text = text
	st.LastPricing = nil

	now := s.now()
	if st.FAQ != nil && s.faq != nil && st.FAQ.Expired(now, s.faq.TTL()) {
		st.FAQ = nil
	}
	if st.FAQ != nil && IsBookingRequest(text) {
		st.FAQ = nil
	}

	intent, flow := s.route(st)
	st.Intent = intent
	st.ActiveFlow = flow
	if intent != IntentFAQ {
		st.FAQ = nil
	}

	reply := s.dispatch(ctx, conversationID, &st)
	reply.Intent = intent
	reply.Stage = st.Booking.Stage

	st.UpdatedAt = now
	if err := s.store.Save(ctx, conversationID, st); err != nil {
		return Reply{}, err
	}
	s.logger.Debug("turn handled",
		zap.String("conversation_id", conversationID),
		zap.String("intent", string(intent)),
		zap.String("stage", string(st.Booking.Stage)),
	)
	return reply, nil
}

// HandlePaymentProof attaches an uploaded payment proof and finalizes the
// booking when it was waiting for payment.
func (s *Service) HandlePaymentProof(ctx context.Context, conversationID string, proof booking.PaymentProof) (Reply, error) {
	unlock := s.locks.Lock(conversationID)
	defer unlock()

	st, err := s.store.Load(ctx, conversationID)
	if err != nil {
		return Reply{}, err
	}
	next, err := s.flow.AttachProof(st.Booking, proof)
	if errors.Is(err, booking.ErrNoPendingPayment) {
		return Reply{
			Text:   "Сначала подтвердите детали бронирования, затем загружайте подтверждение оплаты.",
			Intent: IntentBooking,
			Stage:  st.Booking.Stage,
		}, nil
	}
	if err != nil {
		return Reply{}, err
	}

	st.Booking = next
	st.Text = ""
	st.Intent = IntentBooking
	st.ActiveFlow = FlowBooking
	reply := s.handleBooking(ctx, conversationID, &st)
	reply.Intent = IntentBooking
	reply.Stage = st.Booking.Stage

	st.UpdatedAt = s.now()
	if err := s.store.Save(ctx, conversationID, st); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// Reset forgets the conversation.
func (s *Service) Reset(ctx context.Context, conversationID string) error {
	unlock := s.locks.Lock(conversationID)
	defer unlock()
	return s.store.Delete(ctx, conversationID)
}

// State returns the stored state of a conversation.
func (s *Service) State(ctx context.Context, conversationID string) (TurnState, error) {
	return s.store.Load(ctx, conversationID)
}

// route gives a booking waiting for confirmation or payment priority over
// keyword routing so corrections reach the flow.
func (s *Service) route(st TurnState) (Intent, Flow) {
	if st.ActiveFlow == FlowBooking {
		switch st.Booking.Stage {
		case booking.StageSummaryPending, booking.StagePaymentPending:
			return IntentBooking, FlowBooking
		}
	}
	return Route(st)
}

func (s *Service) dispatch(ctx context.Context, conversationID string, st *TurnState) Reply {
	switch st.Intent {
	case IntentBooking:
		return s.handleBooking(ctx, conversationID, st)
	case IntentPrice:
		if s.pricing != nil {
			return s.handlePrice(ctx, st)
		}
	case IntentAvailability:
		if s.availability != nil {
			return s.handleAvailability(ctx, st)
		}
	case IntentFAQ:
		if s.faq != nil {
			return s.handleFAQ(ctx, st)
		}
	case IntentChange:
		return s.handleChange(st)
	}
	return Reply{Text: fallbackText}
}

func (s *Service) handleBooking(ctx context.Context, conversationID string, st *TurnState) Reply {
	next, r := s.flow.Step(ctx, st.Booking, st.Text)
	st.Booking = next

	reply := Reply{Text: r.Text}
	if r.Submit == nil {
		return reply
	}
	reply.BookingRef = string(r.Submit.Ref)

	cmd := *r.Submit
	cmd.ConversationID = conversationID
	cmd.UserID = st.UserID
	if s.sink == nil {
		s.logger.Warn("no review sink configured, booking not submitted", zap.String("booking_id", string(cmd.Ref)))
		return reply
	}
	if _, err := s.sink.Submit(ctx, cmd); err != nil {
		s.logger.Error("booking hand-off failed",
			zap.String("booking_id", string(cmd.Ref)),
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
	return reply
}

func (s *Service) handlePrice(ctx context.Context, st *TurnState) Reply {
	text := st.Text
	if pricing.IsComparisonRequest(text) {
		return Reply{Text: s.pricing.SummarizeAllTariffs() + "\n\n💬 Для расчета конкретной стоимости укажите желаемый тариф и количество дней."}
	}

	req := s.parser.Parse(text)
	if _, ok := pricing.ParseTariff(req.Tariff); !ok && pricing.IsPricingQuery(text) {
		return Reply{Text: s.pricing.SummarizeAllTariffs() + priceHint}
	}

	b, err := s.pricing.Calculate(ctx, req)
	if errors.Is(err, pricing.ErrUnknownTariff) {
		return Reply{Text: "⚠️ Не удалось найти указанный тариф.\n\n" + s.pricing.SummarizeAllTariffs() + "\n\n💬 Пожалуйста, выберите один из доступных тарифов."}
	}
	if err != nil {
		s.logger.Warn("pricing failed", zap.String("text", text), zap.Error(err))
		return Reply{Text: priceErrorText}
	}
	st.LastPricing = &b
	return Reply{Text: pricing.FormatBreakdown(b) + "\n\n" + pricing.BookingSuggestion(b)}
}

func (s *Service) handleAvailability(ctx context.Context, st *TurnState) Reply {
	text, err := s.availability.Check(ctx, st.Text)
	if err != nil {
		s.logger.Warn("availability check failed", zap.Error(err))
		return Reply{Text: "Не удалось проверить свободные даты. Попробуйте позже или напишите администратору " + faq.AdminContact + "."}
	}
	return Reply{Text: text}
}

func (s *Service) handleFAQ(ctx context.Context, st *TurnState) Reply {
	resp, fc := s.faq.Answer(ctx, st.UserID, st.Text, st.FAQ)
	st.FAQ = fc
	return Reply{Text: resp.Answer, NeedsHuman: resp.NeedsHuman, Suggestions: resp.Suggestions}
}

func (s *Service) handleChange(st *TurnState) Reply {
	if ref := st.Booking.Ref; ref != "" {
		return Reply{Text: fmt.Sprintf("✏️ Чтобы изменить или перенести бронь %s, напишите администратору %s.", ref, faq.AdminContact)}
	}
	return Reply{Text: "✏️ Чтобы изменить или перенести бронь, напишите администратору " + faq.AdminContact + " и укажите номер брони."}
}

const (
	fallbackText   = "Я понимаю запросы: бронирование, цены и тарифы, свободные даты, изменение брони, вопросы о доме. Попробуйте сформулировать иначе."
	priceHint      = "\n\n💡 Для точного расчета стоимости укажите:\n• Желаемый тариф\n• Количество дней\n• Дополнительные услуги (при необходимости)\n\nНапример: «Сколько стоит суточный тариф на 3 дня с сауной?»"
	priceErrorText = "😔 Произошла ошибка при расчете стоимости.\n\nПопробуйте переформулировать запрос или обратитесь к администратору.\n\n💡 Пример корректного запроса:\n«Сколько стоит суточный тариф для двоих на 2 дня?»"
)
