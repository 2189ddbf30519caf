package dialog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrethouse/internal/dates"
	"secrethouse/internal/modules/booking"
	"secrethouse/internal/modules/faq"
	"secrethouse/internal/modules/pricing"
)

var minsk = time.FixedZone("Europe/Minsk", 3*60*60)

type recordingSink struct {
	mu   sync.Mutex
	cmds []booking.SubmitCommand
	err  error
}

func (s *recordingSink) Submit(ctx context.Context, cmd booking.SubmitCommand) (*booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	if s.err != nil {
		return nil, s.err
	}
	return &booking.Record{ID: cmd.Ref, Status: booking.StatusPending}, nil
}

type stubAvailability struct {
	reply string
	err   error
}

func (a stubAvailability) Check(ctx context.Context, text string) (string, error) {
	return a.reply, a.err
}

type stubFAQ struct {
	calls int
	ttl   time.Duration
}

func (f *stubFAQ) Answer(ctx context.Context, userID, question string, fc *faq.Context) (faq.Response, *faq.Context) {
	f.calls++
	if fc == nil {
		fc = &faq.Context{}
	}
	next := *fc
	next.Questions++
	next.UpdatedAt = time.Now()
	return faq.Response{Answer: "ответ: " + question}, &next
}

func (f *stubFAQ) TTL() time.Duration { return f.ttl }

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	svc   *Service
	store *MemoryStateStore
	sink  *recordingSink
	faq   *stubFAQ
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	table, err := pricing.NewTable([]pricing.Tariff{
		{
			ID: pricing.Hours12, Name: "12 часов", DurationHours: 12, Price: d(250),
			SaunaPrice: d(100), SecretRoomPrice: d(70), SecondBedroomPrice: d(70), MaxPeople: 2,
		},
		{
			ID: pricing.DayForThree, Name: "Суточно от 3-х человек", DurationHours: 24, Price: d(700), MaxPeople: 6,
			MultiDayPrices: map[string]decimal.Decimal{"1": d(700), "2": d(1300)},
		},
		{
			ID: pricing.DayForCouple, Name: "Суточно для пар", DurationHours: 24, Price: d(500), MaxPeople: 2,
			MultiDayPrices: map[string]decimal.Decimal{"1": d(500), "2": d(900)},
		},
	})
	require.NoError(t, err)
	prices := pricing.NewService(table, "BYN")

	ex := dates.NewExtractor(minsk, func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, minsk) })
	flow := booking.NewFlow(nil, prices, ex, booking.FlowConfig{
		Payment: booking.PaymentDetails{CardNumber: "1111 2222 3333 4444", Phone: "+375290000000"},
	}, nil)

	store := NewMemoryStateStore()
	sink := &recordingSink{}
	fq := &stubFAQ{ttl: time.Hour}
	svc := NewService(Deps{
		Store:        store,
		Flow:         flow,
		Pricing:      prices,
		Parser:       pricing.NewParser(ex),
		Availability: stubAvailability{reply: "Все дни свободны"},
		FAQ:          fq,
		Sink:         sink,
	})
	return fixture{svc: svc, store: store, sink: sink, faq: fq}
}

func (f fixture) say(t *testing.T, texts ...string) Reply {
	t.Helper()
	var r Reply
	for _, text := range texts {
		var err error
		r, err = f.svc.HandleMessage(context.Background(), "c1", "u1", text)
		require.NoError(t, err)
	}
	return r
}

var fullBooking = []string{"хочу забронировать", "12 часов", "да", "нет", "нет", "20.03", "14:00", "21.03", "12:00", "2", "@guest", "нет"}

func TestBookingConversationEndToEnd(t *testing.T) {
	f := newFixture(t)

	r := f.say(t, fullBooking...)
	assert.Equal(t, IntentBooking, r.Intent)
	assert.Equal(t, booking.StageSummaryPending, r.Stage)
	assert.Contains(t, r.Text, "1-я спальня: да")

	r = f.say(t, "подтверждаю")
	assert.Equal(t, booking.StagePaymentPending, r.Stage)
	assert.Contains(t, r.Text, "1111 2222 3333 4444")

	r, err := f.svc.HandlePaymentProof(context.Background(), "c1", booking.PaymentProof{FileID: "file-1", FileType: "photo"})
	require.NoError(t, err)
	assert.Equal(t, booking.StageFinalized, r.Stage)
	assert.NotEmpty(t, r.BookingRef)

	require.Len(t, f.sink.cmds, 1)
	cmd := f.sink.cmds[0]
	assert.Equal(t, "c1", cmd.ConversationID)
	assert.Equal(t, "u1", cmd.UserID)
	assert.Equal(t, r.BookingRef, string(cmd.Ref))
	assert.Equal(t, "file-1", cmd.Proof.FileID)
	assert.Equal(t, "@guest", cmd.Context.Contact)

	st, err := f.store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentProofUploaded, st.Booking.PaymentStatus)

	// after the booking is done, keyword routing works again
	r = f.say(t, "Какая цена?")
	assert.Equal(t, IntentPrice, r.Intent)
}

func TestCorrectionAfterSummaryStaysInBooking(t *testing.T) {
	f := newFixture(t)
	f.say(t, fullBooking...)

	r := f.say(t, "сколько стоит сауна?")
	assert.Equal(t, IntentBooking, r.Intent)
	assert.Equal(t, booking.StageSummaryPending, r.Stage)
	assert.Contains(t, r.Text, "Резюме")
}

func TestPaymentProofBeforeConfirmation(t *testing.T) {
	f := newFixture(t)
	f.say(t, "хочу забронировать", "12 часов")

	r, err := f.svc.HandlePaymentProof(context.Background(), "c1", booking.PaymentProof{FileID: "file-1"})
	require.NoError(t, err)
	assert.Contains(t, r.Text, "Сначала подтвердите детали бронирования")
	assert.Equal(t, booking.StageCollecting, r.Stage)
	assert.Empty(t, f.sink.cmds)
}

func TestSinkFailureDoesNotBreakConversation(t *testing.T) {
	f := newFixture(t)
	f.sink.err = errors.New("db down")
	f.say(t, fullBooking...)
	f.say(t, "подтверждаю")

	r, err := f.svc.HandlePaymentProof(context.Background(), "c1", booking.PaymentProof{FileID: "file-1"})
	require.NoError(t, err)
	assert.Equal(t, booking.StageFinalized, r.Stage)
	assert.Len(t, f.sink.cmds, 1)
}

func TestPriceReplies(t *testing.T) {
	f := newFixture(t)

	r := f.say(t, "Сколько стоит аренда?")
	assert.Equal(t, IntentPrice, r.Intent)
	assert.Contains(t, r.Text, "Доступные тарифы")
	assert.Contains(t, r.Text, "Для точного расчета")

	r = f.say(t, "цена суточно для пары на 2 дня")
	assert.Contains(t, r.Text, "Суточно для пар")
	assert.Contains(t, r.Text, "Итого: 900 руб.")
	assert.Contains(t, r.Text, "уточните точные даты")

	r = f.say(t, "тарифы: что лучше выбрать?")
	assert.Contains(t, r.Text, "Для расчета конкретной стоимости")
}

func TestLastPricingIsNotPersisted(t *testing.T) {
	f := newFixture(t)
	f.say(t, "цена суточно для пары на 2 дня")
	st, err := f.store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, st.LastPricing)
	assert.Equal(t, IntentPrice, st.Intent)
}

func TestFAQStickinessAndExit(t *testing.T) {
	f := newFixture(t)

	r := f.say(t, "Где находится дом?")
	assert.Equal(t, IntentFAQ, r.Intent)
	assert.Equal(t, "ответ: Где находится дом?", r.Text)

	// a follow-up without keywords stays in FAQ
	r = f.say(t, "а парковка?")
	assert.Equal(t, IntentFAQ, r.Intent)
	assert.Equal(t, 2, f.faq.calls)

	// an explicit booking request leaves FAQ
	r = f.say(t, "хочу забронировать")
	assert.Equal(t, IntentBooking, r.Intent)
	st, err := f.store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, st.FAQ)
}

func TestExpiredFAQContextIsDropped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), "c1", TurnState{
		FAQ: &faq.Context{Questions: 3, UpdatedAt: time.Now().Add(-2 * time.Hour)},
	}))

	r := f.say(t, "привет")
	assert.Equal(t, IntentUnknown, r.Intent)
	assert.Equal(t, fallbackText, r.Text)
}

func TestAvailabilityAndChangeReplies(t *testing.T) {
	f := newFixture(t)
	r := f.say(t, "Есть свободные даты?")
	assert.Equal(t, IntentAvailability, r.Intent)
	assert.Equal(t, "Все дни свободны", r.Text)

	f.svc.availability = stubAvailability{err: errors.New("db down")}
	r = f.say(t, "Есть свободные даты?")
	assert.Contains(t, r.Text, "Не удалось проверить свободные даты")

	r = f.say(t, "хочу изменить дату")
	assert.Equal(t, IntentChange, r.Intent)
	assert.Contains(t, r.Text, faq.AdminContact)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.say(t, "хочу забронировать", "12 часов")
	require.NoError(t, f.svc.Reset(context.Background(), "c1"))

	st, err := f.store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, st.Booking.Context.IsEmpty())

	r := f.say(t, "да")
	assert.Equal(t, IntentUnknown, r.Intent)
}

func TestConversationsRunInParallel(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, text := range []string{"хочу забронировать", "12 часов", "да"} {
				_, err := f.svc.HandleMessage(context.Background(), id, "u-"+id, text)
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c", "d"} {
		st, err := f.store.Load(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "12 часов", st.Booking.Context.Tariff, id)
		require.NotNil(t, st.Booking.Context.Sauna, id)
	}
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestMemoryStateStoreRoundTripKeepsCommentPresence(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()
	total := d(420)
	in := TurnState{
		Text:       "нет",
		ActiveFlow: FlowBooking,
		Booking: booking.Session{
			Stage:   booking.StageSummaryPending,
			Context: booking.Context{Tariff: "12 часов", Comment: booking.Comment{Provided: true}, TotalCost: &total},
		},
		LastPricing: &pricing.Breakdown{TariffName: "x"},
	}
	require.NoError(t, store.Save(ctx, "c1", in))

	out, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, out.Booking.Context.Comment.Provided)
	assert.True(t, out.Booking.Context.Has(booking.FieldComment))
	assert.False(t, out.Booking.Context.Has(booking.FieldContact))
	require.NotNil(t, out.Booking.Context.TotalCost)
	assert.True(t, out.Booking.Context.TotalCost.Equal(total))
	assert.Nil(t, out.LastPricing)

	empty, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, TurnState{}, empty)
}

func TestKeyedMutexSerialises(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("x")
	acquired := make(chan struct{})
	go func() {
		u := k.Lock("x")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}
