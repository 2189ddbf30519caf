// README: Booking dialogue state machine (collect slots, summary, payment, finalize).
package booking

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "secrethouse/internal/ai"
    "secrethouse/internal/dates"
    "secrethouse/internal/modules/pricing"
    "secrethouse/internal/types"
)

var ErrNoPendingPayment = errors.New("booking is not waiting for payment")

// TariffLookup resolves tariff definitions for priced questions.
type TariffLookup interface {
    Tariff(id pricing.TariffID) (pricing.Tariff, bool)
}

// Pricer computes booking totals.
type Pricer interface {
    TariffLookup
    Calculate(ctx context.Context, req pricing.Request) (pricing.Breakdown, error)
}

// PaymentDetails are shown to the guest after confirmation.
type PaymentDetails struct {
    CardNumber string
    Phone      string
    Currency   string
}

type FlowConfig struct {
    Payment   PaymentDetails
    AITimeout time.Duration
}

// Reply is the outcome of one step. Submit is set once the booking is
// finalized and must be handed to the review sink.
type Reply struct {
    Text   string
    Submit *SubmitCommand
}

type Flow struct {
    extractor ai.FieldExtractor
    pricer    Pricer
    dates     *dates.Extractor
    cfg       FlowConfig
    logger    *zap.Logger
    newRef    func() types.ID
    now       func() time.Time
}

func NewFlow(extractor ai.FieldExtractor, pricer Pricer, ex *dates.Extractor, cfg FlowConfig, logger *zap.Logger) *Flow {
    if logger == nil {
        logger = zap.NewNop()
    }
    if cfg.AITimeout <= 0 {
        cfg.AITimeout = 8 * time.Second
    }
    if cfg.Payment.Currency == "" {
        cfg.Payment.Currency = types.DefaultCurrency
    }
    if ex == nil {
        ex = dates.NewExtractor(nil, nil)
    }
    return &Flow{
        extractor: extractor,
        pricer:    pricer,
        dates:     ex,
        cfg:       cfg,
        logger:    logger,
        newRef:    func() types.ID { return types.ID(uuid.NewString()) },
        now:       time.Now,
    }
}

// Step consumes one user message and returns the next session and reply.
func (f *Flow) Step(ctx context.Context, s Session, text string) (Session, Reply) {
    text = strings.TrimSpace(text)
    if s.Stage == "" {
        s.Stage = StageCollecting
    }

    switch s.Stage {
    case StageFinalized:
        if text == "" || IsConfirmation(text) {
            return s, Reply{Text: finalizedText(s.Ref)}
        }
        // a new request after a finished booking starts over
        s = Session{Stage: StageCollecting}
    case StagePaymentPending:
        if s.PaymentStatus == PaymentProofUploaded && s.Proof != nil {
            return f.finalize(s)
        }
        return s, Reply{Text: "Ожидаем подтверждение оплаты: пришлите фото или документ с чеком.\n\n" + f.paymentText(s.Context)}
    case StageSummaryPending:
        switch {
        case IsConfirmation(text):
            return f.requestPayment(s)
        case text == "" || isNoChanges(text):
            return s, Reply{Text: f.Summary(s.Context)}
        }
        // anything else is a correction
        s.Done = false
        s.Stage = StageCollecting
    }
    return f.collect(ctx, s, text)
}

// AttachProof records a payment proof. The next Step finalizes the booking.
func (f *Flow) AttachProof(s Session, proof PaymentProof) (Session, error) {
    if s.Stage != StagePaymentPending {
        return s, ErrNoPendingPayment
    }
    if proof.UploadedAt.IsZero() {
        proof.UploadedAt = f.now()
    }
    s.Proof = &proof
    s.PaymentStatus = PaymentProofUploaded
    return s, nil
}

func (f *Flow) collect(ctx context.Context, s Session, text string) (Session, Reply) {
    if text != "" {
        f.extract(ctx, &s.Context, text)
        fillRange(&s.Context, text, f.dates)
        if miss, ok := FirstMissing(s.Context); ok {
            applyHeuristic(&s.Context, miss, text, f.dates)
        }
    }
    applyBedroomRule(&s.Context)

    if miss, ok := FirstMissing(s.Context); ok {
        s.Stage = StageCollecting
        s.Done = false
        s.AwaitInput = true
        s.LastAsked = miss
        return s, Reply{Text: Question(s.Context, miss, f.pricer)}
    }

    s.Context.TotalCost = f.total(ctx, s.Context)
    s.Stage = StageSummaryPending
    s.Done = true
    s.AwaitInput = true
    s.LastAsked = ""
    return s, Reply{Text: f.Summary(s.Context)}
}

// extract runs the LLM with its own deadline. Failures only cost the
// heuristic fallback.
func (f *Flow) extract(ctx context.Context, c *Context, text string) {
    if f.extractor == nil {
        return
    }
    ctx, cancel := context.WithTimeout(ctx, f.cfg.AITimeout)
    defer cancel()

    fields, err := f.extractor.ExtractBookingFields(ctx, text)
    if err != nil {
        f.logger.Warn("booking field extraction failed", zap.Error(err))
        return
    }
    c.Merge(fields, f.dates)
}

// applyBedroomRule: declining the optional bedroom always means the main one,
// whatever the extractor or an earlier correction put there.
func applyBedroomRule(c *Context) {
    if c.SecondBedroom != nil && !*c.SecondBedroom {
        c.FirstBedroom = boolPtr(true)
    }
}

func (f *Flow) total(ctx context.Context, c Context) *decimal.Decimal {
    id, ok := c.TariffID()
    if !ok || f.pricer == nil {
        return nil
    }
    req := pricing.Request{TariffID: &id, AddOns: c.AddOns(), Guests: c.NumberGuests}
    loc := f.dates.Location()
    start, errStart := dates.ParseDate(c.StartDate, loc)
    end, errEnd := dates.ParseDate(c.FinishDate, loc)
    if errStart == nil && errEnd == nil && !end.Before(start) {
        req.Start, req.End = start, end
    }
    b, err := f.pricer.Calculate(ctx, req)
    if err != nil {
        f.logger.Warn("booking total calculation failed", zap.String("tariff", c.Tariff), zap.Error(err))
        return nil
    }
    return &b.Total
}

func (f *Flow) requestPayment(s Session) (Session, Reply) {
    s.Stage = StagePaymentPending
    s.PaymentStatus = PaymentPending
    s.Done = true
    s.AwaitInput = true
    return s, Reply{Text: f.paymentText(s.Context)}
}

func (f *Flow) finalize(s Session) (Session, Reply) {
    s.Ref = f.newRef()
    s.Stage = StageFinalized
    s.Done = true
    s.AwaitInput = false
    cmd := &SubmitCommand{Ref: s.Ref, Context: s.Context, Proof: *s.Proof}
    return s, Reply{Text: finalizedText(s.Ref), Submit: cmd}
}

// Summary renders the collected slots in a fixed order. Optional extras are
// listed only when the tariff asks for them.
func (f *Flow) Summary(c Context) string {
    var sb strings.Builder
    sb.WriteString("📋 Резюме заявки:\n")
    fmt.Fprintf(&sb, "Тариф: %s\n", c.TariffName())
    fmt.Fprintf(&sb, "Заезд: %s %s\n", c.StartDate, c.StartTime)
    fmt.Fprintf(&sb, "Выезд: %s %s\n", c.FinishDate, c.FinishTime)
    for _, opt := range []struct {
        field Field
        label string
        value *bool
    }{
        {FieldFirstBedroom, "1-я спальня", c.FirstBedroom},
        {FieldSecondBedroom, "2-я спальня", c.SecondBedroom},
        {FieldSauna, "Сауна", c.Sauna},
        {FieldPhotoshoot, "Фотосъёмка", c.Photoshoot},
        {FieldSecretRoom, "Секретная комната", c.SecretRoom},
    } {
        if Relevant(c, opt.field) {
            fmt.Fprintf(&sb, "%s: %s\n", opt.label, yesNo(opt.value))
        }
    }
    if c.NumberGuests > 0 {
        fmt.Fprintf(&sb, "Гостей: %d\n", c.NumberGuests)
    }
    fmt.Fprintf(&sb, "Контакт: %s\n", c.Contact)
    comment := c.Comment.Text
    if comment == "" {
        comment = "—"
    }
    fmt.Fprintf(&sb, "Комментарий: %s\n", comment)
    if c.TotalCost != nil {
        fmt.Fprintf(&sb, "Стоимость: %s руб.\n", pricing.FormatAmount(*c.TotalCost))
    }
    sb.WriteString("Напиши `подтверждаю` или пришли правки текстом.")
    return sb.String()
}

func (f *Flow) paymentText(c Context) string {
    amount := "сумму уточнит администратор"
    if c.TotalCost != nil {
        amount = fmt.Sprintf("%s %s", pricing.FormatAmount(*c.TotalCost), f.cfg.Payment.Currency)
    }
    var sb strings.Builder
    fmt.Fprintf(&sb, "💳 Для подтверждения брони внесите оплату: %s\n", amount)
    if f.cfg.Payment.CardNumber != "" {
        fmt.Fprintf(&sb, "Карта: %s\n", f.cfg.Payment.CardNumber)
    }
    if f.cfg.Payment.Phone != "" {
        fmt.Fprintf(&sb, "Телефон: %s\n", f.cfg.Payment.Phone)
    }
    sb.WriteString("После оплаты пришлите скриншот или фото чека в этот чат.")
    return sb.String()
}

func finalizedText(ref types.ID) string {
    return fmt.Sprintf("✅ Подтверждение оплаты получено! Номер брони: %s.\nАдминистратор проверит оплату и свяжется с вами.", ref)
}

func yesNo(v *bool) string {
    if isTrue(v) {
        return "да"
    }
    return "нет"
}
