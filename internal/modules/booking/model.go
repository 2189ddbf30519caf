// README: Booking slots, flow stages and review statuses.
package booking

import (
    "strconv"
    "strings"
    "time"

    "github.com/shopspring/decimal"

    "secrethouse/internal/modules/pricing"
    "secrethouse/internal/types"
)

// Field identifies one booking slot.
type Field string

const (
    FieldTariff        Field = "tariff"
    FieldStartDate     Field = "start_date"
    FieldStartTime     Field = "start_time"
    FieldFinishDate    Field = "finish_date"
    FieldFinishTime    Field = "finish_time"
    FieldFirstBedroom  Field = "first_bedroom"
    FieldSecondBedroom Field = "second_bedroom"
    FieldSauna         Field = "sauna"
    FieldPhotoshoot    Field = "photoshoot"
    FieldSecretRoom    Field = "secret_room"
    FieldNumberGuests  Field = "number_guests"
    FieldContact       Field = "contact"
    FieldComment       Field = "comment"
)

// Comment keeps "no comment" apart from "not asked yet".
type Comment struct {
    Provided bool   `json:"provided"`
    Text     string `json:"text,omitempty"`
}

// Context is the set of slots collected for one booking.
type Context struct {
    Tariff        string           `json:"tariff,omitempty"`
    StartDate     string           `json:"start_date,omitempty"`
    StartTime     string           `json:"start_time,omitempty"`
    FinishDate    string           `json:"finish_date,omitempty"`
    FinishTime    string           `json:"finish_time,omitempty"`
    FirstBedroom  *bool            `json:"first_bedroom,omitempty"`
    SecondBedroom *bool            `json:"second_bedroom,omitempty"`
    Sauna         *bool            `json:"sauna,omitempty"`
    Photoshoot    *bool            `json:"photoshoot,omitempty"`
    SecretRoom    *bool            `json:"secret_room,omitempty"`
    NumberGuests  int              `json:"number_guests,omitempty"`
    Contact       string           `json:"contact,omitempty"`
    Comment       Comment          `json:"comment"`
    TotalCost     *decimal.Decimal `json:"total_cost,omitempty"`
}

// IsEmpty reports whether no slot has been filled yet.
func (c Context) IsEmpty() bool {
    for _, f := range allFields {
        if c.Has(f) {
            return false
        }
    }
    return true
}

// Has reports whether a slot holds a value. Empty strings count as missing;
// the comment counts as present once it was answered, even with "no".
func (c Context) Has(f Field) bool {
    switch f {
    case FieldTariff:
        return strings.TrimSpace(c.Tariff) != ""
    case FieldStartDate:
        return c.StartDate != ""
    case FieldStartTime:
        return c.StartTime != ""
    case FieldFinishDate:
        return c.FinishDate != ""
    case FieldFinishTime:
        return c.FinishTime != ""
    case FieldFirstBedroom:
        return c.FirstBedroom != nil
    case FieldSecondBedroom:
        return c.SecondBedroom != nil
    case FieldSauna:
        return c.Sauna != nil
    case FieldPhotoshoot:
        return c.Photoshoot != nil
    case FieldSecretRoom:
        return c.SecretRoom != nil
    case FieldNumberGuests:
        return c.NumberGuests > 0
    case FieldContact:
        return strings.TrimSpace(c.Contact) != ""
    case FieldComment:
        return c.Comment.Provided
    }
    return false
}

// TariffID maps the free-form tariff value to a known tariff.
func (c Context) TariffID() (pricing.TariffID, bool) {
    raw := strings.TrimSpace(c.Tariff)
    if n, err := strconv.Atoi(raw); err == nil {
        id := pricing.TariffID(n)
        return id, id.Valid()
    }
    return pricing.ParseTariff(raw)
}

// TariffName is the display name of the selected tariff.
func (c Context) TariffName() string {
    if id, ok := c.TariffID(); ok {
        return id.DisplayName()
    }
    return c.Tariff
}

// AddOns lists the accepted billable extras in a fixed order.
func (c Context) AddOns() []pricing.AddOn {
    var out []pricing.AddOn
    if isTrue(c.Sauna) {
        out = append(out, pricing.AddOnSauna)
    }
    if isTrue(c.SecretRoom) {
        out = append(out, pricing.AddOnSecretRoom)
    }
    if isTrue(c.SecondBedroom) {
        out = append(out, pricing.AddOnSecondBedroom)
    }
    if isTrue(c.Photoshoot) {
        out = append(out, pricing.AddOnPhotoshoot)
    }
    return out
}

var allFields = []Field{
    FieldTariff, FieldStartDate, FieldStartTime, FieldFinishDate, FieldFinishTime,
    FieldFirstBedroom, FieldSecondBedroom, FieldSauna, FieldPhotoshoot, FieldSecretRoom,
    FieldNumberGuests, FieldContact, FieldComment,
}

func isTrue(b *bool) bool { return b != nil && *b }

func boolPtr(v bool) *bool { return &v }

// Stage of the booking conversation.
type Stage string

const (
    StageCollecting     Stage = "collecting"
    StageSummaryPending Stage = "summary_pending"
    StagePaymentPending Stage = "payment_pending"
    StageFinalized      Stage = "finalized"
)

// AllowedTransitions represents the booking dialogue flow as code. Every
// stage may also loop on itself.
var AllowedTransitions = map[Stage][]Stage{
    StageCollecting:     {StageSummaryPending},
    StageSummaryPending: {StagePaymentPending, StageCollecting},
    StagePaymentPending: {StageFinalized},
    StageFinalized:      {StageCollecting},
}

func CanTransition(from, to Stage) bool {
    if from == to {
        return true
    }
    for _, s := range AllowedTransitions[from] {
        if s == to {
            return true
        }
    }
    return false
}

// PaymentStatus tracks the payment hand-off.
type PaymentStatus string

const (
    PaymentNone          PaymentStatus = "none"
    PaymentPending       PaymentStatus = "pending"
    PaymentProofUploaded PaymentStatus = "proof_uploaded"
    PaymentApproved      PaymentStatus = "approved"
    PaymentRejected      PaymentStatus = "rejected"
)

// PaymentProof is the file a guest sent as proof of payment.
type PaymentProof struct {
    FileID     string    `json:"file_id"`
    FileType   string    `json:"file_type"`
    FileSize   int64     `json:"file_size,omitempty"`
    UploadedAt time.Time `json:"uploaded_at"`
}

// Session is the booking part of a conversation's state.
type Session struct {
    Stage         Stage         `json:"stage,omitempty"`
    Context       Context       `json:"context"`
    Done          bool          `json:"done"`
    AwaitInput    bool          `json:"await_input"`
    LastAsked     Field         `json:"last_asked,omitempty"`
    PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
    Proof         *PaymentProof `json:"proof,omitempty"`
    Ref           types.ID      `json:"ref,omitempty"`
}

// Status of a submitted booking under admin review.
type Status string

const (
    StatusNone      Status = "none"
    StatusPending   Status = "pending"
    StatusApproved  Status = "approved"
    StatusRejected  Status = "rejected"
    StatusCancelled Status = "cancelled"
)

// ReviewTransitions is the admin review state flow.
var ReviewTransitions = map[Status][]Status{
    StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
    StatusApproved: {StatusCancelled},
}

func CanReview(from, to Status) bool {
    for _, s := range ReviewTransitions[from] {
        if s == to {
            return true
        }
    }
    return false
}

// Record is a submitted booking as persisted for review.
type Record struct {
    ID             types.ID
    ConversationID string
    UserID         string
    Context        Context
    StartAt        *time.Time
    EndAt          *time.Time
    Total          types.Money
    Status         Status
    StatusVersion  int
    Proof          PaymentProof
    CreatedAt      time.Time
    ReviewedAt     *time.Time
}

// Event is one review transition.
type Event struct {
    ID         int64
    BookingID  types.ID
    FromStatus Status
    ToStatus   Status
    ActorType  string
    ActorID    *string
    CreatedAt  time.Time
}
