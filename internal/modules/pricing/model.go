// README: Tariff definitions, add-ons and pricing request/breakdown types.
package pricing

import (
    "errors"
    "sort"
    "strconv"
    "time"

    "github.com/shopspring/decimal"
)

var ErrUnknownTariff = errors.New("tariff not found")

type TariffID int

const (
    Hours12 TariffID = iota
    DayForThree
    Worker
    IncognitoDay
    IncognitoHours
    Subscription3
    Subscription5
    DayForCouple
    Subscription8
)

// DefaultTariff is used when a pricing question names no tariff.
const DefaultTariff = DayForThree

var tariffCodes = map[TariffID]string{
    Hours12:        "HOURS_12",
    DayForThree:    "DAY_FOR_THREE",
    Worker:         "WORKER",
    IncognitoDay:   "INCOGNITA_DAY",
    IncognitoHours: "INCOGNITA_HOURS",
    Subscription3:  "SUBSCRIPTION_3",
    Subscription5:  "SUBSCRIPTION_5",
    DayForCouple:   "DAY_FOR_COUPLE",
    Subscription8:  "SUBSCRIPTION_8",
}

var tariffNames = map[TariffID]string{
    Hours12:        "12 часов",
    DayForThree:    "Суточно от 3-х человек",
    Worker:         "Рабочий",
    IncognitoDay:   "Инкогнито на сутки",
    IncognitoHours: "Инкогнито 12 часов",
    Subscription3:  "Абонемент на 3 посещения",
    Subscription5:  "Абонемент на 5 посещений",
    DayForCouple:   "Суточно для пар",
    Subscription8:  "Абонемент на 8 посещений",
}

func (t TariffID) String() string {
    if c, ok := tariffCodes[t]; ok {
        return c
    }
    return "TARIFF_" + strconv.Itoa(int(t))
}

// DisplayName is the user-facing Russian name of the tariff.
func (t TariffID) DisplayName() string {
    if n, ok := tariffNames[t]; ok {
        return n
    }
    return t.String()
}

func (t TariffID) Valid() bool {
    _, ok := tariffCodes[t]
    return ok
}

type AddOn string

const (
    AddOnSauna         AddOn = "sauna"
    AddOnSecretRoom    AddOn = "secret_room"
    AddOnSecondBedroom AddOn = "second_bedroom"
    AddOnPhotoshoot    AddOn = "photoshoot"
)

var addOnLabels = map[AddOn]string{
    AddOnSauna:         "Сауна",
    AddOnSecretRoom:    "Секретная комната",
    AddOnSecondBedroom: "Вторая спальня",
    AddOnPhotoshoot:    "Фотосъемка",
}

func (a AddOn) Label() string {
    if l, ok := addOnLabels[a]; ok {
        return l
    }
    return string(a)
}

// Tariff mirrors one entry of the rental_prices configuration.
type Tariff struct {
    ID                 TariffID                   `mapstructure:"tariff" json:"tariff"`
    Name               string                     `mapstructure:"name" json:"name"`
    DurationHours      int                        `mapstructure:"duration_hours" json:"duration_hours"`
    Price              decimal.Decimal            `mapstructure:"price" json:"price"`
    SaunaPrice         decimal.Decimal            `mapstructure:"sauna_price" json:"sauna_price"`
    SecretRoomPrice    decimal.Decimal            `mapstructure:"secret_room_price" json:"secret_room_price"`
    SecondBedroomPrice decimal.Decimal            `mapstructure:"second_bedroom_price" json:"second_bedroom_price"`
    ExtraHourPrice     decimal.Decimal            `mapstructure:"extra_hour_price" json:"extra_hour_price"`
    ExtraPeoplePrice   decimal.Decimal            `mapstructure:"extra_people_price" json:"extra_people_price"`
    PhotoshootPrice    decimal.Decimal            `mapstructure:"photoshoot_price" json:"photoshoot_price"`
    MaxPeople          int                        `mapstructure:"max_people" json:"max_people"`
    CheckInTimeLimited bool                       `mapstructure:"is_check_in_time_limit" json:"is_check_in_time_limit"`
    Photoshoot         bool                       `mapstructure:"is_photoshoot" json:"is_photoshoot"`
    Transfer           bool                       `mapstructure:"is_transfer" json:"is_transfer"`
    SubscriptionVisits int                        `mapstructure:"subscription_type" json:"subscription_type"`
    MultiDayPrices     map[string]decimal.Decimal `mapstructure:"multi_day_prices" json:"multi_day_prices"`
}

func (t Tariff) AddOnPrice(a AddOn) decimal.Decimal {
    switch a {
    case AddOnSauna:
        return t.SaunaPrice
    case AddOnSecretRoom:
        return t.SecretRoomPrice
    case AddOnSecondBedroom:
        return t.SecondBedroomPrice
    case AddOnPhotoshoot:
        return t.PhotoshootPrice
    default:
        return decimal.Zero
    }
}

// IncludesPhotoshoot is true when the tariff bundles a free photoshoot.
func (t Tariff) IncludesPhotoshoot() bool {
    return t.Photoshoot && t.PhotoshootPrice.IsZero()
}

// dayPrices returns the numeric multi-day entries sorted by day count.
func (t Tariff) dayPrices() []dayPrice {
    out := make([]dayPrice, 0, len(t.MultiDayPrices))
    for k, v := range t.MultiDayPrices {
        n, err := strconv.Atoi(k)
        if err != nil || n < 1 {
            continue
        }
        out = append(out, dayPrice{days: n, price: v})
    }
    sort.Slice(out, func(i, j int) bool { return out[i].days < out[j].days })
    return out
}

type dayPrice struct {
    days  int
    price decimal.Decimal
}

// Request describes what to price. TariffID wins over the informal
// Tariff description; Days wins over the Start/End dates.
type Request struct {
    TariffID   *TariffID
    Tariff     string
    Days       int
    Start      time.Time
    End        time.Time
    AddOns     []AddOn
    Guests     int
    ExtraHours int
}

type LineItem struct {
    Label  string          `json:"label"`
    Amount decimal.Decimal `json:"amount"`
}

// Breakdown is built once per Calculate call and never mutated.
type Breakdown struct {
    TariffID           TariffID        `json:"tariff_id"`
    TariffName         string          `json:"tariff_name"`
    BaseCost           decimal.Decimal `json:"base_cost"`
    DurationHours      int             `json:"duration_hours"`
    DurationDays       int             `json:"duration_days"`
    AddOns             []LineItem      `json:"add_ons"`
    Included           []string        `json:"included,omitempty"`
    Total              decimal.Decimal `json:"total"`
    Currency           string          `json:"currency"`
    MaxPeople          int             `json:"max_people"`
    IncludesTransfer   bool            `json:"includes_transfer"`
    IncludesPhotoshoot bool            `json:"includes_photoshoot"`
    CheckInTimeLimited bool            `json:"check_in_time_limited"`
    SubscriptionVisits int             `json:"subscription_visits"`
}

// AddOnCost returns the billed amount for a label, if any.
func (b Breakdown) AddOnCost(label string) (decimal.Decimal, bool) {
    for _, li := range b.AddOns {
        if li.Label == label {
            return li.Amount, true
        }
    }
    return decimal.Zero, false
}
