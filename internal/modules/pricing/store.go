// README: Tariff store backed by the rental_prices JSON file (viper), with hot reload.
package pricing

import (
    "encoding/json"
    "fmt"
    "reflect"
    "strconv"

    "github.com/fsnotify/fsnotify"
    "github.com/shopspring/decimal"
    "github.com/spf13/viper"
    "go.uber.org/zap"
)

type Store struct {
    v      *viper.Viper
    path   string
    logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
    if logger == nil {
        logger = zap.NewNop()
    }
    v := viper.New()
    v.SetConfigFile(path)
    return &Store{v: v, path: path, logger: logger}
}

// Load reads the file and builds a fresh table.
func (s *Store) Load() (*Table, error) {
    if err := s.v.ReadInConfig(); err != nil {
        return nil, fmt.Errorf("read tariff config %s: %w", s.path, err)
    }
    return s.decode()
}

func (s *Store) decode() (*Table, error) {
    var tariffs []Tariff
    if err := s.v.UnmarshalKey("rental_prices", &tariffs, viper.DecodeHook(decimalHook)); err != nil {
        return nil, fmt.Errorf("decode rental_prices: %w", err)
    }
    if len(tariffs) == 0 {
        return nil, fmt.Errorf("tariff config %s: rental_prices is empty", s.path)
    }
    return NewTable(tariffs)
}

// Watch re-reads the file on change and hands every valid table to apply.
// An invalid file is logged and the previous table stays in place.
func (s *Store) Watch(apply func(*Table)) {
    s.v.OnConfigChange(func(e fsnotify.Event) {
        table, err := s.decode()
        if err != nil {
            s.logger.Warn("tariff reload rejected", zap.String("file", e.Name), zap.Error(err))
            return
        }
        apply(table)
        s.logger.Info("tariffs reloaded", zap.String("file", e.Name), zap.Int("tariffs", table.Len()))
    })
    s.v.WatchConfig()
}

// LoadTable is a one-shot helper for tools and tests.
func LoadTable(path string) (*Table, error) {
    return NewStore(path, nil).Load()
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalHook converts the numbers produced by the JSON decoder into
// decimal.Decimal without a float round trip where possible.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
    if to != decimalType {
        return data, nil
    }
    switch v := data.(type) {
    case float64:
        return decimal.NewFromString(strconv.FormatFloat(v, 'f', -1, 64))
    case float32:
        return decimal.NewFromFloat32(v), nil
    case int:
        return decimal.NewFromInt(int64(v)), nil
    case int64:
        return decimal.NewFromInt(v), nil
    case json.Number:
        return decimal.NewFromString(v.String())
    case string:
        if v == "" {
            return decimal.Zero, nil
        }
        return decimal.NewFromString(v)
    case nil:
        return decimal.Zero, nil
    default:
        return data, nil
    }
}
