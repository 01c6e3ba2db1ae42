package insights

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse drivers hand back aggregate values in backend-native forms:
// pgx yields int64/float64/pgtype numerics, BigQuery yields *big.Rat for
// NUMERIC and civil types for DATE/DATETIME, Snowflake's driver yields
// strings for fixed-point numbers. The coercions below normalize those
// into the engine's typed values.

func coerceInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case uint64:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case float32:
		return int64(val), nil
	case *big.Rat:
		f, _ := val.Float64()
		return int64(f), nil
	case decimal.Decimal:
		return val.IntPart(), nil
	case []byte:
		return coerceInt64(string(val))
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return 0, fmt.Errorf("coerce %q to int64: %w", val, err)
		}
		return d.IntPart(), nil
	default:
		return 0, fmt.Errorf("coerce %T to int64: unsupported type", v)
	}
}

func coerceFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case *big.Rat:
		f, _ := val.Float64()
		return f, nil
	case decimal.Decimal:
		return val.InexactFloat64(), nil
	case []byte:
		return coerceFloat64(string(val))
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return 0, fmt.Errorf("coerce %q to float64: %w", val, err)
		}
		return d.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("coerce %T to float64: unsupported type", v)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func coerceTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		return parseTimeString(val)
	case []byte:
		return parseTimeString(string(val))
	case fmt.Stringer:
		// Covers BigQuery's civil.Date / civil.DateTime.
		return parseTimeString(val.String())
	default:
		return time.Time{}, fmt.Errorf("coerce %T to time: unsupported type", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("coerce %q to time: unrecognized layout", s)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
