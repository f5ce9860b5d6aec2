package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

// Placeholders the warehouse exports use for missing values
var nullMarkers = map[string]bool{
	"":       true,
	"<NA>":   true,
	"NaN":    true,
	"nan":    true,
	"NaT":    true,
	"None":   true,
	"null":   true,
	"<null>": true,
}

var accountSeparators = strings.NewReplacer(".", "", " ", "")

var dateLayouts = []string{
	period.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999-07:00",
}

// IsNull reports whether v represents a missing value
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return nullMarkers[strings.TrimSpace(x)]
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case *time.Time:
		return x == nil || x.IsZero()
	case time.Time:
		return x.IsZero()
	}
	return false
}

// String coerces v to a trimmed string
func String(v any) (string, bool) {
	if IsNull(v) {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case []byte:
		s := strings.TrimSpace(string(x))
		return s, s != ""
	case [16]byte:
		return uuid.UUID(x).String(), true
	case uuid.UUID:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case time.Time:
		return x.UTC().Format(period.DateLayout), true
	case fmt.Stringer:
		return x.String(), true
	}
	return fmt.Sprint(v), true
}

// Float coerces v to a float64. Absent values report ok=false with a nil error.
func Float(v any) (float64, bool, error) {
	if IsNull(v) {
		return 0, false, nil
	}
	switch x := v.(type) {
	case float64:
		return x, true, nil
	case float32:
		return float64(x), true, nil
	case int:
		return float64(x), true, nil
	case int16:
		return float64(x), true, nil
	case int32:
		return float64(x), true, nil
	case int64:
		return float64(x), true, nil
	case json.Number:
		f, err := x.Float64()
		return f, err == nil, err
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return f, true, nil
	}
	return 0, false, fmt.Errorf("unsupported numeric value %v (%T)", v, v)
}

// Date coerces v to a UTC calendar date
func Date(v any) (time.Time, bool, error) {
	if IsNull(v) {
		return time.Time{}, false, nil
	}
	switch x := v.(type) {
	case time.Time:
		return period.Day(x), true, nil
	case *time.Time:
		return period.Day(*x), true, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return period.Day(t), true, nil
			}
		}
		return time.Time{}, false, &model.InvalidDateError{Value: x, Reason: "unrecognised date format"}
	}
	return time.Time{}, false, &model.InvalidDateError{Value: fmt.Sprint(v), Reason: fmt.Sprintf("unsupported type %T", v)}
}

// BankAccount normalises an account number to digits only.
// Spreadsheet exports turn account numbers into floats, so integral floats are accepted.
func BankAccount(v any) (string, bool) {
	if IsNull(v) {
		return "", false
	}
	var s string
	switch x := v.(type) {
	case float64:
		if x == 0 || x != math.Trunc(x) {
			return "", false
		}
		s = strconv.FormatFloat(x, 'f', 0, 64)
	case int64:
		s = strconv.FormatInt(x, 10)
	case int:
		s = strconv.Itoa(x)
	default:
		str, ok := String(v)
		if !ok {
			return "", false
		}
		// "12345678901.0" is a float that went through a text export
		str = strings.TrimSuffix(str, ".0")
		s = accountSeparators.Replace(str)
	}
	if s == "" || s == "0" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}
