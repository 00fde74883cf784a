// Package convert provides best-effort coercion of warehouse cell values and
// the display formatting used by dashboard KPIs.
package convert

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// SafeFloat converts a warehouse cell to float64. It returns def when the
// value is nil or cannot be parsed, and never panics.
func SafeFloat(value interface{}, def float64) float64 {
	v, ok := deref(value)
	if !ok {
		return def
	}

	switch t := v.(type) {
	case decimal.Decimal:
		f, _ := t.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return def
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}

	return f
}

// SafeInt converts a warehouse cell to int64. Floats are truncated toward zero;
// a non-integral string is treated as unparsable and yields def.
func SafeInt(value interface{}, def int64) int64 {
	v, ok := deref(value)
	if !ok {
		return def
	}

	switch t := v.(type) {
	case decimal.Decimal:
		return t.IntPart()
	case float32:
		return truncate(float64(t), def)
	case float64:
		return truncate(t, def)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return def
		}
		return i
	case bool:
		if t {
			return 1
		}
		return 0
	}

	i, err := cast.ToInt64E(v)
	if err != nil {
		return def
	}

	return i
}

func truncate(f float64, def int64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}

	return int64(f)
}

// deref unwraps pointers and reports whether a non-nil value remains.
func deref(value interface{}) (interface{}, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	return rv.Interface(), true
}

// FmtMoney renders a value rounded half to even with thousands separated
// by a space, e.g. 1234567 -> "1 234 567", 2.5 -> "2".
func FmtMoney(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Sprint(value)
	}

	return group(strconv.FormatFloat(math.RoundToEven(value), 'f', 0, 64))
}

// FmtCount renders an integer with space-separated thousands.
func FmtCount(value int64) string {
	return group(strconv.FormatInt(value, 10))
}

// FmtPercent renders a ratio as a percentage with one decimal.
func FmtPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// Label renders a cell as a chart axis label.
func Label(value interface{}) string {
	v, ok := deref(value)
	if !ok {
		return ""
	}

	if t, isTime := v.(time.Time); isTime {
		return t.Format("2006-01-02")
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	// ClickHouse HTTP renders DateTime as "2024-01-01 00:00:00"
	if len(s) == 19 && strings.HasSuffix(s, " 00:00:00") {
		return s[:10]
	}

	// cached tables carry times as RFC 3339 strings
	if len(s) == 20 && strings.HasSuffix(s, "T00:00:00Z") {
		return s[:10]
	}

	return s
}

func group(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}

	if digits == "0" {
		// avoid "-0" for values rounding to zero
		return "0"
	}

	n := len(digits)
	if n <= 3 {
		return sign + digits
	}

	var b strings.Builder

	b.WriteString(sign)

	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}

	for i := lead; i < n; i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}

	return b.String()
}
