package event

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/spf13/cast"
)

// coercers converts an arbitrary value to the Go type backing each FieldType.
// Conversions are lossy and never fail: unparseable input becomes the zero value.
var coercers = map[FieldType]func(interface{}) interface{}{
	TypeString:  func(v interface{}) interface{} { return toString(v) },
	TypeInteger: func(v interface{}) interface{} { return toInteger(v) },
	TypeFloat:   func(v interface{}) interface{} { return toFloat(v) },
	TypeMapping: func(v interface{}) interface{} { return toMapping(v) },
}

func coerce(fieldType FieldType, value interface{}) interface{} {
	if fn, ok := coercers[fieldType]; ok {
		return fn(value)
	}
	return value
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return ""
	}
	return cast.ToString(value)
}

func toInteger(value interface{}) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		return parseIntPrefix(v)
	case []byte:
		return parseIntPrefix(string(v))
	case json.Number:
		return parseIntPrefix(string(v))
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	}
	return cast.ToInt64(value)
}

func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case string:
		return parseFloatPrefix(v)
	case []byte:
		return parseFloatPrefix(string(v))
	case json.Number:
		return parseFloatPrefix(string(v))
	}
	return finite(cast.ToFloat64(value))
}

func toMapping(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case nil:
		return map[string]interface{}{}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, item := range v {
			m[k] = item
		}
		return m
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if m, err := cast.ToStringMapE(value); err == nil {
			return m
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return m
	case reflect.Slice, reflect.Array:
		m := make(map[string]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			m[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
		return m
	}

	return map[string]interface{}{"0": value}
}

// truncate drops the fractional part. NaN, infinities and values outside the
// int64 range become 0.
func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func parseIntPrefix(s string) int64 {
	prefix, integral := numericPrefix(s)
	if prefix == "" {
		return 0
	}
	if integral {
		// out of range values saturate at the int64 bounds
		n, _ := strconv.ParseInt(prefix, 10, 64)
		return n
	}
	f, _ := strconv.ParseFloat(prefix, 64)
	return truncate(f)
}

func parseFloatPrefix(s string) float64 {
	prefix, _ := numericPrefix(s)
	if prefix == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(prefix, 64)
	return finite(f)
}

// finite maps NaN and infinities to 0 so stored floats stay JSON-encodable.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numericPrefix returns the longest leading decimal number in s, after
// skipping leading whitespace, and whether it has no fraction or exponent.
func numericPrefix(s string) (string, bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i

	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}

	integral := true
	if i < len(s) && s[i] == '.' {
		j := i + 1
		fraction := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			fraction++
		}
		if digits+fraction > 0 {
			i = j
			digits += fraction
			integral = false
		}
	}

	if digits == 0 {
		return "", true
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exponent := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exponent++
		}
		if exponent > 0 {
			i = j
			integral = false
		}
	}

	return s[start:i], integral
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
