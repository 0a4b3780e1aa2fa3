package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which scalar a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindDecimal
)

// String returns the kind name used in messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "datetime"
	case KindDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// Value is an immutable cell value. The zero Value is null.
//
// A Value never holds a float NaN: Float(math.NaN()) yields Null, matching
// the "not-a-number is missing" convention of tabular sources.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	d    decimal.Decimal
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float. NaN becomes Null.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: KindFloat, f: f}
}

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Time wraps a timestamp.
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }

// Decimal wraps an arbitrary-precision decimal.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, d: d} }

// FromAny converts a decoded scalar (YAML, JSON-like) into a Value.
// Unsupported types are rendered with fmt and kept as strings.
func FromAny(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint:
		return Int(int64(v))
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return Float(float64(v))
		}
		return Int(int64(v))
	case float32:
		return Float(float64(v))
	case float64:
		return Float(v)
	case time.Time:
		return Time(v)
	case decimal.Decimal:
		return Decimal(v)
	default:
		return String(fmt.Sprint(v))
	}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Interface returns the underlying Go value (nil for null).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindTime:
		return v.t
	case KindDecimal:
		return v.d
	default:
		return nil
	}
}

// String renders the canonical text form of the value. Null renders as "".
// Floats use the shortest representation that round-trips.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	case KindDecimal:
		return v.d.String()
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	case KindTime:
		return v.t.Equal(o.t)
	case KindDecimal:
		return v.d.Equal(o.d)
	}
	return false
}

// =============================================================================
// COERCIONS
// =============================================================================
// Every coercion is total: it either returns the converted scalar or an
// error describing why the value has no representation in the target kind.

// Str returns the underlying string of a string value.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Int64 coerces the value to an integer. Floats and decimals must be
// integral; strings must hold a base-10 integer (surrounding space allowed).
func (v Value) Int64() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) || v.f > math.MaxInt64 || v.f < math.MinInt64 {
			return 0, fmt.Errorf("float %s is not an integer", v.String())
		}
		return int64(v.f), nil
	case KindDecimal:
		if !v.d.IsInteger() {
			return 0, fmt.Errorf("decimal %s is not an integer", v.d.String())
		}
		return v.d.IntPart(), nil
	case KindString:
		s := strings.TrimSpace(v.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		// "12.0" is an integer written by a float-typed source.
		if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
			return d.IntPart(), nil
		}
		return 0, fmt.Errorf("%q is not an integer", v.s)
	default:
		return 0, fmt.Errorf("%s value cannot be converted to an integer", v.kind)
	}
}

// Float64 coerces the value to a float.
func (v Value) Float64() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	case KindDecimal:
		f, _ := v.d.Float64()
		return f, nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || math.IsNaN(f) {
			return 0, fmt.Errorf("%q is not a number", v.s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s value cannot be converted to a number", v.kind)
	}
}

// Decimal coerces the value to an exact decimal. Strings are parsed
// digit-for-digit; floats go through their shortest round-trip text so the
// binary representation's value is preserved, not improved.
func (v Value) Decimal() (decimal.Decimal, error) {
	switch v.kind {
	case KindDecimal:
		return v.d, nil
	case KindInt:
		return decimal.NewFromInt(v.i), nil
	case KindFloat:
		if math.IsInf(v.f, 0) {
			return decimal.Decimal{}, fmt.Errorf("%s is not a finite number", v.String())
		}
		return decimal.NewFromString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.s))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("%q is not a decimal number", v.s)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("%s value cannot be converted to a decimal", v.kind)
	}
}

// BoolValue returns the underlying boolean of a bool value.
func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == KindBool
}

// TimeValue returns the underlying timestamp of a time value.
func (v Value) TimeValue() (time.Time, bool) {
	return v.t, v.kind == KindTime
}
