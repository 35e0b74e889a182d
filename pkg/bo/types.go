// Property value types and conversion between loose literals and typed values
// Covers the scalar kinds a business object property may declare
package bo

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueType is the declared type of a property.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeInt     ValueType = "int"
	TypeLong    ValueType = "long"
	TypeShort   ValueType = "short"
	TypeDecimal ValueType = "decimal"
	TypeDouble  ValueType = "double"
	TypeBool    ValueType = "bool"
	TypeDate    ValueType = "date"
	TypeGuid    ValueType = "guid"
	TypeEnum    ValueType = "enum"
	TypeObject  ValueType = "object"
)

// Absolute date bounds, used when a date property has no rule.
var (
	MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, time.December, 31, 23, 59, 59, 999999900, time.UTC)
)

// Absolute decimal bounds, matching a 96-bit scaled decimal.
var (
	MaxDecimal = decimal.RequireFromString("79228162514264337593543950335")
	MinDecimal = MaxDecimal.Neg()
)

var goTypes = map[ValueType]reflect.Type{
	TypeString:  reflect.TypeFor[string](),
	TypeInt:     reflect.TypeFor[int32](),
	TypeLong:    reflect.TypeFor[int64](),
	TypeShort:   reflect.TypeFor[int16](),
	TypeDecimal: reflect.TypeFor[decimal.Decimal](),
	TypeDouble:  reflect.TypeFor[float64](),
	TypeBool:    reflect.TypeFor[bool](),
	TypeDate:    reflect.TypeFor[time.Time](),
	TypeGuid:    reflect.TypeFor[uuid.UUID](),
	TypeEnum:    reflect.TypeFor[string](),
	TypeObject:  reflect.TypeFor[*Object](),
}

// GoType returns the Go type that values of t are stored as, or nil if t is
// not a known type.
func (t ValueType) GoType() reflect.Type {
	return goTypes[t]
}

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	_, ok := goTypes[t]
	return ok
}

// Ordered reports whether values of t can be compared with < and >.
func (t ValueType) Ordered() bool {
	switch t {
	case TypeInt, TypeLong, TypeShort, TypeDecimal, TypeDouble, TypeDate:
		return true
	}
	return false
}

// Coerce converts a loosely typed literal (as written in YAML or pinned by a
// test) into the stored Go type for t. Nil stays nil.
func Coerce(t ValueType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeString, TypeEnum:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows int", n)
		}
		return int32(n), nil
	case TypeLong:
		return toInt64(v)
	case TypeShort:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, fmt.Errorf("value %d overflows short", n)
		}
		return int16(n), nil
	case TypeDecimal:
		return toDecimal(v)
	case TypeDouble:
		return toFloat64(v)
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}
	case TypeDate:
		switch d := v.(type) {
		case time.Time:
			return d, nil
		case string:
			return ParseDate(d)
		}
	case TypeGuid:
		switch g := v.(type) {
		case uuid.UUID:
			return g, nil
		case string:
			return uuid.Parse(g)
		}
	case TypeObject:
		if o, ok := v.(*Object); ok {
			return o, nil
		}
	default:
		return nil, fmt.Errorf("unknown value type %q", t)
	}
	return nil, fmt.Errorf("value %v of type %T cannot be used as %s", v, v, t)
}

// ParseValue parses the textual form of a value of type t.
func ParseValue(t ValueType, s string) (any, error) {
	switch t {
	case TypeInt, TypeLong, TypeShort:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", t, s, err)
		}
		return Coerce(t, n)
	case TypeDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", t, s, err)
		}
		return f, nil
	}
	return Coerce(t, s)
}

// ParseDate accepts RFC 3339 timestamps, plain dates, and the keywords
// "today" and "now".
func ParseDate(s string) (time.Time, error) {
	switch s {
	case "today":
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "now":
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// CompareValues orders two values of the same ordered kind. Strings compare
// lexically.
func CompareValues(a, b any) (int, error) {
	switch x := a.(type) {
	case int32:
		if y, ok := b.(int32); ok {
			return cmp.Compare(x, y), nil
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y), nil
		}
	case int16:
		if y, ok := b.(int16); ok {
			return cmp.Compare(x, y), nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y), nil
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp.Compare(x, y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows long", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("value %v is not a whole number", n)
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("value %v of type %T is not an integer", v, v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case decimal.Decimal:
		return n.InexactFloat64(), nil
	case string:
		return strconv.ParseFloat(n, 64)
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("value %v of type %T is not a number", v, v)
	}
	return float64(i), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case string:
		return decimal.NewFromString(n)
	}
	i, err := toInt64(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("value %v of type %T is not a number", v, v)
	}
	return decimal.NewFromInt(i), nil
}
