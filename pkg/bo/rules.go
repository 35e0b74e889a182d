// Property validation rules: string length/pattern and typed min/max ranges
// Rules only judge a candidate value; generators read their bounds
package bo

import (
	"cmp"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Rule validates a single property value. A nil value always passes a rule;
// compulsory checks are made by the property definition.
type Rule interface {
	Name() string
	IsValid(v any) (bool, string)
}

// StringRule constrains the length and optionally the shape of a string.
// A MaxLength of zero or less means no upper limit.
type StringRule struct {
	RuleName  string
	MinLength int
	MaxLength int
	Pattern   string

	re *regexp.Regexp
}

// NewStringRule creates a StringRule. The pattern, if any, must compile.
func NewStringRule(name string, minLength, maxLength int, pattern string) (*StringRule, error) {
	r := &StringRule{RuleName: name, MinLength: minLength, MaxLength: maxLength, Pattern: pattern}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid pattern: %w", name, err)
		}
		r.re = re
	}
	return r, nil
}

func (r *StringRule) Name() string { return r.RuleName }

// HasMaxLength reports whether the rule sets an upper length limit.
func (r *StringRule) HasMaxLength() bool { return r.MaxLength > 0 }

func (r *StringRule) IsValid(v any) (bool, string) {
	if v == nil {
		return true, ""
	}
	s, ok := v.(string)
	if !ok {
		return false, fmt.Sprintf("rule %q: value %v is not a string", r.RuleName, v)
	}
	n := utf8.RuneCountInString(s)
	if n < r.MinLength {
		return false, fmt.Sprintf("rule %q: length %d is less than the minimum %d", r.RuleName, n, r.MinLength)
	}
	if r.HasMaxLength() && n > r.MaxLength {
		return false, fmt.Sprintf("rule %q: length %d is greater than the maximum %d", r.RuleName, n, r.MaxLength)
	}
	if r.Pattern != "" {
		if r.re == nil {
			r.re = regexp.MustCompile(r.Pattern)
		}
		if !r.re.MatchString(s) {
			return false, fmt.Sprintf("rule %q: %q does not match %s", r.RuleName, s, r.Pattern)
		}
	}
	return true, ""
}

// RangeRule is an inclusive [Min, Max] rule over an ordered value type.
// Rules built as struct literals order their values with CompareValues.
type RangeRule[T any] struct {
	RuleName string
	Min      T
	Max      T

	compare func(a, b T) int
}

func newRangeRule[T any](name string, minV, maxV T, compare func(a, b T) int) *RangeRule[T] {
	return &RangeRule[T]{RuleName: name, Min: minV, Max: maxV, compare: compare}
}

// NewIntRule creates a range rule for int properties.
func NewIntRule(name string, minV, maxV int32) *RangeRule[int32] {
	return newRangeRule(name, minV, maxV, cmp.Compare[int32])
}

// NewLongRule creates a range rule for long properties.
func NewLongRule(name string, minV, maxV int64) *RangeRule[int64] {
	return newRangeRule(name, minV, maxV, cmp.Compare[int64])
}

// NewShortRule creates a range rule for short properties.
func NewShortRule(name string, minV, maxV int16) *RangeRule[int16] {
	return newRangeRule(name, minV, maxV, cmp.Compare[int16])
}

// NewDoubleRule creates a range rule for double properties.
func NewDoubleRule(name string, minV, maxV float64) *RangeRule[float64] {
	return newRangeRule(name, minV, maxV, cmp.Compare[float64])
}

// NewDecimalRule creates a range rule for decimal properties.
func NewDecimalRule(name string, minV, maxV decimal.Decimal) *RangeRule[decimal.Decimal] {
	return newRangeRule(name, minV, maxV, func(a, b decimal.Decimal) int { return a.Cmp(b) })
}

// NewDateRule creates a range rule for date properties.
func NewDateRule(name string, minV, maxV time.Time) *RangeRule[time.Time] {
	return newRangeRule(name, minV, maxV, func(a, b time.Time) int { return a.Compare(b) })
}

func (r *RangeRule[T]) Name() string { return r.RuleName }

// Compare orders two values using the rule's comparison. Values of a type
// CompareValues cannot order compare as equal.
func (r *RangeRule[T]) Compare(a, b T) int {
	c, _ := r.order(a, b)
	return c
}

func (r *RangeRule[T]) order(a, b T) (int, error) {
	if r.compare != nil {
		return r.compare(a, b), nil
	}
	return CompareValues(a, b)
}

func (r *RangeRule[T]) IsValid(v any) (bool, string) {
	if v == nil {
		return true, ""
	}
	x, ok := v.(T)
	if !ok {
		var zero T
		return false, fmt.Sprintf("rule %q: value %v is not a %T", r.RuleName, v, zero)
	}
	below, err := r.order(x, r.Min)
	if err != nil {
		return false, fmt.Sprintf("rule %q: %v", r.RuleName, err)
	}
	if below < 0 {
		return false, fmt.Sprintf("rule %q: %v is less than the minimum %v", r.RuleName, x, r.Min)
	}
	if above, _ := r.order(x, r.Max); above > 0 {
		return false, fmt.Sprintf("rule %q: %v is greater than the maximum %v", r.RuleName, x, r.Max)
	}
	return true, ""
}

// RuleOf returns the first rule on def of concrete type R.
func RuleOf[R Rule](def *PropDef) (R, bool) {
	for _, r := range def.Rules {
		if rr, ok := r.(R); ok {
			return rr, true
		}
	}
	var zero R
	return zero, false
}
