// Range bounded generators for the ordered types: int, long, short, double,
// decimal and date, each honouring the property's range rule when present
package generate

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/random"
	"github.com/shopspring/decimal"
)

// rangeKind describes how to draw values of one ordered type.
type rangeKind[T any] struct {
	absMin  T
	absMax  T
	compare func(a, b T) int
	// between draws a value inside [lo, hi].
	between func(r *random.Rand, lo, hi T) T
	// above draws a value strictly greater than lo and no more than hi.
	above func(r *random.Rand, lo, hi T) T
	// below draws a value no less than lo and strictly less than hi.
	below func(r *random.Rand, lo, hi T) T
}

var intKind = rangeKind[int32]{
	absMin:  math.MinInt32,
	absMax:  math.MaxInt32,
	compare: cmp.Compare[int32],
	between: func(r *random.Rand, lo, hi int32) int32 { return r.Int(lo, hi) },
	above: func(r *random.Rand, lo, hi int32) int32 {
		if lo == math.MaxInt32 {
			return lo
		}
		return r.Int(lo+1, hi)
	},
	below: func(r *random.Rand, lo, hi int32) int32 { return r.Int(lo, hi) },
}

var shortKind = rangeKind[int16]{
	absMin:  math.MinInt16,
	absMax:  math.MaxInt16,
	compare: cmp.Compare[int16],
	between: func(r *random.Rand, lo, hi int16) int16 { return r.Short(lo, hi) },
	above: func(r *random.Rand, lo, hi int16) int16 {
		if lo == math.MaxInt16 {
			return lo
		}
		return r.Short(lo+1, hi)
	},
	below: func(r *random.Rand, lo, hi int16) int16 { return r.Short(lo, hi) },
}

var longKind = rangeKind[int64]{
	absMin:  math.MinInt64,
	absMax:  math.MaxInt64,
	compare: cmp.Compare[int64],
	between: func(r *random.Rand, lo, hi int64) int64 { return r.Long(lo, hi) },
	above:   func(r *random.Rand, lo, hi int64) int64 { return r.Long(lo, hi) },
	below: func(r *random.Rand, lo, hi int64) int64 {
		if hi == math.MinInt64 {
			return hi
		}
		return r.Long(lo, hi-1)
	},
}

var doubleKind = rangeKind[float64]{
	absMin:  -math.MaxFloat64,
	absMax:  math.MaxFloat64,
	compare: cmp.Compare[float64],
	between: func(r *random.Rand, lo, hi float64) float64 { return r.Double(lo, hi) },
	above: func(r *random.Rand, lo, hi float64) float64 {
		v := r.Double(lo, hi)
		if v <= lo && lo < hi {
			// The offset is lost to rounding at large magnitudes.
			return math.Nextafter(lo, hi)
		}
		return v
	},
	below: func(r *random.Rand, lo, hi float64) float64 {
		v := r.DoubleBelow(lo, hi)
		if v >= hi && lo < hi {
			return math.Nextafter(hi, lo)
		}
		return v
	},
}

var decimalKind = rangeKind[decimal.Decimal]{
	absMin:  bo.MinDecimal,
	absMax:  bo.MaxDecimal,
	compare: func(a, b decimal.Decimal) int { return a.Cmp(b) },
	between: func(r *random.Rand, lo, hi decimal.Decimal) decimal.Decimal { return r.Decimal(lo, hi) },
	above:   func(r *random.Rand, lo, hi decimal.Decimal) decimal.Decimal { return r.Decimal(lo, hi) },
	below:   func(r *random.Rand, lo, hi decimal.Decimal) decimal.Decimal { return r.DecimalBelow(lo, hi) },
}

var dateKind = rangeKind[time.Time]{
	absMin:  bo.MinDate,
	absMax:  bo.MaxDate,
	compare: func(a, b time.Time) int { return a.Compare(b) },
	between: func(r *random.Rand, lo, hi time.Time) time.Time { return r.Date(lo, hi) },
	above: func(r *random.Rand, lo, hi time.Time) time.Time {
		v := r.Date(lo, hi)
		if v.After(hi) && hi.After(lo) {
			return hi
		}
		return v
	},
	below: func(r *random.Rand, lo, hi time.Time) time.Time {
		v := r.Date(lo, hi)
		if v.Before(hi) || !hi.After(lo) {
			return v
		}
		if day := hi.AddDate(0, 0, -1); !day.Before(lo) {
			return day
		}
		return hi.Add(-time.Nanosecond)
	},
}

// RangeGenerator draws ordered values inside the property's range rule, or
// inside the absolute limits of the type when the property has no rule.
type RangeGenerator[T any] struct {
	def  *bo.PropDef
	rand *random.Rand
	rule *bo.RangeRule[T]
	kind rangeKind[T]
}

func newRange[T any](def *bo.PropDef, env Env, kind rangeKind[T]) (*RangeGenerator[T], error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	if want := reflect.TypeFor[T](); def.Type.GoType() != want {
		return nil, fmt.Errorf("%w: %s is %s, generator produces %v", ErrUnsupportedType, def.Key(), def.Type, want)
	}
	env = env.withDefaults()
	g := &RangeGenerator[T]{def: def, rand: env.Rand, kind: kind}
	if rule, ok := bo.RuleOf[*bo.RangeRule[T]](def); ok {
		g.rule = rule
	}
	return g, nil
}

func rangeOf[T any](def *bo.PropDef, env Env, kind rangeKind[T]) (Generator, error) {
	g, err := newRange(def, env, kind)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// NewInt builds a generator for int properties. Values fall in [min, max).
func NewInt(def *bo.PropDef, env Env) (Generator, error) { return rangeOf(def, env, intKind) }

// NewShort builds a generator for short properties. Values fall in [min, max).
func NewShort(def *bo.PropDef, env Env) (Generator, error) { return rangeOf(def, env, shortKind) }

// NewLong builds a generator for long properties. Values fall in (min, max].
func NewLong(def *bo.PropDef, env Env) (Generator, error) { return rangeOf(def, env, longKind) }

// NewDouble builds a generator for double properties. Values fall in (min, max].
func NewDouble(def *bo.PropDef, env Env) (Generator, error) { return rangeOf(def, env, doubleKind) }

// NewDecimal builds a generator for decimal properties. Values fall in (min, max].
func NewDecimal(def *bo.PropDef, env Env) (Generator, error) { return rangeOf(def, env, decimalKind) }

// NewDate builds a generator for date properties. Values are min plus a
// whole number of days and never equal min.
func NewDate(def *bo.PropDef, env Env) (Generator, error) { return rangeOf(def, env, dateKind) }

func (g *RangeGenerator[T]) ruleLimits() (*T, *T) {
	if g.rule == nil {
		return nil, nil
	}
	return &g.rule.Min, &g.rule.Max
}

func (g *RangeGenerator[T]) GenerateValidValue(_ context.Context) (any, error) {
	ruleMin, ruleMax := g.ruleLimits()
	lo := random.MinOf(ruleMin, nil, g.kind.absMin, g.kind.compare)
	hi := random.MaxOf(ruleMax, nil, g.kind.absMax, g.kind.compare)
	return g.kind.between(g.rand, lo, hi), nil
}

// GenerateValidValueGreaterThan returns a value strictly greater than bound
// that still satisfies the property's rule where the two ranges overlap.
func (g *RangeGenerator[T]) GenerateValidValueGreaterThan(_ context.Context, bound any) (any, error) {
	x, err := g.coerceBound(bound)
	if err != nil {
		return nil, err
	}
	ruleMin, ruleMax := g.ruleLimits()
	lo := random.MinOf(ruleMin, &x, g.kind.absMin, g.kind.compare)
	hi := random.MaxOf(ruleMax, nil, g.kind.absMax, g.kind.compare)
	if g.kind.compare(lo, x) > 0 {
		return g.kind.between(g.rand, lo, hi), nil
	}
	return g.kind.above(g.rand, lo, hi), nil
}

// GenerateValidValueLessThan returns a value strictly less than bound that
// still satisfies the property's rule where the two ranges overlap.
func (g *RangeGenerator[T]) GenerateValidValueLessThan(_ context.Context, bound any) (any, error) {
	x, err := g.coerceBound(bound)
	if err != nil {
		return nil, err
	}
	ruleMin, ruleMax := g.ruleLimits()
	lo := random.MinOf(ruleMin, nil, g.kind.absMin, g.kind.compare)
	hi := random.MaxOf(ruleMax, &x, g.kind.absMax, g.kind.compare)
	if g.kind.compare(hi, x) < 0 {
		return g.kind.between(g.rand, lo, hi), nil
	}
	return g.kind.below(g.rand, lo, hi), nil
}

func (g *RangeGenerator[T]) coerceBound(bound any) (T, error) {
	if x, ok := bound.(T); ok {
		return x, nil
	}
	var zero T
	v, err := bo.Coerce(g.def.Type, bound)
	if err != nil || v == nil {
		return zero, boundTypeError(g.def, bound)
	}
	return v.(T), nil
}
