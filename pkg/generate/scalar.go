// Generators for the unordered scalar types: string, bool, guid and enum
// Static pins a fixed value supplied as the construction parameter
package generate

import (
	"context"
	"fmt"
	"math"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/random"
)

// StringGenerator produces random text within the property's length rule.
type StringGenerator struct {
	rand *random.Rand
	rule *bo.StringRule
}

// maxPatternAttempts bounds the regex draws made for a length-limited
// pattern before the generator gives up.
const maxPatternAttempts = 100

// NewString builds a generator for string properties. A string rule with a
// pattern is delegated to the regular expression generator so the value
// matches it; when the rule also limits the length, regex values outside the
// limits are redrawn.
func NewString(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	env = env.withDefaults()
	g := &StringGenerator{rand: env.Rand}
	if rule, ok := bo.RuleOf[*bo.StringRule](def); ok {
		if rule.Pattern != "" {
			env.Param = rule.Pattern
			gen, err := NewRegex(def, env)
			if err != nil || (rule.MinLength <= 0 && !rule.HasMaxLength()) {
				return gen, err
			}
			return &patternGenerator{def: def, gen: gen}, nil
		}
		g.rule = rule
	}
	return g, nil
}

func (g *StringGenerator) GenerateValidValue(_ context.Context) (any, error) {
	if g.rule == nil {
		return g.rand.Text(), nil
	}
	maxLength := math.MaxInt
	if g.rule.HasMaxLength() {
		maxLength = g.rule.MaxLength
	}
	return g.rand.TextBetween(g.rule.MinLength, maxLength), nil
}

// patternGenerator redraws regex values until one passes the property's
// rules.
type patternGenerator struct {
	def *bo.PropDef
	gen Generator
}

func (g *patternGenerator) GenerateValidValue(ctx context.Context) (any, error) {
	var reason string
	for range maxPatternAttempts {
		v, err := g.gen.GenerateValidValue(ctx)
		if err != nil {
			return nil, err
		}
		ok, msg := g.def.IsValueValid(v)
		if ok {
			return v, nil
		}
		reason = msg
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %s", ErrNoValidValue, g.def.Key(), maxPatternAttempts, reason)
}

// BoolGenerator flips a coin.
type BoolGenerator struct {
	rand *random.Rand
}

func NewBool(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	return &BoolGenerator{rand: env.withDefaults().Rand}, nil
}

func (g *BoolGenerator) GenerateValidValue(_ context.Context) (any, error) {
	return g.rand.Bool(), nil
}

// GuidGenerator produces random version 4 uuids.
type GuidGenerator struct {
	rand *random.Rand
}

func NewGuid(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	return &GuidGenerator{rand: env.withDefaults().Rand}, nil
}

func (g *GuidGenerator) GenerateValidValue(_ context.Context) (any, error) {
	return g.rand.Guid(), nil
}

// EnumGenerator picks a member of the property's enum. An enum without
// members yields nil.
type EnumGenerator struct {
	rand    *random.Rand
	members []string
}

func NewEnum(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	g := &EnumGenerator{rand: env.withDefaults().Rand}
	if def.Enum != nil {
		g.members = def.Enum.Members
	}
	return g, nil
}

func (g *EnumGenerator) GenerateValidValue(_ context.Context) (any, error) {
	if len(g.members) == 0 {
		return nil, nil
	}
	return g.rand.EnumMember(g.members), nil
}

// StaticGenerator always returns the same value.
type StaticGenerator struct {
	value any
}

// NewStatic builds a generator that returns env.Param, coerced to the
// property type. A nil parameter yields nil values.
func NewStatic(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	v, err := bo.Coerce(def.Type, env.Param)
	if err != nil {
		return nil, fmt.Errorf("static value for %s: %w", def.Key(), err)
	}
	return &StaticGenerator{value: v}, nil
}

func (g *StaticGenerator) GenerateValidValue(_ context.Context) (any, error) {
	return g.value, nil
}
