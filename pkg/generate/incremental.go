// Incrementing int generator with a per-property counter held in State
package generate

import (
	"context"
	"fmt"
	"math"

	"github.com/andrewh/botest/pkg/bo"
)

// IncrementalGenerator returns successive integers for one property,
// starting at the rule minimum (or zero without a rule) and wrapping back to
// it after the rule maximum.
type IncrementalGenerator struct {
	key   bo.PropKey
	state *State
	lo    int64
	hi    int64
}

func NewIncrementalInt(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	if def.Type != bo.TypeInt {
		return nil, fmt.Errorf("%w: incremental generator needs an int property, %s is %s", ErrUnsupportedType, def.Key(), def.Type)
	}
	env = env.withDefaults()
	g := &IncrementalGenerator{key: def.Key(), state: env.State, lo: 0, hi: math.MaxInt32}
	if rule, ok := bo.RuleOf[*bo.RangeRule[int32]](def); ok {
		g.lo, g.hi = int64(rule.Min), int64(rule.Max)
	}
	return g, nil
}

func (g *IncrementalGenerator) GenerateValidValue(_ context.Context) (any, error) {
	return int32(g.state.nextCounter(g.key, g.lo, g.hi)), nil
}
