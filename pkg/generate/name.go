// Name generator: walks a shared name list, then falls back to random text
// Built-in lists come from third_party/names and are title cased
package generate

import (
	"context"
	"fmt"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/third_party/names"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameList is an explicit list of names. Generators sharing a Name share a
// cursor, so each name is handed out once across all of them.
type NameList struct {
	Name  string
	Names []string
}

// NameGenerator returns each name of its list in order. Once the list is
// exhausted, or when it was empty to begin with, it produces random strings.
// Names that fail the property's rules are skipped.
type NameGenerator struct {
	def      *bo.PropDef
	state    *State
	list     string
	names    []string
	fallback Generator
}

// NewName builds a name generator. env.Param selects the list: nil for the
// built-in surnames, a string naming a built-in list, a []string, or a
// NameList.
func NewName(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	if def.Type != bo.TypeString {
		return nil, fmt.Errorf("%w: name generator needs a string property, %s is %s", ErrUnsupportedType, def.Key(), def.Type)
	}
	env = env.withDefaults()
	g := &NameGenerator{def: def, state: env.State}

	switch p := env.Param.(type) {
	case nil:
		if err := g.useBuiltin(names.Surnames); err != nil {
			return nil, err
		}
	case string:
		if err := g.useBuiltin(p); err != nil {
			return nil, err
		}
	case []string:
		g.list, g.names = "prop:"+def.Key().String(), p
	case NameList:
		g.list, g.names = p.Name, p.Names
	default:
		return nil, fmt.Errorf("name generator for %s: unsupported parameter %T", def.Key(), env.Param)
	}

	fallbackEnv := env
	fallbackEnv.Param = nil
	fallback, err := NewString(def, fallbackEnv)
	if err != nil {
		return nil, err
	}
	g.fallback = fallback
	return g, nil
}

func (g *NameGenerator) useBuiltin(list string) error {
	raw, err := names.Load(list)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExternalResource, err)
	}
	title := cases.Title(language.English)
	g.list = "builtin:" + list
	g.names = make([]string, len(raw))
	for i, n := range raw {
		g.names[i] = title.String(n)
	}
	return nil
}

func (g *NameGenerator) GenerateValidValue(ctx context.Context) (any, error) {
	for {
		i := g.state.nextName(g.list)
		if i >= len(g.names) {
			return g.fallback.GenerateValidValue(ctx)
		}
		if ok, _ := g.def.IsValueValid(g.names[i]); ok {
			return g.names[i], nil
		}
	}
}
