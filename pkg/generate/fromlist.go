// Cycling list generators over candidate values of any type
// The object form loads saved objects and creates one when none exist
package generate

import (
	"context"
	"fmt"
	"reflect"

	"github.com/andrewh/botest/pkg/bo"
)

// FromList returns candidates in order, wrapping at the end, with a cursor
// per property held in State. An empty list is filled by Load on first use,
// then by a single call to Create if it is still empty.
type FromList[T any] struct {
	// Load lazily fetches candidates. Optional.
	Load func(ctx context.Context) ([]T, error)
	// Create makes one new candidate when there are none. Optional.
	Create func(ctx context.Context) (T, error)

	key    bo.PropKey
	state  *State
	items  []T
	loaded bool
}

// NewFromList builds a list generator over items. The property's value type
// must be assignable to T.
func NewFromList[T any](def *bo.PropDef, env Env, items []T) (*FromList[T], error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	want := reflect.TypeFor[T]()
	if got := def.Type.GoType(); got == nil || !got.AssignableTo(want) {
		return nil, fmt.Errorf("%w: %s holds %s values, list holds %v", ErrUnsupportedType, def.Key(), def.Type, want)
	}
	env = env.withDefaults()
	return &FromList[T]{key: def.Key(), state: env.State, items: items}, nil
}

// FromListOf returns a Constructor that cycles through items.
func FromListOf[T any](items ...T) Constructor {
	return func(def *bo.PropDef, env Env) (Generator, error) {
		g, err := NewFromList(def, env, items)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// Items returns the current candidates.
func (g *FromList[T]) Items() []T {
	return g.items
}

func (g *FromList[T]) GenerateValidValue(ctx context.Context) (any, error) {
	if len(g.items) == 0 && !g.loaded && g.Load != nil {
		items, err := g.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading candidates for %s: %w", g.key, err)
		}
		g.items, g.loaded = items, true
	}
	if len(g.items) == 0 && g.Create != nil {
		item, err := g.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating candidate for %s: %w", g.key, err)
		}
		g.items = append(g.items, item)
	}
	if len(g.items) == 0 {
		return nil, nil
	}
	return g.items[g.state.nextListIndex(g.key, len(g.items))], nil
}

// NewFromObjectList builds a list generator over saved objects of the
// property's related class. env.Param may supply the objects directly;
// otherwise they are loaded from env.Repository, and a new saved object is
// made through env.Creator when none exist.
func NewFromObjectList(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	if def.RelatedClass == "" {
		return nil, fmt.Errorf("%w: %s has no related class", ErrUnsupportedType, def.Key())
	}
	var items []*bo.Object
	if env.Param != nil {
		objs, ok := env.Param.([]*bo.Object)
		if !ok {
			return nil, fmt.Errorf("object list for %s: unsupported parameter %T", def.Key(), env.Param)
		}
		items = objs
	}
	g, err := NewFromList(def, env, items)
	if err != nil {
		return nil, err
	}
	class := def.RelatedClass
	if repo := env.Repository; repo != nil {
		g.Load = func(ctx context.Context) ([]*bo.Object, error) {
			return repo.Find(ctx, class)
		}
	}
	if creator := env.Creator; creator != nil {
		g.Create = func(ctx context.Context) (*bo.Object, error) {
			return creator.CreateSavedValid(ctx, class)
		}
	}
	return g, nil
}
