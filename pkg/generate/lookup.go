// Lookup list generator: picks a random entry value from the property's list
// An empty object-backed list is seeded with one newly created object
package generate

import (
	"context"
	"fmt"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/random"
	"go.uber.org/zap"
)

// objectBacked is implemented by lookup lists that list saved objects.
type objectBacked interface {
	BackingClass() string
	Refresh()
}

// LookupListGenerator returns the value (never the display text) of a random
// lookup list entry.
type LookupListGenerator struct {
	def     *bo.PropDef
	rand    *random.Rand
	creator Creator
	logger  *zap.Logger
}

func NewLookupList(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	env = env.withDefaults()
	return &LookupListGenerator{def: def, rand: env.Rand, creator: env.Creator, logger: env.Logger}, nil
}

func (g *LookupListGenerator) GenerateValidValue(ctx context.Context) (any, error) {
	if !g.def.HasLookupList() {
		return nil, nil
	}
	items, err := g.def.LookupList.Options(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		items, err = g.seed(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[g.rand.Pick(len(items))].Value, nil
}

// seed creates one object of the backing class and re-reads the list.
func (g *LookupListGenerator) seed(ctx context.Context) ([]bo.LookupItem, error) {
	backed, ok := g.def.LookupList.(objectBacked)
	if !ok {
		return nil, nil
	}
	if g.creator == nil {
		return nil, fmt.Errorf("lookup list for %s is empty and no creator is configured", g.def.Key())
	}
	class := backed.BackingClass()
	g.logger.Debug("seeding empty lookup list", zap.String("prop", g.def.Key().String()), zap.String("class", class))
	if _, err := g.creator.CreateSavedValid(ctx, class); err != nil {
		return nil, fmt.Errorf("seeding lookup list for %s: %w", g.def.Key(), err)
	}
	backed.Refresh()
	return g.def.LookupList.Options(ctx)
}
