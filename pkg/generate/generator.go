// Valid value generator contracts, construction environment and shared state
// Stateful generators keep their counters and cursors in a registry-owned State
package generate

import (
	"context"
	"sync"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/random"
	"go.uber.org/zap"
)

// Generator produces a value that is valid for one property definition.
type Generator interface {
	GenerateValidValue(ctx context.Context) (any, error)
}

// OrderedGenerator additionally produces values on one side of a bound,
// intersected with the property's own rule. It is used to repair
// inter-property rules.
type OrderedGenerator interface {
	Generator
	GenerateValidValueGreaterThan(ctx context.Context, bound any) (any, error)
	GenerateValidValueLessThan(ctx context.Context, bound any) (any, error)
}

// Constructor builds a Generator for a property definition.
type Constructor func(def *bo.PropDef, env Env) (Generator, error)

// Creator builds and saves a valid business object of the named class.
// Generators that need related objects (lookup lists, object lists) use it.
type Creator interface {
	CreateSavedValid(ctx context.Context, className string) (*bo.Object, error)
}

// Env carries everything a Constructor may need beyond the definition.
type Env struct {
	Rand       *random.Rand
	Param      any
	Creator    Creator
	Repository bo.Repository
	State      *State
	Logger     *zap.Logger
}

// withDefaults fills unset fields so constructors never see nils.
func (e Env) withDefaults() Env {
	if e.Rand == nil {
		e.Rand = random.NewUnseeded()
	}
	if e.State == nil {
		e.State = NewState()
	}
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	return e
}

// State is the shared mutable state of stateful generators: incremental
// counters, list cursors and file caches. Each Registry owns one, so a fresh
// registry starts every sequence over.
type State struct {
	mu          sync.Mutex
	counters    map[bo.PropKey]int64
	listCursors map[bo.PropKey]int
	nameCursors map[string]int
	files       map[string][]string
}

// NewState creates empty generator state.
func NewState() *State {
	return &State{
		counters:    make(map[bo.PropKey]int64),
		listCursors: make(map[bo.PropKey]int),
		nameCursors: make(map[string]int),
		files:       make(map[string][]string),
	}
}

// nextCounter returns the current counter for key, starting at start for
// an unseen key, wrapping to start when it passes limit, then advances it.
func (s *State) nextCounter(key bo.PropKey, start, limit int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.counters[key]
	if !ok || cur < start || cur > limit {
		cur = start
	}
	if cur < limit {
		s.counters[key] = cur + 1
	} else {
		s.counters[key] = start
	}
	return cur
}

// nextListIndex advances the cursor for key over a list of length n.
func (s *State) nextListIndex(key bo.PropKey, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.listCursors[key] % n
	s.listCursors[key] = i + 1
	return i
}

// nextName returns the next index into the named list and advances it. The
// cursor does not wrap; callers treat an index past the end as exhausted.
func (s *State) nextName(list string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.nameCursors[list]
	s.nameCursors[list] = i + 1
	return i
}

// fileLines returns cached lines for path, loading them with load on a miss.
func (s *State) fileLines(path string, load func() ([]string, error)) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lines, ok := s.files[path]; ok {
		return lines, nil
	}
	lines, err := load()
	if err != nil {
		return nil, err
	}
	s.files[path] = lines
	return lines, nil
}
