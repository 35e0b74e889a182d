// Type keyed generator registry with overridable defaults
// A process-wide instance is created lazily; tests take fresh instances
package generate

import (
	"fmt"
	"sync"

	"github.com/andrewh/botest/pkg/bo"
)

// Registry maps value types to generator constructors. Properties with a
// lookup list always resolve to the lookup list constructor. The registry
// owns the State shared by the generators it resolves.
type Registry struct {
	ctors  map[bo.ValueType]Constructor
	lookup Constructor
	state  *State
}

var defaultConstructors = map[bo.ValueType]Constructor{
	bo.TypeString:  NewString,
	bo.TypeInt:     NewInt,
	bo.TypeLong:    NewLong,
	bo.TypeShort:   NewShort,
	bo.TypeDecimal: NewDecimal,
	bo.TypeDouble:  NewDouble,
	bo.TypeBool:    NewBool,
	bo.TypeDate:    NewDate,
	bo.TypeGuid:    NewGuid,
	bo.TypeEnum:    NewEnum,
	bo.TypeObject:  NewFromObjectList,
}

// NewRegistry returns a registry seeded with the default constructors and
// fresh generator state.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Clear()
	return r
}

// Clear drops every registration, restores the defaults and resets state.
func (r *Registry) Clear() {
	r.ctors = make(map[bo.ValueType]Constructor, len(defaultConstructors))
	for vt, ctor := range defaultConstructors {
		r.ctors[vt] = ctor
	}
	r.lookup = NewLookupList
	r.state = NewState()
}

// State returns the generator state owned by the registry.
func (r *Registry) State() *State {
	return r.state
}

// Register replaces the constructor for vt.
func (r *Registry) Register(vt bo.ValueType, ctor Constructor) error {
	if ctor == nil {
		return registrationError("constructor for type %q is nil", vt)
	}
	if !vt.Valid() {
		return registrationError("cannot register a generator for unknown type %q", vt)
	}
	r.ctors[vt] = ctor
	return nil
}

// RegisterLookupList replaces the constructor used for lookup list properties.
func (r *Registry) RegisterLookupList(ctor Constructor) error {
	if ctor == nil {
		return registrationError("lookup list constructor is nil")
	}
	r.lookup = ctor
	return nil
}

// Constructor returns the constructor registered for vt.
func (r *Registry) Constructor(vt bo.ValueType) (Constructor, bool) {
	ctor, ok := r.ctors[vt]
	return ctor, ok
}

// Resolve builds the generator for def. An Env without State uses the
// registry's own.
func (r *Registry) Resolve(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	if env.State == nil {
		env.State = r.state
	}
	if def.HasLookupList() {
		return r.lookup(def, env)
	}
	ctor, ok := r.ctors[def.Type]
	if !ok {
		return nil, fmt.Errorf("%w: no generator registered for %s (%s)", ErrUnsupportedType, def.Key(), def.Type)
	}
	return ctor(def, env)
}

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry; the next Default call
// creates a new one.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}
