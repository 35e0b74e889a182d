// Property keyed generator registry; falls back to the type registry
package generate

import "github.com/andrewh/botest/pkg/bo"

type propRegistration struct {
	ctor  Constructor
	param any
}

// PropRegistry maps individual properties to generator constructors and
// their parameters. Registrations take priority over the type registry.
type PropRegistry struct {
	byKey map[bo.PropKey]propRegistration
	types *Registry
}

// NewPropRegistry creates an empty registry that falls back to types, or to
// Default when types is nil.
func NewPropRegistry(types *Registry) *PropRegistry {
	return &PropRegistry{byKey: make(map[bo.PropKey]propRegistration), types: types}
}

// Types returns the fallback type registry.
func (r *PropRegistry) Types() *Registry {
	if r.types == nil {
		return Default()
	}
	return r.types
}

// Register replaces the constructor for def. param is passed to the
// constructor as Env.Param.
func (r *PropRegistry) Register(def *bo.PropDef, ctor Constructor, param any) error {
	if def == nil {
		return nilArgumentError("def")
	}
	return r.RegisterKey(def.Key(), ctor, param)
}

// RegisterKey is Register for a property identified by key.
func (r *PropRegistry) RegisterKey(key bo.PropKey, ctor Constructor, param any) error {
	if ctor == nil {
		return registrationError("constructor for property %s is nil", key)
	}
	r.byKey[key] = propRegistration{ctor: ctor, param: param}
	return nil
}

// Has reports whether key has its own registration.
func (r *PropRegistry) Has(key bo.PropKey) bool {
	_, ok := r.byKey[key]
	return ok
}

// Resolve builds the generator registered for def, or the type registry's
// generator when def has no registration of its own.
func (r *PropRegistry) Resolve(def *bo.PropDef, env Env) (Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	reg, ok := r.byKey[def.Key()]
	if !ok {
		return r.Types().Resolve(def, env)
	}
	if env.State == nil {
		env.State = r.Types().State()
	}
	if reg.param != nil {
		env.Param = reg.param
	}
	return reg.ctor(def, env)
}

// Clear drops every property registration.
func (r *PropRegistry) Clear() {
	r.byKey = make(map[bo.PropKey]propRegistration)
}
