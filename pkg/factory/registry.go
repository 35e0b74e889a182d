// Class keyed factory registry; builds related objects for generators
package factory

import (
	"context"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/generate"
)

// FactoryConstructor builds the factory used for one class. A constructor
// usually calls New and then pins values or generators for the class.
type FactoryConstructor func(class *bo.ClassDef, opts ...Option) (*Factory, error)

// Registry resolves the factory for a class by name. Classes without a
// registration get a plain Factory. Every factory it builds shares the
// registry's generators, repository, random source and telemetry.
type Registry struct {
	classes *bo.ClassDefs
	ctors   map[string]FactoryConstructor
	cfg     config
}

var _ generate.Creator = (*Registry)(nil)

// NewRegistry creates a factory registry over classes. Object backed lookup
// lists in classes are bound to the registry's repository.
func NewRegistry(classes *bo.ClassDefs, opts ...Option) *Registry {
	if classes == nil {
		classes = bo.NewClassDefs()
	}
	r := &Registry{classes: classes, ctors: make(map[string]FactoryConstructor)}
	r.cfg = newConfig(opts)
	r.cfg.factories = r
	classes.BindRepository(r.cfg.repo)
	return r
}

// Classes returns the class definitions the registry builds objects for.
func (r *Registry) Classes() *bo.ClassDefs {
	return r.classes
}

// Repository returns the repository saved objects are written to.
func (r *Registry) Repository() bo.Repository {
	return r.cfg.repo
}

// Register replaces the factory constructor for the named class.
func (r *Registry) Register(class string, ctor FactoryConstructor) error {
	if class == "" {
		return nilArgumentError("class")
	}
	if ctor == nil {
		return registrationError("factory constructor for class %q is nil", class)
	}
	if _, err := r.classes.Get(class); err != nil {
		return err
	}
	r.ctors[class] = ctor
	return nil
}

// Resolve returns a new factory for the named class.
func (r *Registry) Resolve(class string) (*Factory, error) {
	if class == "" {
		return nil, nilArgumentError("class")
	}
	def, err := r.classes.Get(class)
	if err != nil {
		return nil, err
	}
	if ctor, ok := r.ctors[class]; ok {
		return ctor(def, withConfig(r.cfg))
	}
	return New(def, withConfig(r.cfg))
}

// CreateSavedValid builds and saves a valid object of the named class.
func (r *Registry) CreateSavedValid(ctx context.Context, class string) (*bo.Object, error) {
	f, err := r.Resolve(class)
	if err != nil {
		return nil, err
	}
	return f.CreateSavedBusinessObject(ctx)
}
