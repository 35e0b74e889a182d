// Factory builds valid business objects of one class
// Fluent configuration records pins and overrides; errors surface at build time
package factory

import (
	"context"
	"fmt"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/generate"
	"go.opentelemetry.io/otel/trace"
)

// ManyCount is the number of related objects WithMany requests.
const ManyCount = 3

type generatorOverride struct {
	ctor  generate.Constructor
	param any
}

// manyRequest is a many relationship to populate. Items supplied with
// WithRelated, or built for a class with no back reference, are attached to
// every object the factory creates.
type manyRequest struct {
	count int
	items []*bo.Object
	built bool
}

// Factory builds valid business objects of one class. Compulsory
// properties receive generated values, compulsory single relationships
// receive saved related objects, and violated inter-property rules are
// repaired. A Factory is not safe for concurrent use.
type Factory struct {
	class    *bo.ClassDef
	seed     *bo.Object
	cfg      config
	tracer   trace.Tracer
	metrics  *instruments
	defaults *DefaultValues

	generators map[string]generatorOverride
	many       map[string]*manyRequest
	noSingles  bool
	allProps   bool
	err        error
}

// New creates a factory for class. Without WithFactories, related classes
// can only be resolved when they are class itself.
func New(class *bo.ClassDef, opts ...Option) (*Factory, error) {
	if class == nil {
		return nil, nilArgumentError("class")
	}
	cfg := newConfig(opts)
	if cfg.factories == nil {
		cfg.factories = NewRegistry(bo.NewClassDefs(class), withConfig(cfg))
	}
	metrics, err := newInstruments(cfg.mp)
	if err != nil {
		return nil, fmt.Errorf("creating factory instruments: %w", err)
	}
	return &Factory{
		class:      class,
		cfg:        cfg,
		tracer:     cfg.tp.Tracer(instrumentationName),
		metrics:    metrics,
		defaults:   NewDefaultValues(),
		generators: make(map[string]generatorOverride),
		many:       make(map[string]*manyRequest),
	}, nil
}

// NewFor creates a factory for obj's class seeded with obj. Values
// generated through the factory's accessors honour obj's inter-property
// rules against its current values.
func NewFor(obj *bo.Object, opts ...Option) (*Factory, error) {
	if obj == nil {
		return nil, nilArgumentError("obj")
	}
	f, err := New(obj.Class(), opts...)
	if err != nil {
		return nil, err
	}
	f.seed = obj
	return f, nil
}

// Class returns the class the factory builds.
func (f *Factory) Class() *bo.ClassDef { return f.class }

// Object returns the seed object, or nil.
func (f *Factory) Object() *bo.Object { return f.seed }

// Defaults returns the factory's pinned values.
func (f *Factory) Defaults() *DefaultValues { return f.defaults }

// Factories returns the registry used for related objects.
func (f *Factory) Factories() *Registry { return f.cfg.factories }

// Err returns the first configuration error recorded by a fluent call.
func (f *Factory) Err() error { return f.err }

func (f *Factory) fail(err error) *Factory {
	if f.err == nil {
		f.err = err
	}
	return f
}

// SetValueFor pins v for the named property or relationship. Pinned values
// replace generated ones on every object the factory builds.
func (f *Factory) SetValueFor(name string, v any) *Factory {
	if !f.class.HasProp(name) && !f.class.HasRelationship(name) {
		_, err := f.class.Prop(name)
		return f.fail(err)
	}
	f.defaults.Register(name, v)
	return f
}

// WithValueFor is SetValueFor.
func (f *Factory) WithValueFor(name string, v any) *Factory {
	return f.SetValueFor(name, v)
}

// WithValidValueGenerator uses ctor, with param as Env.Param, to generate
// the named property. The property is always generated, even when it is not
// compulsory or already has a value.
func (f *Factory) WithValidValueGenerator(name string, ctor generate.Constructor, param any) *Factory {
	if _, err := f.class.Prop(name); err != nil {
		return f.fail(err)
	}
	if ctor == nil {
		return f.fail(bo.NewDeveloperError(generate.ErrInvalidRegistration,
			fmt.Sprintf("generator constructor for %s.%s is nil", f.class.Name, name),
			"Pass a generate.Constructor such as generate.NewIncrementalInt."))
	}
	f.generators[name] = generatorOverride{ctor: ctor, param: param}
	return f
}

// WithOne requests one related object in the named many relationship.
func (f *Factory) WithOne(rel string) *Factory { return f.WithNumberOf(rel, 1) }

// WithTwo requests two related objects in the named many relationship.
func (f *Factory) WithTwo(rel string) *Factory { return f.WithNumberOf(rel, 2) }

// WithMany requests ManyCount related objects in the named many relationship.
func (f *Factory) WithMany(rel string) *Factory { return f.WithNumberOf(rel, ManyCount) }

// WithNumberOf requests n related objects in the named many relationship.
func (f *Factory) WithNumberOf(rel string, n int) *Factory {
	if err := f.checkMany(rel); err != nil {
		return f.fail(err)
	}
	if n < 0 {
		return f.fail(fmt.Errorf("%s.%s: cannot request %d related objects", f.class.Name, rel, n))
	}
	f.many[rel] = &manyRequest{count: n}
	return f
}

// WithRelated attaches objs to the named many relationship of every object
// the factory builds.
func (f *Factory) WithRelated(rel string, objs ...*bo.Object) *Factory {
	if err := f.checkMany(rel); err != nil {
		return f.fail(err)
	}
	f.many[rel] = &manyRequest{count: len(objs), items: objs, built: true}
	return f
}

func (f *Factory) checkMany(rel string) error {
	def, err := f.class.Relationship(rel)
	if err != nil {
		return err
	}
	if def.Kind != bo.Multiple {
		return fmt.Errorf("relationship %s.%s is not a many relationship", f.class.Name, rel)
	}
	return nil
}

// WithoutSingleRelationships stops compulsory single relationships from
// being populated. Pinned relationships are still set.
func (f *Factory) WithoutSingleRelationships() *Factory {
	f.noSingles = true
	return f
}

// WithValueForAllProps generates values for every property, not only the
// compulsory ones.
func (f *Factory) WithValueForAllProps() *Factory {
	f.allProps = true
	return f
}

// GetValidValueGenerator resolves the generator for def: a generator set
// with WithValidValueGenerator first, then the property registry, then the
// type registry.
func (f *Factory) GetValidValueGenerator(def *bo.PropDef) (generate.Generator, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	env := generate.Env{
		Rand:       f.cfg.rand,
		Creator:    f.cfg.factories,
		Repository: f.cfg.repo,
		Logger:     f.cfg.logger,
	}
	if o, ok := f.generators[def.Name]; ok {
		env.State = f.cfg.types.State()
		env.Param = o.param
		return o.ctor(def, env)
	}
	return f.cfg.props.Resolve(def, env)
}

// GetValidPropValue returns a valid value for the named property, or its
// pinned value.
func (f *Factory) GetValidPropValue(ctx context.Context, name string) (any, error) {
	def, err := f.class.Prop(name)
	if err != nil {
		return nil, err
	}
	return f.GetValidPropValueFor(ctx, def)
}

// GetValidPropValueFor returns a valid value for def, or its pinned value.
func (f *Factory) GetValidPropValueFor(ctx context.Context, def *bo.PropDef) (any, error) {
	if def == nil {
		return nil, nilArgumentError("def")
	}
	return f.valueFor(ctx, f.seed, def)
}

// GetValidRelationshipValue returns the pinned object for the named single
// relationship, or a newly built and saved related object.
func (f *Factory) GetValidRelationshipValue(ctx context.Context, name string) (*bo.Object, error) {
	rel, err := f.class.Relationship(name)
	if err != nil {
		return nil, err
	}
	if v, ok := f.defaults.Resolve(name); ok {
		return pinnedObject(name, v)
	}
	return f.cfg.factories.CreateSavedValid(ctx, rel.RelatedClass)
}

func pinnedObject(name string, v any) (*bo.Object, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(*bo.Object)
	if !ok {
		return nil, typeMismatchError(name, (*bo.Object)(nil), v)
	}
	return obj, nil
}

// valueFor produces the value for def on obj. When obj already holds the
// left operand of an inter-property rule on def, the value is generated on
// the side of it the rule requires.
func (f *Factory) valueFor(ctx context.Context, obj *bo.Object, def *bo.PropDef) (any, error) {
	if v, ok := f.defaults.Resolve(def.Name); ok {
		return v, nil
	}
	gen, err := f.GetValidValueGenerator(def)
	if err != nil {
		return nil, err
	}
	v, err := f.relativeValue(ctx, obj, def, gen)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", def.Key(), err)
	}
	f.metrics.valueGenerated(ctx, f.class.Name)
	return v, nil
}

func (f *Factory) relativeValue(ctx context.Context, obj *bo.Object, def *bo.PropDef, gen generate.Generator) (any, error) {
	if obj != nil {
		for _, rule := range f.class.InterPropRules() {
			if rule.Right != def.Name {
				continue
			}
			left := obj.Value(rule.Left)
			if left == nil {
				continue
			}
			if v, ok, err := boundedValue(ctx, gen, rule.Op, left); ok || err != nil {
				return v, err
			}
		}
	}
	return gen.GenerateValidValue(ctx)
}

// boundedValue generates a right operand that satisfies "left op right".
// ok is false when gen cannot honour the operator.
func boundedValue(ctx context.Context, gen generate.Generator, op bo.ComparisonOp, left any) (any, bool, error) {
	if op == bo.EqualTo {
		return left, true, nil
	}
	og, ok := gen.(generate.OrderedGenerator)
	if !ok {
		return nil, false, nil
	}
	var (
		v   any
		err error
	)
	switch op {
	case bo.GreaterThan, bo.GreaterThanOrEqual:
		v, err = og.GenerateValidValueLessThan(ctx, left)
	case bo.LessThan, bo.LessThanOrEqual:
		v, err = og.GenerateValidValueGreaterThan(ctx, left)
	default:
		return nil, false, nil
	}
	return v, true, err
}
