// Construction pipeline: default object, keys, relationships, properties and
// inter-property rule repair. Each stage leaves populated values alone
package factory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/andrewh/botest/pkg/bo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxRepairPasses bounds the inter-property rule repair loop.
const maxRepairPasses = 3

// CreateDefaultBusinessObject returns a new, empty object of the class.
func (f *Factory) CreateDefaultBusinessObject() *bo.Object {
	return f.class.CreateNew()
}

// CreateValidBusinessObject builds a new valid object. It is not saved;
// related objects it needed are.
func (f *Factory) CreateValidBusinessObject(ctx context.Context) (*bo.Object, error) {
	ctx, span := f.tracer.Start(ctx, "CreateValidBusinessObject",
		trace.WithAttributes(attribute.String("botest.class", f.class.Name)),
	)
	defer span.End()

	start := time.Now()
	obj := f.CreateDefaultBusinessObject()
	if err := f.UpdateCompulsoryProperties(ctx, obj); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("botest.id", obj.ID().String()))
	f.metrics.objectCreated(ctx, f.class.Name, time.Since(start))
	f.cfg.logger.Debug("created business object",
		zap.String("class", f.class.Name),
		zap.Stringer("id", obj.ID()),
	)
	return obj, nil
}

// CreateSavedBusinessObject builds a valid object and saves it to the
// factory's repository.
func (f *Factory) CreateSavedBusinessObject(ctx context.Context) (*bo.Object, error) {
	obj, err := f.CreateValidBusinessObject(ctx)
	if err != nil {
		return nil, err
	}
	if err := obj.Validate(); err != nil {
		return nil, fmt.Errorf("saving generated %s: %w", f.class.Name, err)
	}
	if err := f.cfg.repo.Save(ctx, obj); err != nil {
		return nil, fmt.Errorf("saving generated %s: %w", f.class.Name, err)
	}
	return obj, nil
}

// CreateValidBusinessObjects builds n valid objects.
func (f *Factory) CreateValidBusinessObjects(ctx context.Context, n int) ([]*bo.Object, error) {
	objs := make([]*bo.Object, 0, n)
	for range n {
		obj, err := f.CreateValidBusinessObject(ctx)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// UpdateCompulsoryProperties runs every population stage and the rule repair
// on obj.
func (f *Factory) UpdateCompulsoryProperties(ctx context.Context, obj *bo.Object) error {
	if f.err != nil {
		return f.err
	}
	if obj == nil {
		return nilArgumentError("obj")
	}
	ctx, err := enterClass(ctx, f.class.Name)
	if err != nil {
		return err
	}
	stages := []func(context.Context, *bo.Object) error{
		f.PopulatePrimaryKey,
		f.PopulateSingleRelationships,
		f.PopulateManyRelationships,
		f.PopulateProperties,
		f.FixInterPropRules,
	}
	for _, stage := range stages {
		if err := stage(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}

// PopulatePrimaryKey sets every primary key property, pinned or generated,
// whether or not it already has a value.
func (f *Factory) PopulatePrimaryKey(ctx context.Context, obj *bo.Object) error {
	for _, def := range f.class.PrimaryKeyProps() {
		if err := f.setValue(ctx, obj, def); err != nil {
			return err
		}
	}
	return nil
}

// PopulateSingleRelationships sets pinned single relationships and fills
// empty compulsory ones with saved related objects.
func (f *Factory) PopulateSingleRelationships(ctx context.Context, obj *bo.Object) error {
	for _, rel := range f.class.Relationships() {
		if rel.Kind != bo.Single {
			continue
		}
		pinned := f.defaults.Has(rel.Name)
		if !pinned {
			if f.noSingles || !rel.Compulsory {
				continue
			}
			if _, ok := obj.RelatedID(rel.Name); ok {
				continue
			}
		}
		related, err := f.GetValidRelationshipValue(ctx, rel.Name)
		if err != nil {
			return fmt.Errorf("populating %s.%s: %w", f.class.Name, rel.Name, err)
		}
		if err := obj.SetRelated(rel.Name, related); err != nil {
			return err
		}
	}
	return nil
}

// PopulateManyRelationships attaches the related objects requested with
// WithOne, WithMany and friends. Other many relationships stay empty.
func (f *Factory) PopulateManyRelationships(ctx context.Context, obj *bo.Object) error {
	for _, rel := range f.class.Relationships() {
		req, ok := f.many[rel.Name]
		if !ok || rel.Kind != bo.Multiple {
			continue
		}
		items, err := f.manyItems(ctx, obj, rel, req)
		if err != nil {
			return fmt.Errorf("populating %s.%s: %w", f.class.Name, rel.Name, err)
		}
		existing, err := obj.Collection(rel.Name)
		if err != nil {
			return err
		}
		var missing []*bo.Object
		for _, item := range items {
			if !slices.Contains(existing, item) {
				missing = append(missing, item)
			}
		}
		if err := obj.AddToCollection(rel.Name, missing...); err != nil {
			return err
		}
	}
	return nil
}

// manyItems builds the requested related objects. Compulsory single
// relationships on the related class that point back at this class are
// pinned to the owner, so those items are built afresh for every owner.
// Items without a back reference are built on first use and shared.
func (f *Factory) manyItems(ctx context.Context, owner *bo.Object, rel *bo.RelationshipDef, req *manyRequest) ([]*bo.Object, error) {
	if req.built {
		return req.items, nil
	}
	related, err := f.cfg.factories.Resolve(rel.RelatedClass)
	if err != nil {
		return nil, err
	}
	pinned := false
	for _, back := range related.Class().Relationships() {
		if back.Kind == bo.Single && back.Compulsory && back.RelatedClass == f.class.Name {
			related.SetValueFor(back.Name, owner)
			pinned = true
		}
	}
	items, err := related.CreateValidBusinessObjects(ctx, req.count)
	if err != nil {
		return nil, err
	}
	if !pinned {
		req.items, req.built = items, true
	}
	return items, nil
}

// PopulateProperties sets pinned properties and properties with their own
// generator, and fills empty compulsory properties (every empty property
// after WithValueForAllProps). Primary keys are left to PopulatePrimaryKey.
func (f *Factory) PopulateProperties(ctx context.Context, obj *bo.Object) error {
	for _, def := range f.class.Props() {
		if f.class.IsPrimaryKeyProp(def.Name) {
			continue
		}
		if !f.overridden(def) {
			if !def.Compulsory && !f.allProps {
				continue
			}
			if obj.Value(def.Name) != nil {
				continue
			}
		}
		if err := f.setValue(ctx, obj, def); err != nil {
			return err
		}
	}
	return nil
}

// overridden reports whether def has a pinned value or a generator of its own.
func (f *Factory) overridden(def *bo.PropDef) bool {
	if f.defaults.Has(def.Name) {
		return true
	}
	if _, ok := f.generators[def.Name]; ok {
		return true
	}
	return f.cfg.props.Has(def.Key())
}

func (f *Factory) setValue(ctx context.Context, obj *bo.Object, def *bo.PropDef) error {
	v, err := f.valueFor(ctx, obj, def)
	if err != nil {
		return err
	}
	return obj.Set(def.Name, v)
}

// FixInterPropRules regenerates the right-hand property of every violated
// inter-property rule, leaving the left-hand side alone. Rules sharing a
// right-hand property are retried for a few passes; any still violated
// after that are logged and left for validation to report.
func (f *Factory) FixInterPropRules(ctx context.Context, obj *bo.Object) error {
	for range maxRepairPasses {
		broken := brokenRules(f.class, obj)
		if len(broken) == 0 {
			return nil
		}
		for _, rule := range broken {
			if err := f.repair(ctx, obj, rule); err != nil {
				return err
			}
		}
	}
	for _, rule := range brokenRules(f.class, obj) {
		f.cfg.logger.Warn("inter-property rule still violated after repair",
			zap.String("class", f.class.Name),
			zap.Stringer("rule", rule),
		)
	}
	return nil
}

func brokenRules(class *bo.ClassDef, obj *bo.Object) []*bo.InterPropRule {
	var broken []*bo.InterPropRule
	for _, rule := range class.InterPropRules() {
		if !rule.IsSatisfied(obj) {
			broken = append(broken, rule)
		}
	}
	return broken
}

func (f *Factory) repair(ctx context.Context, obj *bo.Object, rule *bo.InterPropRule) error {
	def, err := f.class.Prop(rule.Right)
	if err != nil {
		return err
	}
	gen, err := f.GetValidValueGenerator(def)
	if err != nil {
		return err
	}
	v, ok, err := boundedValue(ctx, gen, rule.Op, obj.Value(rule.Left))
	if err != nil {
		return fmt.Errorf("repairing rule %s on %s: %w", rule, f.class.Name, err)
	}
	if !ok {
		f.cfg.logger.Warn("cannot repair inter-property rule: generator has no ordering",
			zap.String("class", f.class.Name),
			zap.Stringer("rule", rule),
		)
		return nil
	}
	if err := obj.Set(rule.Right, v); err != nil {
		return err
	}
	f.metrics.ruleRepaired(ctx, f.class.Name)
	return nil
}
