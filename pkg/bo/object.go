// Live business object instances: property values, related objects, status
// and aggregate validation against the owning class definition
package bo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status summarises the persistence and validity state of an object.
type Status struct {
	IsNew   bool
	IsDirty bool
	IsValid bool
}

// ValidationError lists every problem found by Object.Validate.
type ValidationError struct {
	Class    string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is not valid: %s", e.Class, strings.Join(e.Problems, "; "))
}

// Object is an instance of a ClassDef.
type Object struct {
	id          uuid.UUID
	class       *ClassDef
	values      map[string]any
	related     map[string]*Object
	relatedIDs  map[string]uuid.UUID
	collections map[string][]*Object
	isNew       bool
	isDirty     bool
}

func newObject(class *ClassDef) *Object {
	return &Object{
		id:          uuid.New(),
		class:       class,
		values:      make(map[string]any),
		related:     make(map[string]*Object),
		relatedIDs:  make(map[string]uuid.UUID),
		collections: make(map[string][]*Object),
		isNew:       true,
	}
}

// Restore rebuilds a previously saved object from stored state. The result is
// neither new nor dirty.
func Restore(class *ClassDef, id uuid.UUID, values map[string]any, relatedIDs map[string]uuid.UUID) *Object {
	obj := newObject(class)
	obj.id = id
	for k, v := range values {
		obj.values[k] = v
	}
	for k, v := range relatedIDs {
		obj.relatedIDs[k] = v
	}
	obj.isNew = false
	return obj
}

// ID returns the object identity assigned at creation.
func (o *Object) ID() uuid.UUID { return o.id }

// Class returns the class definition of the object.
func (o *Object) Class() *ClassDef { return o.class }

// Get returns the value of the named property.
func (o *Object) Get(name string) (any, error) {
	if !o.class.HasProp(name) {
		return nil, unknownPropertyError(o.class.Name, name)
	}
	return o.values[name], nil
}

// Value returns the value of the named property, or nil when the property
// is unset or unknown.
func (o *Object) Value(name string) any {
	return o.values[name]
}

// Set assigns a property value, converting loose literals to the declared type.
func (o *Object) Set(name string, v any) error {
	def, err := o.class.Prop(name)
	if err != nil {
		return err
	}
	typed, err := Coerce(def.Type, v)
	if err != nil {
		return fmt.Errorf("setting %s.%s: %w", o.class.Name, name, err)
	}
	if typed == nil {
		delete(o.values, name)
	} else {
		o.values[name] = typed
	}
	o.isDirty = true
	return nil
}

// Related returns the object at the end of a single relationship.
func (o *Object) Related(name string) (*Object, error) {
	rel, err := o.class.Relationship(name)
	if err != nil {
		return nil, err
	}
	if rel.Kind != Single {
		return nil, fmt.Errorf("relationship %s.%s is not a single relationship", o.class.Name, name)
	}
	return o.related[name], nil
}

// RelatedID returns the id of the related object on a single relationship,
// which is known even for restored objects whose relations are not loaded.
func (o *Object) RelatedID(name string) (uuid.UUID, bool) {
	if r, ok := o.related[name]; ok && r != nil {
		return r.ID(), true
	}
	id, ok := o.relatedIDs[name]
	return id, ok
}

// SetRelated sets the object at the end of a single relationship.
func (o *Object) SetRelated(name string, related *Object) error {
	rel, err := o.class.Relationship(name)
	if err != nil {
		return err
	}
	if rel.Kind != Single {
		return fmt.Errorf("relationship %s.%s is not a single relationship", o.class.Name, name)
	}
	if related != nil && related.class.Name != rel.RelatedClass {
		return fmt.Errorf("relationship %s.%s expects a %s but got a %s", o.class.Name, name, rel.RelatedClass, related.class.Name)
	}
	if related == nil {
		delete(o.related, name)
	} else {
		o.related[name] = related
	}
	delete(o.relatedIDs, name)
	o.isDirty = true
	return nil
}

// Collection returns the objects in a many relationship.
func (o *Object) Collection(name string) ([]*Object, error) {
	rel, err := o.class.Relationship(name)
	if err != nil {
		return nil, err
	}
	if rel.Kind != Multiple {
		return nil, fmt.Errorf("relationship %s.%s is not a many relationship", o.class.Name, name)
	}
	return o.collections[name], nil
}

// AddToCollection appends objects to a many relationship.
func (o *Object) AddToCollection(name string, objs ...*Object) error {
	rel, err := o.class.Relationship(name)
	if err != nil {
		return err
	}
	if rel.Kind != Multiple {
		return fmt.Errorf("relationship %s.%s is not a many relationship", o.class.Name, name)
	}
	for _, obj := range objs {
		if obj.class.Name != rel.RelatedClass {
			return fmt.Errorf("relationship %s.%s expects %s objects but got a %s", o.class.Name, name, rel.RelatedClass, obj.class.Name)
		}
	}
	o.collections[name] = append(o.collections[name], objs...)
	o.isDirty = true
	return nil
}

// Status reports whether the object is new, dirty and valid.
func (o *Object) Status() Status {
	return Status{IsNew: o.isNew, IsDirty: o.isDirty, IsValid: o.Validate() == nil}
}

// IsValid reports whether Validate finds no problems.
func (o *Object) IsValid() bool {
	return o.Validate() == nil
}

// Validate checks every property, compulsory single relationship and
// inter-property rule. It returns a *ValidationError listing all problems.
func (o *Object) Validate() error {
	var problems []string
	for _, def := range o.class.Props() {
		if ok, msg := def.IsValueValid(o.values[def.Name]); !ok {
			problems = append(problems, msg)
		}
	}
	for _, rel := range o.class.Relationships() {
		if rel.Kind != Single || !rel.Compulsory {
			continue
		}
		if _, ok := o.RelatedID(rel.Name); !ok {
			problems = append(problems, fmt.Sprintf("relationship %q is compulsory and has no related object", rel.Name))
		}
	}
	for _, rule := range o.class.InterPropRules() {
		if !rule.IsSatisfied(o) {
			problems = append(problems, fmt.Sprintf("rule %s is not satisfied", rule))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Class: o.class.Name, Problems: problems}
	}
	return nil
}

// MarkSaved records that the object has been persisted.
func (o *Object) MarkSaved() {
	o.isNew = false
	o.isDirty = false
}

// Values returns a copy of the set property values.
func (o *Object) Values() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}
