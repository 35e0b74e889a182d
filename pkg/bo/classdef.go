// Class definitions, relationships and inter-property rules, plus the catalog
// that resolves class names to definitions
package bo

import (
	"fmt"
	"slices"
	"strings"
)

// RelationshipKind distinguishes single from many relationships.
type RelationshipKind string

const (
	Single   RelationshipKind = "single"
	Multiple RelationshipKind = "multiple"
)

// RelationshipDef declares a relationship from one class to another.
type RelationshipDef struct {
	Name         string
	RelatedClass string
	Kind         RelationshipKind
	Compulsory   bool
}

// ComparisonOp is the operator of an inter-property rule.
type ComparisonOp string

const (
	LessThan           ComparisonOp = "<"
	LessThanOrEqual    ComparisonOp = "<="
	EqualTo            ComparisonOp = "="
	GreaterThanOrEqual ComparisonOp = ">="
	GreaterThan        ComparisonOp = ">"
)

// ParseComparisonOp parses an operator, accepting "==" as an alias of "=".
func ParseComparisonOp(s string) (ComparisonOp, error) {
	switch op := ComparisonOp(strings.TrimSpace(s)); op {
	case LessThan, LessThanOrEqual, EqualTo, GreaterThanOrEqual, GreaterThan:
		return op, nil
	case "==":
		return EqualTo, nil
	}
	return "", fmt.Errorf("unknown comparison operator %q", s)
}

// Holds reports whether a comparison result c (as from CompareValues)
// satisfies the operator.
func (op ComparisonOp) Holds(c int) bool {
	switch op {
	case LessThan:
		return c < 0
	case LessThanOrEqual:
		return c <= 0
	case EqualTo:
		return c == 0
	case GreaterThanOrEqual:
		return c >= 0
	case GreaterThan:
		return c > 0
	}
	return false
}

// InterPropRule requires Left Op Right between two properties of one object.
type InterPropRule struct {
	RuleName string
	Left     string
	Op       ComparisonOp
	Right    string
}

func (r *InterPropRule) String() string {
	return fmt.Sprintf("%s %s %s", r.Left, r.Op, r.Right)
}

// IsSatisfied evaluates the rule against obj. A rule with a missing operand
// is satisfied; there is nothing yet to compare.
func (r *InterPropRule) IsSatisfied(obj *Object) bool {
	left, right := obj.Value(r.Left), obj.Value(r.Right)
	if left == nil || right == nil {
		return true
	}
	c, err := CompareValues(left, right)
	if err != nil {
		return false
	}
	return r.Op.Holds(c)
}

// ClassDef describes a business object class.
type ClassDef struct {
	Name string

	props          []*PropDef
	propsByName    map[string]*PropDef
	primaryKey     []string
	relationships  []*RelationshipDef
	relsByName     map[string]*RelationshipDef
	interPropRules []*InterPropRule
}

// NewClassDef creates an empty class definition.
func NewClassDef(name string) *ClassDef {
	return &ClassDef{
		Name:        name,
		propsByName: make(map[string]*PropDef),
		relsByName:  make(map[string]*RelationshipDef),
	}
}

// AddProp adds a property definition, taking ownership of it. A property
// with the same name replaces the earlier one.
func (c *ClassDef) AddProp(def *PropDef) *PropDef {
	def.ClassName = c.Name
	if old, ok := c.propsByName[def.Name]; ok {
		i := slices.Index(c.props, old)
		c.props[i] = def
	} else {
		c.props = append(c.props, def)
	}
	c.propsByName[def.Name] = def
	return def
}

// AddRelationship adds a relationship definition.
func (c *ClassDef) AddRelationship(rel *RelationshipDef) *RelationshipDef {
	if rel.Kind == "" {
		rel.Kind = Single
	}
	if _, ok := c.relsByName[rel.Name]; !ok {
		c.relationships = append(c.relationships, rel)
	} else {
		i := slices.IndexFunc(c.relationships, func(r *RelationshipDef) bool { return r.Name == rel.Name })
		c.relationships[i] = rel
	}
	c.relsByName[rel.Name] = rel
	return rel
}

// AddInterPropRule adds an inter-property rule.
func (c *ClassDef) AddInterPropRule(rule *InterPropRule) {
	c.interPropRules = append(c.interPropRules, rule)
}

// SetPrimaryKey declares which properties form the object identity.
func (c *ClassDef) SetPrimaryKey(names ...string) {
	c.primaryKey = slices.Clone(names)
}

// Props returns the property definitions in declaration order.
func (c *ClassDef) Props() []*PropDef {
	return c.props
}

// Prop returns the named property definition.
func (c *ClassDef) Prop(name string) (*PropDef, error) {
	def, ok := c.propsByName[name]
	if !ok {
		return nil, unknownPropertyError(c.Name, name)
	}
	return def, nil
}

// HasProp reports whether the class declares the named property.
func (c *ClassDef) HasProp(name string) bool {
	_, ok := c.propsByName[name]
	return ok
}

// PrimaryKeyProps returns the definitions of the primary key properties.
func (c *ClassDef) PrimaryKeyProps() []*PropDef {
	defs := make([]*PropDef, 0, len(c.primaryKey))
	for _, name := range c.primaryKey {
		if def, ok := c.propsByName[name]; ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// IsPrimaryKeyProp reports whether name is part of the primary key.
func (c *ClassDef) IsPrimaryKeyProp(name string) bool {
	return slices.Contains(c.primaryKey, name)
}

// Relationships returns the relationship definitions in declaration order.
func (c *ClassDef) Relationships() []*RelationshipDef {
	return c.relationships
}

// Relationship returns the named relationship definition.
func (c *ClassDef) Relationship(name string) (*RelationshipDef, error) {
	rel, ok := c.relsByName[name]
	if !ok {
		return nil, unknownRelationshipError(c.Name, name)
	}
	return rel, nil
}

// HasRelationship reports whether the class declares the named relationship.
func (c *ClassDef) HasRelationship(name string) bool {
	_, ok := c.relsByName[name]
	return ok
}

// InterPropRules returns the inter-property rules of the class.
func (c *ClassDef) InterPropRules() []*InterPropRule {
	return c.interPropRules
}

// CreateNew returns a new, empty instance of the class.
func (c *ClassDef) CreateNew() *Object {
	return newObject(c)
}

// ClassDefs is a catalog of class definitions keyed by name.
type ClassDefs struct {
	byName map[string]*ClassDef
	order  []string
}

// NewClassDefs creates a catalog holding defs.
func NewClassDefs(defs ...*ClassDef) *ClassDefs {
	c := &ClassDefs{byName: make(map[string]*ClassDef, len(defs))}
	for _, def := range defs {
		c.Add(def)
	}
	return c
}

// Add registers a class definition, replacing any with the same name.
func (c *ClassDefs) Add(def *ClassDef) {
	if _, ok := c.byName[def.Name]; !ok {
		c.order = append(c.order, def.Name)
	}
	c.byName[def.Name] = def
}

// Get returns the named class definition.
func (c *ClassDefs) Get(name string) (*ClassDef, error) {
	def, ok := c.byName[name]
	if !ok {
		return nil, unknownClassError(name)
	}
	return def, nil
}

// Has reports whether the catalog contains the named class.
func (c *ClassDefs) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// All returns every class definition in registration order.
func (c *ClassDefs) All() []*ClassDef {
	defs := make([]*ClassDef, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.byName[name])
	}
	return defs
}

// BindRepository points every object-backed lookup list at repo.
func (c *ClassDefs) BindRepository(repo Repository) {
	for _, def := range c.byName {
		for _, p := range def.props {
			if l, ok := p.LookupList.(*ObjectLookupList); ok {
				l.Repo = repo
			}
		}
	}
}

// Validate checks cross references between definitions: primary keys,
// relationship targets, and inter-property rule operands.
func (c *ClassDefs) Validate() error {
	for _, def := range c.All() {
		for _, pk := range def.primaryKey {
			if !def.HasProp(pk) {
				return fmt.Errorf("class %q: primary key property %q is not declared", def.Name, pk)
			}
		}
		for _, rel := range def.relationships {
			if !c.Has(rel.RelatedClass) {
				return fmt.Errorf("class %q relationship %q: related class %q is not declared", def.Name, rel.Name, rel.RelatedClass)
			}
		}
		for _, rule := range def.interPropRules {
			for _, operand := range []string{rule.Left, rule.Right} {
				if !def.HasProp(operand) {
					return fmt.Errorf("class %q rule %q: property %q is not declared", def.Name, rule, operand)
				}
			}
		}
		for _, p := range def.props {
			if !p.Type.Valid() {
				return fmt.Errorf("class %q property %q: unknown type %q", def.Name, p.Name, p.Type)
			}
			if p.Type == TypeObject && !c.Has(p.RelatedClass) {
				return fmt.Errorf("class %q property %q: related class %q is not declared", def.Name, p.Name, p.RelatedClass)
			}
		}
	}
	return nil
}
