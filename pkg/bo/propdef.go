// Property definitions: name, type, compulsory flag, rules and lookup lists
// PropKey gives every definition a stable identity independent of the pointer
package bo

import (
	"fmt"
	"reflect"
	"slices"
)

// PropKey identifies a property definition by owning class and name. Two
// definitions loaded separately for the same logical property share a key.
type PropKey struct {
	Class string
	Name  string
}

func (k PropKey) String() string {
	return k.Class + "." + k.Name
}

// EnumType is a named set of allowed string members.
type EnumType struct {
	Name    string
	Members []string
}

// Has reports whether s is a member of the enum.
func (e *EnumType) Has(s string) bool {
	return slices.Contains(e.Members, s)
}

// PropDef describes one property of a class.
type PropDef struct {
	Name       string
	ClassName  string
	Type       ValueType
	Compulsory bool
	Rules      []Rule
	LookupList LookupList
	Enum       *EnumType
	// RelatedClass names the class of values for object typed properties.
	RelatedClass string
}

// Key returns the stable identity of the definition.
func (p *PropDef) Key() PropKey {
	return PropKey{Class: p.ClassName, Name: p.Name}
}

// HasLookupList reports whether the property draws its values from a lookup list.
func (p *PropDef) HasLookupList() bool {
	return p.LookupList != nil
}

// AddRule appends a rule and returns the definition for chaining.
func (p *PropDef) AddRule(r Rule) *PropDef {
	p.Rules = append(p.Rules, r)
	return p
}

// IsValueValid checks v against the property type, compulsory flag, enum
// membership and every rule. The message explains the first failure.
func (p *PropDef) IsValueValid(v any) (bool, string) {
	if v == nil {
		if p.Compulsory {
			return false, fmt.Sprintf("%q is a compulsory field and has no value", p.Name)
		}
		return true, ""
	}
	if want := p.Type.GoType(); want != nil && !reflect.TypeOf(v).AssignableTo(want) {
		return false, fmt.Sprintf("%q expects a %s value but got %T", p.Name, p.Type, v)
	}
	if p.Type == TypeEnum && p.Enum != nil {
		if s, _ := v.(string); !p.Enum.Has(s) {
			return false, fmt.Sprintf("%q: %q is not a member of %s", p.Name, s, p.Enum.Name)
		}
	}
	for _, r := range p.Rules {
		if ok, msg := r.IsValid(v); !ok {
			return false, fmt.Sprintf("%q: %s", p.Name, msg)
		}
	}
	return true, ""
}
