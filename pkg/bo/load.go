// Loads class definitions from the YAML class definition format
// Relationships and inter-property rules accept scalar shorthand or mappings
package bo

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// classDefsFile is the top-level structure of a class definition file.
type classDefsFile struct {
	Enums   map[string][]string `yaml:"enums"`
	Classes map[string]rawClass `yaml:"classes"`
}

type rawClass struct {
	PrimaryKey    []string                   `yaml:"primary_key"`
	Properties    map[string]rawProp         `yaml:"properties"`
	Relationships map[string]rawRelationship `yaml:"relationships"`
	Rules         []rawInterPropRule         `yaml:"rules"`
}

type rawProp struct {
	Type       ValueType  `yaml:"type"`
	Compulsory bool       `yaml:"compulsory"`
	Enum       string     `yaml:"enum"`
	Class      string     `yaml:"class"`
	Rules      []rawRule  `yaml:"rules"`
	Lookup     *rawLookup `yaml:"lookup"`
}

type rawRule struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Min     string `yaml:"min"`
	Max     string `yaml:"max"`
	Pattern string `yaml:"pattern"`
}

type rawLookup struct {
	Items   []rawLookupItem `yaml:"items"`
	Class   string          `yaml:"class"`
	Display string          `yaml:"display"`
	Cache   string          `yaml:"cache"`
}

type rawLookupItem struct {
	Display string `yaml:"display"`
	Value   any    `yaml:"value"`
}

// rawRelationship is either a bare class name (a non-compulsory single
// relationship) or a mapping.
type rawRelationship struct {
	Class      string           `yaml:"class"`
	Kind       RelationshipKind `yaml:"kind"`
	Compulsory bool             `yaml:"compulsory"`
}

// UnmarshalYAML handles both scalar class names and relationship mappings.
func (r *rawRelationship) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		r.Class = scalar
		r.Kind = Single
		return nil
	}

	type plain rawRelationship
	var mapping plain
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("relationship: expected class name or mapping: %w", err)
	}
	*r = rawRelationship(mapping)
	if r.Kind == "" {
		r.Kind = Single
	}
	return nil
}

// rawInterPropRule is either "Left op Right" or a mapping.
type rawInterPropRule struct {
	Name  string `yaml:"name"`
	Left  string `yaml:"left"`
	Op    string `yaml:"op"`
	Right string `yaml:"right"`
}

// UnmarshalYAML handles both "Left op Right" strings and rule mappings.
func (r *rawInterPropRule) UnmarshalYAML(unmarshal func(any) error) error {
	var scalar string
	if err := unmarshal(&scalar); err == nil {
		fields := strings.Fields(scalar)
		if len(fields) != 3 {
			return fmt.Errorf("rule %q: expected \"Left op Right\"", scalar)
		}
		r.Left, r.Op, r.Right = fields[0], fields[1], fields[2]
		return nil
	}

	type plain rawInterPropRule
	var mapping plain
	if err := unmarshal(&mapping); err != nil {
		return fmt.Errorf("rule: expected \"Left op Right\" or mapping: %w", err)
	}
	*r = rawInterPropRule(mapping)
	return nil
}

// LoadClassDefs reads and parses a YAML class definition file.
func LoadClassDefs(path string) (*ClassDefs, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied definition path is expected
	if err != nil {
		return nil, fmt.Errorf("reading class definitions: %w", err)
	}
	return ParseClassDefs(data)
}

// ParseClassDefs parses YAML class definitions and checks cross references.
// Classes and properties are ordered by name for determinism.
func ParseClassDefs(data []byte) (*ClassDefs, error) {
	var f classDefsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing class definitions: %w", err)
	}

	enums := make(map[string]*EnumType, len(f.Enums))
	for name, members := range f.Enums {
		enums[name] = &EnumType{Name: name, Members: members}
	}

	defs := NewClassDefs()
	for _, className := range sortedKeys(f.Classes) {
		raw := f.Classes[className]
		def := NewClassDef(className)

		for _, propName := range sortedKeys(raw.Properties) {
			p, err := buildProp(propName, raw.Properties[propName], enums)
			if err != nil {
				return nil, fmt.Errorf("class %q property %q: %w", className, propName, err)
			}
			def.AddProp(p)
		}
		def.SetPrimaryKey(raw.PrimaryKey...)

		for _, relName := range sortedKeys(raw.Relationships) {
			rr := raw.Relationships[relName]
			if rr.Kind != Single && rr.Kind != Multiple {
				return nil, fmt.Errorf("class %q relationship %q: kind must be single or multiple, got %q", className, relName, rr.Kind)
			}
			def.AddRelationship(&RelationshipDef{
				Name:         relName,
				RelatedClass: rr.Class,
				Kind:         rr.Kind,
				Compulsory:   rr.Compulsory,
			})
		}

		for _, rr := range raw.Rules {
			op, err := ParseComparisonOp(rr.Op)
			if err != nil {
				return nil, fmt.Errorf("class %q: %w", className, err)
			}
			def.AddInterPropRule(&InterPropRule{RuleName: rr.Name, Left: rr.Left, Op: op, Right: rr.Right})
		}
		defs.Add(def)
	}

	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return defs, nil
}

func buildProp(name string, raw rawProp, enums map[string]*EnumType) (*PropDef, error) {
	if raw.Type == "" {
		raw.Type = TypeString
	}
	if !raw.Type.Valid() {
		return nil, fmt.Errorf("unknown type %q", raw.Type)
	}
	p := &PropDef{
		Name:         name,
		Type:         raw.Type,
		Compulsory:   raw.Compulsory,
		RelatedClass: raw.Class,
	}
	if raw.Type == TypeEnum {
		e, ok := enums[raw.Enum]
		if !ok {
			return nil, fmt.Errorf("unknown enum %q", raw.Enum)
		}
		p.Enum = e
	}
	for i, rr := range raw.Rules {
		if rr.Name == "" {
			rr.Name = fmt.Sprintf("%s rule %d", name, i+1)
		}
		r, err := buildRule(rr, raw.Type)
		if err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, r)
	}
	if raw.Lookup != nil {
		l, err := buildLookup(raw.Lookup, raw.Type)
		if err != nil {
			return nil, err
		}
		p.LookupList = l
	}
	return p, nil
}

func buildRule(rr rawRule, propType ValueType) (Rule, error) {
	kind := ValueType(rr.Kind)
	if kind == "" {
		kind = propType
	}
	switch kind {
	case TypeString:
		minLen, err := atoiOr(rr.Min, 0)
		if err != nil {
			return nil, fmt.Errorf("rule %q: min: %w", rr.Name, err)
		}
		maxLen, err := atoiOr(rr.Max, 0)
		if err != nil {
			return nil, fmt.Errorf("rule %q: max: %w", rr.Name, err)
		}
		return NewStringRule(rr.Name, minLen, maxLen, rr.Pattern)
	case TypeInt:
		lo, hi, err := parseBounds(rr, kind, int32(math.MinInt32), int32(math.MaxInt32))
		return ruleOrErr(NewIntRule(rr.Name, lo, hi), err)
	case TypeLong:
		lo, hi, err := parseBounds(rr, kind, int64(math.MinInt64), int64(math.MaxInt64))
		return ruleOrErr(NewLongRule(rr.Name, lo, hi), err)
	case TypeShort:
		lo, hi, err := parseBounds(rr, kind, int16(math.MinInt16), int16(math.MaxInt16))
		return ruleOrErr(NewShortRule(rr.Name, lo, hi), err)
	case TypeDouble:
		lo, hi, err := parseBounds(rr, kind, -math.MaxFloat64, math.MaxFloat64)
		return ruleOrErr(NewDoubleRule(rr.Name, lo, hi), err)
	case TypeDecimal:
		lo, hi, err := parseBounds(rr, kind, MinDecimal, MaxDecimal)
		return ruleOrErr(NewDecimalRule(rr.Name, lo, hi), err)
	case TypeDate:
		lo, hi, err := parseBounds(rr, kind, MinDate, MaxDate)
		return ruleOrErr(NewDateRule(rr.Name, lo, hi), err)
	}
	return nil, fmt.Errorf("rule %q: unsupported rule kind %q", rr.Name, kind)
}

func ruleOrErr(r Rule, err error) (Rule, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

// parseBounds parses the min and max of a range rule, defaulting missing
// bounds to the absolute limits of the type.
func parseBounds[T any](rr rawRule, kind ValueType, absMin, absMax T) (T, T, error) {
	lo, hi := absMin, absMax
	if rr.Min != "" {
		v, err := ParseValue(kind, rr.Min)
		if err != nil {
			return lo, hi, fmt.Errorf("rule %q: min: %w", rr.Name, err)
		}
		lo = v.(T)
	}
	if rr.Max != "" {
		v, err := ParseValue(kind, rr.Max)
		if err != nil {
			return lo, hi, fmt.Errorf("rule %q: max: %w", rr.Name, err)
		}
		hi = v.(T)
	}
	return lo, hi, nil
}

func buildLookup(raw *rawLookup, propType ValueType) (LookupList, error) {
	if raw.Class != "" {
		l := &ObjectLookupList{ClassName: raw.Class, DisplayProp: raw.Display}
		if raw.Cache != "" {
			d, err := time.ParseDuration(raw.Cache)
			if err != nil {
				return nil, fmt.Errorf("lookup: invalid cache duration: %w", err)
			}
			l.CacheTimeout = d
		}
		return l, nil
	}
	items := make([]LookupItem, 0, len(raw.Items))
	for _, it := range raw.Items {
		v, err := Coerce(propType, it.Value)
		if err != nil {
			return nil, fmt.Errorf("lookup item %q: %w", it.Display, err)
		}
		items = append(items, LookupItem{Display: it.Display, Value: v})
	}
	return &SimpleLookupList{Items: items}, nil
}

func atoiOr(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
