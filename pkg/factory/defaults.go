// Per factory pinned values keyed by property or relationship name
package factory

import "slices"

// DefaultValues maps property and relationship names to pinned literal
// values. A registration always short-circuits generation for its name;
// the last registration for a name wins.
type DefaultValues struct {
	values map[string]any
}

// NewDefaultValues creates an empty set of pinned values.
func NewDefaultValues() *DefaultValues {
	return &DefaultValues{values: make(map[string]any)}
}

// Register pins v for name. A nil v pins an explicit nil.
func (d *DefaultValues) Register(name string, v any) {
	d.values[name] = v
}

// Resolve returns the value pinned for name.
func (d *DefaultValues) Resolve(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Has reports whether name has a pinned value.
func (d *DefaultValues) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Names returns the pinned names in sorted order.
func (d *DefaultValues) Names() []string {
	names := make([]string, 0, len(d.values))
	for n := range d.values {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Clear drops every pinned value.
func (d *DefaultValues) Clear() {
	d.values = make(map[string]any)
}
