// JSON encoding of property values and relationship references
// Values are stored in their text form and parsed back by declared type
package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// encodeProps stores every set property as text. Object typed properties
// hold live objects and are not stored.
func encodeProps(obj *bo.Object) (string, error) {
	out := make(map[string]string)
	for name, v := range obj.Values() {
		if v == nil {
			continue
		}
		if _, ok := v.(*bo.Object); ok {
			continue
		}
		s, err := formatValue(v)
		if err != nil {
			return "", fmt.Errorf("property %s: %w", name, err)
		}
		out[name] = s
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeProps(def *bo.ClassDef, data string) (map[string]any, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	values := make(map[string]any, len(raw))
	for name, s := range raw {
		prop, err := def.Prop(name)
		if err != nil {
			return nil, err
		}
		v, err := bo.ParseValue(prop.Type, s)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

// encodeRefs stores the related object id of every set single relationship.
func encodeRefs(obj *bo.Object) (string, error) {
	out := make(map[string]string)
	for _, rel := range obj.Class().Relationships() {
		if rel.Kind != bo.Single {
			continue
		}
		if id, ok := obj.RelatedID(rel.Name); ok {
			out[rel.Name] = id.String()
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRefs(data string) (map[string]uuid.UUID, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("decoding relationships: %w", err)
	}
	refs := make(map[string]uuid.UUID, len(raw))
	for name, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("relationship %s: %w", name, err)
		}
		refs[name] = id
	}
	return refs, nil
}

func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case decimal.Decimal:
		return x.String(), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return x.String(), nil
	}
	return "", fmt.Errorf("cannot store value of type %T", v)
}
