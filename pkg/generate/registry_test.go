// Tests for the type and property generator registries
package generate

import (
	"context"
	"testing"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	tests := map[bo.ValueType]any{
		bo.TypeString:  &StringGenerator{},
		bo.TypeInt:     &RangeGenerator[int32]{},
		bo.TypeBool:    &BoolGenerator{},
		bo.TypeGuid:    &GuidGenerator{},
		bo.TypeEnum:    &EnumGenerator{},
		bo.TypeDecimal: &RangeGenerator[decimal.Decimal]{},
	}
	for vt, want := range tests {
		gen, err := reg.Resolve(testProp(vt), Env{})
		require.NoError(t, err, vt)
		assert.IsType(t, want, gen, vt)
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	require.NoError(t, reg.Register(bo.TypeString, NewBool))
	require.NoError(t, reg.Register(bo.TypeString, NewGuid))

	gen, err := reg.Resolve(testProp(bo.TypeString), Env{})
	require.NoError(t, err)
	assert.IsType(t, &GuidGenerator{}, gen)
}

func TestRegistryRejectsNil(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	err := reg.Register(bo.TypeString, nil)
	require.ErrorIs(t, err, ErrInvalidRegistration)
	assert.Contains(t, err.Error(), `"string"`)

	require.ErrorIs(t, reg.Register("blob", NewString), ErrInvalidRegistration)
	require.ErrorIs(t, reg.RegisterLookupList(nil), ErrInvalidRegistration)

	_, err = reg.Resolve(nil, Env{})
	require.ErrorIs(t, err, ErrNilArgument)
	assert.Contains(t, err.Error(), "def")
}

func TestRegistryUnknownType(t *testing.T) {
	t.Parallel()
	_, err := NewRegistry().Resolve(testProp("blob"), Env{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDefaultRegistryReset(t *testing.T) {
	// Not parallel: mutates the process-wide registry.
	first := Default()
	assert.Same(t, first, Default())

	ResetDefault()
	second := Default()
	assert.NotSame(t, first, second)
}

func TestPropRegistryOverridesType(t *testing.T) {
	t.Parallel()
	types := NewRegistry()
	props := NewPropRegistry(types)
	ctx := context.Background()

	special := &bo.PropDef{Name: "Code", ClassName: "Item", Type: bo.TypeString}
	plain := &bo.PropDef{Name: "Label", ClassName: "Item", Type: bo.TypeString}
	require.NoError(t, props.Register(special, NewStatic, "FIXED"))
	assert.True(t, props.Has(special.Key()))
	assert.False(t, props.Has(plain.Key()))

	gen, err := props.Resolve(special, Env{})
	require.NoError(t, err)
	v, err := gen.GenerateValidValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "FIXED", v)

	gen, err = props.Resolve(plain, Env{})
	require.NoError(t, err)
	assert.IsType(t, &StringGenerator{}, gen)
}

func TestPropRegistryKeysByLogicalProperty(t *testing.T) {
	t.Parallel()
	props := NewPropRegistry(NewRegistry())
	loaded := &bo.PropDef{Name: "Code", ClassName: "Item", Type: bo.TypeString}
	reloaded := &bo.PropDef{Name: "Code", ClassName: "Item", Type: bo.TypeString}
	require.NoError(t, props.Register(loaded, NewStatic, "X"))

	gen, err := props.Resolve(reloaded, Env{})
	require.NoError(t, err)
	assert.IsType(t, &StaticGenerator{}, gen)
}

func TestPropRegistryErrorsAndClear(t *testing.T) {
	t.Parallel()
	props := NewPropRegistry(NewRegistry())
	def := testProp(bo.TypeString)

	require.ErrorIs(t, props.Register(nil, NewStatic, nil), ErrNilArgument)
	err := props.Register(def, nil, nil)
	require.ErrorIs(t, err, ErrInvalidRegistration)
	assert.Contains(t, err.Error(), "Sample.Value")

	_, err = props.Resolve(nil, Env{})
	require.ErrorIs(t, err, ErrNilArgument)

	require.NoError(t, props.Register(def, NewStatic, "A"))
	require.NoError(t, props.Register(def, NewStatic, "B"))
	gen, err := props.Resolve(def, Env{})
	require.NoError(t, err)
	v, _ := gen.GenerateValidValue(context.Background())
	assert.Equal(t, "B", v)

	props.Clear()
	assert.False(t, props.Has(def.Key()))
}
