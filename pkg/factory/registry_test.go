// Tests for the factory registry, relationship cycles and rule repair
// In-code class definitions cover shapes the shop fixture does not
package factory

import (
	"context"
	"testing"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/andrewh/botest/pkg/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func TestRegistryRegister(t *testing.T) {
	t.Parallel()
	reg := newShop(t)
	ctor := func(class *bo.ClassDef, opts ...Option) (*Factory, error) { return New(class, opts...) }

	require.ErrorIs(t, reg.Register("", ctor), generate.ErrNilArgument)
	require.ErrorIs(t, reg.Register("Country", nil), generate.ErrInvalidRegistration)
	require.ErrorIs(t, reg.Register("Planet", ctor), bo.ErrUnknownClass)
	require.NoError(t, reg.Register("Country", ctor))

	_, err := reg.Resolve("")
	require.ErrorIs(t, err, generate.ErrNilArgument)
	_, err = reg.Resolve("Planet")
	require.ErrorIs(t, err, bo.ErrUnknownClass)
}

func TestRegisteredFactoryBuildsRelatedObjects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := newShop(t)
	require.NoError(t, reg.Register("Country", func(class *bo.ClassDef, opts ...Option) (*Factory, error) {
		f, err := New(class, opts...)
		if err != nil {
			return nil, err
		}
		return f.SetValueFor("Name", "Atlantis"), nil
	}))

	customer, err := resolve(t, reg, "Customer").CreateValidBusinessObject(ctx)
	require.NoError(t, err)
	country, err := customer.Related("Country")
	require.NoError(t, err)
	assert.Equal(t, "Atlantis", country.Value("Name"))

	direct, err := reg.CreateSavedValid(ctx, "Country")
	require.NoError(t, err)
	assert.Equal(t, "Atlantis", direct.Value("Name"))
}

func TestRegistryBindsLookupLists(t *testing.T) {
	t.Parallel()
	reg := newShop(t)
	def, err := reg.Classes().Get("Customer")
	require.NoError(t, err)
	ref, err := def.Prop("CountryRef")
	require.NoError(t, err)
	list, ok := ref.LookupList.(*bo.ObjectLookupList)
	require.True(t, ok)
	assert.Same(t, reg.Repository(), list.Repo)
}

func cyclicClasses() *bo.ClassDefs {
	a := bo.NewClassDef("A")
	a.AddRelationship(&bo.RelationshipDef{Name: "B", RelatedClass: "B", Compulsory: true})
	b := bo.NewClassDef("B")
	b.AddRelationship(&bo.RelationshipDef{Name: "A", RelatedClass: "A", Compulsory: true})
	return bo.NewClassDefs(a, b)
}

func TestRelationshipCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := NewRegistry(cyclicClasses(), WithRegistry(generate.NewRegistry()))

	_, err := resolve(t, reg, "A").CreateValidBusinessObject(ctx)
	require.ErrorIs(t, err, ErrRelationshipCycle)
	assert.Contains(t, err.Error(), "A -> B -> A")

	saved, err := reg.Repository().Find(ctx, "B")
	require.NoError(t, err)
	assert.Empty(t, saved, "nothing on the cycle is saved")
}

func TestRelationshipCycleBrokenByPin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := NewRegistry(cyclicClasses(), WithRegistry(generate.NewRegistry()))
	defs := reg.Classes()
	aDef, _ := defs.Get("A")
	a := aDef.CreateNew()
	require.NoError(t, reg.Register("B", func(class *bo.ClassDef, opts ...Option) (*Factory, error) {
		f, err := New(class, opts...)
		if err != nil {
			return nil, err
		}
		return f.SetValueFor("A", a), nil
	}))

	b, err := resolve(t, reg, "B").CreateValidBusinessObject(ctx)
	require.NoError(t, err)
	got, err := b.Related("A")
	require.NoError(t, err)
	assert.Same(t, a, got)
}

func TestInProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	assert.Empty(t, InProgress(ctx))

	ctx, err := enterClass(ctx, "Order")
	require.NoError(t, err)
	inner, err := enterClass(ctx, "Customer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order", "Customer"}, InProgress(inner))
	assert.Equal(t, []string{"Order"}, InProgress(ctx), "entering does not mutate the outer path")

	_, err = enterClass(inner, "Order")
	require.ErrorIs(t, err, ErrRelationshipCycle)
}

func bandClass(op bo.ComparisonOp) *bo.ClassDef {
	c := bo.NewClassDef("Band")
	c.AddProp(&bo.PropDef{Name: "High", Type: bo.TypeInt, Compulsory: true}).
		AddRule(bo.NewIntRule("high range", 5, 8))
	c.AddProp(&bo.PropDef{Name: "Low", Type: bo.TypeInt, Compulsory: true}).
		AddRule(bo.NewIntRule("low range", 0, 10))
	c.AddInterPropRule(&bo.InterPropRule{Left: "High", Op: op, Right: "Low"})
	return c
}

func TestFixInterPropRulesRepairsRightSide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		f, err := New(bandClass(bo.GreaterThan), WithRegistry(generate.NewRegistry()), WithSeed(seed))
		require.NoError(t, err)

		obj := f.CreateDefaultBusinessObject()
		require.NoError(t, obj.Set("High", 5))
		require.NoError(t, obj.Set("Low", 9))
		require.NoError(t, f.FixInterPropRules(ctx, obj))

		assert.Equal(t, int32(5), obj.Value("High"), "left side is never touched")
		low := obj.Value("Low").(int32)
		assert.Less(t, low, int32(5))
		assert.GreaterOrEqual(t, low, int32(0))
	})
}

func TestGeneratedObjectsSatisfyInterPropRules(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ops := []bo.ComparisonOp{bo.GreaterThan, bo.GreaterThanOrEqual, bo.LessThan, bo.LessThanOrEqual, bo.EqualTo}
	for _, op := range ops {
		f, err := New(bandClass(op), WithRegistry(generate.NewRegistry()), WithSeed(7))
		require.NoError(t, err)
		for range 25 {
			obj, err := f.CreateValidBusinessObject(ctx)
			require.NoError(t, err)
			assert.NoError(t, obj.Validate(), "High %s Low", op)
		}
	}
}

func TestFixInterPropRulesCopiesForEquality(t *testing.T) {
	t.Parallel()
	c := bo.NewClassDef("Mirror")
	c.AddProp(&bo.PropDef{Name: "Main", Type: bo.TypeString, Compulsory: true})
	c.AddProp(&bo.PropDef{Name: "Copy", Type: bo.TypeString, Compulsory: true})
	c.AddInterPropRule(&bo.InterPropRule{Left: "Main", Op: bo.EqualTo, Right: "Copy"})

	f, err := New(c, WithRegistry(generate.NewRegistry()), WithSeed(3))
	require.NoError(t, err)
	obj := f.CreateDefaultBusinessObject()
	require.NoError(t, obj.Set("Main", "left"))
	require.NoError(t, obj.Set("Copy", "right"))
	require.NoError(t, f.FixInterPropRules(context.Background(), obj))
	assert.Equal(t, "left", obj.Value("Copy"))
}

func TestFixInterPropRulesLogsUnrepairable(t *testing.T) {
	t.Parallel()
	c := bo.NewClassDef("Label")
	c.AddProp(&bo.PropDef{Name: "Major", Type: bo.TypeString})
	c.AddProp(&bo.PropDef{Name: "Minor", Type: bo.TypeString})
	c.AddInterPropRule(&bo.InterPropRule{Left: "Major", Op: bo.LessThan, Right: "Minor"})

	core, logs := observer.New(zapcore.WarnLevel)
	f, err := New(c, WithRegistry(generate.NewRegistry()), WithLogger(zap.New(core)))
	require.NoError(t, err)
	obj := f.CreateDefaultBusinessObject()
	require.NoError(t, obj.Set("Major", "b"))
	require.NoError(t, obj.Set("Minor", "a"))

	require.NoError(t, f.FixInterPropRules(context.Background(), obj))
	assert.Equal(t, "a", obj.Value("Minor"))
	assert.Equal(t, maxRepairPasses, logs.FilterMessage("cannot repair inter-property rule: generator has no ordering").Len())
	assert.Equal(t, 1, logs.FilterMessage("inter-property rule still violated after repair").Len())
}

func TestTypedProperties(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	quantity := MustProperty[int32]("Quantity")
	assert.Equal(t, "Quantity", quantity.Name())

	f := WithValue(resolve(t, newShop(t), "Order"), quantity, 12)
	v, err := ValueFor(ctx, f, quantity)
	require.NoError(t, err)
	assert.Equal(t, int32(12), v)

	obj, err := f.CreateValidBusinessObject(ctx)
	require.NoError(t, err)
	got, err := Get(obj, quantity)
	require.NoError(t, err)
	assert.Equal(t, int32(12), got)

	notes, err := Get(obj, MustProperty[string]("Notes"))
	require.NoError(t, err)
	assert.Empty(t, notes, "unset property yields the zero value")

	_, err = Get(obj, MustProperty[string]("Quantity"))
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = ValueFor(ctx, f, MustProperty[int64]("Quantity"))
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = Get(obj, MustProperty[string]("Colour"))
	require.ErrorIs(t, err, bo.ErrUnknownProperty)
}

func TestPropertyOfRejectsExpressions(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", "a.b", "Customer.Name", "1st", "x y", "f()"} {
		_, err := PropertyOf[string](name)
		require.ErrorIs(t, err, ErrInvalidMember, "%q", name)
	}
	_, err := PropertyOf[string]("_Surname2")
	require.NoError(t, err)
	assert.Panics(t, func() { MustProperty[string]("a.b") })
}

func TestDefaultValues(t *testing.T) {
	t.Parallel()
	d := NewDefaultValues()
	d.Register("b", 1)
	d.Register("a", nil)
	d.Register("b", 2)

	v, ok := d.Resolve("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = d.Resolve("a")
	assert.True(t, ok, "explicit nil is a pin")
	assert.Nil(t, v)
	assert.Equal(t, []string{"a", "b"}, d.Names())

	d.Clear()
	assert.False(t, d.Has("a"))
	assert.Empty(t, d.Names())
}
