// Tests for generators that keep state between calls
// Covers incremental counters, name lists, cycling lists, lookup lists and text files
package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrewh/botest/pkg/bo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementalIntStartsAtRuleMinAndWraps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	def := testProp(bo.TypeInt, bo.NewIntRule("r", 5, 7))
	gen, err := NewIncrementalInt(def, Env{State: NewState()})
	require.NoError(t, err)

	var got []any
	for range 5 {
		v, err := gen.GenerateValidValue(ctx)
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{int32(5), int32(6), int32(7), int32(5), int32(6)}, got)
}

func TestIncrementalIntUnboundStartsAtZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	state := NewState()
	a := &bo.PropDef{Name: "A", ClassName: "Sample", Type: bo.TypeInt}
	b := &bo.PropDef{Name: "B", ClassName: "Sample", Type: bo.TypeInt}

	ga, err := NewIncrementalInt(a, Env{State: state})
	require.NoError(t, err)
	gb, err := NewIncrementalInt(b, Env{State: state})
	require.NoError(t, err)

	for want := range int32(3) {
		v, _ := ga.GenerateValidValue(ctx)
		assert.Equal(t, want, v)
	}
	v, _ := gb.GenerateValidValue(ctx)
	assert.Equal(t, int32(0), v, "independent property has its own counter")

	again, err := NewIncrementalInt(a, Env{State: state})
	require.NoError(t, err)
	v, _ = again.GenerateValidValue(ctx)
	assert.Equal(t, int32(3), v, "a new generator for the same property continues its counter")
}

func TestIncrementalIntFreshStateStartsOver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	def := testProp(bo.TypeInt)
	reg := NewRegistry()
	require.NoError(t, reg.Register(bo.TypeInt, NewIncrementalInt))

	gen, err := reg.Resolve(def, Env{})
	require.NoError(t, err)
	_, _ = gen.GenerateValidValue(ctx)
	v, _ := gen.GenerateValidValue(ctx)
	assert.Equal(t, int32(1), v)

	reg.Clear()
	require.NoError(t, reg.Register(bo.TypeInt, NewIncrementalInt))
	gen, err = reg.Resolve(def, Env{})
	require.NoError(t, err)
	v, _ = gen.GenerateValidValue(ctx)
	assert.Equal(t, int32(0), v)
}

func TestIncrementalIntRejectsNonInt(t *testing.T) {
	t.Parallel()
	_, err := NewIncrementalInt(testProp(bo.TypeString), Env{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestNameCyclesThenFallsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	state := NewState()
	list := NameList{Name: "people", Names: []string{"Ada", "Grace"}}
	def := testProp(bo.TypeString)

	first, err := NewName(def, Env{Param: list, State: state, Rand: seededEnv(1).Rand})
	require.NoError(t, err)
	second, err := NewName(def, Env{Param: list, State: state, Rand: seededEnv(2).Rand})
	require.NoError(t, err)

	v, _ := first.GenerateValidValue(ctx)
	assert.Equal(t, "Ada", v)
	v, _ = second.GenerateValidValue(ctx)
	assert.Equal(t, "Grace", v, "cursor is shared between generators of one list")

	v, err = first.GenerateValidValue(ctx)
	require.NoError(t, err)
	assert.Len(t, v, 33, "exhausted list falls back to random strings")
}

func TestNameSkipsInvalidNames(t *testing.T) {
	t.Parallel()
	rule, err := bo.NewStringRule("short", 0, 4, "")
	require.NoError(t, err)
	def := testProp(bo.TypeString, rule)
	gen, err := NewName(def, Env{Param: []string{"Bartholomew", "Ann"}})
	require.NoError(t, err)
	v, err := gen.GenerateValidValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)
}

func TestNameBuiltinListsAreTitleCased(t *testing.T) {
	t.Parallel()
	gen, err := NewName(testProp(bo.TypeString), Env{Param: "first_names"})
	require.NoError(t, err)
	v, err := gen.GenerateValidValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "James", v)

	_, err = NewName(testProp(bo.TypeString), Env{Param: "no_such_list"})
	require.ErrorIs(t, err, ErrExternalResource)
}

func TestNameRequiresStringProperty(t *testing.T) {
	t.Parallel()
	_, err := NewName(testProp(bo.TypeInt), Env{})
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFromListCycles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gen, err := FromListOf("x", "y", "z")(testProp(bo.TypeString), Env{})
	require.NoError(t, err)

	var got []any
	for range 5 {
		v, err := gen.GenerateValidValue(ctx)
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{"x", "y", "z", "x", "y"}, got)
}

func TestFromListRejectsUnassignableType(t *testing.T) {
	t.Parallel()
	_, err := NewFromList(testProp(bo.TypeInt), Env{}, []string{"a"})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = NewFromList(testProp(bo.TypeInt), Env{}, []any{1})
	require.NoError(t, err, "any accepts every property type")
}

func TestFromListLoadsThenCreates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, err := NewFromList[string](testProp(bo.TypeString), Env{}, nil)
	require.NoError(t, err)
	loads, creates := 0, 0
	g.Load = func(context.Context) ([]string, error) {
		loads++
		return nil, nil
	}
	g.Create = func(context.Context) (string, error) {
		creates++
		return "made", nil
	}

	for range 3 {
		v, err := g.GenerateValidValue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "made", v)
	}
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, creates)
	assert.Equal(t, []string{"made"}, g.Items())
}

// stubCreator records the classes it is asked to create and saves a new
// object of each into repo.
type stubCreator struct {
	defs    *bo.ClassDefs
	repo    bo.Repository
	created []string
}

func (c *stubCreator) CreateSavedValid(ctx context.Context, className string) (*bo.Object, error) {
	def, err := c.defs.Get(className)
	if err != nil {
		return nil, err
	}
	obj := def.CreateNew()
	if err := c.repo.Save(ctx, obj); err != nil {
		return nil, err
	}
	c.created = append(c.created, className)
	return obj, nil
}

func TestFromObjectListCreatesWhenEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := bo.NewMemoryRepository()
	defs := bo.NewClassDefs(bo.NewClassDef("Owner"))
	creator := &stubCreator{defs: defs, repo: repo}
	def := &bo.PropDef{Name: "Owner", ClassName: "Pet", Type: bo.TypeObject, RelatedClass: "Owner"}

	gen, err := NewFromObjectList(def, Env{Repository: repo, Creator: creator})
	require.NoError(t, err)
	v, err := gen.GenerateValidValue(ctx)
	require.NoError(t, err)
	obj, ok := v.(*bo.Object)
	require.True(t, ok)
	assert.False(t, obj.Status().IsNew)
	assert.Equal(t, []string{"Owner"}, creator.created)

	second, err := NewFromObjectList(def, Env{Repository: repo, Creator: creator})
	require.NoError(t, err)
	v, err = second.GenerateValidValue(ctx)
	require.NoError(t, err)
	assert.Same(t, obj, v, "existing saved objects are reused")
	assert.Len(t, creator.created, 1)
}

func TestLookupListPicksValues(t *testing.T) {
	t.Parallel()
	def := testProp(bo.TypeString)
	def.LookupList = &bo.SimpleLookupList{Items: []bo.LookupItem{
		{Display: "Small", Value: "S"},
		{Display: "Large", Value: "L"},
	}}
	gen, err := NewRegistry().Resolve(def, seededEnv(42))
	require.NoError(t, err)
	require.IsType(t, &LookupListGenerator{}, gen)

	for range 20 {
		v, err := gen.GenerateValidValue(context.Background())
		require.NoError(t, err)
		assert.Contains(t, []any{"S", "L"}, v)
	}
}

func TestLookupListSeedsEmptyObjectList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := bo.NewMemoryRepository()
	defs := bo.NewClassDefs(bo.NewClassDef("Country"))
	creator := &stubCreator{defs: defs, repo: repo}

	def := testProp(bo.TypeGuid)
	def.LookupList = &bo.ObjectLookupList{ClassName: "Country", Repo: repo}
	gen, err := NewLookupList(def, Env{Creator: creator})
	require.NoError(t, err)

	v, err := gen.GenerateValidValue(ctx)
	require.NoError(t, err)
	assert.IsType(t, uuid.UUID{}, v)
	assert.Equal(t, []string{"Country"}, creator.created)

	saved, err := repo.Find(ctx, "Country")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, saved[0].ID(), v)
}

func TestLookupListWithoutList(t *testing.T) {
	t.Parallel()
	gen, err := NewLookupList(testProp(bo.TypeString), Env{})
	require.NoError(t, err)
	v, err := gen.GenerateValidValue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestTextFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "cities.txt")
	require.NoError(t, os.WriteFile(path, []byte("Oslo\n\nLima\n  Perth  \n"), 0o600))

	state := NewState()
	gen, err := NewTextFile(testProp(bo.TypeString), Env{Param: path, State: state, Rand: seededEnv(4).Rand})
	require.NoError(t, err)
	for range 20 {
		v, err := gen.GenerateValidValue(context.Background())
		require.NoError(t, err)
		assert.Contains(t, []any{"Oslo", "Lima", "Perth"}, v)
	}

	require.NoError(t, os.Remove(path))
	_, err = NewTextFile(testProp(bo.TypeString), Env{Param: path, State: state})
	require.NoError(t, err, "lines are cached per path")
}

func TestTextFileParsesPropertyType(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ages.txt")
	require.NoError(t, os.WriteFile(path, []byte("41\n"), 0o600))
	gen, err := NewTextFile(testProp(bo.TypeInt), Env{Param: path})
	require.NoError(t, err)
	v, err := gen.GenerateValidValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(41), v)
}

func TestTextFileMissingOrEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := NewTextFile(testProp(bo.TypeString), Env{Param: filepath.Join(dir, "missing.txt")})
	require.ErrorIs(t, err, ErrExternalResource)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o600))
	_, err = NewTextFile(testProp(bo.TypeString), Env{Param: empty})
	require.ErrorIs(t, err, ErrExternalResource)
}
