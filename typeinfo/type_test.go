package typeinfo

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"slices"
	"testing"
)

type named interface {
	Name() string
}

type parent struct {
	Label string
}

func (p parent) Name() string {
	return p.Label
}

type Parent struct {
	Label string
}

func (p *Parent) Rename(label string) {
	p.Label = label
}

type Child struct {
	Parent
	Extra int
}

type GrandChild struct {
	*Child
}

type hidden struct {
	parent
}

type unrelated struct{}

func TestOf(t *testing.T) {
	assert.True(t, Of(nil).IsNone())
	assert.Equal(t, None, Of(nil))
	assert.Equal(t, For[Child](), Of(Child{}))
	assert.NotEqual(t, For[Child](), Of(&Child{}))
	assert.Nil(t, None.Reflect())
	assert.Equal(t, None, FromReflect(nil))
}

func TestType_String(t *testing.T) {
	const pkg = "github.com/saylorsolutions/eventcast/typeinfo"
	tests := map[string]struct {
		typ      Type
		expected string
	}{
		"None":      {None, "<none>"},
		"Named":     {For[Child](), pkg + ".Child"},
		"Pointer":   {For[*Child](), "*" + pkg + ".Child"},
		"Slice":     {For[[]*Parent](), "[]*" + pkg + ".Parent"},
		"Builtin":   {For[int](), "int"},
		"Interface": {For[named](), pkg + ".named"},
		"Map":       {For[map[string]int](), "map[string]int"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.typ.String())
		})
	}
}

func TestType_Compare(t *testing.T) {
	types := []Type{For[string](), None, For[Child](), For[int]()}
	slices.SortFunc(types, Type.Compare)
	assert.Equal(t, None, types[0], "None should sort first")
	assert.Equal(t, For[Child](), types[1])
	assert.Equal(t, For[int](), types[2])
	assert.Equal(t, For[string](), types[3])
	assert.Equal(t, 0, For[int]().Compare(For[int]()))
}

func TestType_IsAssignableFrom(t *testing.T) {
	tests := []struct {
		to       Type
		from     Type
		expected bool
	}{
		{For[Parent](), For[Parent](), true},
		{For[Parent](), For[*Parent](), true},
		{For[*Parent](), For[Parent](), true},
		{For[Parent](), For[Child](), true},
		{For[*Parent](), For[*Child](), true},
		{For[Parent](), For[GrandChild](), true},
		{For[*Child](), For[GrandChild](), true},
		{For[Child](), For[Parent](), false},
		{For[named](), For[parent](), true},
		{For[named](), For[*parent](), true},
		{For[named](), For[hidden](), true},
		{For[parent](), For[hidden](), false},
		{For[any](), For[unrelated](), true},
		{For[named](), For[unrelated](), false},
		{For[Parent](), For[unrelated](), false},
		{None, For[Parent](), false},
		{For[Parent](), None, false},
		{None, None, false},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s from %s", tc.to, tc.from), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.to.IsAssignableFrom(tc.from))
		})
	}
}

func TestUpcast(t *testing.T) {
	child := &Child{Parent: Parent{Label: "a"}, Extra: 1}

	t.Run("Identity", func(t *testing.T) {
		v, ok := Upcast(child, For[*Child]())
		require.True(t, ok)
		assert.Same(t, child, v)
	})

	t.Run("Embedded by address", func(t *testing.T) {
		v, ok := Upcast(child, For[*Parent]())
		require.True(t, ok)
		p, ok := v.(*Parent)
		require.True(t, ok)
		p.Rename("b")
		assert.Equal(t, "b", child.Label, "Should share memory with the original value")
	})

	t.Run("Embedded by value", func(t *testing.T) {
		v, ok := Upcast(Child{Parent: Parent{Label: "c"}}, For[Parent]())
		require.True(t, ok)
		assert.Equal(t, Parent{Label: "c"}, v)
	})

	t.Run("Deref", func(t *testing.T) {
		v, ok := Upcast(child, For[Child]())
		require.True(t, ok)
		assert.Equal(t, *child, v)
	})

	t.Run("Interface", func(t *testing.T) {
		v, ok := Upcast(hidden{parent{Label: "d"}}, For[named]())
		require.True(t, ok)
		assert.Equal(t, "d", v.(named).Name())
	})

	t.Run("Nested pointer", func(t *testing.T) {
		gc := GrandChild{Child: child}
		v, ok := Upcast(gc, For[*Parent]())
		require.True(t, ok)
		assert.Same(t, &child.Parent, v)

		_, ok = Upcast(GrandChild{}, For[*Parent]())
		assert.False(t, ok, "Nil embedded pointers can't be upcast")
	})

	t.Run("Unrelated", func(t *testing.T) {
		_, ok := Upcast(unrelated{}, For[Parent]())
		assert.False(t, ok)
		_, ok = Upcast(nil, For[Parent]())
		assert.False(t, ok)
		_, ok = Upcast(child, None)
		assert.False(t, ok)
	})
}
