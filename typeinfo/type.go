package typeinfo

import (
	"reflect"
	"strings"
)

// Type is a reified runtime type used to match events and event sources against listener declarations.
// The zero value is [None], which represents the absence of a type, like the type of a nil event source.
//
// Type is comparable, so two Types describing the same runtime type are equal and may be used as map keys.
type Type struct {
	rt reflect.Type
}

// None is the absence of a type.
var None = Type{}

// Of returns the runtime type of v, or [None] if v is nil.
func Of(v any) Type {
	if v == nil {
		return None
	}
	return FromReflect(reflect.TypeOf(v))
}

// For returns the [Type] of T.
// Unlike [Of], this works for interface types too.
func For[T any]() Type {
	return FromReflect(reflect.TypeFor[T]())
}

// FromReflect wraps a [reflect.Type]. A nil rt results in [None].
func FromReflect(rt reflect.Type) Type {
	return Type{rt: rt}
}

func (t Type) IsNone() bool {
	return t.rt == nil
}

// Reflect returns the underlying [reflect.Type], which is nil for [None].
func (t Type) Reflect() reflect.Type {
	return t.rt
}

// String returns the canonical form of t.
// Named types are qualified with their full package path so types with the same name in different packages don't collide.
func (t Type) String() string {
	if t.rt == nil {
		return "<none>"
	}
	return canonical(t.rt)
}

func canonical(rt reflect.Type) string {
	switch rt.Kind() {
	case reflect.Pointer:
		return "*" + canonical(rt.Elem())
	case reflect.Slice:
		if rt.Name() == "" {
			return "[]" + canonical(rt.Elem())
		}
	}
	if name := rt.Name(); len(name) > 0 && len(rt.PkgPath()) > 0 {
		return rt.PkgPath() + "." + name
	}
	return rt.String()
}

// Compare orders Types by their canonical string form, with [None] sorting first.
func (t Type) Compare(other Type) int {
	switch {
	case t.rt == other.rt:
		return 0
	case t.rt == nil:
		return -1
	case other.rt == nil:
		return 1
	}
	return strings.Compare(t.String(), other.String())
}

// IsAssignableFrom reports whether a value of type other can be treated as a value of type t.
// This is covariant over Go's notion of subtyping:
//   - A type is assignable from itself.
//   - An interface type is assignable from any type that implements it.
//   - A type is assignable from a pointer to it, and a pointer type is assignable from its element type.
//   - A type is assignable from a struct that embeds it through exported, anonymous fields, at any depth.
//
// [None] is never assignable, and nothing is assignable from [None].
func (t Type) IsAssignableFrom(other Type) bool {
	if t.rt == nil || other.rt == nil {
		return false
	}
	return assignable(t.rt, other.rt, map[reflect.Type]bool{})
}

func assignable(to, from reflect.Type, seen map[reflect.Type]bool) bool {
	if to == from {
		return true
	}
	if to.Kind() == reflect.Interface && from.Implements(to) {
		return true
	}
	if from.Kind() == reflect.Pointer && from.Elem() == to {
		return true
	}
	if to.Kind() == reflect.Pointer && to.Elem() == from {
		return true
	}
	base := from
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct || seen[base] {
		return false
	}
	seen[base] = true
	addressable := from.Kind() == reflect.Pointer
	for i := 0; i < base.NumField(); i++ {
		field := base.Field(i)
		if !field.Anonymous || !field.IsExported() {
			continue
		}
		if addressable && field.Type.Kind() != reflect.Pointer {
			if assignable(to, reflect.PointerTo(field.Type), seen) {
				return true
			}
			continue
		}
		if assignable(to, field.Type, seen) {
			return true
		}
	}
	return false
}
