package typeinfo

import "reflect"

// Upcast converts v to a value of type to, following the same rules as [Type.IsAssignableFrom].
// When to is embedded in v's type, the embedded value is returned. Embedded values are reached by address when v is a pointer,
// so a listener receiving the embedded value observes the same memory as the publisher.
//
// False is returned if v can't be represented as to, including when the path to an embedded value crosses a nil pointer.
func Upcast(v any, to Type) (any, bool) {
	if v == nil || to.rt == nil {
		return nil, false
	}
	return upcast(reflect.ValueOf(v), to.rt, map[reflect.Type]bool{})
}

func upcast(rv reflect.Value, to reflect.Type, seen map[reflect.Type]bool) (any, bool) {
	if !rv.CanInterface() {
		return nil, false
	}
	from := rv.Type()
	if from == to {
		return rv.Interface(), true
	}
	if to.Kind() == reflect.Interface && from.Implements(to) {
		return rv.Interface(), true
	}
	if from.Kind() == reflect.Pointer && from.Elem() == to {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	if to.Kind() == reflect.Pointer && to.Elem() == from {
		ptr := reflect.New(from)
		ptr.Elem().Set(rv)
		return ptr.Interface(), true
	}

	base := rv
	if base.Kind() == reflect.Pointer {
		if base.IsNil() {
			return nil, false
		}
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct || seen[base.Type()] {
		return nil, false
	}
	seen[base.Type()] = true
	for i := 0; i < base.NumField(); i++ {
		field := base.Type().Field(i)
		if !field.Anonymous || !field.IsExported() {
			continue
		}
		fv := base.Field(i)
		if fv.Kind() != reflect.Pointer && base.CanAddr() {
			fv = fv.Addr()
		}
		if result, ok := upcast(fv, to, seen); ok {
			return result, true
		}
	}
	return nil, false
}
