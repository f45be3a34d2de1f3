package set

import "slices"

// Ordered is a set that remembers the order values were first added.
// Re-adding a present value doesn't change its position.
//
// Ordered is not concurrency safe.
type Ordered[T comparable] struct {
	members Set[T]
	order   []T
}

// NewOrdered creates an [Ordered] set with the given values, in order.
func NewOrdered[T comparable](vals ...T) *Ordered[T] {
	o := &Ordered[T]{}
	for _, v := range vals {
		o.Add(v)
	}
	return o
}

// Add appends val if it's not already present, and reports whether it was added.
func (o *Ordered[T]) Add(val T) bool {
	if o.members.Has(val) {
		return false
	}
	o.members = o.members.Add(val)
	o.order = append(o.order, val)
	return true
}

// Remove deletes val, and reports whether it was present.
func (o *Ordered[T]) Remove(val T) bool {
	if !o.members.Has(val) {
		return false
	}
	o.members.Remove(val)
	o.order = slices.DeleteFunc(o.order, func(el T) bool {
		return el == val
	})
	return true
}

func (o *Ordered[T]) Has(val T) bool {
	return o.members.Has(val)
}

func (o *Ordered[T]) Len() int {
	return len(o.order)
}

// Values returns a copy of the values in insertion order.
func (o *Ordered[T]) Values() []T {
	if len(o.order) == 0 {
		return nil
	}
	return slices.Clone(o.order)
}

// Copy returns an independent [Ordered] with the same values and order.
func (o *Ordered[T]) Copy() *Ordered[T] {
	return &Ordered[T]{
		members: o.members.Copy(),
		order:   slices.Clone(o.order),
	}
}

// Clear removes all values.
func (o *Ordered[T]) Clear() {
	o.members = nil
	o.order = nil
}
