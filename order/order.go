package order

import (
	"cmp"
	"github.com/saylorsolutions/eventcast/listener"
	"slices"
)

// Comparator orders listeners for delivery.
// It returns a negative number when a should be delivered before b, a positive number when after, and zero when their
// relative order doesn't matter.
type Comparator func(a, b listener.Listener) int

// ByPriority orders listeners by [listener.PriorityOf], lowest first.
func ByPriority(a, b listener.Listener) int {
	return cmp.Compare(listener.PriorityOf(a), listener.PriorityOf(b))
}

// Reverse inverts the order of compare.
func Reverse(compare Comparator) Comparator {
	return func(a, b listener.Listener) int {
		return compare(b, a)
	}
}

// Sort orders listeners in place with compare, or [ByPriority] if compare is nil.
// Listeners that compare equal keep their relative order.
func Sort(listeners []listener.Listener, compare Comparator) {
	if compare == nil {
		compare = ByPriority
	}
	slices.SortStableFunc(listeners, compare)
}
