// Package arena provides a minimal bump-allocation arena with stable
// pointers, used by the tree package so that reflection nodes created during
// ingestion keep a fixed address for the lifetime of a Builder, even as
// sibling nodes are appended around them.
package arena

// Arena holds a growable collection of T, handing out pointers that remain
// valid for the lifetime of the Arena. Unlike a plain slice, appending to an
// Arena never invalidates a *T returned by an earlier New call, because each
// element is allocated individually rather than packed into a contiguous
// backing array.
//
// The zero value is an empty, ready-to-use Arena.
type Arena[T any] struct {
	items []*T
}

// New allocates value on the arena and returns a stable pointer to it.
func (a *Arena[T]) New(value T) *T {
	p := new(T)
	*p = value
	a.items = append(a.items, p)
	return p
}

// Len returns the number of values allocated so far.
func (a *Arena[T]) Len() int {
	return len(a.items)
}

// At returns the ith allocated value, in allocation order.
func (a *Arena[T]) At(i int) *T {
	return a.items[i]
}

// All returns the allocated values in allocation order. The returned slice
// must not be mutated.
func (a *Arena[T]) All() []*T {
	return a.items
}
