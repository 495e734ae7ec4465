// Package registry provides the name-keyed lookup table a hub uses to
// track its channels. Names are unique and registration order is
// preserved for introspection.
package registry

import "github.com/alphadose/haxmap"

type Registry[T any] interface {
	Get(name string) (T, bool)
	// Add registers value under name. It reports false, without
	// overwriting, when the name is already taken.
	Add(name string, value T) bool
	// Names returns every registered name in registration order.
	Names() []string
	Len() int
}

type registry[T any] struct {
	values *haxmap.Map[string, T]
	names  []string
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) Add(name string, value T) bool {
	if _, ok := r.values.Get(name); ok {
		return false
	}
	r.values.Set(name, value)
	r.names = append(r.names, name)
	return true
}

func (r *registry[T]) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *registry[T]) Len() int {
	return len(r.names)
}
