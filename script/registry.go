package script

import "github.com/d5/tengo/v2"

// NoRef marks a value that is not pinned.
const NoRef = -1

// Registry pins script values that the host keeps alive between callbacks:
// each object's self map and every drawable attached to it.
type Registry struct {
	next    int
	objects map[int]tengo.Object
}

func NewRegistry() *Registry {
	return &Registry{objects: map[int]tengo.Object{}}
}

// Ref pins o and returns its index.
func (r *Registry) Ref(o tengo.Object) int {
	ref := r.next
	r.next++
	r.objects[ref] = o
	return ref
}

// Unref releases a pinned value. Unknown indices and NoRef are ignored.
func (r *Registry) Unref(ref int) {
	delete(r.objects, ref)
}

func (r *Registry) Get(ref int) (tengo.Object, bool) {
	o, ok := r.objects[ref]
	return o, ok
}

// Len returns the number of pinned values.
func (r *Registry) Len() int {
	return len(r.objects)
}
