package bitecs

import (
	"fmt"
	"unsafe"
)

// The typed layer recovers a components-as-types API over the untyped
// core: component types are bound to ids once, and thin generic
// wrappers translate batch callbacks into per-entity calls with typed
// pointers. Numbered variants follow the arity of the component list.

// Define registers component type T on the registry, deriving the
// descriptor from the type: size via unsafe.Sizeof, tag detection for
// empty structs, no deleter or relocater. T must be bound first.
func Define[T any](r *Registry, freq Frequency) error {
	return r.DefineComponent(ID[T](), metaFor[T](freq))
}

// DefineWithMeta registers component type T with an explicit
// descriptor, for components that need a Deleter or Relocater. The
// descriptor's Typesize must match the type.
func DefineWithMeta[T any](r *Registry, meta ComponentMeta) error {
	var zero T
	if meta.Typesize != unsafe.Sizeof(zero) {
		panic(fmt.Sprintf("bitecs: meta typesize %d does not match %T", meta.Typesize, zero))
	}
	return r.DefineComponent(ID[T](), meta)
}

// tagSlot backs typed pointers to zero-size components: every present
// tag shares it, which keeps "present" pointers non-nil.
var tagSlot struct{}

// itemPtr computes the i-th typed element behind a batch base pointer.
func itemPtr[T any](base unsafe.Pointer, i int) *T {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 || base == nil {
		return (*T)(unsafe.Pointer(&tagSlot))
	}
	return (*T)(unsafe.Pointer(uintptr(base) + uintptr(i)*size))
}

// Add adds component T to the entity and returns a pointer to the
// fresh, zero-valued slot. It returns (nil, false) on a stale handle, a
// full bitmask, or when the component is already present.
func Add[T any](r *Registry, ptr EntityPtr) (*T, bool) {
	p, ok := r.AddComponent(ptr, ID[T]())
	if !ok {
		return nil, false
	}
	return itemPtr[T](p, 0), true
}

// Get returns the entity's component of type T, or (nil, false) when
// the handle is stale or the component absent. For a present tag
// component the pointer is a shared zero-size dummy.
func Get[T any](r *Registry, ptr EntityPtr) (*T, bool) {
	id := ID[T]()
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		e := r.Deref(ptr)
		if e == nil {
			return nil, false
		}
		mask := e.Mask()
		if !mask.Get(id) {
			return nil, false
		}
		return itemPtr[T](nil, 0), true
	}
	p := r.GetComponent(ptr, id)
	if p == nil {
		return nil, false
	}
	return (*T)(p), true
}

// Remove removes component T from the entity. It returns false on a
// stale handle or when the component is not present.
func Remove[T any](r *Registry, ptr EntityPtr) bool {
	return r.RemoveComponent(ptr, ID[T]())
}

// Entts creates count entities with component A, invoking fn once per
// entity with its handle and component pointer.
func Entts[A any](r *Registry, count int, fn func(EntityPtr, *A)) error {
	comps := []int{ID[A]()}
	return r.CreateEntities(comps, count, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i))
		}
	})
}

// Entts2 creates count entities with components A and B.
func Entts2[A, B any](r *Registry, count int, fn func(EntityPtr, *A, *B)) error {
	comps := []int{ID[A](), ID[B]()}
	return r.CreateEntities(comps, count, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i), itemPtr[B](ptrs[1], i))
		}
	})
}

// Entts3 creates count entities with components A, B and C.
func Entts3[A, B, C any](r *Registry, count int, fn func(EntityPtr, *A, *B, *C)) error {
	comps := []int{ID[A](), ID[B](), ID[C]()}
	return r.CreateEntities(comps, count, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i), itemPtr[B](ptrs[1], i), itemPtr[C](ptrs[2], i))
		}
	})
}

// Entt creates one entity with component A initialized to a.
func Entt[A any](r *Registry, a A) (EntityPtr, error) {
	var out EntityPtr
	err := Entts(r, 1, func(ptr EntityPtr, pa *A) {
		out = ptr
		*pa = a
	})
	return out, err
}

// Entt2 creates one entity with components A and B initialized to the
// given values.
func Entt2[A, B any](r *Registry, a A, b B) (EntityPtr, error) {
	var out EntityPtr
	err := Entts2(r, 1, func(ptr EntityPtr, pa *A, pb *B) {
		out = ptr
		*pa = a
		*pb = b
	})
	return out, err
}

// Entt3 creates one entity with components A, B and C initialized to
// the given values.
func Entt3[A, B, C any](r *Registry, a A, b B, c C) (EntityPtr, error) {
	var out EntityPtr
	err := Entts3(r, 1, func(ptr EntityPtr, pa *A, pb *B, pc *C) {
		out = ptr
		*pa = a
		*pb = b
		*pc = c
	})
	return out, err
}

// EnttsFromSlices2 creates len(as) entities with components A and B
// copied element-wise from the given slices. The slices must have equal
// length.
func EnttsFromSlices2[A, B any](r *Registry, as []A, bs []B) error {
	if len(as) != len(bs) {
		panic("bitecs: EnttsFromSlices2 requires slices of equal length")
	}
	i := 0
	return Entts2(r, len(as), func(_ EntityPtr, pa *A, pb *B) {
		*pa = as[i]
		*pb = bs[i]
		i++
	})
}

// RunSystem runs fn over every entity carrying component A and all bits
// of flags, in ascending index order.
func RunSystem[A any](r *Registry, flags uint32, fn func(EntityPtr, *A)) {
	comps := []int{ID[A]()}
	r.RunSystem(comps, flags, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i))
		}
	})
}

// RunSystem2 runs fn over every entity carrying components A and B.
func RunSystem2[A, B any](r *Registry, flags uint32, fn func(EntityPtr, *A, *B)) {
	comps := []int{ID[A](), ID[B]()}
	r.RunSystem(comps, flags, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i), itemPtr[B](ptrs[1], i))
		}
	})
}

// RunSystem3 runs fn over every entity carrying components A, B and C.
func RunSystem3[A, B, C any](r *Registry, flags uint32, fn func(EntityPtr, *A, *B, *C)) {
	comps := []int{ID[A](), ID[B](), ID[C]()}
	r.RunSystem(comps, flags, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i), itemPtr[B](ptrs[1], i), itemPtr[C](ptrs[2], i))
		}
	})
}

// RunSystem4 runs fn over every entity carrying components A, B, C
// and D.
func RunSystem4[A, B, C, D any](r *Registry, flags uint32, fn func(EntityPtr, *A, *B, *C, *D)) {
	comps := []int{ID[A](), ID[B](), ID[C](), ID[D]()}
	r.RunSystem(comps, flags, func(ctx *CallbackContext, ptrs []unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			fn(ctx.Ptr(i), itemPtr[A](ptrs[0], i), itemPtr[B](ptrs[1], i), itemPtr[C](ptrs[2], i), itemPtr[D](ptrs[3], i))
		}
	})
}
