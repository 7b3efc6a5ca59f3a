package value

// Heap owns every object ever allocated during a VM's lifetime (§3
// "Ownership: the VM exclusively owns the object list"). The original C
// source threads objects together with a raw next-pointer header for bulk
// reclamation; here the same "reachable from one place for O(n) bulk
// free" contract is satisfied by a plain owning slice instead, which Go's
// allocator and garbage collector are already well suited to managing (see
// DESIGN.md for the rationale).
type Heap struct {
	objects []Obj
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Track registers o as live, owned by this heap, and returns it back for
// convenient chaining at allocation sites (e.g. h.Track(object.NewString(...))).
func (h *Heap) Track(o Obj) Obj {
	h.objects = append(h.objects, o)
	return o
}

// Count returns the number of live objects, used by tests asserting the
// no-leak-teardown property.
func (h *Heap) Count() int {
	return len(h.objects)
}

// Free releases every object the heap tracks. Individual objects are never
// freed one at a time during execution (no GC in this VM); Free is called
// exactly once, at VM teardown.
func (h *Heap) Free() {
	h.objects = nil
}
