package table

import (
	"loxvm/object"
	"loxvm/value"
)

// Intern returns the canonical *object.ObjString for chars in strings,
// allocating a new one into heap and registering it if no equal-content
// string already exists (§4.3). Both the compiler (string literals,
// identifier names used as global keys) and the VM (runtime string
// concatenation) share this single implementation so that a literal typed
// twice in a program and a string built by concatenation at runtime end
// up as the same interned instance whenever their contents match.
func Intern(strings *Table, heap *value.Heap, chars string) *object.ObjString {
	hash := object.HashString(chars)
	if existing := strings.FindString(chars, hash); existing != nil {
		return existing
	}
	s := &object.ObjString{Chars: chars, Hash: hash}
	heap.Track(s)
	strings.Set(s, value.NilValue())
	return s
}
