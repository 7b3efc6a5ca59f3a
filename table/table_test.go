package table

import (
	"fmt"
	"math/rand"
	"testing"

	"loxvm/object"
	"loxvm/value"
)

func TestSetGetDelete(t *testing.T) {
	tb := New()
	key := object.NewString("x")
	if _, ok := tb.Get(key); ok {
		t.Fatalf("expected absent key before any Set")
	}
	isNew := tb.Set(key, value.NumberValue(42))
	if !isNew {
		t.Errorf("expected first Set to report a new key")
	}
	got, ok := tb.Get(key)
	if !ok || got.AsNumber() != 42 {
		t.Errorf("Get after Set = (%v, %v), want (42, true)", got, ok)
	}

	isNew = tb.Set(key, value.NumberValue(7))
	if isNew {
		t.Errorf("expected overwrite to report an existing key")
	}
	got, _ = tb.Get(key)
	if got.AsNumber() != 7 {
		t.Errorf("Get after overwrite = %v, want 7", got)
	}

	if !tb.Delete(key) {
		t.Errorf("expected Delete to succeed")
	}
	if _, ok := tb.Get(key); ok {
		t.Errorf("expected key absent after Delete")
	}
	if tb.Delete(key) {
		t.Errorf("expected second Delete to report absent")
	}
}

func TestTombstoneAllowsContinuedProbing(t *testing.T) {
	tb := New()
	// "a" and "i" hash to the same slot (4) of an 8-entry table, so "i"
	// lands one slot further on and looking it up has to probe past the
	// tombstone "a" leaves behind.
	a := object.NewString("a")
	b := object.NewString("i")
	tb.Set(a, value.NumberValue(1))
	tb.Set(b, value.NumberValue(2))
	tb.Delete(a)
	got, ok := tb.Get(b)
	if !ok || got.AsNumber() != 2 {
		t.Errorf("expected b still reachable after deleting a, got (%v, %v)", got, ok)
	}
}

func TestFindStringComparesByContent(t *testing.T) {
	tb := New()
	original := object.NewString("hello")
	tb.Set(original, value.NilValue())
	found := tb.FindString("hello", object.HashString("hello"))
	if found != original {
		t.Errorf("FindString did not return the interned instance")
	}
	if tb.FindString("nope", object.HashString("nope")) != nil {
		t.Errorf("expected nil for absent string")
	}
}

func TestRandomInsertDeletePurity(t *testing.T) {
	tb := New()
	model := map[string]float64{}
	rng := rand.New(rand.NewSource(1))
	keys := make([]*object.ObjString, 0, 64)
	for i := 0; i < 64; i++ {
		keys = append(keys, object.NewString(fmt.Sprintf("k%d", i)))
	}

	for i := 0; i < 2000; i++ {
		k := keys[rng.Intn(len(keys))]
		if rng.Intn(2) == 0 {
			v := rng.Float64()
			tb.Set(k, value.NumberValue(v))
			model[k.Chars] = v
		} else {
			tb.Delete(k)
			delete(model, k.Chars)
		}
	}

	for _, k := range keys {
		want, wantOK := model[k.Chars]
		got, gotOK := tb.Get(k)
		if gotOK != wantOK {
			t.Fatalf("key %s: Get ok = %v, want %v", k.Chars, gotOK, wantOK)
		}
		if wantOK && got.AsNumber() != want {
			t.Fatalf("key %s: Get = %v, want %v", k.Chars, got.AsNumber(), want)
		}
	}
}
