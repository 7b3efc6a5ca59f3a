package value

import "testing"

type fakeObj struct{ s string }

func (f *fakeObj) Kind() ObjKind  { return ObjStringKind }
func (f *fakeObj) String() string { return f.s }

func TestFalsey(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NilValue(), true},
		{BoolValue(false), true},
		{BoolValue(true), false},
		{NumberValue(0), false},
		{ObjValue(&fakeObj{""}), false},
	}
	for _, tt := range tests {
		if got := tt.v.Falsey(); got != tt.want {
			t.Errorf("%v.Falsey() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEqualObjectsCompareByIdentityNotContent(t *testing.T) {
	a := ObjValue(&fakeObj{"hi"})
	b := ObjValue(&fakeObj{"hi"})
	if a.Equal(b) {
		t.Errorf("distinct objects with equal content should not be Equal")
	}
	if !a.Equal(a) {
		t.Errorf("a value should equal itself")
	}
}

func TestEqualAcrossDifferentTypes(t *testing.T) {
	if NilValue().Equal(BoolValue(false)) {
		t.Errorf("nil should not equal false")
	}
	if NumberValue(0).Equal(BoolValue(false)) {
		t.Errorf("0 should not equal false")
	}
}

func TestStringFormatsNumbersLikePrint(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{1, "1"},
		{1.5, "1.5"},
		{-3, "-3"},
	}
	for _, tt := range tests {
		if got := NumberValue(tt.n).String(); got != tt.want {
			t.Errorf("NumberValue(%v).String() = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestObjValuePanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected ObjValue(nil) to panic")
		}
	}()
	ObjValue(nil)
}

func TestIsObjKind(t *testing.T) {
	v := ObjValue(&fakeObj{"x"})
	if !v.IsObjKind(ObjStringKind) {
		t.Errorf("expected IsObjKind(ObjStringKind) to be true")
	}
	if v.IsObjKind(ObjFunctionKind) {
		t.Errorf("expected IsObjKind(ObjFunctionKind) to be false")
	}
	if NumberValue(1).IsObjKind(ObjStringKind) {
		t.Errorf("a non-object value should never match any ObjKind")
	}
}
