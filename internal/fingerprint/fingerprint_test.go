package fingerprint

import "testing"

func TestHash_Determinism(t *testing.T) {
	cases := []any{
		"hello",
		42,
		3.14,
		true,
		[]byte("bytes"),
	}
	for _, v := range cases {
		a := Hash(v)
		b := Hash(v)
		if a != b {
			t.Errorf("Hash(%v) not deterministic: %q != %q", v, a, b)
		}
	}
}

func TestHash_SequenceOrderMatters(t *testing.T) {
	a := Hash([]string{"x", "y"})
	b := Hash([]string{"y", "x"})
	if a == b {
		t.Errorf("expected different hashes for differently-ordered sequences")
	}
}

func TestHash_MapOrderInvariant(t *testing.T) {
	m1 := map[string]string{"a": "1", "b": "2", "c": "3"}
	m2 := map[string]string{"c": "3", "a": "1", "b": "2"}
	if Hash(m1) != Hash(m2) {
		t.Errorf("expected equal hashes for maps with same contents, different insertion order")
	}
}

func TestHash_SetOrderInvariant(t *testing.T) {
	a := Hash(Set{"x", "y", "z"})
	b := Hash(Set{"z", "y", "x"})
	if a != b {
		t.Errorf("expected equal hashes for sets regardless of order")
	}
}

func TestHash_SetDiffersFromSequence(t *testing.T) {
	seq := Hash([]string{"x", "y"})
	set := Hash(Set{"x", "y"})
	if seq == set {
		t.Errorf("expected Set and ordered sequence to hash differently")
	}
}

func TestHash_StructRecursion(t *testing.T) {
	type Inner struct {
		Value int
	}
	type Outer struct {
		Name  string
		Inner Inner
	}

	a := Outer{Name: "n", Inner: Inner{Value: 1}}
	b := Outer{Name: "n", Inner: Inner{Value: 1}}
	c := Outer{Name: "n", Inner: Inner{Value: 2}}

	if Hash(a) != Hash(b) {
		t.Errorf("expected equal structs to hash equally")
	}
	if Hash(a) == Hash(c) {
		t.Errorf("expected differing structs to hash differently")
	}
}

func TestHash_StructInContainerRecursesFromZeroDepth(t *testing.T) {
	type Inner struct {
		Value int
	}

	a := []Inner{{Value: 1}, {Value: 2}}
	b := []Inner{{Value: 9}, {Value: 9}}
	if Hash(a) == Hash(b) {
		t.Errorf("expected differing structs inside a slice to hash differently")
	}

	m1 := map[string]Inner{"k": {Value: 1}}
	m2 := map[string]Inner{"k": {Value: 2}}
	if Hash(m1) == Hash(m2) {
		t.Errorf("expected differing structs inside a map to hash differently")
	}

	s1 := Set{Inner{Value: 1}}
	s2 := Set{Inner{Value: 2}}
	if Hash(s1) == Hash(s2) {
		t.Errorf("expected differing structs inside a set to hash differently")
	}
}

func TestHash_DepthCapFallsBackToUnhashable(t *testing.T) {
	type L4 struct{ V int }
	type L3 struct{ Next L4 }
	type L2 struct{ Next L3 }
	type L1 struct{ Next L2 }

	// Four levels of struct nesting exceeds maxDepth (3); both values should
	// collapse to the same "<unhashable>" digest regardless of their actual
	// (unreachable) leaf values.
	a := L1{Next: L2{Next: L3{Next: L4{V: 1}}}}
	b := L1{Next: L2{Next: L3{Next: L4{V: 2}}}}
	if Hash(a) != Hash(b) {
		t.Errorf("expected depth-capped structs to collapse to the same fallback digest")
	}
}

func TestHash_NeverPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Hash panicked: %v", r)
		}
	}()

	var nilPtr *int
	var nilIface any
	Hash(nil)
	Hash(nilPtr)
	Hash(nilIface)
	Hash(make(chan int))
	Hash(func() {})
}

func TestRegister_Extension(t *testing.T) {
	type Money struct{ Cents int64 }

	Register(
		func(v any) bool { _, ok := v.(Money); return ok },
		func(v any, _ *Hasher) string { return Hash(v.(Money).Cents) },
	)

	a := Hash(Money{Cents: 100})
	b := Hash(int64(100))
	if a != b {
		t.Errorf("registered hasher was not used: Hash(Money{100}) != Hash(int64(100))")
	}
}
