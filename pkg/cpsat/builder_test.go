package cpsat

import "testing"

func TestBoolVarIsIdempotentByName(t *testing.T) {
	m := NewModel()
	a := m.BoolVar("p1_d0_LDR")
	b := m.BoolVar("p1_d0_LDR")
	if a != b {
		t.Error("BoolVar should return the same variable for a repeated name")
	}
	if len(m.Names()) != 1 {
		t.Errorf("Names() = %v, want a single entry", m.Names())
	}
}

func TestHasReflectsRegisteredVariables(t *testing.T) {
	m := NewModel()
	if m.Has("missing") {
		t.Error("Has should be false before BoolVar is called")
	}
	m.BoolVar("present")
	if !m.Has("present") {
		t.Error("Has should be true once BoolVar is called")
	}
}

func TestVarPanicsOnUnknownName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Var should panic for an unregistered name")
		}
	}()
	m := NewModel()
	m.Var("never-created")
}

func TestNamesPreservesCreationOrder(t *testing.T) {
	m := NewModel()
	m.BoolVar("c")
	m.BoolVar("a")
	m.BoolVar("b")
	got := m.Names()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
