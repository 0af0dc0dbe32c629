package module

import (
	"testing"

	"github.com/adpick/vivarium/config"
	"github.com/adpick/vivarium/event"
	"github.com/adpick/vivarium/population"
)

type stubModule struct {
	Base
	id   ID
	deps map[ID]struct{}
}

func (s stubModule) ID() ID                       { return s.id }
func (s stubModule) Dependencies() map[ID]struct{} { return s.deps }

func newStub(id ID, deps ...ID) stubModule {
	m := map[ID]struct{}{}
	for _, d := range deps {
		m[d] = struct{}{}
	}
	return stubModule{id: id, deps: m}
}

func TestOrderedRespectsDependenciesAndPinsBase(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(newStub("risk_factor", "disease")))
	must(t, r.Register(newStub(BaseID)))
	must(t, r.Register(newStub("disease")))

	ordered, err := r.Ordered()
	if err != nil {
		t.Fatal(err)
	}
	if ordered[0].ID() != BaseID {
		t.Fatalf("first module = %q, want %q", ordered[0].ID(), BaseID)
	}
	pos := map[ID]int{}
	for i, m := range ordered {
		pos[m.ID()] = i
	}
	if pos["disease"] > pos["risk_factor"] {
		t.Errorf("disease must come before risk_factor, got order %v", pos)
	}
}

func TestOrderedIsStableByRegistrationOrder(t *testing.T) {
	r1 := NewRegistry()
	must(t, r1.Register(newStub("a")))
	must(t, r1.Register(newStub("b")))
	must(t, r1.Register(newStub("c")))

	r2 := NewRegistry()
	must(t, r2.Register(newStub("a")))
	must(t, r2.Register(newStub("b")))
	must(t, r2.Register(newStub("c")))

	o1, err := r1.Ordered()
	if err != nil {
		t.Fatal(err)
	}
	o2, err := r2.Ordered()
	if err != nil {
		t.Fatal(err)
	}
	for i := range o1 {
		if o1[i].ID() != o2[i].ID() {
			t.Fatalf("orderings diverged: %v vs %v", ids(o1), ids(o2))
		}
	}
}

func TestOrderedUnresolvedDependency(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(newStub("disease", "missing_risk_factor")))

	_, err := r.Ordered()
	ude, ok := err.(*UnresolvedDependencyError)
	if !ok {
		t.Fatalf("got %v, want *UnresolvedDependencyError", err)
	}
	if ude.Dependency != "missing_risk_factor" {
		t.Errorf("dependency = %q, want %q", ude.Dependency, "missing_risk_factor")
	}
}

func TestOrderedCyclicDependency(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(newStub("a", "b")))
	must(t, r.Register(newStub("b", "a")))

	_, err := r.Ordered()
	if _, ok := err.(*CyclicDependencyError); !ok {
		t.Fatalf("got %v, want *CyclicDependencyError", err)
	}
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(newStub("a")))
	err := r.Register(newStub("a"))
	if _, ok := err.(*DuplicateIDError); !ok {
		t.Fatalf("got %v, want *DuplicateIDError", err)
	}
}

func TestDeregisterRemovesFromOrdering(t *testing.T) {
	r := NewRegistry()
	must(t, r.Register(newStub("a")))
	must(t, r.Register(newStub("b")))
	r.Deregister("a")

	ordered, err := r.Ordered()
	if err != nil {
		t.Fatal(err)
	}
	if len(ordered) != 1 || ordered[0].ID() != "b" {
		t.Fatalf("got %v, want [b]", ids(ordered))
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func ids(ms []Module) []ID {
	out := make([]ID, len(ms))
	for i, m := range ms {
		out[i] = m.ID()
	}
	return out
}

// Compile-time assertions that stubModule and Base satisfy Module
// against the real collaborator packages module depends on.
var (
	_ Module                 = stubModule{}
	_ func(*event.Bus)       = Base{}.Setup
	_ func(*config.Config, string) error = Base{}.LoadData
	_ func(*population.Table, int) error = Base{}.ContributeColumns
)
