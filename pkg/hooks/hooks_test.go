package hooks

import (
	"testing"

	"github.com/vango-dev/reflow/pkg/vdom"
)

// fakeScope replays refs across renders the way the reconciler does.
type fakeScope struct {
	path        vdom.Path
	refs        []*vdom.Ref
	next        int
	invalidated []vdom.Path
	location    string
	watchers    int
	navigations []string
}

func (f *fakeScope) begin() { f.next = 0 }

func (f *fakeScope) NextRef() *vdom.Ref {
	if f.next == len(f.refs) {
		f.refs = append(f.refs, &vdom.Ref{})
	}
	r := f.refs[f.next]
	f.next++
	return r
}

func (f *fakeScope) Path() vdom.Path        { return f.path }
func (f *fakeScope) Invalidate(p vdom.Path) { f.invalidated = append(f.invalidated, p) }
func (f *fakeScope) Location() string       { return f.location }

func (f *fakeScope) Navigate(u string, r bool) {
	if r {
		u = "replace:" + u
	}
	f.navigations = append(f.navigations, u)
}

func (f *fakeScope) WatchLocation(vdom.Path) func() {
	f.watchers++
	return func() { f.watchers-- }
}

func TestUseRefStable(t *testing.T) {
	s := &fakeScope{}
	s.begin()
	a := UseRef(s)
	a.Value = 5
	s.begin()
	b := UseRef(s)
	if a != b {
		t.Fatal("UseRef returned a different ref on the second render")
	}
	if b.Value != 5 {
		t.Errorf("Value = %v, want 5", b.Value)
	}
}

func TestUseState(t *testing.T) {
	path := vdom.Path{{Kind: vdom.KeyComponent, Name: "counter"}}
	s := &fakeScope{path: path}

	s.begin()
	v, set := UseState(s, 10)
	if v != 10 {
		t.Fatalf("initial value = %d, want 10", v)
	}

	set.Update(func(n int) int { return n + 1 })
	set.Update(func(n int) int { return n + 1 })

	if len(s.invalidated) != 2 {
		t.Fatalf("invalidations = %d, want 2", len(s.invalidated))
	}
	if vdom.ComparePaths(s.invalidated[0], path) != 0 {
		t.Errorf("invalidated %v, want %v", s.invalidated[0], path)
	}

	s.begin()
	v, set2 := UseState(s, 10)
	if v != 12 {
		t.Errorf("value after two updates = %d, want 12", v)
	}
	if set2 != set {
		t.Error("setter identity changed across renders")
	}

	set.Set(0)
	if set.Get() != 0 {
		t.Errorf("Get() = %d, want 0", set.Get())
	}
}

func TestUseStateFuncCallsInitOnce(t *testing.T) {
	s := &fakeScope{}
	calls := 0
	initial := func() string { calls++; return "x" }

	for range 3 {
		s.begin()
		UseStateFunc(s, initial)
	}
	if calls != 1 {
		t.Errorf("init called %d times, want 1", calls)
	}
}

func TestUseMemo(t *testing.T) {
	s := &fakeScope{}
	calls := 0
	compute := func() int { calls++; return calls }

	render := func(deps ...any) int {
		s.begin()
		return UseMemo(s, compute, deps...)
	}

	if got := render("a", 1); got != 1 {
		t.Errorf("first = %d, want 1", got)
	}
	if got := render("a", 1); got != 1 {
		t.Errorf("same deps = %d, want 1", got)
	}
	if got := render("a", 2); got != 2 {
		t.Errorf("changed deps = %d, want 2", got)
	}
	if got := render("a", 2, 3); got != 3 {
		t.Errorf("longer deps = %d, want 3", got)
	}
	if calls != 3 {
		t.Errorf("compute called %d times, want 3", calls)
	}
}

func TestUseCallbackIdentity(t *testing.T) {
	s := &fakeScope{}

	s.begin()
	a := UseCallback(s, func(vdom.Event) {}, "dep")
	s.begin()
	b := UseCallback(s, func(vdom.Event) {}, "dep")
	if a != b {
		t.Error("callback identity changed with unchanged deps")
	}

	s.begin()
	c := UseCallback(s, func(vdom.Event) {}, "other")
	if c == b {
		t.Error("callback identity kept with changed deps")
	}
}

func TestUseLocation(t *testing.T) {
	s := &fakeScope{location: "/a"}

	s.begin()
	if got := UseLocation(s); got != "/a" {
		t.Errorf("UseLocation() = %q", got)
	}
	s.begin()
	UseLocation(s)
	if s.watchers != 1 {
		t.Fatalf("watchers = %d, want 1", s.watchers)
	}

	s.refs[0].Cleanup()
	if s.watchers != 0 {
		t.Errorf("watchers after cleanup = %d, want 0", s.watchers)
	}
}

func TestOnUnmount(t *testing.T) {
	s := &fakeScope{}
	ran := 0
	for range 2 {
		s.begin()
		OnUnmount(s, func() { ran++ })
	}
	s.refs[0].Cleanup()
	if ran != 1 {
		t.Errorf("cleanup ran %d times, want 1", ran)
	}
}

func TestNavigate(t *testing.T) {
	s := &fakeScope{}
	Navigate(s, "/x")
	Replace(s, "/y")
	want := []string{"/x", "replace:/y"}
	if len(s.navigations) != 2 || s.navigations[0] != want[0] || s.navigations[1] != want[1] {
		t.Errorf("navigations = %v, want %v", s.navigations, want)
	}
}

func TestSlotTypeMismatchPanics(t *testing.T) {
	s := &fakeScope{}
	s.begin()
	UseState(s, 1)

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	s.begin()
	UseState(s, "string")
}
