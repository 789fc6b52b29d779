package pathtrie

import (
	"cmp"
	"reflect"
	"testing"
)

func newStringTrie() *Trie[string, struct{}] {
	return New[string, struct{}](cmp.Compare[string])
}

func TestInsertAndContains(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a", "b"})

	if !tr.Contains([]string{"a", "b"}) {
		t.Error("expected (a,b) to be present")
	}
	if tr.Contains([]string{"a"}) {
		t.Error("interior branch (a) should not be an entry")
	}
	if !tr.HasPrefix([]string{"a"}) {
		t.Error("HasPrefix(a) = false, want true")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}

	// Inserting twice does not double count.
	tr.Insert([]string{"a", "b"})
	if tr.Len() != 1 {
		t.Errorf("Len() after duplicate insert = %d, want 1", tr.Len())
	}
}

func TestRootEntry(t *testing.T) {
	tr := newStringTrie()
	tr.Insert(nil)
	tr.Insert([]string{"x"})

	got := tr.Paths()
	want := [][]string{{}, {"x"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestDeleteSubtree(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a", "b"})
	tr.Insert([]string{"a", "b", "c"})
	tr.Insert([]string{"a", "d"})

	removed := tr.DeleteSubtree([]string{"a", "b"})

	got := tr.Paths()
	want := [][]string{{"a", "d"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("remaining = %v, want %v", got, want)
	}

	gotRemoved := removed.Paths()
	wantRemoved := [][]string{{"a", "b"}, {"a", "b", "c"}}
	if !reflect.DeepEqual(gotRemoved, wantRemoved) {
		t.Errorf("removed = %v, want %v", gotRemoved, wantRemoved)
	}
	if removed.Len() != 2 {
		t.Errorf("removed.Len() = %d, want 2", removed.Len())
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestDeleteSubtreeMissing(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a"})

	removed := tr.DeleteSubtree([]string{"z", "y"})
	if !removed.IsEmpty() {
		t.Errorf("removed = %v, want empty", removed.Paths())
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestDeleteSubtreeRoot(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a"})
	tr.Insert([]string{"b", "c"})

	removed := tr.DeleteSubtree(nil)
	if !tr.IsEmpty() {
		t.Errorf("trie not empty after removing root subtree: %v", tr.Paths())
	}
	if removed.Len() != 2 {
		t.Errorf("removed.Len() = %d, want 2", removed.Len())
	}
}

func TestDeletePrunesEmptyBranches(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a", "b", "c"})

	if !tr.Delete([]string{"a", "b", "c"}) {
		t.Fatal("Delete returned false for existing entry")
	}
	if len(tr.root.children) != 0 {
		t.Errorf("root still has %d children after delete", len(tr.root.children))
	}
	if tr.Delete([]string{"a", "b", "c"}) {
		t.Error("second Delete returned true")
	}
}

func TestDeleteKeepsDescendants(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a"})
	tr.Insert([]string{"a", "b"})

	tr.Delete([]string{"a"})

	got := tr.Paths()
	want := [][]string{{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestIterationOrder(t *testing.T) {
	tr := newStringTrie()
	for _, p := range [][]string{
		{"b"},
		{"a", "z"},
		{"a"},
		{"c", "a", "a"},
		{"a", "b", "c"},
		{"a", "b"},
	} {
		tr.Insert(p)
	}

	got := tr.Paths()
	want := [][]string{
		{"a"},
		{"a", "b"},
		{"a", "b", "c"},
		{"a", "z"},
		{"b"},
		{"c", "a", "a"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestValues(t *testing.T) {
	tr := New[string, int](cmp.Compare[string])
	tr.Set([]string{"x"}, 1)
	tr.Set([]string{"x"}, 3)
	tr.Set([]string{"x", "y"}, 2)

	if v, ok := tr.Get([]string{"x"}); !ok || v != 3 {
		t.Errorf("Get(x) = %d, %v; want 3, true", v, ok)
	}
	if _, ok := tr.Get([]string{"nope"}); ok {
		t.Error("Get(nope) reported present")
	}

	sum := 0
	for _, v := range tr.All() {
		sum += v
	}
	if sum != 5 {
		t.Errorf("sum of values = %d, want 5", sum)
	}
}

func TestAllEarlyStop(t *testing.T) {
	tr := newStringTrie()
	tr.Insert([]string{"a"})
	tr.Insert([]string{"b"})
	tr.Insert([]string{"c"})

	n := 0
	for range tr.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("visited %d entries, want 2", n)
	}
}
