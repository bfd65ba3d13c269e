package aatree

import (
	"math/rand"
	"sort"
	"testing"
)

func TestInsertReportsNew(t *testing.T) {
	tr := New()
	if !tr.Insert(42) {
		t.Fatalf("first insert of 42 reported duplicate")
	}
	if tr.Insert(42) {
		t.Fatalf("second insert of 42 reported new")
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
}

func TestContains(t *testing.T) {
	tr := New()
	keys := []uint64{5, 1, 9, 3, 7, 0, 1 << 63}
	for _, k := range keys {
		tr.Insert(k)
	}
	for _, k := range keys {
		if !tr.Contains(k) {
			t.Fatalf("Contains(%d) = false after insert", k)
		}
	}
	for _, k := range []uint64{2, 4, 8, 1<<63 - 1} {
		if tr.Contains(k) {
			t.Fatalf("Contains(%d) = true, never inserted", k)
		}
	}
}

func TestAscendSorted(t *testing.T) {
	tr := New()
	rng := rand.New(rand.NewSource(1))
	want := make([]uint64, 0, 1000)
	dedup := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		k := rng.Uint64() >> 16
		if tr.Insert(k) != !dedup[k] {
			t.Fatalf("Insert(%d) disagreed with reference set", k)
		}
		if !dedup[k] {
			dedup[k] = true
			want = append(want, k)
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	if tr.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", tr.Len(), len(want))
	}
	got := make([]uint64, 0, len(want))
	tr.Ascend(func(k uint64) bool {
		got = append(got, k)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Ascend visited %d keys, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("Ascend[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAscendEarlyStop(t *testing.T) {
	tr := New()
	for k := uint64(0); k < 10; k++ {
		tr.Insert(k)
	}
	visited := 0
	tr.Ascend(func(k uint64) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Fatalf("visited %d keys, want 3", visited)
	}
}

func TestBalance(t *testing.T) {
	// sequential inserts are the worst case for an unbalanced BST; the
	// AA invariants keep the height logarithmic
	tr := New()
	const n = 1 << 12
	for k := uint64(0); k < n; k++ {
		tr.Insert(k)
	}
	if h := height(tr.root); h > 2*13 {
		t.Fatalf("height %d after %d ordered inserts", h, n)
	}
}

func height(n *node) int {
	if n == nil {
		return 0
	}
	l, r := height(n.left), height(n.right)
	if r > l {
		l = r
	}
	return l + 1
}
