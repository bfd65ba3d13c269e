package solver

import (
	"testing"

	"github.com/xtaci/hlptool/redstone"
)

func newTestSearch(t *testing.T, text string, accuracy Accuracy) *search {
	t.Helper()
	req, err := ParseRequest(text)
	if err != nil {
		t.Fatalf("ParseRequest(%q): %v", text, err)
	}
	return New().newSearch(req, nil, accuracy)
}

func TestDistThreshold(t *testing.T) {
	tests := []struct {
		name      string
		accuracy  Accuracy
		unique    int
		remaining int
		want      int
	}{
		{name: "ReducedSmall", accuracy: AccuracyReduced, unique: 16, remaining: 2, want: 2},
		{name: "ReducedLarge", accuracy: AccuracyReduced, unique: 16, remaining: 5, want: 4},
		{name: "Normal", accuracy: AccuracyNormal, unique: 10, remaining: 5, want: 5},
		{name: "PerfectManyOutputs", accuracy: AccuracyPerfect, unique: 15, remaining: 5, want: 5},
		{name: "PerfectFourteen", accuracy: AccuracyPerfect, unique: 14, remaining: 5, want: 6},
		{name: "IncreasedFew", accuracy: AccuracyIncreased, unique: 5, remaining: 5, want: 6},
		{name: "PerfectFew", accuracy: AccuracyPerfect, unique: 5, remaining: 4, want: 6},
		{name: "PerfectFewOdd", accuracy: AccuracyPerfect, unique: 5, remaining: 5, want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := distThreshold(tt.accuracy, tt.unique, tt.remaining); got != tt.want {
				t.Fatalf("distThreshold(%v, %d, %d) = %d, want %d", tt.accuracy, tt.unique, tt.remaining, got, tt.want)
			}
		})
	}
}

func TestLegalPartialGoalItself(t *testing.T) {
	st := newTestSearch(t, "0123456789ABCDEF", AccuracyPerfect)
	// the goal map in lane order needs no further separations
	goal := redstone.IdentityBigEndian.Reverse()
	if !st.legalPartial(goal, 0) {
		t.Fatalf("goal map rejected at threshold 0")
	}
}

func TestLegalPartialCollision(t *testing.T) {
	st := newTestSearch(t, "0123456789ABCDEF", AccuracyPerfect)
	// two lanes collided on the same value but with different goals can
	// never re-separate
	collided := redstone.Map(0xFEDCBA9876543200)
	if st.legalPartial(collided, 15) {
		t.Fatalf("unsalvageable collision accepted")
	}
}

func TestLegalPartialSeparationCount(t *testing.T) {
	// goals 0,2,4..14 on the first eight values with the identity as the
	// current map: every adjacent sorted pair has goal gap 2 over
	// current gap 1, demanding seven separations
	st := newTestSearch(t, "02468ACEXXXXXXXX", AccuracyPerfect)
	if st.legalPartial(redstone.Identity, 6) {
		t.Fatalf("map accepted below its separation count")
	}
	if !st.legalPartial(redstone.Identity, 7) {
		t.Fatalf("map rejected at its separation count")
	}
}

func TestLegalPartialIgnoresDontCare(t *testing.T) {
	// only lane 15 is pinned; everything else may collide freely
	st := newTestSearch(t, "XXXXXXXXXXXXXXX5", AccuracyPerfect)
	if !st.legalPartial(redstone.Identity, 0) {
		t.Fatalf("map rejected although only the pinned lane matters")
	}
	if !st.legalPartial(redstone.Map(0x5555555555555555), 0) {
		t.Fatalf("constant-5 map rejected for a single pinned lane")
	}
}

func TestLegalRangedTightening(t *testing.T) {
	// two lanes pinned to disjoint ranges collide on the same current
	// value: their intersection is empty, so the map is illegal
	st := newTestSearch(t, "[0-1][2-5]XXXXXXXXXXXXXX", AccuracyPerfect)
	collided := redstone.Map(0xFEDCBA9876543200) // values 0 and 1 collide on 0
	if st.legalRanged(collided, 15) {
		t.Fatalf("empty range intersection accepted")
	}

	// overlapping ranges survive the same collision
	st2 := newTestSearch(t, "[0-3][2-5]XXXXXXXXXXXXXX", AccuracyPerfect)
	if !st2.legalRanged(collided, 15) {
		t.Fatalf("overlapping range intersection rejected")
	}
}

func TestFilterSuccessorsKeepsLastLayerHits(t *testing.T) {
	// with remaining budget 1 the filter must keep every successor whose
	// application satisfies the goal outright
	st := newTestSearch(t, "FEDCBA9876543210", AccuracyPerfect)
	st.table = redstone.HexLayers(st.uniqueOutputs)
	base := &st.table.Layers[0]
	row := make([]branchLayer, scratchWidth)
	n := st.filterSuccessors(redstone.Identity, base, row, distThreshold(st.accuracy, st.uniqueOutputs, 0))
	kept := make(map[int32]bool, n)
	for i := 0; i < n; i++ {
		kept[row[i].idx] = true
	}
	for i := range base.Next {
		applied := redstone.Apply(redstone.Identity, base.LUTs[i])
		if st.satisfied(applied) && !kept[int32(i)] {
			t.Fatalf("filter dropped a direct solution at successor %d", i)
		}
	}
}
