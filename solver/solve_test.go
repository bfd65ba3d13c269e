// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package solver

import (
	"context"
	"testing"

	"github.com/xtaci/hlptool/redstone"
)

func solveText(t *testing.T, text string, maxDepth int, accuracy Accuracy) (int, []uint16) {
	t.Helper()
	req, err := ParseRequest(text)
	if err != nil {
		t.Fatalf("ParseRequest(%q): %v", text, err)
	}
	chain := make([]uint16, MaxDepthLimit+1)
	length := New().Solve(context.Background(), req, chain, maxDepth, accuracy)
	return length, chain
}

// checkChain folds the chain over the display identity and verifies the
// result lies within the request bounds lane for lane.
func checkChain(t *testing.T, text string, chain []uint16) {
	t.Helper()
	req, err := ParseRequest(text)
	if err != nil {
		t.Fatalf("ParseRequest(%q): %v", text, err)
	}
	folded := uint64(redstone.ApplyChain(redstone.IdentityBigEndian, chain))
	for i := 0; i < 16; i++ {
		v := folded >> (uint(i) * 4) & 15
		min := req.Mins >> (uint(i) * 4) & 15
		max := req.Maxs >> (uint(i) * 4) & 15
		if v < min || v > max {
			t.Fatalf("chain %v folds to %016X, nibble %d outside [%X,%X]", chain, folded, i, min, max)
		}
	}
}

func TestSolveExactIdentity(t *testing.T) {
	length, chain := solveText(t, "0123456789ABCDEF", 31, AccuracyPerfect)
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	if chain[0] != 0x000 {
		t.Fatalf("chain[0] = %#x, want 0x000", chain[0])
	}
	checkChain(t, "0123456789ABCDEF", chain[:1])
}

func TestSolveExactAllZero(t *testing.T) {
	length, chain := solveText(t, "0000000000000000", 31, AccuracyPerfect)
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	if chain[0] != 0x2F0 {
		t.Fatalf("chain[0] = %#x, want 0x2F0", chain[0])
	}
	checkChain(t, "0000000000000000", chain[:1])
}

func TestSolvePartialSingleLane(t *testing.T) {
	length, chain := solveText(t, "XXXXXXXXXXXXXXX0", 31, AccuracyNormal)
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	checkChain(t, "XXXXXXXXXXXXXXX0", chain[:1])
}

func TestSolveRangedAllWildcards(t *testing.T) {
	text := "[0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F][0-F]"
	length, chain := solveText(t, text, 31, AccuracyNormal)
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	if chain[0] != 0x2F0 {
		t.Fatalf("chain[0] = %#x, want 0x2F0", chain[0])
	}
	checkChain(t, text, chain[:1])
}

func TestSolveInvertOneLayer(t *testing.T) {
	length, chain := solveText(t, "FEDCBA9876543210", 31, AccuracyPerfect)
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	checkChain(t, "FEDCBA9876543210", chain[:1])
}

// twoLayerGoal is the inversion of max(v-1, 0): f(0)=f(1)=15, f(v)=16-v
// beyond. No single layer realises it, see TestSolveTwoLayerOptimal.
const twoLayerGoal = "FFEDCBA987654321"

func TestSolveTwoLayers(t *testing.T) {
	length, chain := solveText(t, twoLayerGoal, 31, AccuracyPerfect)
	if length != 2 {
		t.Fatalf("length = %d, want 2", length)
	}
	checkChain(t, twoLayerGoal, chain[:2])
}

func TestSolveTwoLayerOptimal(t *testing.T) {
	// brute force: no single layer of the family realises the goal
	req, err := ParseRequest(twoLayerGoal)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	want := redstone.Map(req.Mins).Reverse()
	for conf := uint16(0); conf < redstone.ConfigCount; conf++ {
		if redstone.HexLayer(redstone.Identity, conf) == want {
			t.Fatalf("config %#x solves the goal in one layer", conf)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	l1, c1 := solveText(t, twoLayerGoal, 31, AccuracyPerfect)
	l2, c2 := solveText(t, twoLayerGoal, 31, AccuracyPerfect)
	if l1 != l2 {
		t.Fatalf("lengths differ: %d vs %d", l1, l2)
	}
	for i := 0; i < l1; i++ {
		if c1[i] != c2[i] {
			t.Fatalf("chains differ at %d: %#x vs %#x", i, c1[i], c2[i])
		}
	}
}

func TestSolveCacheIdempotent(t *testing.T) {
	// one solver, two consecutive searches: the generation bump must
	// keep the second result identical
	req, err := ParseRequest(twoLayerGoal)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	s := New()
	c1 := make([]uint16, MaxDepthLimit+1)
	c2 := make([]uint16, MaxDepthLimit+1)
	l1 := s.Solve(context.Background(), req, c1, 31, AccuracyPerfect)
	l2 := s.Solve(context.Background(), req, c2, 31, AccuracyPerfect)
	if l1 != l2 {
		t.Fatalf("lengths differ across runs: %d vs %d", l1, l2)
	}
	for i := 0; i < l1; i++ {
		if c1[i] != c2[i] {
			t.Fatalf("chains differ at %d: %#x vs %#x", i, c1[i], c2[i])
		}
	}
}

func TestSolveBudgetExhausted(t *testing.T) {
	length, _ := solveText(t, twoLayerGoal, 1, AccuracyPerfect)
	if length != 2 {
		t.Fatalf("length = %d, want the maxDepth+1 sentinel 2", length)
	}
}

func TestSingleSearchMatchesSolve(t *testing.T) {
	req, err := ParseRequest(twoLayerGoal)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	chain := make([]uint16, MaxDepthLimit+1)
	length := New().SingleSearch(context.Background(), req, chain, 31, AccuracyPerfect)
	if length != 2 {
		t.Fatalf("SingleSearch length = %d, want 2", length)
	}
	checkChain(t, twoLayerGoal, chain[:2])
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := ParseRequest(twoLayerGoal)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if length := New().Solve(ctx, req, nil, 31, AccuracyPerfect); length >= 0 {
		t.Fatalf("cancelled solve returned %d, want a negative code", length)
	}
}

func TestFormatChain(t *testing.T) {
	tests := []struct {
		name  string
		chain []uint16
		want  string
	}{
		{name: "Identity", chain: []uint16{0x000}, want: "0, 0"},
		{name: "ConstantZero", chain: []uint16{0x2F0}, want: "*F, 0"},
		{name: "Invert", chain: []uint16{0x3FF}, want: "*F, *F"},
		{name: "RotateSubtractSide", chain: []uint16{0x412}, want: "^1, *2"},
		{name: "RotateSubtractBack", chain: []uint16{0x534}, want: "^*3, 4"},
		{name: "Sequence", chain: []uint16{0x210, 0x3FF}, want: "*1, 0;  *F, *F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatChain(tt.chain); got != tt.want {
				t.Fatalf("FormatChain(%v) = %q, want %q", tt.chain, got, tt.want)
			}
		})
	}
}
