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

import "github.com/xtaci/hlptool/redstone"

const (
	// maxSearchDepth bounds the iterative deepening, and with it the
	// scratch row count.
	maxSearchDepth = 32

	// scratchWidth is the assumed upper bound on admissible successors
	// of a single layer at any depth. Writing past it panics.
	scratchWidth = 800
)

// branchLayer is one accepted candidate produced by the batch filter.
type branchLayer struct {
	m   redstone.Map
	idx int32
}

// distThreshold returns the most separations the distance check may see
// before pruning, for the given remaining budget.
func distThreshold(acc Accuracy, uniqueOutputs, remaining int) int {
	if acc == AccuracyReduced {
		if remaining > 2 {
			return remaining - 1
		}
		return remaining
	}
	// n is always sufficient for 15-16 outputs
	if acc == AccuracyNormal || uniqueOutputs > 14 {
		return remaining
	}
	// n+1 is always sufficient for 14 outputs
	if acc == AccuracyIncreased || uniqueOutputs > 13 {
		return remaining + 1
	}
	// best known general threshold, rounding 3n/2 up
	return (remaining*3-1)>>1 + 1
}

// sortBytes is an insertion sort; the arrays are at most 16 long.
func sortBytes(a []uint8) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// legalPartial is the exact/partial distance check: (current, goal) pairs
// of the pinned lanes are sorted by current value so equal-current lanes
// sit adjacent. A pair of collided lanes whose goals still differ can
// never re-separate; every adjacent pair whose goal gap exceeds its
// current gap demands one more layer.
func (s *search) legalPartial(applied redstone.Map, threshold int) bool {
	var elems [16]uint8
	n := 0
	for i := 0; i < 16; i++ {
		if s.dontCare[i] {
			continue
		}
		elems[n] = applied.Lane(i)<<4 | s.goalMin[i]
		n++
	}
	if n == 0 {
		return true
	}
	sortBytes(elems[:n])
	// pad with the last pair so don't-care slots never separate
	for i := n; i < 16; i++ {
		elems[i] = elems[n-1]
	}

	seps := 0
	for k := 0; k < 15; k++ {
		curDelta := int(elems[k+1]>>4) - int(elems[k]>>4)
		goalDelta := int(elems[k+1]&15) - int(elems[k]&15)
		if goalDelta < 0 {
			goalDelta = -goalDelta
		}
		if curDelta == 0 && goalDelta != 0 {
			return false
		}
		if goalDelta > curDelta {
			seps++
		}
	}
	return seps <= threshold
}

// legalRanged is the ranged variant: every lane participates with its
// [min,max] goal range, and ranges within one current-value equivalence
// class are tightened to their intersection first, since collided lanes
// must end on a common value.
func (s *search) legalRanged(applied redstone.Map, threshold int) bool {
	var elems [16]uint8
	for i := 0; i < 16; i++ {
		elems[i] = applied.Lane(i)<<4 | uint8(i)
	}
	sortBytes(elems[:])

	var fmin, fmax [16]int
	for k, e := range elems {
		lane := int(e & 15)
		fmin[k] = int(s.goalMin[lane])
		fmax[k] = int(s.goalMax[lane])
	}

	// combineRanges: maximum of mins, minimum of maxs per run
	for a := 0; a < 16; {
		b := a + 1
		for b < 16 && elems[b]>>4 == elems[a]>>4 {
			b++
		}
		lo, hi := fmin[a], fmax[a]
		for k := a + 1; k < b; k++ {
			if fmin[k] > lo {
				lo = fmin[k]
			}
			if fmax[k] < hi {
				hi = fmax[k]
			}
		}
		if lo > hi {
			return false
		}
		for k := a; k < b; k++ {
			fmin[k], fmax[k] = lo, hi
		}
		a = b
	}

	seps := 0
	for k := 0; k < 15; k++ {
		curDelta := int(elems[k+1]>>4) - int(elems[k]>>4)
		finalDelta := fmin[k] - fmax[k+1]
		if d := fmin[k+1] - fmax[k]; d > finalDelta {
			finalDelta = d
		}
		if finalDelta > curDelta {
			seps++
		}
	}
	return seps <= threshold
}

// filterSuccessors applies the current input to every successor LUT and
// keeps the candidates the distance check still considers reachable,
// scanning high config first. Returns the number of entries written to
// out.
func (s *search) filterSuccessors(input redstone.Map, layer *redstone.Layer, out []branchLayer, threshold int) int {
	n := 0
	ranged := s.typ == SolveRanged
	for i := len(layer.Next) - 1; i >= 0; i-- {
		applied := redstone.Apply(input, layer.LUTs[i])
		var ok bool
		if ranged {
			ok = s.legalRanged(applied, threshold)
		} else {
			ok = s.legalPartial(applied, threshold)
		}
		if !ok {
			continue
		}
		out[n] = branchLayer{m: applied, idx: int32(i)}
		n++
	}
	return n
}
