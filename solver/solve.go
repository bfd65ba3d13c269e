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

// Package solver implements the hex layer problem search: iterative
// deepening DFS over the precomputed successor graph, with admissible
// distance pruning and a transposition cache.
package solver

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xtaci/hlptool/cache"
	"github.com/xtaci/hlptool/redstone"
)

const (
	// MaxDepthLimit clamps requested search depths.
	MaxDepthLimit = 31

	// trivialConfig maps every input to zero; it answers in a single
	// layer every goal whose lane minimums are all zero.
	trivialConfig = 0x2F0

	// Cancelled is returned when the context expires between depth
	// iterations.
	Cancelled = -1
)

// Solver owns the search resources the C kept global: the transposition
// cache and the per-depth candidate scratch. A Solver runs one search at
// a time; results are deterministic for equal inputs.
type Solver struct {
	// Verbosity gates progress logging, same levels as the CLI flag.
	Verbosity int

	cache   *cache.Cache
	scratch [][]branchLayer
}

// New returns a solver with the default cache size.
func New() *Solver {
	return &Solver{cache: cache.New(cache.DefaultSizeLog)}
}

// SetCacheSize resizes the transposition cache to 2^log2Bytes bytes; a
// cache entry occupies 16 bytes.
func (s *Solver) SetCacheSize(log2Bytes int) {
	s.cache.Resize(log2Bytes - 4)
}

// search carries the per-call state of one request.
type search struct {
	typ           SolveType
	accuracy      Accuracy
	uniqueOutputs int
	goalMin       [16]uint8
	goalMax       [16]uint8
	dontCare      [16]bool

	table     *redstone.Table
	cache     *cache.Cache
	scratch   [][]branchLayer
	chain     []uint16
	currLayer int
	iter      int64
	verbosity int
	start     time.Time
}

func (s *Solver) newSearch(req Request, chain []uint16, accuracy Accuracy) *search {
	if s.scratch == nil {
		s.scratch = make([][]branchLayer, maxSearchDepth)
		for i := range s.scratch {
			s.scratch[i] = make([]branchLayer, scratchWidth)
		}
	}
	// a fresh generation so entries from a previous request can never
	// alias into this one
	s.cache.Invalidate()
	s.cache.ResetStats()

	st := &search{
		typ:       req.Type,
		accuracy:  accuracy,
		cache:     s.cache,
		scratch:   s.scratch,
		chain:     chain,
		verbosity: s.Verbosity,
		start:     time.Now(),
	}
	switch req.Type {
	case SolveExact:
		st.uniqueOutputs = redstone.Map(req.Mins).Group()
	default:
		st.uniqueOutputs = minGroup(req.Mins, req.Maxs)
	}
	// goal vectors in lane order: lane i constrains f(i), the most
	// significant request nibble first
	for i := 0; i < 16; i++ {
		st.goalMin[i] = uint8(req.Mins>>(uint(15-i)*4)) & 15
		st.goalMax[i] = uint8(req.Maxs>>(uint(15-i)*4)) & 15
		st.dontCare[i] = st.goalMax[i]-st.goalMin[i] == 15
	}
	return st
}

// satisfied reports whether m lies within the goal bounds lane-wise.
func (s *search) satisfied(m redstone.Map) bool {
	for i := 0; i < 16; i++ {
		v := m.Lane(i)
		if v < s.goalMin[i] || v > s.goalMax[i] {
			return false
		}
	}
	return true
}

// lastLayer scans the final layer directly against the goal instead of
// recursing, an unexpectedly big win.
func (s *search) lastLayer(input redstone.Map, layer *redstone.Layer) bool {
	s.iter += int64(len(layer.Next))
	for i := len(layer.Next) - 1; i >= 0; i-- {
		applied := redstone.Apply(input, layer.LUTs[i])
		if !s.satisfied(applied) {
			continue
		}
		if s.chain != nil {
			s.chain[s.currLayer-1] = s.table.Layers[layer.Next[i]].Config
		}
		return true
	}
	return false
}

// dfs explores from input with depth layers already applied.
func (s *search) dfs(input redstone.Map, depth int, layer *redstone.Layer) bool {
	// the goal can be met before the budget runs out, even though under
	// admissible pruning an earlier iteration should have seen it; the
	// layers already applied form the chain, and at the root the
	// identity layer stands in as a one-layer chain
	if s.satisfied(input) {
		if depth == 0 {
			s.currLayer = 1
			if s.chain != nil {
				s.chain[0] = layer.Config
			}
		} else {
			s.currLayer = depth
		}
		return true
	}

	if depth == s.currLayer-1 {
		return s.lastLayer(input, layer)
	}

	s.iter += int64(len(layer.Next))
	row := s.scratch[depth]
	threshold := distThreshold(s.accuracy, s.uniqueOutputs, s.currLayer-depth-1)
	n := s.filterSuccessors(input, layer, row, threshold)

	for i := n - 1; i >= 0; i-- {
		next := &s.table.Layers[layer.Next[row[i].idx]]
		output := redstone.Apply(input, next.Map)
		if s.cache.Check(uint64(output), depth) {
			continue
		}
		if s.dfs(output, depth+1, next) {
			if s.chain != nil {
				s.chain[depth] = next.Config
			}
			return true
		}
	}
	return false
}

// run is the iterative deepening loop. It returns the chain length, or
// maxDepth+1 when no chain within budget exists, or Cancelled.
func (s *search) run(ctx context.Context, maxDepth int) int {
	base := &s.table.Layers[0]
	s.currLayer = 1
	for s.currLayer <= maxDepth {
		if ctx.Err() != nil {
			return Cancelled
		}
		if s.dfs(redstone.Identity, 0, base) {
			if s.verbosity >= 3 {
				log.Printf("solution found at %v", time.Since(s.start))
				log.Printf("total iter over all: %d", s.iter)
				s.cache.LogStats()
			}
			return s.currLayer
		}
		s.cache.Invalidate()
		s.currLayer++

		if s.verbosity >= 2 {
			log.Printf("search over layer %d done", s.currLayer-1)
		}
		if s.verbosity >= 3 {
			log.Printf("layer search done after %v; %d iterations", time.Since(s.start), s.iter)
		}
	}
	if s.verbosity >= 2 {
		log.Printf("failed to beat depth")
		s.cache.LogStats()
	}
	return maxDepth + 1
}

// SingleSearch runs one search at exactly the given accuracy. It returns
// the chain length, maxDepth+1 when nothing within budget exists, or a
// negative code on cancellation. The chain slice, when non-nil, must
// hold at least 32 entries.
func (s *Solver) SingleSearch(ctx context.Context, req Request, chain []uint16, maxDepth int, accuracy Accuracy) int {
	requested := maxDepth
	if maxDepth < 0 || maxDepth > MaxDepthLimit {
		maxDepth = MaxDepthLimit
	}
	if req.Mins == 0 {
		if chain != nil {
			chain[0] = trivialConfig
		}
		return 1
	}
	st := s.newSearch(req, chain, accuracy)
	st.table = redstone.HexLayers(st.uniqueOutputs)
	result := st.run(ctx, maxDepth)
	if result > maxDepth {
		return requested + 1
	}
	return result
}

// Solve finds the shortest chain realising the request, within maxDepth
// layers. With any accuracy above AccuracyReduced it first runs a
// reduced-accuracy presearch for a cheap upper bound, then reruns at the
// requested accuracy with one layer less to look for anything shorter.
// Returns the chain length, maxDepth+1 when nothing within budget
// exists, or a negative code on cancellation. Results above
// AccuracyReduced are optimal within the accuracy's admissibility range.
func (s *Solver) Solve(ctx context.Context, req Request, chain []uint16, maxDepth int, accuracy Accuracy) int {
	requested := maxDepth
	if maxDepth < 0 || maxDepth > MaxDepthLimit {
		maxDepth = MaxDepthLimit
	}
	if req.Mins == 0 {
		if chain != nil {
			chain[0] = trivialConfig
		}
		return 1
	}

	st := s.newSearch(req, chain, AccuracyReduced)
	st.table = redstone.HexLayers(st.uniqueOutputs)

	if s.Verbosity >= 2 {
		if accuracy > AccuracyReduced {
			log.Printf("starting presearch")
		} else {
			log.Printf("starting search")
		}
	}

	// the reduced search is sometimes faster and still often optimal, so
	// its result bounds the real search
	length := st.run(ctx, maxDepth)
	if length < 0 {
		return length
	}
	if accuracy == AccuracyReduced {
		if length > maxDepth {
			return requested + 1
		}
		return length
	}
	totalIter := st.iter
	st.iter = 0

	if s.Verbosity >= 2 {
		log.Printf("starting main search")
	}

	st.accuracy = accuracy
	result := st.run(ctx, length-1)
	if s.Verbosity >= 2 {
		log.Printf("total iter across searches: %d", totalIter+st.iter)
	}
	if result < 0 {
		return result
	}
	if result > maxDepth {
		return requested + 1
	}
	// a failed rerun returns its budget plus one, which is exactly the
	// presearch length
	return result
}

// layerTemplates render a config per mode bits: * marks a subtracting
// gate, ^ marks rotation.
var layerTemplates = [6]string{
	"%X, %X",
	"%X, *%X",
	"*%X, %X",
	"*%X, *%X",
	"^%X, *%X",
	"^*%X, %X",
}

// FormatChain renders a config chain layer by layer.
func FormatChain(chain []uint16) string {
	var b strings.Builder
	for i, conf := range chain {
		if i > 0 {
			b.WriteString(";  ")
		}
		fmt.Fprintf(&b, layerTemplates[conf>>8], (conf>>4)&15, conf&15)
	}
	return b.String()
}
