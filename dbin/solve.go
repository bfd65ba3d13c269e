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

// Package dbin implements the dual-binary variant of the hex layer
// problem: chains of hex layers closed by one terminal 2bin layer whose
// two binary outputs must satisfy a partial (ones, zeros) mask pair.
//
// A partial requirement packs four 16-bit masks into a uint64: bit-1
// zeros, bit-2 zeros, bit-1 ones, bit-2 ones, low to high.
package dbin

import (
	"context"
	"log"
	"strings"

	"github.com/xtaci/hlptool/cache"
	"github.com/xtaci/hlptool/redstone"
)

// MaxDepthLimit clamps requested 2bin search depths.
const MaxDepthLimit = 64

// Solver owns the 2bin search resources. One search at a time.
type Solver struct {
	// Verbosity gates progress logging.
	Verbosity int

	cache *cache.Cache
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

// exactGroup counts the distinct output pairs of an exact 32-bit dbin
// map. The solver applies it to the zeros half of a partial mask, which
// for exact-expanded requests counts the same partition.
func exactGroup(mask uint32) int {
	first := uint16(mask)
	second := uint16(mask >> 16)
	g := 0
	if first&second != 0 {
		g++
	}
	if first&^second != 0 {
		g++
	}
	if second&^first != 0 {
		g++
	}
	if first|second != 0xFFFF {
		g++
	}
	return g
}

// search carries the per-call state of one 2bin request.
type search struct {
	prune    []byte
	finishes []Finish
	table    *redstone.Table
	cache    *cache.Cache
	chain    []uint16
	depth    int

	iterations    uint64
	finalSearches uint64
}

func (st *search) dfs(layer *redstone.Layer, remaining uint64, r int) bool {
	if r < 3 {
		st.finalSearches++
		final := searchFinishes(st.finishes, remaining)
		if final == nil {
			return false
		}
		// the bsearch key carries no depth, so a long ending can match a
		// short budget; reject it until the chain has room for its hex
		// layers
		if (final.HexDist1Config != 0 && st.depth < 1) || (final.HexDist2Config != 0 && st.depth < 2) {
			return false
		}
		if st.chain != nil {
			end := st.depth
			st.chain[end] = final.DbinConfig
			if final.HexDist1Config != 0 {
				st.chain[end-1] = final.HexDist1Config
			}
			if final.HexDist2Config != 0 {
				st.chain[end-2] = final.HexDist2Config
			}
		}
		return true
	}

	for _, idx := range layer.Next {
		st.iterations++
		next := &st.table.Layers[idx]
		nr := redstone.DbinUnprepend(next.Map, remaining)

		// a bit required both one and zero can never be satisfied
		if nr&(nr>>32) != 0 {
			continue
		}

		// admissible distance per output bit
		if nibbleGet(st.prune, ternaryIndex(uint16(nr), uint16(nr>>32))) > uint8(r) {
			continue
		}
		if nibbleGet(st.prune, ternaryIndex(uint16(nr>>16), uint16(nr>>48))) > uint8(r) {
			continue
		}

		if st.cache.Check(nr, 99-r) {
			continue
		}

		if st.dfs(next, nr, r-1) {
			if st.chain != nil {
				st.chain[st.depth-r] = next.Config
			}
			return true
		}
	}
	return false
}

// Solve finds the shortest chain, counting the final 2bin layer, whose
// outputs satisfy the partial mask. The chain slice, when non-nil, must
// hold at least MaxDepthLimit entries. Returns the length, or
// maxDepth-1 when nothing within budget exists; callers depend on that
// sentinel. Cancellation also surfaces as the sentinel.
func (s *Solver) Solve(ctx context.Context, partial uint64, chain []uint16, maxDepth int) int {
	if maxDepth < 0 {
		return maxDepth - 1
	}
	if maxDepth > MaxDepthLimit {
		maxDepth = MaxDepthLimit
	}

	fillBCTHalfValues()
	group := exactGroup(uint32(partial))

	st := &search{
		chain: chain,
		cache: s.cache,
	}
	s.cache.Invalidate()
	s.cache.ResetStats()

	st.finishes = finishes(group)
	st.prune = pruneTable(group)
	st.table = redstone.HexLayers(group)
	identity := &st.table.Layers[0]

	for depth := 0; depth < maxDepth; depth++ {
		if ctx.Err() != nil {
			return maxDepth - 1
		}
		if s.Verbosity >= 2 {
			log.Printf("checking depth %d", depth)
		}
		st.depth = depth
		if st.dfs(identity, partial, depth) {
			if s.Verbosity >= 3 {
				log.Printf("iterations: %d normal nodes; %d endpoint b-searches", st.iterations, st.finalSearches)
				s.cache.LogStats()
			}
			return depth + 1
		}
		s.cache.Invalidate()
	}
	if s.Verbosity >= 3 {
		s.cache.LogStats()
	}
	return maxDepth - 1
}

// ExpandExact converts an exact 32-bit dbin map into the partial format,
// requiring every bit of both outputs.
func ExpandExact(m uint32) uint64 {
	return uint64(m^0xFFFFFFFF) | uint64(m)<<32
}

// SolveExact solves for an exact 32-bit dbin map.
func (s *Solver) SolveExact(ctx context.Context, m uint32, chain []uint16, maxDepth int) int {
	return s.Solve(ctx, ExpandExact(m), chain, maxDepth)
}

// Normalize demotes bits claimed both one and zero to don't-care.
func Normalize(partial uint64) uint64 {
	return partial &^ ((partial >> 32) | (partial << 32))
}

// FormatMask renders a 16-bit output mask lowest value first, grouped by
// four.
func FormatMask(x uint16) string {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		if i != 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('0' + byte((x>>uint(i))&1))
	}
	return b.String()
}

// FormatPartialMask renders one output bit's requirement plane, zeros in
// the low half and ones in the high half, as 0/1/X per input value.
func FormatPartialMask(x uint32) string {
	var b strings.Builder
	for i := 0; i < 16; i++ {
		if i != 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		switch {
		case (x>>uint(i))&1 != 0:
			b.WriteByte('0')
		case (x>>uint(i+16))&1 != 0:
			b.WriteByte('1')
		default:
			b.WriteByte('X')
		}
	}
	return b.String()
}

// Plane extracts output bit plane 1 or 2 of a partial mask in the
// packed (zeros, ones) form FormatPartialMask takes.
func Plane(partial uint64, bit int) uint32 {
	shift := uint(0)
	if bit == 2 {
		shift = 16
	}
	zeros := uint32(partial>>shift) & 0xFFFF
	ones := uint32(partial>>(32+shift)) & 0xFFFF
	return zeros | ones<<16
}
