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

package redstone

import (
	"log"
	"sync"
	"time"

	"github.com/xtaci/hlptool/aatree"
)

const (
	// ConfigCount is the size of the hex layer family.
	ConfigCount = 16 * 16 * 6

	// lutAlign pads every successor LUT slice to a multiple of four maps
	// so the arrays can be consumed in 4-wide chunks without reading a
	// neighbouring layer's data.
	lutAlign = 4
)

// Layer is one representative hex layer for a target group. Next holds
// the indices of its admissible successor layers within the owning
// table, and LUTs holds the successor maps at matching positions.
type Layer struct {
	Config uint16
	Map    Map
	Next   []int32
	LUTs   []Map
}

// Table holds the representative layers for one target group.
// Layers[0] is always the identity layer; its successor list covers
// every other representative. All slices alias two shared arenas and
// share the table's lifetime.
type Table struct {
	Group  int
	Layers []Layer

	succArena []int32
	lutArena  []Map
}

// Verbosity gates precompute progress logging for the whole package.
var Verbosity int

var (
	tablesMu sync.Mutex
	tables   [16]*Table
)

// HexLayers returns the layer table for the given target group, building
// and memoising it process-wide on first use. Tables are read-only after
// construction and never freed.
func HexLayers(group int) *Table {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	if t := tables[group-1]; t != nil {
		return t
	}
	t := buildTable(group)
	tables[group-1] = t
	return t
}

func roundUp(n, factor int) int {
	return ((n-1)/factor + 1) * factor
}

func buildTable(group int) *Table {
	start := time.Now()
	if Verbosity >= 3 {
		log.Printf("starting layer precompute for group %d", group)
	}

	seen := aatree.New()
	seen.Insert(uint64(Identity))

	// unique first layers, ascending config order; config 0 reproduces
	// the identity and is swallowed by the dedup above
	layers := []Layer{{Config: 0, Map: Identity}}
	for conf := 0; conf < ConfigCount; conf++ {
		m := HexLayer(Identity, uint16(conf))
		if m.Group() < group {
			continue
		}
		if !seen.Insert(uint64(m)) {
			continue
		}
		layers = append(layers, Layer{Config: uint16(conf), Map: m})
	}

	// successor lists; the identity layer keeps every representative, the
	// rest only keep compositions that are both legal for the group and
	// globally new
	type span struct{ begin, count, lutBegin int }
	spans := make([]span, len(layers))
	var succ []int32
	lutSpaces := 0
	for i := range layers {
		begin := len(succ)
		for j := 1; j < len(layers); j++ {
			if i != 0 {
				out := Apply(layers[i].Map, layers[j].Map)
				if out.Group() < group {
					continue
				}
				if !seen.Insert(uint64(out)) {
					continue
				}
			}
			succ = append(succ, int32(j))
		}
		count := len(succ) - begin
		spans[i] = span{begin, count, lutSpaces}
		lutSpaces += roundUp(count, lutAlign)
	}

	luts := make([]Map, lutSpaces)
	total := 0
	for i := range layers {
		sp := spans[i]
		layers[i].Next = succ[sp.begin : sp.begin+sp.count : sp.begin+sp.count]
		layers[i].LUTs = luts[sp.lutBegin : sp.lutBegin+sp.count : sp.lutBegin+roundUp(sp.count, lutAlign)]
		for k, idx := range layers[i].Next {
			layers[i].LUTs[k] = layers[idx].Map
		}
		total += sp.count
	}

	if Verbosity >= 3 {
		log.Printf("layer precompute done in %v", time.Since(start))
		log.Printf("layers computed:%d, total next layers:%d", len(layers)-1, total-(len(layers)-1))
	}
	return &Table{Group: group, Layers: layers, succArena: succ, lutArena: luts}
}
