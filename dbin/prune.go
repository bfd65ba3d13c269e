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

package dbin

import (
	"log"
	"sync"

	"github.com/xtaci/hlptool/redstone"
)

const (
	pretableSize = 1 << 16

	// pruneEntries is 3^16, one per ternary requirement tuple.
	pruneEntries = 43046721

	// pruneInfinity marks masks unreachable for the group.
	pruneInfinity = 15
)

var (
	pruneMu     sync.Mutex
	pruneTables [4][]byte
)

// pruneTable returns the ternary-indexed admissible-distance table for
// the given dbin group, building and memoising it on first use. The
// table is shared by both output bits; bit 2 reaches strictly fewer
// masks in a single layer, so the shared values stay lower bounds.
func pruneTable(group int) []byte {
	pruneMu.Lock()
	defer pruneMu.Unlock()
	if t := pruneTables[group-1]; t != nil {
		return t
	}
	t := buildPruneTable(group)
	pruneTables[group-1] = t
	return t
}

// buildPruneTable first BFS-fills a 2^16 pretable of exact masks over
// the hex successor graph, then projects it into the packed 3^16 table
// in BCT increment order, where every don't-care entry takes the better
// of the two already-filled entries below it.
func buildPruneTable(group int) []byte {
	layers := redstone.HexLayers(group)

	// pretable format: bits 0-3 distance, bits 4-14 layer index, sign
	// bit emptiness
	pre := make([]int16, pretableSize)
	for i := range pre {
		pre[i] = -1
	}

	if redstone.Verbosity >= 3 {
		log.Printf("generating pretable for prune table, group %d", group)
	}

	// distance 0: any mask whose binary form fits /1*0*1*/; slight
	// redundancy, not worth complicating
	for i := 0; i <= 16; i++ {
		high := uint16(0xFFFF) << uint(i)
		for j := 0; j <= i; j++ {
			pre[high|^(uint16(0xFFFF)<<uint(j))] = 0
		}
	}

	// remove spots the group cannot produce
	if group > 2 {
		pre[0] = pruneInfinity
		pre[0xFFFF] = pruneInfinity
	}
	if group == 4 {
		// group 4 needs at least two 0's and two 1's in each mask
		for i := 0; i < 16; i++ {
			pre[1<<uint(i)] = pruneInfinity
			pre[0xFFFF&^(1<<uint(i))] = pruneInfinity
		}
	}

	for dist := 0; ; dist++ {
		found := 0
		for m := 0; m < pretableSize; m++ {
			entry := pre[m]
			if int(entry)&15 != dist {
				continue
			}
			found++
			current := &layers.Layers[entry>>4]
			for _, idx := range current.Next {
				next := &layers.Layers[idx]
				nm := redstone.DbinPrepend16(next.Map, uint16(m))
				if pre[nm] >= 0 {
					continue
				}
				pre[nm] = int16(idx)<<4 | int16(dist+1)
			}
		}
		if redstone.Verbosity >= 4 {
			log.Printf("masks of distance %d: %d", dist, found)
		}
		if found == 0 {
			break
		}
		if dist == 12 {
			log.Printf("reached too much distance")
			break
		}
	}

	if redstone.Verbosity >= 3 {
		log.Printf("generating prune table")
	}

	fillBCTHalfValues()
	packed := make([]byte, pruneEntries/2+1)
	nextPre := 0
	bct := uint64(0)
	for index := 0; index < pruneEntries; index, bct = index+1, bctInc(bct) {
		var value uint8
		if bctAnyTwos(bct) {
			// don't-care digit: take the better of the two entries that
			// are always already filled at lower indices
			offset := powersOf3[bctLowestTwo(bct)]
			d0 := nibbleGet(packed, index-offset*2)
			d1 := nibbleGet(packed, index-offset)
			value = d0
			if d1 < d0 {
				value = d1
			}
		} else {
			// no don't-care digits, the exact masks appear in pretable
			// order
			value = uint8(pre[nextPre]) & 15
			nextPre++
		}
		nibbleSet(packed, index, value)
	}

	if redstone.Verbosity >= 3 {
		log.Printf("prune table generated")
	}
	return packed
}
