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

	"github.com/xtaci/hlptool/aatree"
	"github.com/xtaci/hlptool/redstone"
)

// DbinConfigCount is the size of the terminal 2bin layer family.
const DbinConfigCount = 16 * 16 * 4

// Finish is a precomputed chain ending: up to two hex layers followed by
// the terminal dbin layer, with the mask their composition produces. A
// zero hex config means the slot is unused.
type Finish struct {
	Map            uint32
	DbinConfig     uint16
	HexDist1Config uint16
	HexDist2Config uint16
}

var (
	finishMu     sync.Mutex
	finishTables [4][]Finish
)

// finishes returns every unique 1-, 2- and 3-layer ending for the dbin
// group, sorted ascending by mask, built and memoised on first use.
func finishes(group int) []Finish {
	finishMu.Lock()
	defer finishMu.Unlock()
	if t := finishTables[group-1]; t != nil {
		return t
	}
	t := buildFinishes(group)
	finishTables[group-1] = t
	return t
}

func buildFinishes(group int) []Finish {
	layers := redstone.HexLayers(group)
	identity := &layers.Layers[0]

	seen := aatree.New()
	records := make(map[uint32]Finish)
	add := func(f Finish) bool {
		if !seen.Insert(uint64(f.Map)) {
			return false
		}
		records[f.Map] = f
		return true
	}

	// single terminal layers
	var dist0 []Finish
	for config := 0; config < DbinConfigCount; config++ {
		f := Finish{Map: redstone.DbinLayer(redstone.Identity, uint16(config)), DbinConfig: uint16(config)}
		if add(f) {
			dist0 = append(dist0, f)
		}
	}
	if redstone.Verbosity >= 4 {
		log.Printf("unique final 2bin layers: %d", len(dist0))
	}

	// one hex layer in front; remember which successor produced each
	// ending so the third layer can draw from its successor list
	var dist1 []Finish
	var dist1Base []int32
	for _, final := range dist0 {
		for _, idx := range identity.Next {
			hex := &layers.Layers[idx]
			f := Finish{
				Map:            redstone.DbinPrepend(hex.Map, final.Map),
				DbinConfig:     final.DbinConfig,
				HexDist1Config: hex.Config,
			}
			if add(f) {
				dist1 = append(dist1, f)
				dist1Base = append(dist1Base, idx)
			}
		}
	}
	if redstone.Verbosity >= 4 {
		log.Printf("unique final 2 layers: %d", len(dist1))
	}

	// a second hex layer in front of each two-layer ending
	dist2Count := 0
	for k, final := range dist1 {
		base := &layers.Layers[dist1Base[k]]
		for _, idx := range base.Next {
			hex := &layers.Layers[idx]
			f := Finish{
				Map:            redstone.DbinPrepend(hex.Map, final.Map),
				DbinConfig:     final.DbinConfig,
				HexDist1Config: final.HexDist1Config,
				HexDist2Config: hex.Config,
			}
			if add(f) {
				dist2Count++
			}
		}
	}
	if redstone.Verbosity >= 4 {
		log.Printf("unique final 3 layers: %d", dist2Count)
	}

	out := make([]Finish, 0, seen.Len())
	seen.Ascend(func(key uint64) bool {
		out = append(out, records[uint32(key)])
		return true
	})
	return out
}

// searchFinishes binary-searches the sorted finish table for an ending
// whose mask supplies every required one and avoids every required zero.
// The comparator is the signed difference between missing ones and
// conflicting zeros; it reaches zero exactly on a genuine match, though
// like any heuristic ordering it may also pass over one.
func searchFinishes(table []Finish, remaining uint64) *Finish {
	ones := uint32(remaining >> 32)
	zeros := uint32(remaining)
	lo, hi := 0, len(table)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		f := &table[mid]
		d := int64(ones&^f.Map) - int64(zeros&f.Map)
		switch {
		case d == 0:
			return f
		case d < 0:
			hi = mid
		default:
			lo = mid + 1
		}
	}
	return nil
}
