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

// Package cache implements the transposition cache shared by the HLP and
// 2bin solvers: a direct-mapped table of positions already proved
// unsolvable at some remaining budget, invalidated wholesale by bumping a
// generation counter.
package cache

import (
	"encoding/binary"
	"hash/crc32"
	"log"
)

// DefaultSizeLog is the default power-of-two slot count (64MB of
// 16-byte entries).
const DefaultSizeLog = 22

// entry records one visited position. A zero trial means never written.
type entry struct {
	key   uint64
	trial uint32
	depth uint8
}

// Stats are the counters the solvers report at high verbosity.
type Stats struct {
	Checks        int64
	SameDepthHits int64
	DeeperHits    int64
	Misses        int64
	BucketFills   int64
}

// Cache is a direct-mapped transposition table. It supports a single
// active search; concurrent searches need one Cache each.
type Cache struct {
	entries []entry
	mask    uint32
	trial   uint32
	sizeLog int

	Stats Stats
}

// New returns a cache with 2^sizeLog slots. Storage is allocated on
// first use and then reused across searches.
func New(sizeLog int) *Cache {
	return &Cache{sizeLog: sizeLog}
}

// Resize drops the table and changes the slot count to 2^sizeLog.
func (c *Cache) Resize(sizeLog int) {
	c.entries = nil
	c.sizeLog = sizeLog
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func hash(key uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return crc32.Checksum(buf[:], castagnoli)
}

// Check looks the key up and reports whether it was already recorded as a
// dead end with at least the current remaining budget; larger depth
// values mean less budget remaining, so an entry written at depth d
// proves every revisit at depth >= d fruitless. On a miss the slot is
// overwritten with the new position.
func (c *Cache) Check(key uint64, depth int) bool {
	if c.entries == nil {
		c.entries = make([]entry, 1<<c.sizeLog)
		c.mask = uint32(1<<c.sizeLog) - 1
	}
	c.Stats.Checks++
	e := &c.entries[hash(key)&c.mask]
	if e.key == key && int(e.depth) <= depth && e.trial == c.trial {
		if int(e.depth) == depth {
			c.Stats.SameDepthHits++
		} else {
			c.Stats.DeeperHits++
		}
		return true
	}

	if e.trial == c.trial && e.key != key {
		c.Stats.Misses++
	} else {
		c.Stats.BucketFills++
	}

	e.key = key
	e.depth = uint8(depth)
	e.trial = c.trial
	return false
}

// Invalidate logically clears the table by bumping the generation. A
// wrap to zero physically zeroes the slots, since trial zero always
// means blank.
func (c *Cache) Invalidate() {
	c.trial++
	if c.trial == 0 {
		for i := range c.entries {
			c.entries[i] = entry{}
		}
		c.trial++
	}
}

// LogStats prints the hit counters in the layout the solvers log.
func (c *Cache) LogStats() {
	log.Printf("cache checks: %d; same depth hits: %d; dif layer hits: %d; misses: %d; bucket utilization: %d",
		c.Stats.Checks, c.Stats.SameDepthHits, c.Stats.DeeperHits, c.Stats.Misses, c.Stats.BucketFills)
}

// ResetStats zeroes the counters at the start of a search.
func (c *Cache) ResetStats() {
	c.Stats = Stats{}
}
