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
	"fmt"
	"math/bits"
)

// Map packs a function from 4-bit values to 4-bit values into a single
// 64-bit word. Lane i occupies bits [4i, 4i+4) and holds the output for
// input value i.
type Map uint64

const (
	// Identity maps every value to itself.
	Identity Map = 0xFEDCBA9876543210

	// IdentityBigEndian is the identity in display order, with the lane
	// for input 0 in the most significant nibble. Folding a chain over it
	// yields a map whose hex digits read left to right as f(0)..f(15).
	IdentityBigEndian Map = 0x0123456789ABCDEF
)

// Lane returns the output value stored for input i.
func (m Map) Lane(i int) uint8 {
	return uint8(m>>(uint(i)*4)) & 15
}

// Reverse flips the lane order, converting between storage order and
// display order.
func (m Map) Reverse() Map {
	var out Map
	for i := 0; i < 16; i++ {
		out |= Map(m.Lane(15-i)) << (uint(i) * 4)
	}
	return out
}

// Apply feeds every lane of input through lut: lane i of the result is
// lane input[i] of lut. Chains compose left to right with repeated Apply
// calls, the earliest layer innermost.
func Apply(input, lut Map) Map {
	var out Map
	for i := 0; i < 16; i++ {
		out |= Map(lut.Lane(int(input.Lane(i)))) << (uint(i) * 4)
	}
	return out
}

// Group counts the distinct lane values of m. It is monotone
// non-increasing under Apply.
func (m Map) Group() int {
	var seen uint16
	for i := 0; i < 16; i++ {
		seen |= 1 << m.Lane(i)
	}
	return bits.OnesCount16(seen)
}

// ApplyChain folds a config chain over start, first config applied first.
func ApplyChain(start Map, chain []uint16) Map {
	for _, conf := range chain {
		start = HexLayer(start, conf)
	}
	return start
}

func (m Map) String() string {
	return fmt.Sprintf("%016X", uint64(m))
}
