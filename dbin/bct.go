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
	"math/bits"
	"sync"
)

const (
	loHalves1 = 0x5555555555555555
	hiHalves1 = 0xAAAAAAAAAAAAAAAA
)

// bctInc adds one to a number in binary coded ternary, two bits per
// trit.
func bctInc(x uint64) uint64 {
	// inc, with added boost to make sure 2's carry
	x += loHalves1 + 1
	// any pair of bits that is now 00 remains as is, all others dec
	return x - (((x >> 1) | x) & loHalves1)
}

func bctAnyTwos(x uint64) bool {
	return x&hiHalves1 != 0
}

func bctLowestTwo(x uint64) int {
	return bits.TrailingZeros64(x&hiHalves1) / 2
}

// powersOf3[i] = 3^i.
var powersOf3 = func() [16]int {
	var p [16]int
	p[0] = 1
	for i := 1; i < 16; i++ {
		p[i] = 3 * p[i-1]
	}
	return p
}()

// byte-indexed ternary weights, split in halves because the prune table
// keeps the cache in high demand throughout the solver
var (
	bctTableOnce sync.Once
	bctLow       [256]int
	bctHigh      [256]int
)

func fillBCTHalfValues() {
	bctTableOnce.Do(func() {
		for i := 0; i < 256; i++ {
			value := 0
			for j := 0; j < 8; j++ {
				if (i>>j)&1 != 0 {
					value += powersOf3[j]
				}
			}
			bctLow[i] = value
			bctHigh[i] = value * 81 * 81
		}
	})
}

// ternaryIndex maps a (zeros, ones) requirement pair to its index in the
// 3^16-entry prune table: bit position i contributes digit 0 when
// required zero, 1 when required one, and 2 when unconstrained.
func ternaryIndex(zeros, ones uint16) int {
	twos := ^(ones | zeros)
	return bctHigh[twos>>8]*2 +
		bctLow[twos&0xff]*2 +
		bctHigh[ones>>8] +
		bctLow[ones&0xff]
}

// nibbleGet reads entry i of a packed 4-bit array.
func nibbleGet(a []byte, i int) uint8 {
	return a[i/2] >> (uint(i&1) * 4) & 15
}

// nibbleSet writes entry i of a packed 4-bit array.
func nibbleSet(a []byte, i int, v uint8) {
	shift := uint(i&1) * 4
	a[i/2] = a[i/2]&^(15<<shift) | (v&15)<<shift
}
