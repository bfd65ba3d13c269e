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

// comparator models a single redstone comparator: the output is zero when
// the side signal exceeds the back signal, otherwise the back signal,
// reduced by the side signal in subtract mode. Never negative.
func comparator(back, side uint8, subtract bool) uint8 {
	if side > back {
		return 0
	}
	if subtract {
		return back - side
	}
	return back
}

// HexLayer applies the layer identified by config to every lane of start.
//
// A config is 11 bits: the gate-2 back signal in bits 0-3, the gate-1
// side signal in bits 4-7, and the mode bits above. Adding rotate<<8 up
// front keeps the three mode bits independent of rotation, so the biased
// config reads mode2 at bit 8, mode1 at bit 9 and rotate at bit 10.
// Rotation swaps gate 1's back and side inputs. Each lane is the
// lane-wise maximum of the two gates.
func HexLayer(start Map, config uint16) Map {
	config += (config & 0x400) >> 2

	back2 := uint8(config & 15)
	side1 := uint8((config >> 4) & 15)
	mode2 := config&0x100 != 0
	mode1 := config&0x200 != 0
	rotate := config&0x400 != 0

	var out Map
	for i := 0; i < 16; i++ {
		v := start.Lane(i)
		b1, s1 := v, side1
		if rotate {
			b1, s1 = s1, b1
		}
		o := comparator(b1, s1, mode1)
		if o2 := comparator(back2, v, mode2); o2 > o {
			o = o2
		}
		out |= Map(o) << (uint(i) * 4)
	}
	return out
}

// DbinLayer evaluates the terminal 2bin layer identified by config over
// every lane of start and returns the two packed 16-bit output masks,
// bit 1 in the low half and bit 2 in the high half.
//
// A dbin config is 10 bits laid out like a hex config without rotation.
// Bit 1 fires whenever the combined comparator pair is non-zero, which
// over the identity input realises exactly the masks of shape 1*0*1*.
// Bit 2 taps gate 1 alone and is strictly weaker.
func DbinLayer(start Map, config uint16) uint32 {
	back := uint8(config & 15)
	side := uint8((config >> 4) & 15)
	mode2 := config&0x100 != 0
	mode1 := config&0x200 != 0

	var strong, weak uint32
	for i := 0; i < 16; i++ {
		v := start.Lane(i)
		o1 := comparator(v, side, mode1)
		o2 := comparator(back, v, mode2)
		if o1 != 0 || o2 != 0 {
			strong |= 1 << uint(i)
		}
		if o1 != 0 {
			weak |= 1 << uint(i)
		}
	}
	return strong | weak<<16
}

// DbinPrepend composes a hex layer in front of a finishing mask: bit i of
// each 16-bit half of the result is bit m[i] of the corresponding half of
// state.
func DbinPrepend(m Map, state uint32) uint32 {
	var out uint32
	for i := 0; i < 16; i++ {
		j := uint(m.Lane(i))
		out |= ((state >> j) & 1) << uint(i)
		out |= ((state >> (16 + j)) & 1) << uint(16+i)
	}
	return out
}

// DbinPrepend16 is DbinPrepend over a single 16-bit mask.
func DbinPrepend16(m Map, state uint16) uint16 {
	var out uint16
	for i := 0; i < 16; i++ {
		out |= ((state >> uint(m.Lane(i))) & 1) << uint(i)
	}
	return out
}

// DbinUnprepend pushes a partial requirement mask past a hex layer chosen
// as the next chain link: bit i of each 16-bit quarter scatters to bit
// m[i], so the four quarters stay indexed by the intermediate value that
// the remaining chain will observe. Conflicting requirements land on the
// same position in the ones and zeros halves and are caught by the
// caller's overlap check.
func DbinUnprepend(m Map, state uint64) uint64 {
	var out uint64
	for i := 0; i < 16; i++ {
		j := uint(m.Lane(i))
		for q := uint(0); q < 64; q += 16 {
			out |= ((state >> (q + uint(i))) & 1) << (q + j)
		}
	}
	return out
}
