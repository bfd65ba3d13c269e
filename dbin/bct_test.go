package dbin

import "testing"

func TestBctInc(t *testing.T) {
	// 0, 1, 2, 10, 11, 12, 20, 21, 22, 100 in ternary
	want := []uint64{
		0x0, 0x1, 0x2, 0x4, 0x5, 0x6, 0x8, 0x9, 0xA, 0x10,
	}
	x := uint64(0)
	for i, w := range want {
		if x != w {
			t.Fatalf("bct sequence[%d] = %#x, want %#x", i, x, w)
		}
		x = bctInc(x)
	}
}

func TestBctTwos(t *testing.T) {
	if bctAnyTwos(0x1) || bctAnyTwos(0x5) {
		t.Fatalf("no-two values reported twos")
	}
	if !bctAnyTwos(0x2) || !bctAnyTwos(0x12) {
		t.Fatalf("two digits not detected")
	}
	if got := bctLowestTwo(0x2); got != 0 {
		t.Fatalf("bctLowestTwo(0x2) = %d, want 0", got)
	}
	if got := bctLowestTwo(0x1 | 0x8); got != 1 {
		t.Fatalf("bctLowestTwo(0x9) = %d, want 1", got)
	}
}

func TestTernaryIndex(t *testing.T) {
	fillBCTHalfValues()
	tests := []struct {
		name  string
		zeros uint16
		ones  uint16
		want  int
	}{
		{name: "AllZeros", zeros: 0xFFFF, ones: 0, want: 0},
		{name: "AllOnes", zeros: 0, ones: 0xFFFF, want: (pruneEntries - 1) / 2},
		{name: "AllDontCare", zeros: 0, ones: 0, want: pruneEntries - 1},
		{name: "LowOne", zeros: 0xFFFE, ones: 1, want: 1},
		{name: "LowDontCare", zeros: 0xFFFE, ones: 0, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ternaryIndex(tt.zeros, tt.ones); got != tt.want {
				t.Fatalf("ternaryIndex(%#x, %#x) = %d, want %d", tt.zeros, tt.ones, got, tt.want)
			}
		})
	}
}

func TestTernaryIndexMatchesBctOrder(t *testing.T) {
	fillBCTHalfValues()
	// walking the BCT counter enumerates exactly the ternary indices
	bct := uint64(0)
	for index := 0; index < 3*3*3; index, bct = index+1, bctInc(bct) {
		var zeros, ones uint16
		for pos := 0; pos < 16; pos++ {
			switch (bct >> (uint(pos) * 2)) & 3 {
			case 0:
				zeros |= 1 << uint(pos)
			case 1:
				ones |= 1 << uint(pos)
			}
		}
		if got := ternaryIndex(zeros, ones); got != index {
			t.Fatalf("bct %#x: ternaryIndex = %d, want %d", bct, got, index)
		}
	}
}

func TestNibbleArray(t *testing.T) {
	a := make([]byte, 4)
	for i := 0; i < 8; i++ {
		nibbleSet(a, i, uint8(i+5))
	}
	for i := 0; i < 8; i++ {
		if got := nibbleGet(a, i); got != uint8(i+5)&15 {
			t.Fatalf("nibbleGet(%d) = %d, want %d", i, got, uint8(i+5)&15)
		}
	}
	nibbleSet(a, 3, 0)
	if got := nibbleGet(a, 3); got != 0 {
		t.Fatalf("overwrite failed, got %d", got)
	}
	if got := nibbleGet(a, 2); got != 7 {
		t.Fatalf("neighbour clobbered, got %d", got)
	}
}

func TestExactGroup(t *testing.T) {
	tests := []struct {
		name string
		mask uint32
		want int
	}{
		{name: "SingleQuadrant", mask: 0x00000000, want: 1},
		{name: "TwoQuadrants", mask: 0x00FF00FF, want: 2},
		{name: "Four", mask: 0x0F0F_00FF, want: 4},
		{name: "AllOnes", mask: 0xFFFFFFFF, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exactGroup(tt.mask); got != tt.want {
				t.Fatalf("exactGroup(%#x) = %d, want %d", tt.mask, got, tt.want)
			}
		})
	}
}
