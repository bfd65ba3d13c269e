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

package solver

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// SolveType classifies a request by the shape of its lane bounds.
type SolveType int

const (
	// SolveExact requests have every lane pinned to a single value.
	SolveExact SolveType = iota
	// SolvePartial requests mix pinned lanes with full don't-cares.
	SolvePartial
	// SolveRanged requests have at least one lane with a proper
	// [min,max] range.
	SolveRanged
)

// Accuracy selects the distance-check threshold policy.
type Accuracy int

const (
	// AccuracyReduced prunes aggressively and may miss optimal
	// solutions. It is inadmissible by design; the two-phase driver uses
	// it for a fast upper bound.
	AccuracyReduced Accuracy = iota - 1
	// AccuracyNormal is admissible for goals with at least 15 distinct
	// values.
	AccuracyNormal
	// AccuracyIncreased is admissible for goals with at least 14
	// distinct values.
	AccuracyIncreased
	// AccuracyPerfect is always admissible.
	AccuracyPerfect
)

// Request parse errors.
var (
	ErrNull      = errors.New("no function provided")
	ErrBlank     = errors.New("blank function")
	ErrMalformed = errors.New("malformed expression")
	ErrTooLong   = errors.New("too many values provided")
)

// Request is a parsed solve target. Mins and Maxs hold per-lane bounds
// in display order: the first token of the source text sits in the most
// significant nibble and constrains f(0).
type Request struct {
	Mins uint64
	Maxs uint64
	Type SolveType
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func toHex(c byte) uint64 {
	switch {
	case c <= '9':
		return uint64(c - '0')
	case c <= 'F':
		return uint64(c - 'A' + 10)
	default:
		return uint64(c - 'a' + 10)
	}
}

// containsRanges reports whether some lane has a proper range: a min
// below its max without being a full don't-care.
func containsRanges(mins, maxs uint64) bool {
	for i := 0; i < 16; i++ {
		min := (mins >> (uint(i) * 4)) & 15
		max := (maxs >> (uint(i) * 4)) & 15
		if min != max && !(min == 0 && max == 15) {
			return true
		}
	}
	return false
}

// ParseRequest parses a solve target of up to 16 tokens: hex digits for
// exact lanes, '.', 'x' or 'X' for don't-cares, and h-h ranges with
// optional cosmetic brackets. Shorter inputs are padded with trailing
// don't-care lanes.
func ParseRequest(str string) (Request, error) {
	var req Request
	if str == "" {
		return req, ErrBlank
	}
	length := 0
	for i := 0; i < len(str); {
		c := str[i]
		if i+1 < len(str) && str[i+1] == '-' {
			if !isHex(c) || i+2 >= len(str) || !isHex(str[i+2]) {
				return Request{}, errors.Wrapf(ErrMalformed, "bad range at %q", str[i:])
			}
			req.Mins = req.Mins<<4 | toHex(c)
			req.Maxs = req.Maxs<<4 | toHex(str[i+2])
			length++
			i += 3
			continue
		}
		if c == '.' || c == 'x' || c == 'X' {
			req.Mins <<= 4
			req.Maxs = req.Maxs<<4 | 15
			length++
			i++
			continue
		}
		if c == '[' || c == ']' {
			i++
			continue
		}
		if isHex(c) {
			req.Mins = req.Mins<<4 | toHex(c)
			req.Maxs = req.Maxs<<4 | toHex(c)
			length++
			i++
			continue
		}
		return Request{}, errors.Wrapf(ErrMalformed, "bad character %q", c)
	}

	remaining := 16 - length
	if remaining < 0 {
		return Request{}, ErrTooLong
	}
	req.Mins <<= uint(remaining) * 4
	req.Maxs <<= uint(remaining) * 4
	req.Maxs |= uint64(1)<<(uint(remaining)*4) - 1

	switch {
	case req.Mins == req.Maxs:
		req.Type = SolveExact
	case containsRanges(req.Mins, req.Maxs):
		req.Type = SolveRanged
	default:
		req.Type = SolvePartial
	}
	return req, nil
}

// minGroup counts the distinct values among the pinned lanes, the lower
// bound the precompute uses for partial and ranged goals.
func minGroup(mins, maxs uint64) int {
	var seen uint16
	for i := 0; i < 16; i++ {
		min := (mins >> (uint(i) * 4)) & 15
		max := (maxs >> (uint(i) * 4)) & 15
		if min == max {
			seen |= 1 << min
		}
	}
	n := bits.OnesCount16(seen)
	if n == 0 {
		return 1
	}
	return n
}

// String renders the request in canonical display form, lanes grouped by
// four: hex digits for pinned lanes, X for don't-cares, [h-h] for
// ranges.
func (r Request) String() string {
	var b strings.Builder
	for i := 15; i >= 0; i-- {
		if i%4 == 3 && i != 15 {
			b.WriteByte(' ')
		}
		min := (r.Mins >> (uint(i) * 4)) & 15
		max := (r.Maxs >> (uint(i) * 4)) & 15
		switch {
		case min == max:
			fmt.Fprintf(&b, "%X", min)
		case min == 0 && max == 15:
			b.WriteByte('X')
		default:
			fmt.Fprintf(&b, "[%X-%X]", min, max)
		}
	}
	return b.String()
}
