// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package rangecoder

import (
	"golang.org/x/exp/slices"
)

// laneEncoder is a single scalar range coder. It narrows the interval
// [base, base+length) within the 24-bit domain, emits the top interval
// byte whenever length drops below minLen, and fixes up already-emitted
// bytes when base wraps around.
type laneEncoder struct {
	base   uint32
	length uint32
	buf    []byte
}

func (e *laneEncoder) init(reserve int) {
	e.base = 0
	e.length = maxLen
	e.buf = slices.Grow(e.buf[:0], reserve)
}

// encode narrows the interval to the slice [cumLow, cumHigh) of the
// probability scale. Emits 0, 1 or 2 bytes.
func (e *laneEncoder) encode(cumLow, cumHigh uint32) {
	r := e.length >> probBits
	l := cumLow * r
	h := cumHigh * r

	orig := e.base
	e.base = (e.base + l) & maxLen
	e.length = h - l

	if orig > e.base {
		e.propagateCarry()
	}
	if e.length < minLen {
		e.renorm()
	}
}

// propagateCarry distributes a wrap of base into the emitted stream:
// trailing 0xFF bytes absorb the carry and the first non-0xFF byte
// (walking backward) takes the increment.
func (e *laneEncoder) propagateCarry() {
	for i := len(e.buf) - 1; i >= 0; i-- {
		if e.buf[i] != 0xFF {
			e.buf[i]++
			return
		}
		e.buf[i] = 0
	}
}

func (e *laneEncoder) renorm() {
	for {
		e.buf = append(e.buf, byte(e.base>>16))
		e.base = (e.base << 8) & maxLen
		e.length <<= 8
		if e.length >= minLen {
			break
		}
	}
}

// flush terminates the stream. The first branch keeps a wider safe
// interval when there is room; the narrower fallback still renormalizes
// back above minLen before the stream ends. The buffer is padded so the
// decoder can always prime itself with three bytes, and two zero bytes
// cover its final look-ahead.
func (e *laneEncoder) flush() {
	orig := e.base
	if e.length > 2*minLen {
		e.base = (e.base + minLen) & maxLen
		e.length = minLen >> 1
	} else {
		e.base = (e.base + minLen>>1) & maxLen
		e.length = minLen >> 9
	}
	if orig > e.base {
		e.propagateCarry()
	}
	e.renorm()

	for len(e.buf) < 3 {
		e.buf = append(e.buf, 0)
	}
	e.buf = append(e.buf, 0, 0)
}
