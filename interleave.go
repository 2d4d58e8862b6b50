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
	"math"

	"golang.org/x/exp/slices"
)

// Encoder encodes a byte stream into sixteen interleaved range-coded
// lanes; symbol i goes to lane i&15. The zero value is ready to use and
// the internal buffers are reused across calls to Encode.
type Encoder struct {
	lanes   [lanes]laneEncoder
	written []byte
}

// Encode compresses src under the probability model s and returns the
// payload: a 48-byte header holding the first three bytes of every lane,
// the renormalization bytes of all lanes in original symbol order, and
// two zero tail bytes.
func (e *Encoder) Encode(src []byte, s *Statistics) ([]byte, error) {
	if len(src) == 0 {
		return nil, ErrBadAlphabet
	}
	if uint64(len(src)) > math.MaxUint32 {
		return nil, ErrSizeOverflow
	}

	for i := range e.lanes {
		e.lanes[i].init(1 + len(src)/lanes)
	}
	e.written = slices.Grow(e.written[:0], len(src))[:len(src)]

	// Per symbol, record how many bytes its lane emitted; the merge
	// below needs the counts to lay the bytes out in symbol order.
	total := 0
	for i, sym := range src {
		lane := &e.lanes[i&laneMask]
		before := len(lane.buf)
		lane.encode(s.cum[sym], s.cum[int(sym)+1])
		n := len(lane.buf) - before
		e.written[i] = byte(n)
		total += n
	}
	for i := range e.lanes {
		e.lanes[i].flush()
	}

	out := make([]byte, 0, lanes*3+total+2)

	// Lane headers: the decoder primes its sixteen value registers
	// from these, so each lane's cursor starts past them.
	var cur [lanes]int
	for lane := range e.lanes {
		out = append(out, e.lanes[lane].buf[:3]...)
		cur[lane] = 3
	}

	// Interleave the renormalization bytes in original symbol order,
	// which is exactly the order the decoder consumes them.
	for i := range src {
		n := int(e.written[i])
		if n == 0 {
			continue
		}
		lane := i & laneMask
		out = append(out, e.lanes[lane].buf[cur[lane]:cur[lane]+n]...)
		cur[lane] += n
	}

	return append(out, 0, 0), nil
}
