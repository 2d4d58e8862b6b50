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
	"encoding/binary"
)

// vec128 is a 128-bit register modeled as four 32-bit lanes. Byte-level
// operations view it as sixteen bytes with lane 0 in bytes 0..3,
// little-endian, matching the memory layout the renormalization tables
// are derived for. The reference kernels below are the portable
// implementation of the four vector operations the decoder needs:
// lane-wise shift/multiply/subtract, byte shuffle by index vector with a
// zero sentinel, a packed less-than mask, and a truncating float32
// divide.
type vec128 [4]uint32

func (v vec128) bytes() (b [16]byte) {
	binary.LittleEndian.PutUint32(b[0:], v[0])
	binary.LittleEndian.PutUint32(b[4:], v[1])
	binary.LittleEndian.PutUint32(b[8:], v[2])
	binary.LittleEndian.PutUint32(b[12:], v[3])
	return b
}

func fromBytes(b *[16]byte) vec128 {
	return vec128{
		binary.LittleEndian.Uint32(b[0:]),
		binary.LittleEndian.Uint32(b[4:]),
		binary.LittleEndian.Uint32(b[8:]),
		binary.LittleEndian.Uint32(b[12:]),
	}
}

func (v vec128) srl(k uint32) vec128 {
	return vec128{v[0] >> k, v[1] >> k, v[2] >> k, v[3] >> k}
}

func (v vec128) and(m uint32) vec128 {
	return vec128{v[0] & m, v[1] & m, v[2] & m, v[3] & m}
}

func (v vec128) sub(o vec128) vec128 {
	return vec128{v[0] - o[0], v[1] - o[1], v[2] - o[2], v[3] - o[3]}
}

func (v vec128) mullo(o vec128) vec128 {
	return vec128{v[0] * o[0], v[1] * o[1], v[2] * o[2], v[3] * o[3]}
}

func (v vec128) or(o vec128) vec128 {
	return vec128{v[0] | o[0], v[1] | o[1], v[2] | o[2], v[3] | o[3]}
}

// divTrunc divides lane-wise in single precision and truncates toward
// zero. For value < 2^24 and divisor >= 16 the quotient is below 2^20
// and fits the 23-bit mantissa, so the result is exact.
func (v vec128) divTrunc(o vec128) vec128 {
	return vec128{
		uint32(float32(v[0]) / float32(o[0])),
		uint32(float32(v[1]) / float32(o[1])),
		uint32(float32(v[2]) / float32(o[2])),
		uint32(float32(v[3]) / float32(o[3])),
	}
}

// ltMask packs the lane-wise compare v < limit into four bits,
// lane 0 in bit 0.
func (v vec128) ltMask(limit uint32) uint32 {
	m := uint32(0)
	for j := uint32(0); j < 4; j++ {
		if v[j] < limit {
			m |= 1 << j
		}
	}
	return m
}

// shuffleBytes rearranges the sixteen bytes of v by the index vector
// shuf; any index with the high bit set yields a zero byte.
func (v vec128) shuffleBytes(shuf *[16]byte) vec128 {
	src := v.bytes()
	var r [16]byte
	for i, idx := range shuf {
		if idx < 0x80 {
			r[i] = src[idx&15]
		}
	}
	return fromBytes(&r)
}

// shuffleRefill scatters the first eight bytes at src into lane
// positions selected by shuf; the upper eight source bytes are zero,
// as with a 64-bit vector load.
func shuffleRefill(src []byte, shuf *[16]byte) vec128 {
	var b [16]byte
	copy(b[:8], src)
	var r [16]byte
	for i, idx := range shuf {
		if idx < 0x80 {
			r[i] = b[idx&15]
		}
	}
	return fromBytes(&r)
}
