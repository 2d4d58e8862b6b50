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
	"math"

	"golang.org/x/exp/slices"
)

// The renormalization tables, immutable after package init. The 8-bit
// index combines two 4-bit predicates over a 4-lane length vector:
// bit j set means lane j needs at least one refill byte
// (length < minLen), bit j+4 set means it needs two (length < 256).
var (
	// numBytes is the total refill bytes consumed for a given mask, at
	// most 8, matching the 8-byte load the refill shuffle scatters.
	numBytes [256]uint32
	// shiftShuf shifts each lane left by 0, 1 or 2 bytes, zeroing the
	// vacated low bytes; applied to both value and length.
	shiftShuf [256][16]byte
	// distShuf scatters the next numBytes input bytes into the zeroed
	// low byte slots, lane 0 first, a two-byte refill entering as a
	// big-endian pair.
	distShuf [256][16]byte
)

// byteShuffleMask gathers the low byte of each 32-bit lane into the
// first four bytes of the register.
var byteShuffleMask = [16]byte{
	0, 4, 8, 12,
	0x80, 0x80, 0x80, 0x80,
	0x80, 0x80, 0x80, 0x80,
	0x80, 0x80, 0x80, 0x80,
}

func init() {
	for i := 0; i < 256; i++ {
		n := uint32(0)
		for j := 0; j < 4; j++ {
			if (i>>j)&0x10 != 0 {
				n += 2
			} else if (i>>j)&1 != 0 {
				n++
			}
		}
		numBytes[i] = n

		var x [16]byte
		for j := 0; j < 4; j++ {
			switch {
			case (i>>j)&0x10 != 0:
				x[j*4+0] = 0x80
				x[j*4+1] = 0x80
				x[j*4+2] = byte(j*4 + 0)
				x[j*4+3] = byte(j*4 + 1)
			case (i>>j)&1 != 0:
				x[j*4+0] = 0x80
				x[j*4+1] = byte(j*4 + 0)
				x[j*4+2] = byte(j*4 + 1)
				x[j*4+3] = byte(j*4 + 2)
			default:
				x[j*4+0] = byte(j*4 + 0)
				x[j*4+1] = byte(j*4 + 1)
				x[j*4+2] = byte(j*4 + 2)
				x[j*4+3] = byte(j*4 + 3)
			}
		}
		shiftShuf[i] = x

		srcOfs := byte(0)
		for j := 0; j < 4; j++ {
			switch {
			case (i>>j)&0x10 != 0:
				x[j*4+0] = srcOfs + 1
				x[j*4+1] = srcOfs
				x[j*4+2] = 0x80
				x[j*4+3] = 0x80
				srcOfs += 2
			case (i>>j)&1 != 0:
				x[j*4+0] = srcOfs
				x[j*4+1] = 0x80
				x[j*4+2] = 0x80
				x[j*4+3] = 0x80
				srcOfs++
			default:
				x[j*4+0] = 0x80
				x[j*4+1] = 0x80
				x[j*4+2] = 0x80
				x[j*4+3] = 0x80
			}
		}
		distShuf[i] = x
	}
}

// vrangeDecode4 decodes one symbol from each of the four streams held
// in (value, length) and returns the four symbols packed with lane 0 in
// the low byte.
func vrangeDecode4(value, length *vec128, tab *DenseTable) uint32 {
	r := length.srl(probBits)
	q := value.divTrunc(r).and(probScale - 1)

	e := vec128{tab[q[0]], tab[q[1]], tab[q[2]], tab[q[3]]}
	syms := e.shuffleBytes(&byteShuffleMask)[0]

	cumLow := e.srl(8).and(probScale - 1)
	cumRange := e.srl(20)

	*value = value.sub(cumLow.mullo(r))
	*length = cumRange.mullo(r)
	return syms
}

// vrangeNormalize4 renormalizes the four streams, consuming up to two
// bytes per lane (eight total) at pos, and returns the advanced read
// position. The caller must guarantee eight readable bytes.
func vrangeNormalize4(value, length *vec128, src []byte, pos int) int {
	m := length.ltMask(minLen) | length.ltMask(256)<<4

	refill := shuffleRefill(src[pos:], &distShuf[m])
	*value = value.shuffleBytes(&shiftShuf[m]).or(refill)
	*length = length.shuffleBytes(&shiftShuf[m])
	return pos + int(numBytes[m])
}

// Decode decompresses a payload produced by Encoder.Encode under the
// probability model s, returning exactly dstLen bytes.
func Decode(src []byte, s *Statistics, dstLen int) ([]byte, error) {
	return DecodeExplicit(src, NewDenseTable(s), dstLen, nil)
}

// DecodeExplicit is Decode with a prebuilt lookup table; the result is
// appended to dst.
func DecodeExplicit(src []byte, tab *DenseTable, dstLen int, dst []byte) ([]byte, error) {
	if uint64(dstLen) > math.MaxUint32 {
		return nil, ErrSizeOverflow
	}
	r, ec := vrangeDecompress(dst, dstLen, src, tab)
	if ec != ecOK {
		return nil, errs[ec]
	}
	return r, nil
}

func vrangeDecompressReference(dst []byte, dstLen int, src []byte, tab *DenseTable) ([]byte, errorCode) {
	if len(src) < lanes*3+2 {
		return nil, ecCorruptInput
	}

	base := len(dst)
	dst = slices.Grow(dst, dstLen)[:base+dstLen]
	out := dst[base:]

	// Prime the sixteen lanes from the 48-byte header, one big-endian
	// 24-bit word each, lane 0 first.
	var value, length [4]vec128
	pos := 0
	for v := 0; v < 4; v++ {
		length[v] = vec128{maxLen, maxLen, maxLen, maxLen}
		for j := 0; j < 4; j++ {
			value[v][j] = uint32(src[pos])<<16 | uint32(src[pos+1])<<8 | uint32(src[pos+2])
			pos += 3
		}
	}

	// Vectorized decode. The bound keeps eight readable bytes in front
	// of each of the four normalization steps per iteration.
	dstOfs := 0
	for dstOfs+lanes <= dstLen && pos+32 <= len(src) {
		for v := 0; v < 4; v++ {
			syms := vrangeDecode4(&value[v], &length[v], tab)
			binary.LittleEndian.PutUint32(out[dstOfs+v*4:], syms)
		}
		for v := 0; v < 4; v++ {
			pos = vrangeNormalize4(&value[v], &length[v], src, pos)
		}
		dstOfs += lanes
	}

	// Scalar tail: pull one lane's state out of its vector slot, decode
	// a symbol, and put it back.
	var sd laneDecoder
	for dstOfs < dstLen {
		// Never true on valid inputs; the payload tail is padded.
		if pos+2 > len(src) {
			return nil, ecCorruptInput
		}
		v := (dstOfs & laneMask) >> 2
		lane := dstOfs & 3

		sd.length = length[v][lane]
		sd.value = value[v][lane]

		var sym byte
		sym, pos = sd.decode(tab, src, pos)
		out[dstOfs] = sym
		dstOfs++

		length[v][lane] = sd.length
		value[v][lane] = sd.value
	}
	return dst, ecOK
}

// vrangeDecompress is swappable so architecture-specific kernels can be
// slotted in; the portable reference serves every platform today.
var vrangeDecompress func(dst []byte, dstLen int, src []byte, tab *DenseTable) ([]byte, errorCode) = vrangeDecompressReference
