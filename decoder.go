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

// laneDecoder mirrors laneEncoder: (value, length) track the interval,
// and each decode consumes 0, 1 or 2 refill bytes. It also serves as the
// scalar tail of the vector decoder, which moves lane state in and out.
type laneDecoder struct {
	value  uint32
	length uint32
}

// init primes the decoder with the first three stream bytes,
// big-endian, and returns the advanced read position.
func (d *laneDecoder) init(src []byte, pos int) int {
	d.length = maxLen
	d.value = uint32(src[pos])<<16 | uint32(src[pos+1])<<8 | uint32(src[pos+2])
	return pos + 3
}

// decode returns the next symbol and the advanced read position.
// The caller must guarantee at least two readable bytes at pos.
func (d *laneDecoder) decode(tab *DenseTable, src []byte, pos int) (byte, int) {
	r := d.length >> probBits
	q := d.value / r

	// The mask guards table reads against corrupt input; on a valid
	// stream q is already below probScale.
	t := tab[q&(probScale-1)]

	sym := byte(t)
	cumLow := (t >> 8) & (probScale - 1)
	cumRange := t >> 20

	d.value -= cumLow * r
	d.length = cumRange * r

	for d.length < minLen {
		d.value = d.value<<8 | uint32(src[pos])
		pos++
		d.length <<= 8
	}
	return sym, pos
}
