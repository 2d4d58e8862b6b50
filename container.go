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
	"hash/crc32"
	"math"
)

// The container framing: a two-byte signature, the original and
// compressed sizes, a CRC-32 of the original bytes, and the 256 scaled
// 16-bit frequencies the decoder rebuilds the model from.
const (
	containerSig0 = 'R'
	containerSig1 = 'c'

	containerHeaderSize = 2 + 4*3 + maxSyms*2
)

// Pack compresses src into a self-describing container. The symbol
// frequencies are reduced to 16 bits (rounding, minimum 1 for any used
// symbol) before quantization so the header stays fixed-size; both ends
// derive the model from the same reduced counts.
func Pack(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, ErrBadAlphabet
	}
	if uint64(len(src)) > math.MaxUint32 {
		return nil, ErrSizeOverflow
	}

	var freqs [maxSyms]uint32
	histogram(&freqs, src)

	maxFreq := uint32(0)
	for _, f := range freqs {
		if f > maxFreq {
			maxFreq = f
		}
	}
	for i, f := range freqs {
		if f == 0 {
			continue
		}
		r := uint32((math.MaxUint16*uint64(f) + uint64(maxFreq)/2) / uint64(maxFreq))
		if r == 0 {
			r = 1
		}
		freqs[i] = r
	}

	s, err := NewStatisticsFromFreqs(&freqs)
	if err != nil {
		return nil, err
	}
	var enc Encoder
	payload, err := enc.Encode(src, s)
	if err != nil {
		return nil, err
	}
	if uint64(containerHeaderSize)+uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrSizeOverflow
	}

	out := make([]byte, containerHeaderSize, containerHeaderSize+len(payload))
	out[0] = containerSig0
	out[1] = containerSig1
	binary.LittleEndian.PutUint32(out[2:], uint32(len(src)))
	binary.LittleEndian.PutUint32(out[6:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[10:], crc32.ChecksumIEEE(src))
	for i := 0; i < maxSyms; i++ {
		// The transmitted counts are the reduced ones, not the
		// builder's adjusted copy; both sides apply the same
		// adjustment when rebuilding the model.
		binary.LittleEndian.PutUint16(out[14+i*2:], uint16(freqs[i]))
	}
	return append(out, payload...), nil
}

// Unpack decompresses a container produced by Pack, verifying the
// signature, the declared sizes and the CRC-32 of the result.
func Unpack(src []byte) ([]byte, error) {
	if len(src) < containerHeaderSize {
		return nil, ErrCorruptInput
	}
	if src[0] != containerSig0 || src[1] != containerSig1 {
		return nil, ErrCorruptInput
	}
	origSize := binary.LittleEndian.Uint32(src[2:])
	compSize := binary.LittleEndian.Uint32(src[6:])
	wantCRC := binary.LittleEndian.Uint32(src[10:])
	if uint64(compSize) != uint64(len(src)-containerHeaderSize) {
		return nil, ErrCorruptInput
	}

	var freqs [maxSyms]uint32
	for i := 0; i < maxSyms; i++ {
		freqs[i] = uint32(binary.LittleEndian.Uint16(src[14+i*2:]))
	}
	s, err := NewStatisticsFromFreqs(&freqs)
	if err != nil {
		return nil, err
	}

	out, err := Decode(src[containerHeaderSize:], s, int(origSize))
	if err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(out) != wantCRC {
		return nil, ErrCorruptInput
	}
	return out, nil
}
