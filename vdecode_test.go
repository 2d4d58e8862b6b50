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
	"bytes"
	"testing"

	"github.com/SnellerInc/rangecoder/tests"
)

func TestNumBytesBound(t *testing.T) {
	for i := 0; i < 256; i++ {
		want := uint32(0)
		for j := 0; j < 4; j++ {
			switch {
			case (i>>j)&0x10 != 0:
				want += 2
			case (i>>j)&1 != 0:
				want++
			}
		}
		if numBytes[i] != want {
			t.Fatalf("numBytes[%#x] = %d, want %d", i, numBytes[i], want)
		}
		if numBytes[i] > 8 {
			t.Fatalf("numBytes[%#x] = %d exceeds the 8-byte load", i, numBytes[i])
		}
	}
}

// TestNormalizeShuffles checks the fused renormalization against the
// scalar model for every per-lane refill shape.
func TestNormalizeShuffles(t *testing.T) {
	src := []byte{0xA1, 0xB2, 0xC3, 0xD4, 0xE5, 0xF6, 0x17, 0x28}
	// representative length per needed refill count
	lens := [3]uint32{0x00230000, 0x00008000, 0x00000080}
	var need [4]int
	for c := 0; c < 81; c++ {
		k := c
		for j := 0; j < 4; j++ {
			need[j] = k % 3
			k /= 3
		}
		value := vec128{0x00123456, 0x00654321, 0x00ABCDEF, 0x00FEDCBA}
		var length vec128
		for j := 0; j < 4; j++ {
			length[j] = lens[need[j]]
		}
		wantValue, wantLength := value, length
		n := 0
		for j := 0; j < 4; j++ {
			for b := 0; b < need[j]; b++ {
				wantValue[j] = wantValue[j]<<8 | uint32(src[n])
				wantLength[j] <<= 8
				n++
			}
		}
		pos := vrangeNormalize4(&value, &length, src, 0)
		if pos != n {
			t.Fatalf("case %d: consumed %d bytes, want %d", c, pos, n)
		}
		if value != wantValue {
			t.Fatalf("case %d: value %08x, want %08x", c, value, wantValue)
		}
		if length != wantLength {
			t.Fatalf("case %d: length %08x, want %08x", c, length, wantLength)
		}
	}
}

func TestByteShuffleMask(t *testing.T) {
	e := vec128{0x11223344, 0x55667788, 0x99AABBCC, 0xDDEEFF00}
	got := e.shuffleBytes(&byteShuffleMask)
	if got[0] != 0x00CC8844 {
		t.Fatalf("packed symbols %08x, want 00CC8844", got[0])
	}
	if got[1] != 0 || got[2] != 0 || got[3] != 0 {
		t.Fatal("upper lanes not zeroed")
	}
}

// scalarDecodePayload decodes an interleaved payload using sixteen
// scalar decoders only; the vectorized decoder must agree with it.
func scalarDecodePayload(payload []byte, tab *DenseTable, n int) ([]byte, error) {
	var decs [lanes]laneDecoder
	pos := 0
	for l := range decs {
		pos = decs[l].init(payload, pos)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		if pos+2 > len(payload) {
			return nil, ErrCorruptInput
		}
		out[i], pos = decs[i&laneMask].decode(tab, payload, pos)
	}
	return out, nil
}

func TestVectorMatchesScalar(t *testing.T) {
	for _, n := range []int{1, 16, 17, 64, 1000, 10000, 65536} {
		src := testdata(n, int64(n)*3+1)
		s, err := NewStatistics(src)
		if err != nil {
			t.Fatal(err)
		}
		var enc Encoder
		payload, err := enc.Encode(src, s)
		if err != nil {
			t.Fatal(err)
		}
		tab := NewDenseTable(s)
		want, err := scalarDecodePayload(payload, tab, n)
		if err != nil {
			t.Fatal(err)
		}
		got, err := DecodeExplicit(payload, tab, n, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("n=%d: vector decode disagrees with scalar decode", n)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("n=%d: decode does not round-trip", n)
		}
	}
}

func TestDecodeAppends(t *testing.T) {
	src := testdata(500, 11)
	s, err := NewStatistics(src)
	if err != nil {
		t.Fatal(err)
	}
	var enc Encoder
	payload, err := enc.Encode(src, s)
	if err != nil {
		t.Fatal(err)
	}
	prefix := []byte("prefix")
	out, err := DecodeExplicit(payload, NewDenseTable(s), len(src), prefix)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out[:len(prefix)], prefix) || !bytes.Equal(out[len(prefix):], src) {
		t.Fatal("DecodeExplicit did not append to dst")
	}
}

func TestDecodeTruncated(t *testing.T) {
	src := testdata(1000, 13)
	s, err := NewStatistics(src)
	if err != nil {
		t.Fatal(err)
	}
	var enc Encoder
	payload, err := enc.Encode(src, s)
	if err != nil {
		t.Fatal(err)
	}
	tab := NewDenseTable(s)
	if _, err := DecodeExplicit(payload[:20], tab, len(src), nil); err != ErrCorruptInput {
		t.Fatalf("short payload: got %v, want ErrCorruptInput", err)
	}
	// long enough for the header but starved of renormalization bytes
	if _, err := DecodeExplicit(payload[:lanes*3+2], tab, len(src), nil); err != ErrCorruptInput {
		t.Fatalf("truncated payload: got %v, want ErrCorruptInput", err)
	}
}

// TestDecodeCorrupt flips bits across the payload; the decoder must
// stay in bounds and either report corruption or return a result of the
// declared size. Guard pages make any out-of-bounds read fault.
func TestDecodeCorrupt(t *testing.T) {
	src := testdata(2000, 23)
	s, err := NewStatistics(src)
	if err != nil {
		t.Fatal(err)
	}
	var enc Encoder
	payload, err := enc.Encode(src, s)
	if err != nil {
		t.Fatal(err)
	}
	tab := NewDenseTable(s)
	for _, bit := range []int{0, 1, 7, 8, 23, 47 * 8, 48 * 8, 50*8 + 3, (len(payload) - 1) * 8} {
		corrupt := make([]byte, len(payload))
		copy(corrupt, payload)
		corrupt[bit/8] ^= 1 << (bit % 8)
		gm, err := tests.GuardMemory(corrupt)
		if err != nil {
			t.Fatal(err)
		}
		out, err := DecodeExplicit(gm.Data, tab, len(src), nil)
		if err == nil && len(out) != len(src) {
			t.Fatalf("bit %d: wrong-size result %d", bit, len(out))
		}
		gm.Free()
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("test message 123 test message 456"))
	f.Add(bytes.Repeat([]byte{0x42}, 100))
	f.Add([]byte{0})
	f.Fuzz(func(t *testing.T, ref []byte) {
		s, err := NewStatistics(ref)
		if err != nil {
			return // empty input
		}
		var enc Encoder
		payload, err := enc.Encode(ref, s)
		if err != nil {
			t.Fatalf("encode failed: %s", err)
		}
		got, err := Decode(payload, s, len(ref))
		if err != nil {
			t.Fatalf("round-trip failed: %s", err)
		}
		if !bytes.Equal(got, ref) {
			t.Fatal("round trip result is not equal to the input")
		}
	})
}

func BenchmarkEncode(b *testing.B) {
	src := testdata(1<<20, 77)
	s, err := NewStatistics(src)
	if err != nil {
		b.Fatal(err)
	}
	var enc Encoder
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(src, s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	src := testdata(1<<20, 78)
	s, err := NewStatistics(src)
	if err != nil {
		b.Fatal(err)
	}
	var enc Encoder
	payload, err := enc.Encode(src, s)
	if err != nil {
		b.Fatal(err)
	}
	tab := NewDenseTable(s)
	var dst []byte
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var err error
		dst, err = DecodeExplicit(payload, tab, len(src), dst[:0])
		if err != nil {
			b.Fatal(err)
		}
	}
}
