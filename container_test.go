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
)

func TestPackUnpack(t *testing.T) {
	for _, n := range []int{1, 100, 10000, 100000} {
		src := testdata(n, int64(n)+555)
		packed, err := Pack(src)
		if err != nil {
			t.Fatal(err)
		}
		if len(packed) < containerHeaderSize {
			t.Fatalf("container smaller than its header: %d", len(packed))
		}
		got, err := Unpack(packed)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("n=%d: container round trip mismatch", n)
		}
	}
}

func TestPackEmpty(t *testing.T) {
	if _, err := Pack(nil); err != ErrBadAlphabet {
		t.Fatalf("got %v, want ErrBadAlphabet", err)
	}
}

func TestUnpackCorrupt(t *testing.T) {
	src := testdata(5000, 1234)
	packed, err := Pack(src)
	if err != nil {
		t.Fatal(err)
	}

	bad := append([]byte{}, packed...)
	bad[0] = 'X'
	if _, err := Unpack(bad); err != ErrCorruptInput {
		t.Fatalf("bad signature: got %v", err)
	}

	if _, err := Unpack(packed[:100]); err != ErrCorruptInput {
		t.Fatalf("truncated: got %v", err)
	}

	bad = append([]byte{}, packed...)
	bad[10] ^= 0xFF // stored CRC
	if _, err := Unpack(bad); err != ErrCorruptInput {
		t.Fatalf("flipped CRC: got %v", err)
	}

	bad = append([]byte{}, packed...)
	bad[6]++ // compressed size no longer matches the buffer
	if _, err := Unpack(bad); err != ErrCorruptInput {
		t.Fatalf("bad comp size: got %v", err)
	}

	// a flipped payload bit must surface as a CRC (or decode) error
	bad = append([]byte{}, packed...)
	bad[containerHeaderSize+5] ^= 0x10
	if _, err := Unpack(bad); err == nil {
		t.Fatal("corrupt payload slipped through the CRC")
	}
}
