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

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/huff0"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/SnellerInc/rangecoder"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

// timeDecode reports the fastest of repeated decodes within the deadline.
func timeDecode(buf []byte, stats *rangecoder.Statistics, payload []byte) time.Duration {
	var min time.Duration
	tab := rangecoder.NewDenseTable(stats)
	deadline := time.Now().Add(3 * time.Second)
	var tmp []byte
	for time.Now().Before(deadline) {
		istart := time.Now()
		var err error
		tmp, err = rangecoder.DecodeExplicit(payload, tab, len(buf), tmp[:0])
		if err != nil {
			fatalf("decompression error: %s", err)
		}
		dur := time.Since(istart)
		if min == 0 || dur < min {
			min = dur
		}
	}
	return min
}

func main() {
	var compare bool
	flag.BoolVar(&compare, "c", false, "compare against huff0, s2 and zstd sizes")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fatalf("usage: %s [-c] <file>", os.Args[0])
	}

	buf, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("reading file: %s", err)
	}

	stats, err := rangecoder.NewStatistics(buf)
	if err != nil {
		fatalf("building model: %s", err)
	}
	var enc rangecoder.Encoder
	payload, err := enc.Encode(buf, stats)
	if err != nil {
		fatalf("compression error: %s", err)
	}

	min := timeDecode(buf, stats, payload)
	gibps := float64(len(buf)) / float64(min) * float64(time.Second) / (1 << 30)
	fmt.Printf("range:  %dB -> %dB (%.3gx) %.3g GiB/s decode\n",
		len(buf), len(payload), float64(len(buf))/float64(len(payload)), gibps)

	if !compare {
		return
	}

	// Huffman baseline; huff0 refuses incompressible or single-symbol
	// input, which is itself informative.
	if h, _, err := huff0.Compress1X(buf, &huff0.Scratch{}); err != nil {
		fmt.Printf("huff0:  n/a (%s)\n", err)
	} else {
		fmt.Printf("huff0:  %dB -> %dB (%.3gx)\n", len(buf), len(h), float64(len(buf))/float64(len(h)))
	}

	sz := s2.Encode(nil, buf)
	fmt.Printf("s2:     %dB -> %dB (%.3gx)\n", len(buf), len(sz), float64(len(buf))/float64(len(sz)))

	zenc, err := zstd.NewWriter(nil)
	if err != nil {
		fatalf("zstd: %s", err)
	}
	zz := zenc.EncodeAll(buf, nil)
	zenc.Close()
	fmt.Printf("zstd:   %dB -> %dB (%.3gx)\n", len(buf), len(zz), float64(len(buf))/float64(len(zz)))
}
