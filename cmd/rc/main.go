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

	"github.com/SnellerInc/rangecoder"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 3 || (args[0] != "c" && args[0] != "d") {
		fatalf("usage: %s c|d <input> <output>", os.Args[0])
	}

	buf, err := os.ReadFile(args[1])
	if err != nil {
		fatalf("reading %s: %s", args[1], err)
	}

	var out []byte
	switch args[0] {
	case "c":
		out, err = rangecoder.Pack(buf)
		if err != nil {
			fatalf("compressing: %s", err)
		}
		fmt.Printf("%dB -> %dB (%.3gx)\n", len(buf), len(out), float64(len(buf))/float64(len(out)))
	case "d":
		out, err = rangecoder.Unpack(buf)
		if err != nil {
			fatalf("decompressing: %s", err)
		}
		fmt.Printf("%dB -> %dB\n", len(buf), len(out))
	}

	if err := os.WriteFile(args[2], out, 0644); err != nil {
		fatalf("writing %s: %s", args[2], err)
	}
}
