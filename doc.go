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

// Package rangecoder implements a static-model range coder over the
// byte alphabet with a vectorized decoder.
//
// The encoder splits the input round-robin across sixteen independent
// scalar range coders (symbol i goes to lane i&15) and merges their
// output into a single payload: a 48-byte header priming the decoder,
// followed by every lane's renormalization bytes laid out in original
// symbol order. Interleaving breaks the serial dependency between
// consecutive symbols of a single range coder, so the decoder can hold
// all sixteen lanes in four 4-lane vectors and renormalize them
// branch-free through precomputed shuffle tables.
//
// Probabilities are quantized to a 4096-slot cumulative table built
// from a byte histogram; the model is fixed for the whole stream.
// Typical use:
//
//	stats, err := rangecoder.NewStatistics(data)
//	var enc rangecoder.Encoder
//	payload, err := enc.Encode(data, stats)
//	back, err := rangecoder.Decode(payload, stats, len(data))
//
// Pack and Unpack wrap the payload in a small self-describing container
// carrying the model frequencies and a CRC-32 of the original bytes.
package rangecoder
