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
	"github.com/SnellerInc/rangecoder/ints"
)

const (
	probBits  = 12
	probScale = 1 << probBits

	// The coding interval lives in a 24-bit domain.
	minLen = 0x00010000
	maxLen = 0x00FFFFFF

	lanes    = 16
	laneMask = lanes - 1

	maxSyms = 256
)

// Statistics is a quantized probability model over the byte alphabet:
// a cumulative table cum[0..256] with cum[256] == probScale, where
// cum[s+1]-cum[s] is the scaled probability of symbol s. Every symbol
// with a non-zero raw frequency is assigned a strictly positive range.
type Statistics struct {
	cum   [maxSyms + 1]uint32
	freqs [maxSyms]uint32
}

// NewStatistics computes a probability model from the byte histogram
// of src. It fails with ErrBadAlphabet when src is empty.
func NewStatistics(src []byte) (*Statistics, error) {
	var freqs [maxSyms]uint32
	histogram(&freqs, src)
	return NewStatisticsFromFreqs(&freqs)
}

// NewStatisticsFromFreqs computes a probability model from an explicit
// frequency vector. freq is copied; the copy may be adjusted (a second
// symbol is brought to frequency 1 when only one symbol is used) and
// remains observable through Freqs.
func NewStatisticsFromFreqs(freq *[maxSyms]uint32) (*Statistics, error) {
	s := &Statistics{freqs: *freq}
	if ec := s.normalize(); ec != ecOK {
		return nil, errs[ec]
	}
	return s, nil
}

// Freqs returns the frequency vector the model was built from, including
// any adjustment made by the builder. Re-building statistics from this
// vector yields an identical cumulative table.
func (s *Statistics) Freqs() *[maxSyms]uint32 {
	return &s.freqs
}

// CumProb returns the scaled cumulative probability of symbol sym,
// i.e. the sum of the scaled probabilities of all smaller symbols.
// CumProb(256) is always probScale.
func (s *Statistics) CumProb(sym int) uint32 {
	return s.cum[sym]
}

func (s *Statistics) normalize() errorCode {
	var totalFreq uint64
	usedSyms := uint32(0)
	for _, f := range s.freqs {
		totalFreq += uint64(f)
		if f != 0 {
			usedSyms++
		}
	}
	if usedSyms == 0 {
		return ecBadAlphabet
	}
	if usedSyms == 1 {
		// A lone symbol gives the decoder nothing to distinguish, so
		// bring a second symbol up to frequency 1.
		for i, f := range s.freqs {
			if f == 0 {
				s.freqs[i] = 1
				totalFreq++
				break
			}
		}
		usedSyms++
	}

	// Count the used symbols whose scaled count truncates to zero; they
	// are later promoted to 1, which would push the total past the scale.
	// Shrinking the scale by that count changes who truncates, so recount
	// until the set is stable. The count is bounded by 255, so this
	// cannot loop forever.
	adjustedScale := uint32(probScale)
	for {
		truncated := uint32(0)
		for _, f := range s.freqs {
			if f == 0 {
				continue
			}
			if l := uint32(uint64(f) * uint64(adjustedScale) / totalFreq); l == 0 {
				truncated++
			}
		}
		if truncated == 0 {
			break
		}
		next := uint32(probScale) - truncated
		if next == adjustedScale {
			break
		}
		adjustedScale = next
	}

	// First pass assigns the clamped scaled counts. If rounding left a
	// shortfall, the second pass hands it to the most frequent symbol.
	var boostIndex, boostAmount uint32
	for pass := 0; pass < 2; pass++ {
		var mostFreq, mostIndex uint32
		ci := uint32(0)
		for i := 0; i < maxSyms; i++ {
			s.cum[i] = ci
			f := s.freqs[i]
			if f == 0 {
				continue
			}
			if f > mostFreq {
				mostFreq, mostIndex = f, uint32(i)
			}
			l := uint32(uint64(f) * uint64(adjustedScale) / totalFreq)
			l = ints.Clamp(l, 1, probScale-(usedSyms-1))
			if pass == 1 && uint32(i) == boostIndex {
				l += boostAmount
			}
			ci += l
			if ci > probScale {
				return ecBadAlphabet
			}
		}
		s.cum[maxSyms] = probScale
		if ci == probScale {
			break
		}
		if pass == 1 {
			return ecBadAlphabet
		}
		boostIndex = mostIndex
		boostAmount = probScale - ci
	}
	return ecOK
}

// DenseTable maps every quantized interval position back to the packed
// triple sym | cumLow<<8 | cumRange<<20 of the symbol owning it.
type DenseTable [probScale]uint32

// NewDenseTable expands the cumulative table of s into the lookup table
// used by the decoders. Symbols with a zero scaled range own no slots.
func NewDenseTable(s *Statistics) *DenseTable {
	tab := &DenseTable{}
	for sym := 0; sym < maxSyms; sym++ {
		n := s.cum[sym+1] - s.cum[sym]
		if n == 0 {
			continue
		}
		k := uint32(sym) | s.cum[sym]<<8 | n<<20
		for j := uint32(0); j < n; j++ {
			tab[s.cum[sym]+j] = k
		}
	}
	return tab
}

func histogram(freqs *[maxSyms]uint32, src []byte) {
	// 4-way histogram calculation to compensate for the store-to-load forwarding issues observed here:
	// https://fastcompression.blogspot.com/2014/09/counting-bytes-fast-little-trick-from.html
	var histograms [4][maxSyms]uint32
	n := uint(len(src))
	e := ints.AlignDown(n, 4)
	for i := uint(0); i < e; i += 4 {
		histograms[0][src[i+0]]++
		histograms[1][src[i+1]]++
		histograms[2][src[i+2]]++
		histograms[3][src[i+3]]++
	}
	// Process the remainder
	for i := e; i < n; i++ {
		histograms[0][src[i]]++
	}
	// Add up all the ways
	for i := 0; i < maxSyms; i++ {
		freqs[i] = histograms[0][i] + histograms[1][i] + histograms[2][i] + histograms[3][i]
	}
}
