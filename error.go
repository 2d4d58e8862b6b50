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
	"errors"
)

// Every failure surfaced by this package is one of these three values.
var (
	// ErrBadAlphabet indicates that the symbol frequencies cannot be
	// quantized: no symbol has a non-zero count, or the scaled counts
	// cannot be made to sum to the probability scale.
	ErrBadAlphabet = errors.New("rangecoder: unusable symbol alphabet")
	// ErrCorruptInput indicates that a decoder ran out of input bytes
	// or that container metadata does not match the enclosed payload.
	ErrCorruptInput = errors.New("rangecoder: corrupt input")
	// ErrSizeOverflow indicates a declared size that does not fit in 32 bits.
	ErrSizeOverflow = errors.New("rangecoder: size exceeds 32 bits")
)

type errorCode uint32

const (
	ecOK errorCode = iota
	ecBadAlphabet
	ecCorruptInput
	ecSizeOverflow
	ecLastCode
)

var errs = [ecLastCode]error{
	ecOK:           nil,
	ecBadAlphabet:  ErrBadAlphabet,
	ecCorruptInput: ErrCorruptInput,
	ecSizeOverflow: ErrSizeOverflow,
}
