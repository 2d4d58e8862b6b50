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

//go:build !linux

package tests

// GuardMemory copies user data without guard pages on platforms where
// we cannot unmap the trailing page; tests still run, they just lose
// the hard fault on out-of-bounds access.
func GuardMemory(userdata []byte) (*GuardedMemory, error) {
	data := make([]byte, len(userdata))
	copy(data, userdata)
	return &GuardedMemory{Data: data}, nil
}

// Free releases the copied buffer.
func (gm *GuardedMemory) Free() error {
	gm.Data = nil
	return nil
}
