// This file is part of xfflink.
//
// xfflink is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// xfflink is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with xfflink.  If not, see <https://www.gnu.org/licenses/>.

package xff

import (
	"bytes"
	"encoding/binary"
)

func marshal(v interface{}) []byte {
	b := &bytes.Buffer{}

	// writing fixed size values to a bytes.Buffer cannot fail
	_ = binary.Write(b, binary.LittleEndian, v)

	return b.Bytes()
}

// MarshalHeader returns the header as it appears in the container.
func (f *File) MarshalHeader() []byte {
	return marshal(&f.Header)
}

// MarshalSectionTable returns the section header table as it appears in the
// container.
func (f *File) MarshalSectionTable() []byte {
	return marshal(f.Sections)
}

// MarshalSymbolTable returns the symbol table as it appears in the container.
func (f *File) MarshalSymbolTable() []byte {
	return marshal(f.Symbols)
}

// MarshalRelocationHeaders returns the relocation header table as it appears
// in the container.
func (f *File) MarshalRelocationHeaders() []byte {
	return marshal(f.RelocHeaders)
}
