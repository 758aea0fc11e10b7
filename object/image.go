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

package object

import (
	"debug/elf"
	"fmt"
)

// Program is an entry in the fixed image's program header table.
type Program struct {
	Type     elf.ProgType
	Flags    elf.ProgFlag
	Offset   uint32
	VAddr    uint32
	PAddr    uint32
	FileSize uint32
	MemSize  uint32
	Align    uint32
}

// Image is the fixed base executable. Its sections have addresses that cannot
// be changed.
type Image struct {
	Name     string
	Entry    uint32
	Sections []Section
	Programs []Program
}

func (img *Image) String() string {
	return fmt.Sprintf("%s: entry 0x%08x, %d sections, %d programs", img.Name, img.Entry, len(img.Sections), len(img.Programs))
}

// FixedSections returns the allocated sections of the image ordered by address.
func (img *Image) FixedSections() []Section {
	if img == nil {
		return nil
	}
	s := make([]Section, 0, len(img.Sections))
	for _, sec := range img.Sections {
		if sec.Allocated() {
			s = append(s, sec)
		}
	}
	return SortByAddress(s)
}
