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

package elfimage

import (
	"debug/elf"
	"fmt"
	"io"
)

// Dump writes a readable description of the file to w.
func (f *File) Dump(w io.Writer) {
	h := f.Header
	fmt.Fprintf(w, "class:    %v %v\n", elf.Class(h.Ident[elf.EI_CLASS]), elf.Data(h.Ident[elf.EI_DATA]))
	fmt.Fprintf(w, "type:     %v\n", elf.Type(h.Type))
	fmt.Fprintf(w, "machine:  %v\n", elf.Machine(h.Machine))
	fmt.Fprintf(w, "entry:    0x%08x\n", h.Entry)
	fmt.Fprintf(w, "flags:    0x%08x\n", h.Flags)
	fmt.Fprintf(w, "sections: %d at 0x%x (strings in %d)\n", h.Shnum, h.Shoff, h.Shstrndx)
	fmt.Fprintf(w, "programs: %d at 0x%x\n", h.Phnum, h.Phoff)

	fmt.Fprintf(w, "\nSections\n")
	for i, s := range f.Sections {
		fmt.Fprintf(w, "%3d %-20s %-14v addr=0x%08x size=0x%06x off=0x%06x align=%-3d %v\n",
			i, f.SectionNames[i], elf.SectionType(s.Type), s.Addr, s.Size, s.Off, s.Addralign, elf.SectionFlag(s.Flags))
	}

	fmt.Fprintf(w, "\nPrograms\n")
	for i, p := range f.Programs {
		fmt.Fprintf(w, "%3d %-12v off=0x%06x vaddr=0x%08x filesz=0x%06x memsz=0x%06x %v\n",
			i, elf.ProgType(p.Type), p.Off, p.Vaddr, p.Filesz, p.Memsz, elf.ProgFlag(p.Flags))
	}
}
