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
	"debug/elf"
	"fmt"
	"io"

	"github.com/xfflink/xfflink/object"
)

// Dump writes a readable description of the container to w.
func (f *File) Dump(w io.Writer) {
	h := f.Header
	fmt.Fprintf(w, "magic:              0x%08x\n", h.Magic)
	fmt.Fprintf(w, "length:             0x%x (end 0x%x)\n", h.Length, h.EndOffset)
	fmt.Fprintf(w, "sections:           %d at 0x%x (names 0x%x, strtab 0x%x)\n", h.SectionCount, h.SectionHeadersPtr, h.SectionNameOffsetsPtr, h.SectionStrtabPtr)
	fmt.Fprintf(w, "symbols:            %d at 0x%x (strtab 0x%x, locations 0x%x)\n", h.SymbolCount, h.SymbolTablePtr, h.SymbolStrtabPtr, h.SymbolLocationsPtr)
	fmt.Fprintf(w, "relocation headers: %d at 0x%x\n", h.RelocHeaderCount, h.RelocHeadersPtr)

	fmt.Fprintf(w, "\nSections\n")
	for i, s := range f.Sections {
		fmt.Fprintf(w, "%3d %-20s %-14s addr=0x%08x size=0x%06x align=%-3d offset=0x%06x\n",
			i, f.SectionNames[i], elf.SectionType(s.Type), s.Address, s.Size, s.Align, s.Offset)
	}

	fmt.Fprintf(w, "\nSymbols\n")
	for i, s := range f.Symbols {
		sym := object.NewSymbol(f.SymbolNames[i], s.Section, s.Value, s.Size, s.Info)
		fmt.Fprintf(w, "%5d %-8s %-8s sec=0x%04x val=0x%08x size=0x%06x loc=0x%08x %s\n",
			i, sym.Binding, sym.Kind, s.Section, s.Value, s.Size, f.Locations[i], sym.Name)
	}

	fmt.Fprintf(w, "\nRelocations\n")
	for i, h := range f.RelocHeaders {
		name := ""
		if int(h.Section) < len(f.SectionNames) {
			name = f.SectionNames[h.Section]
		}
		fmt.Fprintf(w, "header %d: %d relocations for section %d (%s)\n", i, h.Count, h.Section, name)
		for _, r := range f.Relocations[i] {
			typ, sym := object.UnpackInfo(r.Info)
			fmt.Fprintf(w, "\t0x%06x %-8s %5d %s\n", r.Offset, typ, sym, f.SymbolNames[sym])
		}
	}
}
