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
	"debug/elf"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/object"
)

// alignment of section payloads in an encoded container
const payloadAlign = 16

// strtab builds a string table. The empty string is always at offset zero.
type strtab struct {
	b       bytes.Buffer
	offsets map[string]uint32
}

func newStrtab() *strtab {
	st := &strtab{offsets: make(map[string]uint32)}
	st.add("")
	return st
}

func (st *strtab) add(s string) uint32 {
	if o, ok := st.offsets[s]; ok {
		return o
	}
	o := uint32(st.b.Len())
	st.b.WriteString(s)
	st.b.WriteByte(0)
	st.offsets[s] = o
	return o
}

func align(v uint32, a uint32) uint32 {
	return (v + a - 1) &^ (a - 1)
}

// Encode creates a container for the module. Section flags and the
// discovered flag of relocations are not stored in the container.
func Encode(m *object.Module) ([]byte, error) {
	var hdr Header
	hdr.Magic = Magic

	secNames := newStrtab()
	nameOffsets := make([]uint32, len(m.Sections))
	for i, s := range m.Sections {
		nameOffsets[i] = secNames.add(s.Name)
	}

	symNames := newStrtab()
	symbols := make([]SymbolEntry, len(m.Symbols))
	for i, s := range m.Symbols {
		symbols[i] = SymbolEntry{
			NameOffset: symNames.add(s.Name),
			Value:      s.Value,
			Size:       s.Size,
			Info:       s.Info,
			Section:    s.Section,
		}
	}

	locations := make([]uint32, len(m.Symbols))
	copy(locations, m.Locations)

	// tables follow the header in a fixed order
	p := uint32(HeaderSize)

	hdr.SectionCount = uint32(len(m.Sections))
	hdr.SectionHeadersPtr = p
	p += hdr.SectionCount * sectionHeaderSize

	hdr.SectionNameOffsetsPtr = p
	p += hdr.SectionCount * 4

	hdr.SectionStrtabPtr = p
	p = align(p+uint32(secNames.b.Len()), 4)

	hdr.SymbolCount = uint32(len(m.Symbols))
	hdr.StringCount = uint32(len(symNames.offsets))
	hdr.SymbolTablePtr = p
	p += hdr.SymbolCount * symbolEntrySize

	hdr.SymbolStrtabPtr = p
	p = align(p+uint32(symNames.b.Len()), 4)

	hdr.SymbolLocationsPtr = p
	p += hdr.SymbolCount * 4

	hdr.RelocHeaderCount = uint32(len(m.Groups))
	hdr.RelocHeadersPtr = p
	p += hdr.RelocHeaderCount * relocHeaderSize

	relocHeaders := make([]RelocHeader, len(m.Groups))
	relocs := make([][]RelocEntry, len(m.Groups))
	for i, g := range m.Groups {
		if int(g.Section) >= len(m.Sections) {
			return nil, curated.Errorf("xff: encode: relocation group %d refers to section %d", i, g.Section)
		}
		relocHeaders[i] = RelocHeader{
			Type:    uint32(elf.SHT_REL),
			Count:   uint32(len(g.Relocations)),
			Section: uint32(g.Section),
			Offset:  p,
			Length:  uint32(len(g.Relocations)) * relocEntrySize,
		}
		relocs[i] = make([]RelocEntry, len(g.Relocations))
		for j, r := range g.Relocations {
			if r.Symbol >= uint32(len(m.Symbols)) {
				return nil, curated.Errorf("xff: encode: relocation %d of group %d refers to symbol %d", j, i, r.Symbol)
			}
			relocs[i][j] = RelocEntry{Offset: r.Offset, Info: object.PackInfo(r.Type, r.Symbol)}
		}
		p += relocHeaders[i].Length
	}

	sections := make([]SectionHeader, len(m.Sections))
	for i, s := range m.Sections {
		sections[i] = SectionHeader{
			Address: s.Address,
			Size:    s.Size,
			Align:   s.Align,
			Type:    uint32(s.Type),
		}
		if s.Kind == object.KindZeroFill || s.Size == 0 {
			continue
		}
		if uint32(len(s.Data)) != s.Size {
			return nil, curated.Errorf("xff: encode: section %s has %d bytes of data for size %d", s.Name, len(s.Data), s.Size)
		}
		p = align(p, payloadAlign)
		sections[i].Offset = p
		p += s.Size
	}

	hdr.Length = p
	hdr.EndOffset = p

	out := make([]byte, p)
	put := func(at uint32, v interface{}) {
		copy(out[at:], marshal(v))
	}

	put(0, &hdr)
	put(hdr.SectionHeadersPtr, sections)
	put(hdr.SectionNameOffsetsPtr, nameOffsets)
	copy(out[hdr.SectionStrtabPtr:], secNames.b.Bytes())
	put(hdr.SymbolTablePtr, symbols)
	copy(out[hdr.SymbolStrtabPtr:], symNames.b.Bytes())
	put(hdr.SymbolLocationsPtr, locations)
	put(hdr.RelocHeadersPtr, relocHeaders)
	for i := range relocHeaders {
		put(relocHeaders[i].Offset, relocs[i])
	}
	for i, s := range m.Sections {
		if sections[i].Offset != 0 {
			copy(out[sections[i].Offset:], s.Data)
		}
	}

	return out, nil
}
