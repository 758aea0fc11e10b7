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
	"encoding/binary"
	"fmt"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/object"
)

// File is a parsed container.
type File struct {
	Header Header

	Sections     []SectionHeader
	NameOffsets  []uint32
	SectionNames []string
	Payloads     [][]byte

	Symbols     []SymbolEntry
	SymbolNames []string
	Locations   []uint32

	RelocHeaders []RelocHeader
	Relocations  [][]RelocEntry
}

func formatError(detail string, args ...interface{}) error {
	return curated.Errorf(object.FormatError, "xff", fmt.Sprintf(detail, args...))
}

// table returns the bytes of a table of count entries of size bytes at ptr. An
// empty table is never out of bounds.
func table(b []byte, what string, ptr uint32, count uint32, size uint32) ([]byte, error) {
	n := uint64(count) * uint64(size)
	if n == 0 {
		return nil, nil
	}
	if uint64(ptr)+n > uint64(len(b)) {
		return nil, formatError("%s table (0x%x + %d x %d) is outside of file (%d bytes)", what, ptr, count, size, len(b))
	}
	return b[ptr : uint64(ptr)+n], nil
}

// cstring returns the NUL terminated string at base+off.
func cstring(b []byte, what string, base uint32, off uint32) (string, error) {
	start := uint64(base) + uint64(off)
	if start >= uint64(len(b)) {
		return "", formatError("%s name at 0x%x is outside of file", what, start)
	}
	end := bytes.IndexByte(b[start:], 0)
	if end < 0 {
		return "", formatError("%s name at 0x%x is not terminated", what, start)
	}
	return string(b[start : start+uint64(end)]), nil
}

// Parse a container. The byte slice is not modified but section payloads
// refer to it.
func Parse(b []byte) (*File, error) {
	if len(b) < HeaderSize {
		return nil, formatError("file too short for header (%d bytes)", len(b))
	}

	f := &File{}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &f.Header); err != nil {
		return nil, formatError("%v", err)
	}
	if f.Header.Magic != Magic {
		return nil, formatError("bad magic (0x%08x)", f.Header.Magic)
	}

	if err := f.readSections(b); err != nil {
		return nil, err
	}
	if err := f.readSymbols(b); err != nil {
		return nil, err
	}
	if err := f.readRelocations(b); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) readSections(b []byte) error {
	n := f.Header.SectionCount

	tb, err := table(b, "section header", f.Header.SectionHeadersPtr, n, sectionHeaderSize)
	if err != nil {
		return err
	}
	f.Sections = make([]SectionHeader, n)
	if err := binary.Read(bytes.NewReader(tb), binary.LittleEndian, f.Sections); err != nil {
		return formatError("%v", err)
	}

	tb, err = table(b, "section name offset", f.Header.SectionNameOffsetsPtr, n, 4)
	if err != nil {
		return err
	}
	f.NameOffsets = make([]uint32, n)
	if err := binary.Read(bytes.NewReader(tb), binary.LittleEndian, f.NameOffsets); err != nil {
		return formatError("%v", err)
	}

	f.SectionNames = make([]string, n)
	f.Payloads = make([][]byte, n)
	for i, s := range f.Sections {
		f.SectionNames[i], err = cstring(b, "section", f.Header.SectionStrtabPtr, f.NameOffsets[i])
		if err != nil {
			return err
		}

		if elf.SectionType(s.Type) == elf.SHT_NOBITS || s.Size == 0 {
			continue
		}
		if uint64(s.Offset)+uint64(s.Size) > uint64(len(b)) {
			return formatError("section %s payload (0x%x + 0x%x) is outside of file", f.SectionNames[i], s.Offset, s.Size)
		}
		f.Payloads[i] = b[s.Offset : s.Offset+s.Size]
	}

	return nil
}

func (f *File) readSymbols(b []byte) error {
	n := f.Header.SymbolCount

	tb, err := table(b, "symbol", f.Header.SymbolTablePtr, n, symbolEntrySize)
	if err != nil {
		return err
	}
	f.Symbols = make([]SymbolEntry, n)
	if err := binary.Read(bytes.NewReader(tb), binary.LittleEndian, f.Symbols); err != nil {
		return formatError("%v", err)
	}

	tb, err = table(b, "symbol location", f.Header.SymbolLocationsPtr, n, 4)
	if err != nil {
		return err
	}
	f.Locations = make([]uint32, n)
	if err := binary.Read(bytes.NewReader(tb), binary.LittleEndian, f.Locations); err != nil {
		return formatError("%v", err)
	}

	f.SymbolNames = make([]string, n)
	for i, s := range f.Symbols {
		f.SymbolNames[i], err = cstring(b, "symbol", f.Header.SymbolStrtabPtr, s.NameOffset)
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *File) readRelocations(b []byte) error {
	n := f.Header.RelocHeaderCount

	tb, err := table(b, "relocation header", f.Header.RelocHeadersPtr, n, relocHeaderSize)
	if err != nil {
		return err
	}
	f.RelocHeaders = make([]RelocHeader, n)
	if err := binary.Read(bytes.NewReader(tb), binary.LittleEndian, f.RelocHeaders); err != nil {
		return formatError("%v", err)
	}

	f.Relocations = make([][]RelocEntry, n)
	for i, h := range f.RelocHeaders {
		if h.Section >= f.Header.SectionCount {
			return formatError("relocation header %d refers to section %d of %d", i, h.Section, f.Header.SectionCount)
		}

		tb, err := table(b, "relocation", h.Offset, h.Count, relocEntrySize)
		if err != nil {
			return err
		}
		f.Relocations[i] = make([]RelocEntry, h.Count)
		if err := binary.Read(bytes.NewReader(tb), binary.LittleEndian, f.Relocations[i]); err != nil {
			return formatError("%v", err)
		}

		for j, r := range f.Relocations[i] {
			if _, sym := object.UnpackInfo(r.Info); sym >= f.Header.SymbolCount {
				return formatError("relocation %d of header %d refers to symbol %d of %d", j, i, sym, f.Header.SymbolCount)
			}
		}
	}

	return nil
}

// Module converts the container to the object model.
func (f *File) Module(name string) *object.Module {
	m := &object.Module{
		Name:      name,
		Sections:  make([]object.Section, len(f.Sections)),
		Symbols:   make([]object.Symbol, len(f.Symbols)),
		Locations: make([]uint32, len(f.Locations)),
		Groups:    make([]object.RelocationGroup, len(f.RelocHeaders)),
	}

	for i, s := range f.Sections {
		m.Sections[i] = object.NewSection(f.SectionNames[i], elf.SectionType(s.Type), 0, s.Address, s.Size, s.Align, f.Payloads[i])
	}

	for i, s := range f.Symbols {
		m.Symbols[i] = object.NewSymbol(f.SymbolNames[i], s.Section, s.Value, s.Size, s.Info)
	}
	copy(m.Locations, f.Locations)

	for i, h := range f.RelocHeaders {
		g := object.RelocationGroup{
			Section:     uint16(h.Section),
			Relocations: make([]object.Relocation, len(f.Relocations[i])),
		}
		for j, r := range f.Relocations[i] {
			typ, sym := object.UnpackInfo(r.Info)
			g.Relocations[j] = object.Relocation{
				Section: uint16(h.Section),
				Offset:  r.Offset,
				Type:    typ,
				Symbol:  sym,
			}
		}
		m.Groups[i] = g
	}

	return m
}
