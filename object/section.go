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
	"sort"
)

// SectionKind is the broad category of a section.
type SectionKind int

// List of valid SectionKind values.
const (
	KindNull SectionKind = iota
	KindCode
	KindZeroFill
	KindRelocations
	KindSymbols
	KindStrings
	KindOther
)

func (k SectionKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindCode:
		return "code/data"
	case KindZeroFill:
		return "zero-fill"
	case KindRelocations:
		return "relocations"
	case KindSymbols:
		return "symbols"
	case KindStrings:
		return "strings"
	}
	return "other"
}

// KindFromType returns the SectionKind for an ELF section type. Both container
// formats use the ELF section type numbering.
func KindFromType(t elf.SectionType) SectionKind {
	switch t {
	case elf.SHT_NULL:
		return KindNull
	case elf.SHT_PROGBITS, elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY, elf.SHT_PREINIT_ARRAY:
		return KindCode
	case elf.SHT_NOBITS:
		return KindZeroFill
	case elf.SHT_REL, elf.SHT_RELA:
		return KindRelocations
	case elf.SHT_SYMTAB, elf.SHT_DYNSYM:
		return KindSymbols
	case elf.SHT_STRTAB:
		return KindStrings
	}
	return KindOther
}

// Section is a named, typed and contiguous range of bytes. Data is nil for
// zero-fill sections.
type Section struct {
	Name    string
	Kind    SectionKind
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Address uint32
	Size    uint32
	Align   uint32
	Data    []byte
}

// NewSection creates a section with the Kind field set according to the ELF
// section type.
func NewSection(name string, t elf.SectionType, flags elf.SectionFlag, address uint32, size uint32, align uint32, data []byte) Section {
	s := Section{
		Name:    name,
		Kind:    KindFromType(t),
		Type:    t,
		Flags:   flags,
		Address: address,
		Size:    size,
		Align:   align,
	}
	if s.Kind != KindZeroFill {
		s.Data = data
	}
	return s
}

func (s Section) String() string {
	return fmt.Sprintf("%-16s %-11s addr=0x%08x size=0x%06x align=%d", s.Name, s.Kind, s.Address, s.Size, s.Align)
}

// Placeable returns true if the section occupies space in the merged output.
func (s Section) Placeable() bool {
	switch s.Type {
	case elf.SHT_PROGBITS, elf.SHT_NOBITS, elf.SHT_INIT_ARRAY, elf.SHT_FINI_ARRAY:
		return true
	}
	return false
}

// Allocated returns true if the section has the SHF_ALLOC flag and is not
// empty. Only allocated sections of the fixed image are placed.
func (s Section) Allocated() bool {
	return s.Flags&elf.SHF_ALLOC == elf.SHF_ALLOC && s.Size > 0
}

// Executable returns true if the section contains instructions. Module
// sections carry no flags so the name of the section is also considered.
func (s Section) Executable() bool {
	if s.Type != elf.SHT_PROGBITS {
		return false
	}
	if s.Flags&elf.SHF_EXECINSTR == elf.SHF_EXECINSTR {
		return true
	}
	return s.Name == ".text" || (len(s.Name) > 6 && s.Name[:6] == ".text.")
}

// Contains returns true if the address is inside the section's declared
// address range.
func (s Section) Contains(address uint32) bool {
	return address >= s.Address && uint64(address) < uint64(s.Address)+uint64(s.Size)
}

// SortByAddress returns a copy of the list of sections sorted by address.
// Sections with the same address keep their relative order.
func SortByAddress(sections []Section) []Section {
	c := make([]Section, len(sections))
	copy(c, sections)
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Address < c[j].Address
	})
	return c
}
