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

// Magic is the first word of every container ("xff2").
const Magic = 0x32666678

// HeaderSize is the size of the fixed header in bytes.
const HeaderSize = 0x70

// Header is the fixed header at the start of the container. Fields are in
// file order. Fields with a Vmem suffix are addresses used by the loader on
// the target machine and fields with a Ptr suffix are file offsets.
type Header struct {
	Magic       uint32
	Unk1        uint32
	Unk2        uint32
	UnkSections uint32

	Unk3        uint32
	Length      uint32
	EndOffset   uint32
	StringCount uint32

	VmemUnkCount     uint32
	SymbolCount      uint32
	SymbolVmem       uint32
	SymbolStrtabVmem uint32

	SectionHeaderVmem  uint32
	SymbolAddrListVmem uint32
	RelocHeaderCount   uint32
	RelocHeaderVmem    uint32

	SectionCount           uint32
	SectionNameOffsetsVmem uint32
	SectionStrtabVmem      uint32
	UnkCount               uint32

	StringOffsetsPtr  uint32
	SymbolTablePtr    uint32
	SymbolStrtabPtr   uint32
	SectionHeadersPtr uint32

	SymbolLocationsPtr    uint32
	RelocHeadersPtr       uint32
	SectionNameOffsetsPtr uint32
	SectionStrtabPtr      uint32
}

// SectionHeader is an entry in the section header table.
type SectionHeader struct {
	Padding uint32
	Address uint32
	Size    uint32
	Align   uint32
	Type    uint32
	Unk1    uint32
	Unk2    uint32
	Offset  uint32
}

const sectionHeaderSize = 32

// SymbolEntry is an entry in the symbol table. The low four bits of Info are
// the symbol type and the next four bits are the binding.
type SymbolEntry struct {
	NameOffset uint32
	Value      uint32
	Size       uint32
	Info       uint16
	Section    uint16
}

const symbolEntrySize = 16

// RelocHeader describes the relocations for one section.
type RelocHeader struct {
	Type    uint32
	Count   uint32
	Section uint32
	Pointer uint32
	Vmem    uint32
	Offset  uint32
	Length  uint32
}

const relocHeaderSize = 28

// RelocEntry is a single relocation. Info packs the relocation type in the
// low byte and the symbol index in the upper 24 bits.
type RelocEntry struct {
	Offset uint32
	Info   uint32
}

const relocEntrySize = 8
