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
	"bytes"
	"debug/elf"
	"encoding/binary"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/object"
)

func (f *File) marshal(v interface{}) []byte {
	b := &bytes.Buffer{}

	// writing fixed size values to a bytes.Buffer cannot fail
	_ = binary.Write(b, f.ByteOrder, v)

	return b.Bytes()
}

// MarshalHeader returns the ELF header as it appears in the file.
func (f *File) MarshalHeader() []byte {
	return f.marshal(&f.Header)
}

// MarshalSectionTable returns the section header table as it appears in the
// file.
func (f *File) MarshalSectionTable() []byte {
	return f.marshal(f.Sections)
}

// MarshalProgramTable returns the program header table as it appears in the
// file.
func (f *File) MarshalProgramTable() []byte {
	return f.marshal(f.Programs)
}

// Encode writes the complete file. Parts of the original file that are not
// covered by the header, the tables or a section payload are zero.
func Encode(f *File) ([]byte, error) {
	if len(f.Payloads) != len(f.Sections) {
		return nil, curated.Errorf("elf: encode: %d payloads for %d sections", len(f.Payloads), len(f.Sections))
	}

	size := uint64(headerSize)
	grow := func(end uint64) {
		if end > size {
			size = end
		}
	}
	if len(f.Sections) > 0 {
		grow(uint64(f.Header.Shoff) + uint64(len(f.Sections))*sectionHeaderSize)
	}
	if len(f.Programs) > 0 {
		grow(uint64(f.Header.Phoff) + uint64(len(f.Programs))*programHeaderSize)
	}
	for i, s := range f.Sections {
		if f.Payloads[i] != nil {
			grow(uint64(s.Off) + uint64(len(f.Payloads[i])))
		}
	}

	out := make([]byte, size)
	copy(out, f.MarshalHeader())
	for i, s := range f.Sections {
		if f.Payloads[i] != nil {
			copy(out[s.Off:], f.Payloads[i])
		}
	}
	if len(f.Sections) > 0 {
		copy(out[f.Header.Shoff:], f.MarshalSectionTable())
	}
	if len(f.Programs) > 0 {
		copy(out[f.Header.Phoff:], f.MarshalProgramTable())
	}

	return out, nil
}

// FromImage creates a little-endian MIPS file for the image. A section name
// string table is added to the end of the list of sections if the image does
// not have one.
func FromImage(img *object.Image) *File {
	f := &File{ByteOrder: binary.LittleEndian}

	copy(f.Header.Ident[:], elf.ELFMAG)
	f.Header.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	f.Header.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	f.Header.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	f.Header.Type = uint16(elf.ET_EXEC)
	f.Header.Machine = uint16(elf.EM_MIPS)
	f.Header.Version = uint32(elf.EV_CURRENT)
	f.Header.Entry = img.Entry
	f.Header.Ehsize = headerSize

	// the image's own list of sections is never changed
	sections := append([]object.Section(nil), img.Sections...)
	if len(sections) == 0 || sections[0].Type != elf.SHT_NULL {
		sections = append([]object.Section{{}}, sections...)
	}

	shstrndx := -1
	for i, s := range sections {
		if s.Name == ".shstrtab" {
			shstrndx = i
		}
	}

	strtab := &bytes.Buffer{}
	strtab.WriteByte(0)
	names := make([]uint32, len(sections)+1)
	addName := func(i int, n string) {
		if n == "" {
			return
		}
		names[i] = uint32(strtab.Len())
		strtab.WriteString(n)
		strtab.WriteByte(0)
	}
	for i, s := range sections {
		addName(i, s.Name)
	}
	if shstrndx == -1 {
		shstrndx = len(sections)
		addName(shstrndx, ".shstrtab")
		sections = append(sections, object.Section{Name: ".shstrtab", Type: elf.SHT_STRTAB, Kind: object.KindStrings, Align: 1})
	}
	sections[shstrndx].Data = strtab.Bytes()
	sections[shstrndx].Size = uint32(strtab.Len())

	p := uint32(headerSize)
	if len(img.Programs) > 0 {
		f.Header.Phoff = p
		f.Header.Phentsize = programHeaderSize
		f.Header.Phnum = uint16(len(img.Programs))
		p += uint32(len(img.Programs)) * programHeaderSize
		for _, pr := range img.Programs {
			f.Programs = append(f.Programs, elf.Prog32{
				Type:   uint32(pr.Type),
				Off:    pr.Offset,
				Vaddr:  pr.VAddr,
				Paddr:  pr.PAddr,
				Filesz: pr.FileSize,
				Memsz:  pr.MemSize,
				Flags:  uint32(pr.Flags),
				Align:  pr.Align,
			})
		}
	}

	f.Sections = make([]elf.Section32, len(sections))
	f.Payloads = make([][]byte, len(sections))
	f.SectionNames = make([]string, len(sections))
	for i, s := range sections {
		f.SectionNames[i] = s.Name
		f.Sections[i] = elf.Section32{
			Name:      names[i],
			Type:      uint32(s.Type),
			Flags:     uint32(s.Flags),
			Addr:      s.Address,
			Size:      s.Size,
			Addralign: s.Align,
		}
		if s.Type == elf.SHT_NULL || s.Type == elf.SHT_NOBITS || s.Size == 0 {
			continue
		}
		p = (p + 15) &^ 15
		f.Sections[i].Off = p
		f.Payloads[i] = s.Data
		p += uint32(len(s.Data))
	}

	p = (p + 3) &^ 3
	f.Header.Shoff = p
	f.Header.Shentsize = sectionHeaderSize
	f.Header.Shnum = uint16(len(sections))
	f.Header.Shstrndx = uint16(shstrndx)

	return f
}

// EncodeImage is a convenience function for Encode(FromImage(img)).
func EncodeImage(img *object.Image) ([]byte, error) {
	return Encode(FromImage(img))
}
