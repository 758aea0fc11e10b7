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
	"fmt"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
)

// sizes of the ELF32 structures
const (
	headerSize        = 52
	sectionHeaderSize = 40
	programHeaderSize = 32
)

// File is a parsed ELF32 file.
type File struct {
	Header    elf.Header32
	ByteOrder binary.ByteOrder

	Sections     []elf.Section32
	SectionNames []string
	Payloads     [][]byte

	Programs []elf.Prog32
}

func formatError(detail string, args ...interface{}) error {
	return curated.Errorf(object.FormatError, "elf", fmt.Sprintf(detail, args...))
}

// Parse an ELF32 file. The byte slice is not modified but section payloads
// refer to it.
func Parse(b []byte) (*File, error) {
	if len(b) < headerSize {
		return nil, formatError("file too short for header (%d bytes)", len(b))
	}
	if !bytes.Equal(b[:4], []byte(elf.ELFMAG)) {
		return nil, formatError("bad magic (% x)", b[:4])
	}
	if elf.Class(b[elf.EI_CLASS]) != elf.ELFCLASS32 {
		return nil, formatError("not a 32-bit file (%v)", elf.Class(b[elf.EI_CLASS]))
	}

	f := &File{}
	switch elf.Data(b[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		f.ByteOrder = binary.LittleEndian
	case elf.ELFDATA2MSB:
		f.ByteOrder = binary.BigEndian
	default:
		return nil, formatError("unknown byte order (%v)", elf.Data(b[elf.EI_DATA]))
	}

	if err := binary.Read(bytes.NewReader(b), f.ByteOrder, &f.Header); err != nil {
		return nil, formatError("%v", err)
	}

	if elf.Machine(f.Header.Machine) != elf.EM_MIPS {
		logger.Logf(logger.Allow, "ELF", "machine type is %v not %v", elf.Machine(f.Header.Machine), elf.EM_MIPS)
	}

	if err := f.readSections(b); err != nil {
		return nil, err
	}
	if err := f.readPrograms(b); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) readSections(b []byte) error {
	h := f.Header
	if h.Shnum == 0 {
		return nil
	}
	if h.Shentsize != sectionHeaderSize {
		return formatError("section header entry size is %d", h.Shentsize)
	}
	end := uint64(h.Shoff) + uint64(h.Shnum)*sectionHeaderSize
	if end > uint64(len(b)) {
		return formatError("section header table (0x%x + %d entries) is outside of file", h.Shoff, h.Shnum)
	}
	if h.Shstrndx >= h.Shnum {
		return formatError("string table index %d is not less than %d", h.Shstrndx, h.Shnum)
	}

	f.Sections = make([]elf.Section32, h.Shnum)
	if err := binary.Read(bytes.NewReader(b[h.Shoff:end]), f.ByteOrder, f.Sections); err != nil {
		return formatError("%v", err)
	}

	f.Payloads = make([][]byte, h.Shnum)
	for i, s := range f.Sections {
		if elf.SectionType(s.Type) == elf.SHT_NOBITS || elf.SectionType(s.Type) == elf.SHT_NULL || s.Size == 0 {
			continue
		}
		if uint64(s.Off)+uint64(s.Size) > uint64(len(b)) {
			return formatError("section %d payload (0x%x + 0x%x) is outside of file", i, s.Off, s.Size)
		}
		f.Payloads[i] = b[s.Off : s.Off+s.Size]
	}

	strtab := f.Payloads[h.Shstrndx]
	f.SectionNames = make([]string, h.Shnum)
	for i, s := range f.Sections {
		if s.Name == 0 && len(strtab) == 0 {
			continue
		}
		if s.Name >= uint32(len(strtab)) {
			return formatError("section %d name offset 0x%x is outside of string table", i, s.Name)
		}
		n := bytes.IndexByte(strtab[s.Name:], 0)
		if n < 0 {
			return formatError("section %d name is not terminated", i)
		}
		f.SectionNames[i] = string(strtab[s.Name : s.Name+uint32(n)])
	}

	return nil
}

func (f *File) readPrograms(b []byte) error {
	h := f.Header
	if h.Phnum == 0 {
		return nil
	}
	if h.Phentsize != programHeaderSize {
		return formatError("program header entry size is %d", h.Phentsize)
	}
	end := uint64(h.Phoff) + uint64(h.Phnum)*programHeaderSize
	if end > uint64(len(b)) {
		return formatError("program header table (0x%x + %d entries) is outside of file", h.Phoff, h.Phnum)
	}

	f.Programs = make([]elf.Prog32, h.Phnum)
	if err := binary.Read(bytes.NewReader(b[h.Phoff:end]), f.ByteOrder, f.Programs); err != nil {
		return formatError("%v", err)
	}

	return nil
}

// Image converts the file to the object model.
func (f *File) Image(name string) *object.Image {
	img := &object.Image{
		Name:     name,
		Entry:    f.Header.Entry,
		Sections: make([]object.Section, len(f.Sections)),
		Programs: make([]object.Program, len(f.Programs)),
	}

	for i, s := range f.Sections {
		img.Sections[i] = object.NewSection(f.SectionNames[i], elf.SectionType(s.Type), elf.SectionFlag(s.Flags),
			s.Addr, s.Size, s.Addralign, f.Payloads[i])
	}

	for i, p := range f.Programs {
		img.Programs[i] = object.Program{
			Type:     elf.ProgType(p.Type),
			Flags:    elf.ProgFlag(p.Flags),
			Offset:   p.Off,
			VAddr:    p.Vaddr,
			PAddr:    p.Paddr,
			FileSize: p.Filesz,
			MemSize:  p.Memsz,
			Align:    p.Align,
		}
	}

	return img
}
