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

package linker_test

import (
	"debug/elf"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/xfflink/xfflink/linker"
	"github.com/xfflink/xfflink/object"
	"github.com/xfflink/xfflink/test"
)

func words(w ...uint32) []byte {
	b := make([]byte, len(w)*4)
	for i, v := range w {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return b
}

func word(b []byte, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(b[offset:])
}

func global(name string, section uint16, value uint32) object.Symbol {
	return object.NewSymbol(name, section, value, 4, object.Info(object.TypeFunction, object.BindGlobal))
}

func external(name string) object.Symbol {
	return object.NewSymbol(name, object.SectionExternal, 0, 0, object.Info(object.TypeNone, object.BindGlobal))
}

func text(address uint32, data []byte) object.Section {
	return object.NewSection(".text", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, address, uint32(len(data)), 4, data)
}

func data(address uint32, d []byte) object.Section {
	return object.NewSection(".data", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_WRITE, address, uint32(len(d)), 4, d)
}

func bss(address uint32, size uint32) object.Section {
	return object.NewSection(".bss", elf.SHT_NOBITS, elf.SHF_ALLOC|elf.SHF_WRITE, address, size, 4, nil)
}

// module with a null section followed by the sections
func module(name string, sections []object.Section, symbols ...object.Symbol) *object.Module {
	s := []object.Section{object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil)}
	s = append(s, sections...)
	return &object.Module{
		Name:      name,
		Sections:  s,
		Symbols:   symbols,
		Locations: make([]uint32, len(symbols)),
	}
}

func group(section uint16, relocations ...object.Relocation) object.RelocationGroup {
	for i := range relocations {
		relocations[i].Section = section
	}
	return object.RelocationGroup{Section: section, Relocations: relocations}
}

func reloc(t object.RelocationType, offset uint32, symbol uint32) object.Relocation {
	return object.Relocation{Offset: offset, Type: t, Symbol: symbol}
}

func fill(n int, v byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func image(sections ...object.Section) *object.Image {
	s := []object.Section{object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil)}
	s = append(s, sections...)
	return &object.Image{Name: "base.elf", Sections: s}
}

func fixed(name string, address uint32, d []byte) object.Section {
	return object.NewSection(name, elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, address, uint32(len(d)), 4, d)
}

// expectNoOverlap checks that no two placements share a byte
func expectNoOverlap(t *testing.T, l *linker.Layout) {
	t.Helper()
	p := make([]linker.Placement, len(l.Placements))
	copy(p, l.Placements)
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Offset < p[j].Offset
	})
	for i := 1; i < len(p); i++ {
		test.ExpectSuccess(t, p[i-1].End() <= p[i].Offset, p[i-1].String(), p[i].String())
	}
}
