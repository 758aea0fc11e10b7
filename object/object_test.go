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

package object_test

import (
	"debug/elf"
	"testing"

	"github.com/xfflink/xfflink/object"
	"github.com/xfflink/xfflink/test"
)

func TestSymbolDecode(t *testing.T) {
	sym := object.NewSymbol("main", 1, 0x10, 0x20, object.Info(object.TypeFunction, object.BindGlobal))
	test.ExpectEquality(t, sym.Kind, object.SymFunction)
	test.ExpectEquality(t, sym.Binding, object.BindGlobal)
	test.ExpectSuccess(t, sym.Defined())
	test.ExpectSuccess(t, sym.Exported())

	sym = object.NewSymbol("printf", object.SectionExternal, 0, 0, object.Info(object.TypeNone, object.BindGlobal))
	test.ExpectEquality(t, sym.Kind, object.SymExternal)
	test.ExpectFailure(t, sym.Defined())
	test.ExpectFailure(t, sym.Exported())

	sym = object.NewSymbol("bios", object.SectionAbsolute, 0, 0, object.Info(object.TypeFunction, object.BindGlobal))
	test.ExpectEquality(t, sym.Kind, object.SymAbsolute)
	test.ExpectSuccess(t, sym.Exported())

	sym = object.NewSymbol(".text", 1, 0, 0, object.Info(object.TypeSection, object.BindLocal))
	test.ExpectEquality(t, sym.Kind, object.SymSection)
	test.ExpectFailure(t, sym.Exported())

	sym = object.NewSymbol("local", 1, 0, 0, object.Info(object.TypeObject, object.BindLocal))
	test.ExpectEquality(t, sym.Kind, object.SymObject)
	test.ExpectFailure(t, sym.Exported())

	sym = object.NewSymbol("weak", 1, 0, 0, object.Info(object.TypeObject, object.BindWeak))
	test.ExpectSuccess(t, sym.Exported())

	// reserved section indexes are not definitions
	sym = object.NewSymbol("common", 0xfff2, 0, 0, object.Info(object.TypeObject, object.BindGlobal))
	test.ExpectFailure(t, sym.Defined())
}

func TestRelocationInfo(t *testing.T) {
	info := object.PackInfo(object.RelocHi16, 0x1234)
	test.ExpectEquality(t, info, uint32(0x123405))

	typ, sym := object.UnpackInfo(info)
	test.ExpectEquality(t, typ, object.RelocHi16)
	test.ExpectEquality(t, sym, uint32(0x1234))

	test.ExpectSuccess(t, object.RelocationType(6).Supported())
	test.ExpectFailure(t, object.RelocationType(3).Supported())
	test.ExpectEquality(t, object.RelocationType(9).String(), "type(9)")
}

func TestModuleCopies(t *testing.T) {
	m := &object.Module{
		Name: "a.xff",
		Sections: []object.Section{
			object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil),
			object.NewSection(".text", elf.SHT_PROGBITS, 0, 0x100, 8, 4, make([]byte, 8)),
			object.NewSection(".bss", elf.SHT_NOBITS, 0, 0x200, 8, 4, make([]byte, 8)),
		},
		Symbols: []object.Symbol{
			object.NewSymbol("f", 1, 4, 4, object.Info(object.TypeFunction, object.BindGlobal)),
		},
		Locations: []uint32{0},
	}

	// zero-fill sections never carry a payload
	test.ExpectEquality(t, len(m.Sections[2].Data), 0)
	test.ExpectSuccess(t, m.Sections[1].Executable())
	test.ExpectFailure(t, m.Sections[2].Executable())

	a, ok := m.DeclaredAddress(0)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, a, uint32(0x104))

	n := m.WithSymbols([]object.Symbol{
		object.NewSymbol("g", object.SectionAbsolute, 0, 0, object.Info(object.TypeFunction, object.BindGlobal)),
	}, []uint32{0x80001000})
	test.ExpectEquality(t, len(m.Symbols), 1)
	test.DemandEquality(t, len(n.Symbols), 2)
	test.DemandEquality(t, len(n.Locations), 2)

	a, ok = n.DeclaredAddress(1)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, a, uint32(0x80001000))

	r := n.WithRelocations(object.RelocationGroup{Section: 1, Relocations: []object.Relocation{
		{Section: 1, Offset: 0, Type: object.RelocJump26, Symbol: 1},
	}})
	test.ExpectEquality(t, n.Relocations(), 0)
	test.ExpectEquality(t, r.Relocations(), 1)
	test.ExpectEquality(t, r.SectionName(1), ".text")
	test.ExpectEquality(t, r.SectionName(object.SectionAbsolute), "*ABS*")
}

func TestFixedSections(t *testing.T) {
	img := &object.Image{
		Sections: []object.Section{
			object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil),
			object.NewSection(".data", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_WRITE, 0x2000, 0x10, 4, make([]byte, 0x10)),
			object.NewSection(".text", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, 0x1000, 0x10, 4, make([]byte, 0x10)),
			object.NewSection(".comment", elf.SHT_PROGBITS, 0, 0, 0x10, 1, make([]byte, 0x10)),
			object.NewSection(".empty", elf.SHT_PROGBITS, elf.SHF_ALLOC, 0x3000, 0, 4, nil),
		},
	}

	f := img.FixedSections()
	test.DemandEquality(t, len(f), 2)
	test.ExpectEquality(t, f[0].Name, ".text")
	test.ExpectEquality(t, f[1].Name, ".data")
}
