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

package splits_test

import (
	"debug/elf"
	"strings"
	"testing"

	"github.com/xfflink/xfflink/object"
	"github.com/xfflink/xfflink/splits"
	"github.com/xfflink/xfflink/test"
)

var names = []string{"", ".text", ".data"}

const canonical = "int getHp(int baseHp, int maxHp)\n" +
	"\tStart:   0x100\n" +
	"\tEnd:     0x180\n" +
	"\tSection: .text\n" +
	"\tType:    int\n" +
	"table\n" +
	"\tStart:   0x0\n" +
	"\tEnd:     0x40\n" +
	"\tSection: .data\n"

func TestRoundTrip(t *testing.T) {
	s, err := splits.Parse(strings.NewReader(canonical), names)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(s), 2)

	test.ExpectEquality(t, s[0].Name, "getHp")
	test.ExpectEquality(t, s[0].Signature, "int getHp(int baseHp, int maxHp)")
	test.ExpectEquality(t, s[0].Start, uint32(0x100))
	test.ExpectEquality(t, s[0].Length(), uint32(0x80))
	test.ExpectEquality(t, s[0].Section, 1)
	test.ExpectEquality(t, s[0].Type, "int")
	test.ExpectEquality(t, s[1].Name, "table")
	test.ExpectEquality(t, s[1].Section, 2)

	w := &test.Writer{}
	test.DemandSuccess(t, splits.Write(w, s, names))
	test.ExpectSuccess(t, w.Compare(canonical))
}

func TestParseVariations(t *testing.T) {
	const src = "// a comment\n" +
		"\n" +
		"void *alloc(unsigned size)\n" +
		"\tStart:   256\n" +
		"\tLength:  0x20\n" +
		"\tSection: 0x1\n" +
		"\tCompile: true\n"

	s, err := splits.Parse(strings.NewReader(src), names)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(s), 1)
	test.ExpectEquality(t, s[0].Name, "alloc")
	test.ExpectEquality(t, s[0].Start, uint32(256))
	test.ExpectEquality(t, s[0].End, uint32(0x120))
	test.ExpectEquality(t, s[0].Section, 1)
}

func TestParseErrors(t *testing.T) {
	_, err := splits.Parse(strings.NewReader("\tStart: 0x0\n"), names)
	test.ExpectFailure(t, err)

	_, err = splits.Parse(strings.NewReader("x\n\tSection: .bss\n"), names)
	test.ExpectFailure(t, err)

	_, err = splits.Parse(strings.NewReader("x\n\tStart: 0xzz\n"), names)
	test.ExpectFailure(t, err)

	_, err = splits.Parse(strings.NewReader("x\n\tStart\n"), names)
	test.ExpectFailure(t, err)
}

func testModule() *object.Module {
	code := make([]byte, 0x40)
	fn := object.Info(object.TypeFunction, object.BindGlobal)
	return &object.Module{
		Name: "a.xff",
		Sections: []object.Section{
			object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil),
			object.NewSection(".text", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, 0x1000, 0x40, 4, code),
			object.NewSection(".bss", elf.SHT_NOBITS, elf.SHF_ALLOC, 0x2000, 0x100, 4, nil),
		},
		Symbols: []object.Symbol{
			object.NewSymbol(".text", 1, 0, 0, object.Info(object.TypeSection, object.BindLocal)),
			object.NewSymbol("first", 1, 0, 0x10, fn),
			object.NewSymbol("second", 1, 0x20, 0x8, fn),
			object.NewSymbol("buffer", 2, 0, 0x100, fn),
		},
		Locations: make([]uint32, 4),
	}
}

func TestFromSymbols(t *testing.T) {
	s := splits.FromSymbols(testModule())
	test.DemandEquality(t, len(s), 4)

	test.ExpectEquality(t, s[0].Name, "first")
	test.ExpectEquality(t, s[1].Name, "Undefined_Gap_0x10-0x20")
	test.ExpectEquality(t, s[1].IsGap(), true)
	test.ExpectEquality(t, s[2].Name, "second")
	test.ExpectEquality(t, s[3].Name, "Undefined_Gap_0x28-0x40")
	test.ExpectEquality(t, s[3].End, uint32(0x40))
}

func TestSmallGapIgnored(t *testing.T) {
	m := testModule()
	m.Symbols[2].Value = 0x14
	s := splits.FromSymbols(m)
	test.DemandEquality(t, len(s), 3)
	test.ExpectEquality(t, s[1].Name, "second")
}

func TestMerge(t *testing.T) {
	m := testModule()
	s := []splits.Split{
		{Name: "first", Start: 0, End: 0x10, Section: 1},
		{Name: "third", Start: 0x30, End: 0x38, Section: 1},
		{Name: "Undefined_Gap_0x10-0x20", Start: 0x10, End: 0x20, Section: 1},
	}
	n := splits.Merge(m, s)
	test.DemandEquality(t, len(n.Symbols), len(m.Symbols)+2)
	test.ExpectEquality(t, len(n.Locations), len(n.Symbols))

	third := n.Symbols[len(m.Symbols)]
	test.ExpectEquality(t, third.Name, "third")
	test.ExpectEquality(t, third.Kind, object.SymFunction)
	test.ExpectEquality(t, third.Exported(), true)

	gap := n.Symbols[len(m.Symbols)+1]
	test.ExpectEquality(t, gap.Binding, object.BindLocal)
	test.ExpectEquality(t, gap.Exported(), false)

	// module is unchanged
	test.ExpectEquality(t, len(m.Symbols), 4)
}

func TestImageTargets(t *testing.T) {
	img := &object.Image{
		Sections: []object.Section{
			object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil),
			object.NewSection(".text", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, 0x80010000, 0x1000, 4, make([]byte, 0x1000)),
		},
	}
	s := []splits.Split{
		{Name: "printf", Start: 0x200, End: 0x280, Section: 1},
		{Name: "Undefined_Gap_0x0-0x200", Start: 0, End: 0x200, Section: 1},
		{Name: "bad", Start: 0, Section: 7},
	}
	tg := splits.ImageTargets(s, img)
	test.DemandEquality(t, len(tg), 1)
	test.ExpectEquality(t, tg[0].Name, "printf")
	test.ExpectEquality(t, tg[0].Address, uint32(0x80010200))
}
