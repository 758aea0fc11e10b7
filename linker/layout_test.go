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
	"bytes"
	"testing"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/linker"
	"github.com/xfflink/xfflink/object"
	"github.com/xfflink/xfflink/test"
)

func twoModules() []*object.Module {
	return []*object.Module{
		module("a.xff", []object.Section{
			text(0x1000, fill(8, 0x11)),
			data(0x2000, fill(4, 0x22)),
		}),
		module("b.xff", []object.Section{
			text(0x1000, fill(12, 0x33)),
			bss(0x3000, 16),
		}),
	}
}

func TestPlanModules(t *testing.T) {
	l, merged, err := linker.Plan(nil, twoModules(), linker.DefaultOptions())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, l.Size(), uint32(40))
	test.ExpectEquality(t, len(merged), 40)

	p, ok := l.Module(0, ".text")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(0))

	// copies of a section name are contiguous in module order
	p, ok = l.Module(1, ".text")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(8))

	p, ok = l.Module(0, ".data")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(20))

	p, ok = l.Module(1, ".bss")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(24))
	test.ExpectEquality(t, p.Size, uint32(16))

	_, ok = l.Module(1, ".data")
	test.ExpectFailure(t, ok)

	test.ExpectEquality(t, merged[8], byte(0x33))
	test.ExpectEquality(t, merged[20], byte(0x22))
	test.ExpectEquality(t, bytes.Equal(merged[24:40], make([]byte, 16)), true)

	expectNoOverlap(t, l)
}

func TestPlanDeterministic(t *testing.T) {
	modules := twoModules()
	img := image(fixed(".fixed", 0x20, fill(16, 0xaa)))

	l1, m1, err := linker.Plan(img, modules, linker.DefaultOptions())
	test.DemandSuccess(t, err)
	l2, m2, err := linker.Plan(img, modules, linker.DefaultOptions())
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, bytes.Equal(m1, m2), true)
	test.DemandEquality(t, len(l1.Placements), len(l2.Placements))
	for i := range l1.Placements {
		test.ExpectEquality(t, l1.Placements[i], l2.Placements[i])
	}

	// input is not changed by planning
	test.ExpectEquality(t, modules[0].Sections[1].Data[0], byte(0x11))
	test.ExpectEquality(t, len(modules[1].Sections[2].Data), 0)
}

func TestPlanFixedSection(t *testing.T) {
	img := image(fixed(".fixed", 0x20, fill(16, 0xaa)))
	l, merged, err := linker.Plan(img, twoModules(), linker.DefaultOptions())
	test.DemandSuccess(t, err)

	// .text and .data fit below the fixed section. .bss does not
	p, ok := l.Fixed(".fixed")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(0x20))
	test.ExpectEquality(t, p.Section, 1)
	test.ExpectEquality(t, bytes.Equal(merged[0x20:0x30], fill(16, 0xaa)), true)

	// padding before the fixed section
	test.ExpectEquality(t, bytes.Equal(merged[24:0x20], make([]byte, 8)), true)

	p, ok = l.Module(1, ".bss")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(0x30))
	test.ExpectEquality(t, l.Size(), uint32(0x40))

	expectNoOverlap(t, l)
}

func TestPlanLeftoverFixedSection(t *testing.T) {
	img := image(fixed(".high", 0x100, fill(4, 0xbb)), fixed(".low", 0x80, fill(4, 0xcc)))
	l, merged, err := linker.Plan(img, twoModules(), linker.DefaultOptions())
	test.DemandSuccess(t, err)

	test.DemandEquality(t, len(l.Placements), 6)
	test.ExpectEquality(t, l.Placements[4].Name, ".low")
	test.ExpectEquality(t, l.Placements[5].Name, ".high")
	test.ExpectEquality(t, merged[0x80], byte(0xcc))
	test.ExpectEquality(t, merged[0x100], byte(0xbb))
	test.ExpectEquality(t, l.Size(), uint32(0x104))
}

func TestPlanUnallocatedIgnored(t *testing.T) {
	sec := fixed(".comment", 0x10, fill(4, 0xdd))
	sec.Flags = 0
	l, _, err := linker.Plan(image(sec), twoModules(), linker.DefaultOptions())
	test.DemandSuccess(t, err)
	_, ok := l.Fixed(".comment")
	test.ExpectFailure(t, ok)
}

func TestPlanLayoutError(t *testing.T) {
	img := image(fixed(".a", 0x10, fill(0x20, 0)), fixed(".b", 0x18, fill(4, 0)))
	_, _, err := linker.Plan(img, nil, linker.DefaultOptions())
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, object.LayoutError))
}

func TestPlanAlignment(t *testing.T) {
	b := text(0, fill(4, 0x44))
	b.Align = 16
	modules := []*object.Module{
		module("a.xff", []object.Section{text(0, fill(6, 0x11))}),
		module("b.xff", []object.Section{b}),
	}

	l, merged, err := linker.Plan(nil, modules, linker.DefaultOptions())
	test.DemandSuccess(t, err)

	// end of a module copy is padded to a word. the alignment declared by
	// a module section does not move its copy away from the previous one
	test.ExpectEquality(t, bytes.Equal(merged[6:8], []byte{0, 0}), true)

	p, _ := l.Module(1, ".text")
	test.ExpectEquality(t, p.Offset, uint32(8))
	test.ExpectEquality(t, bytes.Equal(merged[8:12], fill(4, 0x44)), true)

	opts := linker.DefaultOptions()
	opts.Alignment = 32
	l, _, err = linker.Plan(nil, modules, opts)
	test.DemandSuccess(t, err)
	p, _ = l.Module(1, ".text")
	test.ExpectEquality(t, p.Offset, uint32(32))
}
