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

package discovery_test

import (
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/xfflink/xfflink/discovery"
	"github.com/xfflink/xfflink/mips"
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

func global(name string, section uint16, value uint32) object.Symbol {
	return object.NewSymbol(name, section, value, 4, object.Info(object.TypeFunction, object.BindGlobal))
}

func module(name string, address uint32, code []byte, symbols ...object.Symbol) *object.Module {
	return &object.Module{
		Name: name,
		Sections: []object.Section{
			object.NewSection("", elf.SHT_NULL, 0, 0, 0, 0, nil),
			object.NewSection(".text", elf.SHT_PROGBITS, 0, address, uint32(len(code)), 4, code),
			object.NewSection(".data", elf.SHT_PROGBITS, 0, address+0x1000, 16, 4, make([]byte, 16)),
		},
		Symbols:   symbols,
		Locations: make([]uint32, len(symbols)),
	}
}

func TestLUIADDIUPair(t *testing.T) {
	hi, lo := mips.SplitAddress(0x1008)
	code := words(
		0,
		mips.EncodeLUI(4, hi),
		mips.EncodeADDIU(2, 5, 0x10), // other register is passed over
		0,
		mips.EncodeADDIU(4, 4, lo),
		0,
	)
	m := module("a.xff", 0, code,
		global("main", 1, 0),
		global("table", 2, 8),
	)

	targets := discovery.NewTargets([]*object.Module{m})
	n, res := discovery.Discover(m, 0, targets, discovery.DefaultWindow)

	test.ExpectEquality(t, res.Pairs, 1)
	test.ExpectEquality(t, res.Jumps, 0)
	test.ExpectEquality(t, res.Externals, 0)
	test.DemandEquality(t, len(n.Groups), 1)

	g := n.Groups[0]
	test.ExpectEquality(t, g.Section, uint16(1))
	test.DemandEquality(t, len(g.Relocations), 2)
	test.ExpectEquality(t, g.Relocations[0], object.Relocation{Section: 1, Offset: 4, Type: object.RelocHi16, Symbol: 1, Discovered: true})
	test.ExpectEquality(t, g.Relocations[1], object.Relocation{Section: 1, Offset: 16, Type: object.RelocLo16, Symbol: 1, Discovered: true})

	// address fields of the relocated words are cleared in the new module
	test.ExpectEquality(t, binary.LittleEndian.Uint32(n.Sections[1].Data[4:]), mips.EncodeLUI(4, 0))
	test.ExpectEquality(t, binary.LittleEndian.Uint32(n.Sections[1].Data[16:]), mips.EncodeADDIU(4, 4, 0))
	test.ExpectEquality(t, binary.LittleEndian.Uint32(n.Sections[1].Data[8:]), mips.EncodeADDIU(2, 5, 0x10))

	// the original module is unchanged
	test.ExpectEquality(t, len(m.Groups), 0)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(m.Sections[1].Data[4:]), mips.EncodeLUI(4, hi))
}

func TestNegativeLowHalf(t *testing.T) {
	// an address with bit 15 set needs the upper half to be adjusted
	hi, lo := mips.SplitAddress(0x80018000)
	code := words(mips.EncodeLUI(3, hi), mips.EncodeADDIU(3, 3, lo))
	m := module("a.xff", 0, code)
	m = m.WithSymbols([]object.Symbol{global("stack", object.SectionAbsolute, 0)}, []uint32{0x80018000})

	targets := discovery.NewTargets([]*object.Module{m})
	_, res := discovery.Discover(m, 0, targets, 0)
	test.ExpectEquality(t, res.Pairs, 1)
}

func TestWindow(t *testing.T) {
	hi, lo := mips.SplitAddress(0x1000)
	code := make([]uint32, 0, 40)
	code = append(code, mips.EncodeLUI(4, hi))
	for i := 0; i < 4; i++ {
		code = append(code, 0)
	}
	code = append(code, mips.EncodeADDIU(4, 4, lo))
	m := module("a.xff", 0, words(code...), global("table", 2, 0))

	targets := discovery.NewTargets([]*object.Module{m})

	// ADDIU is the fifth instruction after the LUI
	_, res := discovery.Discover(m, 0, targets, 4)
	test.ExpectEquality(t, res.Pairs, 0)
	_, res = discovery.Discover(m, 0, targets, 5)
	test.ExpectEquality(t, res.Pairs, 1)
}

func TestFirstMatchStops(t *testing.T) {
	hi, _ := mips.SplitAddress(0x1000)
	code := words(
		mips.EncodeLUI(4, hi),
		mips.EncodeADDIU(4, 4, 0x20), // not a target
		mips.EncodeADDIU(4, 4, 0x00), // would be a target but is never seen
	)
	m := module("a.xff", 0, code, global("table", 2, 0))

	targets := discovery.NewTargets([]*object.Module{m})
	_, res := discovery.Discover(m, 0, targets, 0)
	test.ExpectEquality(t, res.Pairs, 0)
	test.ExpectEquality(t, res.Unmatched, 1)
}

func TestJumpToOtherModule(t *testing.T) {
	a := module("a.xff", 0x100, words(mips.EncodeJump(mips.OpJAL, 0x400), 0), global("funcA", 1, 0))
	b := module("b.xff", 0x400, words(0, 0, 0, 0), global("funcB", 1, 0))

	targets := discovery.NewTargets([]*object.Module{a, b})
	n, res := discovery.Discover(a, 0, targets, 0)
	test.ExpectEquality(t, res.Jumps, 1)
	test.ExpectEquality(t, res.Externals, 1)

	test.DemandEquality(t, len(n.Symbols), 2)
	test.ExpectEquality(t, n.Symbols[1].Name, "funcB")
	test.ExpectEquality(t, n.Symbols[1].Kind, object.SymExternal)
	test.DemandEquality(t, len(n.Groups), 1)
	test.ExpectEquality(t, n.Groups[0].Relocations[0].Symbol, uint32(1))
	test.ExpectEquality(t, n.Groups[0].Relocations[0].Type, object.RelocJump)

	// the target field of the jump is cleared. the opcode is kept
	test.ExpectEquality(t, binary.LittleEndian.Uint32(n.Sections[1].Data), uint32(mips.OpJAL)<<26)
}

func TestOwnModulePreferred(t *testing.T) {
	// both modules have a symbol at 0x100
	a := module("a.xff", 0x100, words(mips.EncodeJump(mips.OpJ, 0x100)), global("funcA", 1, 0))
	b := module("b.xff", 0x100, words(0), global("funcB", 1, 0))

	targets := discovery.NewTargets([]*object.Module{b, a})
	tg, ok := targets.Lookup(0x100, 1)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, tg.Name, "funcA")

	tg, ok = targets.Lookup(0x100, 0)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, tg.Name, "funcB")
}

func TestLocalSymbolsNotShared(t *testing.T) {
	local := object.NewSymbol("helper", 1, 0, 4, object.Info(object.TypeFunction, object.BindLocal))
	a := module("a.xff", 0x100, words(mips.EncodeJump(mips.OpJ, 0x400)))
	b := module("b.xff", 0x400, words(0), local)

	targets := discovery.NewTargets([]*object.Module{a, b})
	_, ok := targets.Lookup(0x400, 0)
	test.ExpectFailure(t, ok)
	_, ok = targets.Lookup(0x400, 1)
	test.ExpectSuccess(t, ok)
}

func TestFixedImageTargets(t *testing.T) {
	a := module("a.xff", 0x100, words(mips.EncodeJump(mips.OpJAL, 0x00100010), mips.EncodeJump(mips.OpJAL, 0x00100010)))

	targets := discovery.NewTargets([]*object.Module{a})
	targets.AddSplits([]discovery.Target{{Name: "memcpy", Address: 0x00100010}})

	n, res := discovery.Discover(a, 0, targets, 0)
	test.ExpectEquality(t, res.Jumps, 2)

	// one symbol serves both jumps
	test.ExpectEquality(t, res.Externals, 1)
	test.DemandEquality(t, len(n.Symbols), 1)
	test.ExpectEquality(t, n.Symbols[0].Kind, object.SymAbsolute)
	test.ExpectEquality(t, n.Symbols[0].Exported(), false)
	test.ExpectEquality(t, n.Locations[0], uint32(0x00100010))
}

func TestExplicitRelocationsKept(t *testing.T) {
	a := module("a.xff", 0x100, words(mips.EncodeJump(mips.OpJAL, 0x100), mips.EncodeJump(mips.OpJAL, 0x100)), global("funcA", 1, 0))
	a = a.WithRelocations(object.RelocationGroup{Section: 1, Relocations: []object.Relocation{
		{Section: 1, Offset: 0, Type: object.RelocJump26, Symbol: 0},
	}})

	targets := discovery.NewTargets([]*object.Module{a})
	n, res := discovery.Discover(a, 0, targets, 0)
	test.ExpectEquality(t, res.Jumps, 1)
	test.ExpectEquality(t, res.Duplicates, 1)
	test.DemandEquality(t, len(n.Groups), 2)
	test.ExpectEquality(t, n.Groups[1].Relocations[0].Offset, uint32(4))
}

func TestUnmatchedJump(t *testing.T) {
	a := module("a.xff", 0x100, words(mips.EncodeJump(mips.OpJAL, 0x2000)))
	targets := discovery.NewTargets([]*object.Module{a})
	n, res := discovery.Discover(a, 0, targets, 0)
	test.ExpectEquality(t, res.Unmatched, 1)
	test.ExpectEquality(t, len(n.Groups), 0)
}
