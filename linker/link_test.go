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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/linker"
	"github.com/xfflink/xfflink/mips"
	"github.com/xfflink/xfflink/object"
	"github.com/xfflink/xfflink/prefs"
	"github.com/xfflink/xfflink/splits"
	"github.com/xfflink/xfflink/test"
	"github.com/xfflink/xfflink/xff"
)

func TestLinkWithDiscovery(t *testing.T) {
	// the call in module a was compiled against the declared address of the
	// function in module b. neither module has a relocation table
	a := module("a.xff", []object.Section{
		text(0x1000, words(mips.EncodeJump(mips.OpJAL, 0x5004), 0)),
	}, global("main", 1, 0))
	b := module("b.xff", []object.Section{
		text(0x5000, words(0, 0)),
	}, global("func", 1, 4))

	opts := linker.DefaultOptions()
	opts.Discover = true
	res, err := linker.Link(nil, []*object.Module{a, b}, opts)
	test.DemandSuccess(t, err)

	test.DemandEquality(t, len(res.Discovery), 2)
	test.ExpectEquality(t, res.Discovery[0].Jumps, 1)
	test.ExpectEquality(t, res.Discovery[0].Externals, 1)
	test.ExpectEquality(t, res.Report.Discovered, 1)
	test.ExpectEquality(t, res.Report.Applied, 1)

	// func is at 0x8 + 0x4 in the merged image. the address is added to the
	// cleared jump word
	ins := mips.Decode(word(res.Merged, 0))
	test.ExpectEquality(t, ins.Op, uint8(mips.OpJAL))
	test.ExpectEquality(t, ins.Target, uint32(0xc))
	test.ExpectEquality(t, word(res.Merged, 0), uint32(mips.OpJAL)<<26|0xc)

	// the modules passed to Link() are unchanged
	test.ExpectEquality(t, len(a.Groups), 0)
	test.ExpectEquality(t, word(a.Sections[1].Data, 0), mips.EncodeJump(mips.OpJAL, 0x5004))
}

func TestLinkWithImageSplits(t *testing.T) {
	img := image(fixed(".text", 0x100, make([]byte, 0x10)))

	// module a calls into the fixed image. module c refers to the same
	// function by name
	a := module("a.xff", []object.Section{
		text(0x1000, words(mips.EncodeJump(mips.OpJAL, 0x104))),
	})
	c := module("c.xff", []object.Section{
		data(0x2000, words(0)),
	}, external("printf"))
	c = c.WithRelocations(group(1, reloc(object.RelocJump, 0, 0)))

	s, err := splits.Parse(strings.NewReader("int printf(char *fmt)\n\tStart: 0x4\n\tEnd: 0x8\n\tSection: .text\n"),
		splits.SectionNames(img.Sections))
	test.DemandSuccess(t, err)

	opts := linker.DefaultOptions()
	opts.Discover = true
	opts.ImageSplits = s
	res, err := linker.Link(img, []*object.Module{a, c}, opts)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, len(res.Report.Failures), 0)
	test.ExpectEquality(t, len(res.Diagnostics), 0)
	test.ExpectEquality(t, res.Report.Applied, 2)
	test.ExpectEquality(t, mips.Decode(word(res.Merged, 0)).Target, uint32(0x104))

	p, _ := res.Layout.Module(1, ".data")
	test.ExpectEquality(t, word(res.Merged, p.Offset), uint32(0x104))

	p, ok := res.Layout.Fixed(".text")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, p.Offset, uint32(0x100))
	expectNoOverlap(t, res.Layout)
}

func TestLinkLayoutError(t *testing.T) {
	img := image(fixed(".a", 0x10, fill(0x20, 0)), fixed(".b", 0x18, fill(4, 0)))
	_, err := linker.Link(img, nil, linker.DefaultOptions())
	test.ExpectSuccess(t, curated.Is(err, object.LayoutError))
}

func writeModule(t *testing.T, pth string, m *object.Module) {
	t.Helper()
	b, err := xff.Encode(m)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, os.WriteFile(pth, b, 0644))
}

func TestLoadModules(t *testing.T) {
	dir := t.TempDir()

	writeModule(t, filepath.Join(dir, "b.xff"), module("b.xff", []object.Section{
		text(0, words(0, 0, 0)),
	}, global("entry", 1, 0)))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "a.xff"), []byte("not a module"), 0644))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "b.splits"),
		[]byte("helper\n\tStart: 0x4\n\tEnd: 0xc\n\tSection: .text\n"), 0644))

	pths, err := linker.ExpandModulePaths([]string{dir})
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(pths), 2)
	test.ExpectEquality(t, filepath.Base(pths[0]), "a.xff")
	test.ExpectEquality(t, filepath.Base(pths[1]), "b.xff")

	modules, diags := linker.LoadModules(pths)
	test.DemandEquality(t, len(modules), 1)
	test.DemandEquality(t, len(diags), 1)
	test.ExpectEquality(t, diags[0].Stage, "XFF")
	test.ExpectEquality(t, diags[0].Module, "a.xff")
	test.ExpectSuccess(t, curated.Is(diags[0].Err, object.FormatError))

	m := modules[0]
	test.ExpectEquality(t, m.Name, "b.xff")
	test.DemandEquality(t, len(m.Symbols), 2)
	test.ExpectEquality(t, m.Symbols[1].Name, "helper")
	test.ExpectEquality(t, m.Symbols[1].Value, uint32(4))
	test.ExpectEquality(t, m.Symbols[1].Kind, object.SymFunction)

	_, err = linker.ExpandModulePaths([]string{filepath.Join(dir, "missing")})
	test.ExpectFailure(t, err)
}

func TestWriteReports(t *testing.T) {
	a := module("a.xff", []object.Section{
		text(0x1000, words(mips.EncodeJump(mips.OpJ, 0), mips.EncodeJump(mips.OpJ, 0))),
	}, global("start", 1, 0), external("target"), external("missing"))
	a = a.WithRelocations(group(1, reloc(object.RelocJump26, 0, 1), reloc(object.RelocJump26, 4, 2)))
	b := module("b.xff", []object.Section{
		text(0x5000, words(0, 0)),
	}, global("target", 1, 4))

	res := link(t, nil, a, b)

	dir := filepath.Join(t.TempDir(), "out")
	test.DemandSuccess(t, res.WriteReports(dir, linker.Artifacts{Graph: true, Debug: true}))

	master, err := os.ReadFile(filepath.Join(dir, linker.MasterFile))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(master), string(res.Merged))

	failed, err := os.ReadFile(filepath.Join(dir, linker.FailuresFile))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(failed), "File Address: 4 Symbol Name: missing\n")

	ghidra, err := os.ReadFile(filepath.Join(dir, linker.GhidraFile))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(ghidra), "start;0x0\ntarget;0xC\n")

	summary, err := os.ReadFile(filepath.Join(dir, linker.SummaryFile))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(summary), "\nApplied 1 / 2 relocations (50.00%)\n"))

	sections, err := os.ReadFile(filepath.Join(dir, linker.SectionsFile))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, strings.Count(string(sections), "\n"), 2)

	symbols, err := os.ReadFile(filepath.Join(dir, linker.SymbolsFile))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(symbols), "unresolved"))

	graph, err := os.ReadFile(filepath.Join(dir, linker.GraphFile))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(graph), "digraph"))

	debug, err := os.ReadFile(filepath.Join(dir, linker.DebugFile))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(debug), "Address: 0x0\n"+
		"\tModule: a.xff\n"+
		"\tSymbol: target\n"+
		"\tSymbol Address: 0xC\n"+
		"\tType: jump26\n"+
		"\t\tBase Instruction: 08000000\n"+
		"\t\tPatched Instruction: 08000003\n")

	// optional files are not written unless asked for
	dir = filepath.Join(t.TempDir(), "plain")
	test.DemandSuccess(t, res.WriteReports(dir, linker.Artifacts{}))
	_, err = os.Stat(filepath.Join(dir, linker.DebugFile))
	test.ExpectFailure(t, err)
	_, err = os.Stat(filepath.Join(dir, linker.GraphFile))
	test.ExpectFailure(t, err)
}

func TestPreferences(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "preferences")

	p, err := linker.NewPreferences(pth)
	test.DemandSuccess(t, err)
	opts := p.Options()
	test.ExpectEquality(t, opts.Discover, false)
	test.ExpectEquality(t, opts.ScanWindow, 32)
	test.ExpectEquality(t, opts.Alignment, uint32(4))

	test.ExpectSuccess(t, p.Alignment.Set(16))
	test.ExpectFailure(t, p.Alignment.Set(12))
	test.ExpectFailure(t, p.ScanWindow.Set(-1))
	test.ExpectEquality(t, p.Alignment.Get().(int), 16)
	test.DemandSuccess(t, p.Save())

	p, err = linker.NewPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Options().Alignment, uint32(16))

	// command line values win over values on disk
	prefs.PushCommandLineStack("linker.discovery::true; linker.alignment::8")
	p, err = linker.NewPreferences(pth)
	prefs.PopCommandLineStack()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Options().Discover, true)
	test.ExpectEquality(t, p.Options().Alignment, uint32(8))
}
