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

package linker

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bradleyjkemp/memviz"
	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/version"
)

// Filenames of the files written by WriteReports().
const (
	MasterFile   = "Master.bin"
	FailuresFile = "Failed Relocations.txt"
	SummaryFile  = "Relocation Summary.txt"
	SymbolsFile  = "Symbols.txt"
	GhidraFile   = "Ghidra Import.txt"
	SectionsFile = "Sections.txt"
	GraphFile    = "Layout.dot"
	DebugFile    = "Relocation debug.txt"
)

// Artifacts selects the optional files written by WriteReports().
type Artifacts struct {
	// the layout graph in the dot language
	Graph bool

	// one entry for every applied relocation
	Debug bool
}

// WriteMaster writes the merged image.
func (res *Result) WriteMaster(w io.Writer) error {
	_, err := w.Write(res.Merged)
	return err
}

// WriteFailures writes one line for every failed relocation.
func (res *Result) WriteFailures(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, f := range res.Report.Failures {
		fmt.Fprintln(b, f.String())
	}
	return b.Flush()
}

// WriteSummary writes the relocation counts, the discovery results and every
// diagnostic.
func (res *Result) WriteSummary(w io.Writer) error {
	b := bufio.NewWriter(w)

	fmt.Fprintf(b, "%s\n\n", version.String())

	r := res.Report
	fmt.Fprintf(b, "Applied %d / %d relocations (%.2f%%)\n", r.Applied, r.Attempted, r.Percentage())
	fmt.Fprintf(b, "Failed %d relocations\n", len(r.Failures))
	fmt.Fprintf(b, "Skipped %d relocations\n", r.Skipped)
	fmt.Fprintf(b, "Discovered %d relocations\n", r.Discovered)

	if len(res.Discovery) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "Discovery")
		for i, d := range res.Discovery {
			fmt.Fprintf(b, "\t%s: %s\n", res.Modules[i].Name, d)
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "Failures")
		for _, f := range r.Failures {
			fmt.Fprintf(b, "\t%s: %s at 0x%08X: %v\n", f.Module, f.Type, f.Location, f.Err)
		}
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "Diagnostics")
		for _, d := range res.Diagnostics {
			fmt.Fprintf(b, "\t%s\n", d)
		}
	}

	return b.Flush()
}

// WriteSymbols writes every named symbol of every module with its address in
// the merged image.
func (res *Result) WriteSymbols(w io.Writer) error {
	b := bufio.NewWriter(w)
	for mi, m := range res.Modules {
		fmt.Fprintln(b, m.Name)
		for si, sym := range m.Symbols {
			if sym.Name == "" {
				continue
			}
			a, err := res.Address(mi, si)
			if err != nil {
				fmt.Fprintf(b, "\t%-40s %-8s %-8s unresolved\n", sym.Name, sym.Kind, sym.Binding)
				continue
			}
			fmt.Fprintf(b, "\t%-40s %-8s %-8s 0x%08X\n", sym.Name, sym.Kind, sym.Binding, a)
		}
	}
	return b.Flush()
}

// WriteGhidra writes the symbol table as name;address lines that can be
// imported into a disassembler. Definitions in the fixed image are not
// included.
func (res *Result) WriteGhidra(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, n := range res.Symbols.Names() {
		d, _ := res.Symbols.Lookup(n)
		if d.Module < 0 {
			continue
		}
		a, err := res.Address(d.Module, d.Symbol)
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "%s;0x%X\n", n, a)
	}
	return b.Flush()
}

// WriteSections writes the placement of every section in the merged image.
func (res *Result) WriteSections(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, p := range res.Layout.Placements {
		owner := ""
		if p.Fixed() {
			if res.Image != nil {
				owner = res.Image.Name
			}
		} else {
			owner = res.Modules[p.Module].Name
		}
		fmt.Fprintf(b, "0x%08X - 0x%08X (0x%06X) %-20s %s\n", p.Offset, p.End(), p.Size, p.Name, owner)
	}
	return b.Flush()
}

// WriteDebug writes one entry for every applied relocation with the word
// before and after it was patched.
func (res *Result) WriteDebug(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, p := range res.Report.Patches {
		fmt.Fprintf(b, "Address: 0x%X\n", p.Location)
		fmt.Fprintf(b, "\tModule: %s\n", p.Module)
		fmt.Fprintf(b, "\tSymbol: %s\n", p.Symbol)
		fmt.Fprintf(b, "\tSymbol Address: 0x%X\n", p.Resolved)
		fmt.Fprintf(b, "\tType: %s\n", p.Type)
		if p.Discovered {
			fmt.Fprintln(b, "\tDiscovered")
		}
		fmt.Fprintf(b, "\t\tBase Instruction: %08X\n", p.Original)
		fmt.Fprintf(b, "\t\tPatched Instruction: %08X\n", p.Patched)
	}
	return b.Flush()
}

// WriteLayoutGraph writes the layout as a graph in the dot language.
func WriteLayoutGraph(w io.Writer, layout *Layout) {
	memviz.Map(w, layout)
}

type reportFile struct {
	name  string
	write func(io.Writer) error
}

// WriteReports writes the merged image and every report to the directory.
// The directory is created if it does not exist. Optional files are written
// as selected by extra.
func (res *Result) WriteReports(dir string, extra Artifacts) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return curated.Errorf("linker: %v", err)
	}

	files := []reportFile{
		{MasterFile, res.WriteMaster},
		{FailuresFile, res.WriteFailures},
		{SummaryFile, res.WriteSummary},
		{SymbolsFile, res.WriteSymbols},
		{GhidraFile, res.WriteGhidra},
		{SectionsFile, res.WriteSections},
	}
	if extra.Graph {
		files = append(files, reportFile{GraphFile, func(w io.Writer) error {
			WriteLayoutGraph(w, res.Layout)
			return nil
		}})
	}
	if extra.Debug {
		files = append(files, reportFile{DebugFile, res.WriteDebug})
	}

	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
		logger.Logf(logger.Allow, "xfflink", "wrote %s", filepath.Join(dir, f.name))
	}

	return nil
}

func writeFile(pth string, write func(io.Writer) error) (rerr error) {
	f, err := os.Create(pth)
	if err != nil {
		return curated.Errorf("linker: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("linker: %v", err)
		}
	}()

	if err := write(f); err != nil {
		return curated.Errorf("linker: %s: %v", filepath.Base(pth), err)
	}
	return nil
}
