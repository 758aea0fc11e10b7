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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/discovery"
	"github.com/xfflink/xfflink/elfimage"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
	"github.com/xfflink/xfflink/splits"
	"github.com/xfflink/xfflink/xff"
)

// ModuleExtension is the filename extension of relocatable modules. It is used
// when searching a directory for modules.
const ModuleExtension = ".xff"

// SplitsExtension is the filename extension of a split list that sits beside
// a module. The split list of a module has the same base name as the module.
const SplitsExtension = ".splits"

// Result of a link.
type Result struct {
	Image *object.Image

	// modules as linked. if discovery was enabled these modules include the
	// discovered relocations and any symbols added for them
	Modules []*object.Module

	Layout  *Layout
	Merged  []byte
	Symbols *SymbolTable
	Report  Report

	// one entry for every module if discovery was enabled
	Discovery []discovery.Result

	Diagnostics []Diagnostic
}

// Link the modules and the fixed image. The only error returned is a
// LayoutError. All other problems are recorded in the Result.
func Link(img *object.Image, modules []*object.Module, opts Options) (*Result, error) {
	res := &Result{
		Image:   img,
		Modules: make([]*object.Module, len(modules)),
	}
	copy(res.Modules, modules)

	var imageTargets []discovery.Target
	if img != nil {
		imageTargets = splits.ImageTargets(opts.ImageSplits, img)
	}

	if opts.Discover {
		targets := discovery.NewTargets(res.Modules)
		targets.AddSplits(imageTargets)
		if opts.Detail != nil {
			targets.Detail = opts.Detail
		}
		logger.Logf(logger.Allow, "discovery", "%d targets", targets.Len())

		for i, m := range res.Modules {
			var d discovery.Result
			res.Modules[i], d = discovery.Discover(m, i, targets, opts.ScanWindow)
			res.Discovery = append(res.Discovery, d)
		}
	}

	var err error
	res.Layout, res.Merged, err = Plan(img, res.Modules, opts)
	if err != nil {
		return nil, err
	}

	var diags []Diagnostic
	res.Symbols, diags = NewSymbolTable(res.Modules)
	res.Diagnostics = append(res.Diagnostics, diags...)
	if img != nil {
		res.Diagnostics = append(res.Diagnostics, res.Symbols.AddImage(img.Name, imageTargets)...)
	}
	logger.Logf(logger.Allow, "symbols", "%d names in symbol table", res.Symbols.Len())

	resolver := NewResolver(res.Modules, res.Layout, res.Symbols)
	res.Report = Apply(res.Merged, res.Modules, res.Layout, resolver, opts.Detail)
	res.Diagnostics = append(res.Diagnostics, res.Report.Diagnostics...)

	return res, nil
}

// Address returns the address in the merged image of a symbol of a linked
// module.
func (res *Result) Address(module int, index int) (uint32, error) {
	return NewResolver(res.Modules, res.Layout, res.Symbols).Address(module, index)
}

// ExpandModulePaths replaces every directory in the list with the modules it
// contains, in filename order.
func ExpandModulePaths(pths []string) ([]string, error) {
	var exp []string
	for _, p := range pths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, curated.Errorf("linker: %v", err)
		}
		if !fi.IsDir() {
			exp = append(exp, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, curated.Errorf("linker: %v", err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ModuleExtension) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		exp = append(exp, found...)
	}
	return exp, nil
}

// LoadModules reads and parses every module. A module that can not be read or
// parsed is skipped and a diagnostic is returned for it. A split list beside
// a module is merged into the module's symbols.
func LoadModules(pths []string) ([]*object.Module, []Diagnostic) {
	var modules []*object.Module
	var diags []Diagnostic

	for _, p := range pths {
		name := filepath.Base(p)

		b, err := os.ReadFile(p)
		if err != nil {
			diags = append(diags, newDiagnostic("XFF", name, err))
			continue
		}

		f, err := xff.Parse(b)
		if err != nil {
			diags = append(diags, newDiagnostic("XFF", name, err))
			continue
		}
		m := f.Module(name)

		sp := strings.TrimSuffix(p, filepath.Ext(p)) + SplitsExtension
		if _, err := os.Stat(sp); err == nil {
			s, err := LoadSplits(sp, splits.SectionNames(m.Sections))
			if err != nil {
				diags = append(diags, newDiagnostic("splits", name, err))
			} else {
				m = splits.Merge(m, s)
			}
		}

		logger.Logf(logger.Allow, "XFF", "%s", m.String())
		modules = append(modules, m)
	}

	return modules, diags
}

// LoadImage reads and parses the fixed image.
func LoadImage(pth string) (*object.Image, error) {
	b, err := os.ReadFile(pth)
	if err != nil {
		return nil, curated.Errorf("linker: %v", err)
	}
	f, err := elfimage.Parse(b)
	if err != nil {
		return nil, err
	}
	img := f.Image(filepath.Base(pth))
	logger.Logf(logger.Allow, "ELF", "%s", img.String())
	return img, nil
}

// LoadSplits reads a split list. Section names are resolved against the list
// of names.
func LoadSplits(pth string, sectionNames []string) ([]splits.Split, error) {
	f, err := os.Open(pth)
	if err != nil {
		return nil, curated.Errorf("linker: %v", err)
	}
	defer f.Close()
	return splits.Parse(f, sectionNames)
}
