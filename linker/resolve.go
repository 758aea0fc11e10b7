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
	"fmt"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/discovery"
	"github.com/xfflink/xfflink/object"
)

// Definition of a symbol name. For definitions in the fixed image Module is
// discovery.FixedImage and Address is the address of the definition.
type Definition struct {
	Module  int
	Symbol  int
	Address uint32
}

// SymbolTable maps symbol names to their definitions. The first definition
// of a name wins.
type SymbolTable struct {
	byName map[string]Definition

	// names in the order they were added
	names []string
}

// NewSymbolTable builds a table from the exported symbols of the modules, in
// module order. An AmbiguousSymbol diagnostic is returned for every name that
// is defined more than once.
func NewSymbolTable(modules []*object.Module) (*SymbolTable, []Diagnostic) {
	t := &SymbolTable{
		byName: make(map[string]Definition),
	}

	var diags []Diagnostic
	for mi, m := range modules {
		for si, sym := range m.Symbols {
			if !sym.Exported() {
				continue
			}
			if d, ok := t.byName[sym.Name]; ok {
				err := curated.Errorf(object.AmbiguousSymbol, sym.Name, modules[d.Module].Name, m.Name)
				diags = append(diags, newDiagnostic("symbols", m.Name, err))
				continue
			}
			t.add(sym.Name, Definition{Module: mi, Symbol: si})
		}
	}

	return t, diags
}

func (t *SymbolTable) add(name string, d Definition) {
	t.byName[name] = d
	t.names = append(t.names, name)
}

// AddImage adds definitions for named locations in the fixed image. Names
// already in the table are not replaced.
func (t *SymbolTable) AddImage(imageName string, targets []discovery.Target) []Diagnostic {
	var diags []Diagnostic
	for _, tg := range targets {
		if _, ok := t.byName[tg.Name]; ok {
			err := curated.Errorf(object.AmbiguousSymbol, tg.Name, "a module", imageName)
			diags = append(diags, newDiagnostic("symbols", imageName, err))
			continue
		}
		t.add(tg.Name, Definition{Module: discovery.FixedImage, Address: tg.Address})
	}
	return diags
}

// Lookup the definition of a name.
func (t *SymbolTable) Lookup(name string) (Definition, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// Len returns the number of names in the table.
func (t *SymbolTable) Len() int {
	return len(t.names)
}

// Names returns the names in the table in the order they were added.
func (t *SymbolTable) Names() []string {
	return t.names
}

// Resolver calculates the address of symbols in the merged image.
type Resolver struct {
	modules []*object.Module
	layout  *Layout
	table   *SymbolTable
}

// NewResolver is the preferred method of initialisation for the Resolver
// type.
func NewResolver(modules []*object.Module, layout *Layout, table *SymbolTable) *Resolver {
	return &Resolver{
		modules: modules,
		layout:  layout,
		table:   table,
	}
}

func symbolName(m *object.Module, index int) string {
	if index < 0 || index >= len(m.Symbols) {
		return fmt.Sprintf("%s:symbol(%d)", m.Name, index)
	}
	if m.Symbols[index].Name == "" {
		return fmt.Sprintf("%s:<unnamed %d>", m.Name, index)
	}
	return m.Symbols[index].Name
}

// Address returns the address in the merged image of symbol index of the
// module. External symbols are found by name in the symbol table. Returns an
// UnresolvedSymbol error if the address can not be determined.
func (r *Resolver) Address(module int, index int) (uint32, error) {
	if module < 0 || module >= len(r.modules) {
		return 0, curated.Errorf(object.UnresolvedSymbol, fmt.Sprintf("module(%d):symbol(%d)", module, index))
	}
	m := r.modules[module]
	if index < 0 || index >= len(m.Symbols) {
		return 0, curated.Errorf(object.UnresolvedSymbol, symbolName(m, index))
	}

	sym := m.Symbols[index]
	if sym.Defined() {
		return r.defined(module, index)
	}

	d, ok := r.table.Lookup(sym.Name)
	if sym.Name == "" || !ok {
		return 0, curated.Errorf(object.UnresolvedSymbol, symbolName(m, index))
	}
	if d.Module == discovery.FixedImage {
		return d.Address, nil
	}
	return r.defined(d.Module, d.Symbol)
}

func (r *Resolver) defined(module int, index int) (uint32, error) {
	m := r.modules[module]
	sym := m.Symbols[index]

	if sym.Section == object.SectionAbsolute {
		return m.Location(index), nil
	}

	if int(sym.Section) >= len(m.Sections) {
		return 0, curated.Errorf(object.UnresolvedSymbol, symbolName(m, index))
	}
	p, ok := r.layout.Module(module, m.Sections[sym.Section].Name)
	if !ok {
		return 0, curated.Errorf(object.UnresolvedSymbol, symbolName(m, index))
	}

	if sym.Kind == object.SymSection {
		return p.Offset, nil
	}
	return p.Offset + sym.Value, nil
}
