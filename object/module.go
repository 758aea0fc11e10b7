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

package object

import "fmt"

// Module is one relocatable object. Locations has one entry for every symbol
// and holds the address of absolute symbols.
type Module struct {
	Name      string
	Sections  []Section
	Symbols   []Symbol
	Locations []uint32
	Groups    []RelocationGroup
}

func (m *Module) String() string {
	return fmt.Sprintf("%s: %d sections, %d symbols, %d relocation groups", m.Name, len(m.Sections), len(m.Symbols), len(m.Groups))
}

// SectionName returns the name of the section at index. Special section
// indexes return a descriptive name.
func (m *Module) SectionName(idx uint16) string {
	switch {
	case idx == SectionAbsolute:
		return "*ABS*"
	case idx == SectionExternal:
		return "*UND*"
	case int(idx) < len(m.Sections):
		return m.Sections[idx].Name
	}
	return fmt.Sprintf("section(0x%x)", idx)
}

// FindSection returns the index of the first section with name.
func (m *Module) FindSection(name string) (int, bool) {
	for i := range m.Sections {
		if m.Sections[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Location returns the absolute location for symbol idx. Zero if there is no
// entry for the symbol.
func (m *Module) Location(idx int) uint32 {
	if idx < 0 || idx >= len(m.Locations) {
		return 0
	}
	return m.Locations[idx]
}

// DeclaredAddress returns the address of the symbol as compiled. This is the
// section address plus the symbol value, or the absolute location for
// absolute symbols. Returns false for external symbols.
func (m *Module) DeclaredAddress(idx int) (uint32, bool) {
	if idx < 0 || idx >= len(m.Symbols) {
		return 0, false
	}
	sym := m.Symbols[idx]
	if sym.Section == SectionAbsolute {
		return m.Location(idx), true
	}
	if !sym.Defined() || int(sym.Section) >= len(m.Sections) {
		return 0, false
	}
	return m.Sections[sym.Section].Address + sym.Value, true
}

// WithSymbols returns a copy of the module with the symbols appended. The
// locations list must be the same length as the symbols list.
func (m *Module) WithSymbols(symbols []Symbol, locations []uint32) *Module {
	c := m.copy()

	// locations table must stay parallel to the symbol table
	for len(c.Locations) < len(c.Symbols) {
		c.Locations = append(c.Locations, 0)
	}

	c.Symbols = append(c.Symbols, symbols...)
	for i := range symbols {
		if i < len(locations) {
			c.Locations = append(c.Locations, locations[i])
		} else {
			c.Locations = append(c.Locations, 0)
		}
	}
	return c
}

// WithRelocations returns a copy of the module with the relocation groups
// appended.
func (m *Module) WithRelocations(groups ...RelocationGroup) *Module {
	c := m.copy()
	c.Groups = append(c.Groups, groups...)
	return c
}

// copy the lists of the module but not the section payloads, which are never
// modified.
func (m *Module) copy() *Module {
	c := &Module{
		Name:      m.Name,
		Sections:  make([]Section, len(m.Sections)),
		Symbols:   make([]Symbol, len(m.Symbols)),
		Locations: make([]uint32, len(m.Locations)),
		Groups:    make([]RelocationGroup, len(m.Groups)),
	}
	copy(c.Sections, m.Sections)
	copy(c.Symbols, m.Symbols)
	copy(c.Locations, m.Locations)
	copy(c.Groups, m.Groups)
	return c
}

// Relocations returns the total number of relocations in all groups.
func (m *Module) Relocations() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Relocations)
	}
	return n
}
