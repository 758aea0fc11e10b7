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

// Special section indexes for symbols.
const (
	SectionExternal uint16 = 0
	SectionReserved uint16 = 0xff00
	SectionAbsolute uint16 = 0xfff1
)

// SymbolKind is decoded from the symbol's info field and section index.
type SymbolKind int

// List of valid SymbolKind values.
const (
	SymNone SymbolKind = iota
	SymObject
	SymFunction
	SymSection
	SymExternal
	SymAbsolute
)

func (k SymbolKind) String() string {
	switch k {
	case SymObject:
		return "object"
	case SymFunction:
		return "function"
	case SymSection:
		return "section"
	case SymExternal:
		return "external"
	case SymAbsolute:
		return "absolute"
	}
	return "none"
}

// Binding of a symbol.
type Binding int

// List of valid Binding values.
const (
	BindLocal Binding = iota
	BindGlobal
	BindWeak
)

func (b Binding) String() string {
	switch b {
	case BindLocal:
		return "local"
	case BindGlobal:
		return "global"
	case BindWeak:
		return "weak"
	}
	return fmt.Sprintf("binding(%d)", int(b))
}

// Symbol is a named or anonymous location. Value is the offset of the symbol
// in its section.
type Symbol struct {
	Name    string
	Section uint16
	Value   uint32
	Size    uint32

	// the raw info field. Kind and Binding are decoded from it
	Info    uint16
	Kind    SymbolKind
	Binding Binding
}

// Info packs a symbol type and binding in the same way as the info field of
// the containers.
func Info(typ uint16, binding Binding) uint16 {
	return uint16(binding)<<4 | typ&0xf
}

// Symbol types as found in the low bits of the info field.
const (
	TypeNone     uint16 = 0
	TypeObject   uint16 = 1
	TypeFunction uint16 = 2
	TypeSection  uint16 = 3
)

// NewSymbol creates a symbol with the Kind and Binding fields decoded.
func NewSymbol(name string, section uint16, value uint32, size uint32, info uint16) Symbol {
	sym := Symbol{
		Name:    name,
		Section: section,
		Value:   value,
		Size:    size,
		Info:    info,
		Binding: Binding((info >> 4) & 0xf),
	}

	switch {
	case section == SectionExternal:
		sym.Kind = SymExternal
	case section == SectionAbsolute:
		sym.Kind = SymAbsolute
	default:
		switch info & 0xf {
		case TypeObject:
			sym.Kind = SymObject
		case TypeFunction:
			sym.Kind = SymFunction
		case TypeSection:
			sym.Kind = SymSection
		default:
			sym.Kind = SymNone
		}
	}

	return sym
}

func (sym Symbol) String() string {
	n := sym.Name
	if n == "" {
		n = "<unnamed>"
	}
	return fmt.Sprintf("%s (%s %s sec=0x%x val=0x%x size=0x%x)", n, sym.Binding, sym.Kind, sym.Section, sym.Value, sym.Size)
}

// Defined returns true if the symbol has a definition in its own module,
// either in a section or as an absolute address.
func (sym Symbol) Defined() bool {
	if sym.Section == SectionAbsolute {
		return true
	}
	return sym.Section != SectionExternal && sym.Section < SectionReserved
}

// Exported returns true if the symbol can satisfy an external reference from
// another module.
func (sym Symbol) Exported() bool {
	if sym.Name == "" || !sym.Defined() || sym.Kind == SymSection {
		return false
	}
	return sym.Binding == BindGlobal || sym.Binding == BindWeak
}
