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

package discovery

import (
	"encoding/binary"
	"fmt"

	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
)

// Result summarises the discovery for one module.
type Result struct {
	Jumps     int
	Pairs     int
	Unmatched int

	// candidates dropped because an explicit relocation exists for the word
	Duplicates int

	// symbols added to the module for targets defined elsewhere
	Externals int
}

func (r Result) String() string {
	return fmt.Sprintf("%d jumps, %d hi16/lo16 pairs, %d unmatched, %d already relocated, %d symbols added",
		r.Jumps, r.Pairs, r.Unmatched, r.Duplicates, r.Externals)
}

type location struct {
	section uint16
	offset  uint32
}

// Discover relocations in every executable section of the module. The module
// is at index in the list of modules used to create targets.
//
// The returned module has one additional relocation group for every section
// in which relocations were found. Targets that are not in the module itself
// are referred to by new external symbols, or by new absolute symbols for
// targets in the fixed image. The address fields of relocated words are
// cleared in the returned module so that the relocations can be applied in
// the same way as relocations read from a relocation table.
func Discover(m *object.Module, index int, targets *Targets, window int) (*object.Module, Result) {
	var res Result

	explicit := make(map[location]bool)
	for _, g := range m.Groups {
		for _, r := range g.Relocations {
			explicit[location{section: r.Section, offset: r.Offset}] = true
		}
	}

	// symbols that will be appended to the module. indexed by name
	var added []object.Symbol
	var addedLocations []uint32
	addedIdx := make(map[string]uint32)

	symbolFor := func(tg Target) uint32 {
		if tg.Module == index {
			return uint32(tg.Symbol)
		}

		if idx, ok := addedIdx[tg.Name]; ok {
			return idx
		}

		// an existing external reference to the same name can be used
		if tg.Module != FixedImage {
			for i, sym := range m.Symbols {
				if sym.Kind == object.SymExternal && sym.Name == tg.Name {
					addedIdx[tg.Name] = uint32(i)
					return uint32(i)
				}
			}
		}

		idx := uint32(len(m.Symbols) + len(added))
		info := object.Info(object.TypeNone, object.BindGlobal)
		if tg.Module == FixedImage {
			// local so that the symbol never competes with the definitions
			// of the fixed image in the linker's symbol table
			info = object.Info(object.TypeFunction, object.BindLocal)
			added = append(added, object.NewSymbol(tg.Name, object.SectionAbsolute, 0, 0, info))
			addedLocations = append(addedLocations, tg.Address)
		} else {
			added = append(added, object.NewSymbol(tg.Name, object.SectionExternal, 0, 0, info))
			addedLocations = append(addedLocations, 0)
		}
		addedIdx[tg.Name] = idx
		res.Externals++
		return idx
	}

	var groups []object.RelocationGroup

	for si, sec := range m.Sections {
		if !sec.Executable() || len(sec.Data) < 4 {
			continue
		}

		candidates, unmatched := Scan(sec.Data, targets, index, window)
		res.Unmatched += unmatched

		g := object.RelocationGroup{Section: uint16(si)}
		for i := 0; i < len(candidates); i++ {
			c := candidates[i]

			if c.Type == object.RelocHi16 {
				// pairs are kept or dropped together
				lo := candidates[i+1]
				i++
				if explicit[location{uint16(si), c.Offset}] || explicit[location{uint16(si), lo.Offset}] {
					res.Duplicates++
					continue
				}
				sym := symbolFor(c.Target)
				g.Relocations = append(g.Relocations,
					object.Relocation{Section: uint16(si), Offset: c.Offset, Type: object.RelocHi16, Symbol: sym, Discovered: true},
					object.Relocation{Section: uint16(si), Offset: lo.Offset, Type: object.RelocLo16, Symbol: sym, Discovered: true},
				)
				res.Pairs++
				logger.Logf(targets.Detail, "discovery", "%s: hi16/lo16 at %s+0x%x/0x%x to %s", m.Name, sec.Name, c.Offset, lo.Offset, c.Target.Name)
				continue
			}

			if explicit[location{uint16(si), c.Offset}] {
				res.Duplicates++
				continue
			}
			g.Relocations = append(g.Relocations, object.Relocation{
				Section: uint16(si), Offset: c.Offset, Type: c.Type, Symbol: symbolFor(c.Target), Discovered: true,
			})
			res.Jumps++
			logger.Logf(targets.Detail, "discovery", "%s: jump at %s+0x%x to %s", m.Name, sec.Name, c.Offset, c.Target.Name)
		}

		if len(g.Relocations) > 0 {
			groups = append(groups, g)
		}
	}

	logger.Logf(logger.Allow, "discovery", "%s: %s", m.Name, res)

	n := m
	if len(added) > 0 {
		n = n.WithSymbols(added, addedLocations)
	}
	if len(groups) > 0 {
		n = n.WithRelocations(groups...)
		for _, g := range groups {
			n.Sections[g.Section].Data = clearAddends(n.Sections[g.Section].Data, g.Relocations)
		}
	}
	return n, res
}

// clearAddends returns a copy of the section data with the address field of
// every relocated word set to zero. The address a word was compiled with is
// the declared address of the target, which would otherwise be added to the
// final address when the relocation is applied.
func clearAddends(data []byte, relocations []object.Relocation) []byte {
	c := make([]byte, len(data))
	copy(c, data)
	for _, r := range relocations {
		w := binary.LittleEndian.Uint32(c[r.Offset:])
		switch r.Type {
		case object.RelocJump, object.RelocJump26:
			w &= 0xfc000000
		case object.RelocHi16, object.RelocLo16:
			w &= 0xffff0000
		}
		binary.LittleEndian.PutUint32(c[r.Offset:], w)
	}
	return c
}
