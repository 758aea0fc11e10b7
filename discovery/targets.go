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
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
)

// FixedImage is the module index of targets that belong to the fixed image.
const FixedImage = -1

// Target is a known symbol boundary.
type Target struct {
	Name    string
	Address uint32

	// Module is the index of the defining module or FixedImage. Symbol is
	// the index of the symbol in that module and is not meaningful for
	// FixedImage targets
	Module int
	Symbol int

	// the symbol can be referenced from another module
	Exported bool
}

// Targets maps addresses to known symbol boundaries.
type Targets struct {
	byAddress map[uint32][]Target

	// permission for logging each individual match and miss
	Detail logger.Permission
}

// NewTargets builds the list of targets from every defined and named symbol
// of the modules that is not a section alias. The address of a target is the
// address as declared in the module.
func NewTargets(modules []*object.Module) *Targets {
	t := &Targets{
		byAddress: make(map[uint32][]Target),
		Detail:    logger.Verbosity(false),
	}

	for mi, m := range modules {
		for si, sym := range m.Symbols {
			if sym.Name == "" || !sym.Defined() || sym.Kind == object.SymSection {
				continue
			}
			a, ok := m.DeclaredAddress(si)
			if !ok {
				continue
			}
			t.add(Target{
				Name:     sym.Name,
				Address:  a,
				Module:   mi,
				Symbol:   si,
				Exported: sym.Exported(),
			})
		}
	}

	return t
}

func (t *Targets) add(tg Target) {
	t.byAddress[tg.Address] = append(t.byAddress[tg.Address], tg)
}

// AddSplits adds targets for the fixed image. These are usually created from
// a split list. Targets added this way are treated as absolute addresses.
func (t *Targets) AddSplits(targets []Target) {
	for _, tg := range targets {
		tg.Module = FixedImage
		tg.Symbol = -1
		tg.Exported = true
		if tg.Name == "" {
			continue
		}
		t.add(tg)
	}
}

// Len returns the number of targets.
func (t *Targets) Len() int {
	n := 0
	for _, l := range t.byAddress {
		n += len(l)
	}
	return n
}

// Lookup returns the target at the address as seen from the module. Targets
// in the module itself are preferred. Otherwise the first exported target to
// be added is returned.
func (t *Targets) Lookup(address uint32, module int) (Target, bool) {
	l := t.byAddress[address]
	for _, tg := range l {
		if tg.Module == module && module != FixedImage {
			return tg, true
		}
	}
	for _, tg := range l {
		if tg.Exported {
			return tg, true
		}
	}
	return Target{}, false
}
