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
	"sort"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/discovery"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
)

// Placement of a section in the merged image.
type Placement struct {
	// Module is the index of the module or discovery.FixedImage for
	// sections of the fixed image. Section is the index of the section in
	// the module or image
	Module  int
	Section int
	Name    string

	Offset uint32
	Size   uint32
}

// Fixed returns true if the placement is for a section of the fixed image.
func (p Placement) Fixed() bool {
	return p.Module == discovery.FixedImage
}

// End is the offset of the first byte after the placement.
func (p Placement) End() uint32 {
	return p.Offset + p.Size
}

func (p Placement) String() string {
	return fmt.Sprintf("0x%08x - 0x%08x %s", p.Offset, p.End(), p.Name)
}

type placementKey struct {
	module int
	name   string
}

// Layout of the merged image. Placements are in the order they appear in the
// merged image. A Layout is never changed after Plan() returns it.
type Layout struct {
	Placements []Placement

	// index into placements. fixed sections use discovery.FixedImage as the
	// module index
	lookup map[placementKey]int

	size uint32
}

// Size of the merged image.
func (l *Layout) Size() uint32 {
	return l.size
}

func (l *Layout) find(module int, name string) (Placement, bool) {
	if idx, ok := l.lookup[placementKey{module: module, name: name}]; ok {
		return l.Placements[idx], true
	}
	return Placement{}, false
}

// Module returns the placement of the named section of the module. If a
// module has more than one section of the same name the first is returned.
func (l *Layout) Module(module int, name string) (Placement, bool) {
	return l.find(module, name)
}

// Fixed returns the placement of the named section of the fixed image.
func (l *Layout) Fixed(name string) (Placement, bool) {
	return l.find(discovery.FixedImage, name)
}

// Modules returns the placements of module sections ordered by module index
// and then by offset.
func (l *Layout) Modules() []Placement {
	var p []Placement
	for _, pl := range l.Placements {
		if !pl.Fixed() {
			p = append(p, pl)
		}
	}
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Module < p[j].Module
	})
	return p
}

func alignTo(v uint32, a uint32) uint32 {
	if a <= 1 {
		return v
	}
	return (v + a - 1) / a * a
}

// planner holds the state of a layout while it is being built.
type planner struct {
	layout *Layout
	buf    []byte
	fixed  []object.Section
	index  []int
	next   int
}

func (pl *planner) cursor() uint32 {
	return uint32(len(pl.buf))
}

func (pl *planner) record(p Placement) {
	k := placementKey{module: p.Module, name: p.Name}
	if _, ok := pl.layout.lookup[k]; !ok {
		pl.layout.lookup[k] = len(pl.layout.Placements)
	}
	pl.layout.Placements = append(pl.layout.Placements, p)
}

func (pl *planner) pad(to uint32) {
	if pl.cursor() < to {
		pl.buf = append(pl.buf, make([]byte, to-pl.cursor())...)
	}
}

// write section payload. zero-fill sections and short payloads are padded
// with zeros up to the declared size.
func (pl *planner) write(sec object.Section) {
	end := pl.cursor() + sec.Size
	if sec.Kind != object.KindZeroFill {
		d := sec.Data
		if uint32(len(d)) > sec.Size {
			d = d[:sec.Size]
		}
		pl.buf = append(pl.buf, d...)
	}
	pl.pad(end)
}

// placeFixed places the next fixed section at its address.
func (pl *planner) placeFixed() error {
	sec := pl.fixed[pl.next]
	if sec.Address < pl.cursor() {
		return curated.Errorf(object.LayoutError,
			fmt.Errorf("fixed section %s at 0x%08x is behind the cursor at 0x%08x", sec.Name, sec.Address, pl.cursor()))
	}

	pl.pad(sec.Address)
	pl.record(Placement{
		Module:  discovery.FixedImage,
		Section: pl.index[pl.next],
		Name:    sec.Name,
		Offset:  sec.Address,
		Size:    sec.Size,
	})
	pl.write(sec)
	pl.next++

	logger.Logf(logger.Allow, "layout", "fixed %s at 0x%08x (0x%x bytes)", sec.Name, sec.Address, sec.Size)
	return nil
}

type copyRef struct {
	module  int
	section int
}

// groupEnd returns where the cursor would be after placing every copy in the
// group starting at cursor.
func groupEnd(cursor uint32, copies []copyRef, modules []*object.Module, align uint32) uint32 {
	for _, c := range copies {
		sec := modules[c.module].Sections[c.section]
		cursor = alignTo(cursor, align)
		cursor = alignTo(cursor+sec.Size, 4)
	}
	return cursor
}

// Plan the layout of the merged image and return the merged image with the
// section payloads in place. Relocations are not applied.
//
// Placeable module sections are grouped by name in the order the names are
// first seen. The copies of a group are placed contiguously in module order.
// Fixed image sections are placed at their addresses whenever the next group
// would otherwise run over them. A fixed section that can not be reached
// because the cursor is already beyond it is a LayoutError.
func Plan(img *object.Image, modules []*object.Module, opts Options) (*Layout, []byte, error) {
	pl := &planner{
		layout: &Layout{
			lookup: make(map[placementKey]int),
		},
	}

	if img != nil {
		type indexed struct {
			sec object.Section
			idx int
		}
		var fixed []indexed
		for i, sec := range img.Sections {
			if sec.Allocated() {
				fixed = append(fixed, indexed{sec: sec, idx: i})
			}
		}
		sort.SliceStable(fixed, func(i, j int) bool {
			return fixed[i].sec.Address < fixed[j].sec.Address
		})
		for _, f := range fixed {
			pl.fixed = append(pl.fixed, f.sec)
			pl.index = append(pl.index, f.idx)
		}
	}

	// section names in first seen order and the copies of each name
	var names []string
	groups := make(map[string][]copyRef)
	for mi, m := range modules {
		for si, sec := range m.Sections {
			if !sec.Placeable() {
				continue
			}
			if _, ok := groups[sec.Name]; !ok {
				names = append(names, sec.Name)
			}
			groups[sec.Name] = append(groups[sec.Name], copyRef{module: mi, section: si})
		}
	}

	align := opts.alignment()

	for _, name := range names {
		copies := groups[name]

		for pl.next < len(pl.fixed) && groupEnd(pl.cursor(), copies, modules, align) > pl.fixed[pl.next].Address {
			if err := pl.placeFixed(); err != nil {
				return nil, nil, err
			}
		}

		start := pl.cursor()
		for _, c := range copies {
			sec := modules[c.module].Sections[c.section]
			pl.pad(alignTo(pl.cursor(), align))
			pl.record(Placement{
				Module:  c.module,
				Section: c.section,
				Name:    sec.Name,
				Offset:  pl.cursor(),
				Size:    sec.Size,
			})
			pl.write(sec)
			pl.pad(alignTo(pl.cursor(), 4))
		}

		logger.Logf(logger.Allow, "layout", "%s from %d modules at 0x%08x (0x%x bytes)", name, len(copies), start, pl.cursor()-start)
	}

	for pl.next < len(pl.fixed) {
		if err := pl.placeFixed(); err != nil {
			return nil, nil, err
		}
	}

	pl.layout.size = pl.cursor()

	return pl.layout, pl.buf, nil
}
