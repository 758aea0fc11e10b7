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
	"encoding/binary"
	"fmt"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
)

// Failure is a relocation that could not be applied.
type Failure struct {
	Module string
	Symbol string

	// location of the word in the merged image. zero if the location could
	// not be determined
	Location uint32

	Type object.RelocationType
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("File Address: %X Symbol Name: %s", f.Location, f.Symbol)
}

// Patch is a relocation that was applied to the merged image.
type Patch struct {
	Module string
	Symbol string
	Type   object.RelocationType

	// location of the word in the merged image and the address it was
	// relocated against
	Location uint32
	Resolved uint32

	Original uint32
	Patched  uint32

	Discovered bool
}

// Report of the relocation stage.
type Report struct {
	// relocations of a supported type that were attempted and of those the
	// number that were applied successfully
	Attempted int
	Applied   int

	// relocations of type none or of an unsupported type
	Skipped int

	// relocations that were discovered rather than read from a relocation
	// table. included in Attempted
	Discovered int

	Failures    []Failure
	Diagnostics []Diagnostic

	// one entry for every applied relocation in the order they were applied
	Patches []Patch
}

// Percentage of attempted relocations that were applied. Returns 100 if no
// relocations were attempted.
func (r Report) Percentage() float64 {
	if r.Attempted == 0 {
		return 100
	}
	return float64(r.Applied) / float64(r.Attempted) * 100
}

func (r Report) String() string {
	return fmt.Sprintf("applied %d / %d relocations (%.2f%%), %d skipped, %d failed",
		r.Applied, r.Attempted, r.Percentage(), r.Skipped, len(r.Failures))
}

// applier patches relocations in the merged image.
type applier struct {
	buf      []byte
	modules  []*object.Module
	layout   *Layout
	resolver *Resolver
	report   Report
	detail   logger.Permission
}

// location returns the offset of the word for the relocation in the merged
// image.
func (a *applier) location(module int, rel object.Relocation) (uint32, error) {
	m := a.modules[module]
	name := m.SectionName(rel.Section)
	if int(rel.Section) < len(m.Sections) {
		if p, ok := a.layout.Module(module, name); ok && rel.Offset+4 <= p.Size {
			loc := p.Offset + rel.Offset
			if int(loc)+4 <= len(a.buf) {
				return loc, nil
			}
		}
	}
	return 0, curated.Errorf(object.OutOfRange, name, rel.Offset)
}

func (a *applier) word(loc uint32) uint32 {
	return binary.LittleEndian.Uint32(a.buf[loc:])
}

func (a *applier) fail(module int, rel object.Relocation, loc uint32, err error) {
	m := a.modules[module]
	a.report.Failures = append(a.report.Failures, Failure{
		Module:   m.Name,
		Symbol:   symbolName(m, int(rel.Symbol)),
		Location: loc,
		Type:     rel.Type,
		Err:      err,
	})
	logger.Logf(logger.Allow, "relocation", "%s: %v", m.Name, err)
}

// paired returns the lo16 relocation that completes the hi16 relocation at
// index i of the group.
func paired(g object.RelocationGroup, i int) (object.Relocation, bool) {
	for j := i + 1; j < len(g.Relocations); j++ {
		if g.Relocations[j].Type == object.RelocHi16 {
			continue
		}
		if g.Relocations[j].Type == object.RelocLo16 {
			return g.Relocations[j], true
		}
		return object.Relocation{}, false
	}
	return object.Relocation{}, false
}

func (a *applier) apply(module int, g object.RelocationGroup, i int) {
	m := a.modules[module]
	rel := g.Relocations[i]

	if rel.Type == object.RelocNone {
		a.report.Skipped++
		logger.Logf(a.detail, "relocation", "%s: skipped %s at %s+0x%x", m.Name, rel.Type, m.SectionName(rel.Section), rel.Offset)
		return
	}
	if !rel.Type.Supported() {
		a.report.Skipped++
		err := curated.Errorf(object.UnsupportedRelocation, int(rel.Type), m.SectionName(rel.Section), rel.Offset)
		a.report.Diagnostics = append(a.report.Diagnostics, newDiagnostic("relocation", m.Name, err))
		return
	}

	a.report.Attempted++
	if rel.Discovered {
		a.report.Discovered++
	}

	loc, err := a.location(module, rel)
	if err != nil {
		a.fail(module, rel, 0, err)
		return
	}

	resolved, err := a.resolver.Address(module, int(rel.Symbol))
	if err != nil {
		a.fail(module, rel, loc, err)
		return
	}

	orig := a.word(loc)
	var nw uint32

	switch rel.Type {
	case object.RelocJump:
		nw = orig + resolved

	case object.RelocJump26:
		nw = (orig & 0xfc000000) | (((orig & 0x03ffffff) + (resolved >> 2)) & 0x03ffffff)

	case object.RelocLo16:
		nw = (orig & 0xffff0000) | ((resolved + (orig & 0xffff)) & 0xffff)

	case object.RelocHi16:
		lo, ok := paired(g, i)
		if !ok {
			a.fail(module, rel, loc, curated.Errorf(object.PairingFailure, m.SectionName(rel.Section), rel.Offset))
			return
		}
		loLoc, err := a.location(module, lo)
		if err != nil {
			a.fail(module, rel, loc, err)
			return
		}

		// the addend of the hi16 word itself is not used
		low := resolved + (a.word(loLoc) & 0xffff)
		carry := uint32(0)
		if low&0xffff > 0x7fff {
			carry = 1
		}
		nw = (orig & 0xffff0000) | (((resolved >> 16) + carry) & 0xffff)
	}

	binary.LittleEndian.PutUint32(a.buf[loc:], nw)
	a.report.Applied++
	a.report.Patches = append(a.report.Patches, Patch{
		Module:     m.Name,
		Symbol:     symbolName(m, int(rel.Symbol)),
		Type:       rel.Type,
		Location:   loc,
		Resolved:   resolved,
		Original:   orig,
		Patched:    nw,
		Discovered: rel.Discovered,
	})

	logger.Logf(a.detail, "relocation", "%s %s at 0x%08x: %08x -> %08x (0x%08x)",
		m.Name, rel.Type, loc, orig, nw, resolved)
}

// Apply every relocation of every module to the merged image. The merged
// image is patched in place. A relocation that fails leaves the merged image
// unchanged and is recorded in the report.
func Apply(buf []byte, modules []*object.Module, layout *Layout, resolver *Resolver, detail logger.Permission) Report {
	if detail == nil {
		detail = logger.Verbosity(false)
	}

	a := &applier{
		buf:      buf,
		modules:  modules,
		layout:   layout,
		resolver: resolver,
		detail:   detail,
	}

	for mi, m := range modules {
		for _, g := range m.Groups {
			for i := range g.Relocations {
				a.apply(mi, g, i)
			}
		}
	}

	logger.Log(logger.Allow, "relocation", a.report.String())

	return a.report
}
