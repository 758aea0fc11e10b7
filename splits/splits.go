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

package splits

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/discovery"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/object"
)

// GapPrefix begins the name of every split created for a gap between symbols.
const GapPrefix = "Undefined_Gap_"

// Split is a single entry in a split list.
type Split struct {
	Name string

	// the C style signature if the entry was given as one
	Signature string

	// offsets from the start of the section
	Start uint32
	End   uint32

	Section int
	Type    string
}

// Length of the split.
func (s Split) Length() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// IsGap returns true if the split is a placeholder for a gap between symbols.
func (s Split) IsGap() bool {
	return strings.HasPrefix(s.Name, GapPrefix)
}

func gapName(start uint32, end uint32) string {
	return fmt.Sprintf("%s0x%X-0x%X", GapPrefix, start, end)
}

func parseInt(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s) == 2 {
			return 0, nil
		}
		v, err := strconv.ParseUint(s[2:], 16, 32)
		return uint32(v), err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// nameFromSignature returns the function name of a C style signature. For
// example, "int getHp(int baseHp)" returns "getHp". Returns false if the line
// is not a signature.
func nameFromSignature(line string) (string, bool) {
	p := strings.Index(line, "(")
	if p < 0 || !strings.Contains(line, " ") || !strings.Contains(line[p:], ")") {
		return "", false
	}
	f := strings.Fields(line[:p])
	if len(f) < 2 {
		return "", false
	}
	return strings.TrimLeft(f[len(f)-1], "*&"), true
}

// Parse a split list. Section names are resolved against the list of names,
// which is indexed by section number.
func Parse(r io.Reader, sectionNames []string) ([]Split, error) {
	var splits []Split
	var cur *Split

	scanner := bufio.NewScanner(r)
	ln := 0
	for scanner.Scan() {
		ln++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}

		if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, " ") {
			splits = append(splits, Split{Name: trimmed})
			cur = &splits[len(splits)-1]
			if n, ok := nameFromSignature(trimmed); ok {
				cur.Name = n
				cur.Signature = trimmed
			}
			continue
		}

		if cur == nil {
			return nil, curated.Errorf("splits: line %d: property before first entry", ln)
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, curated.Errorf("splits: line %d: malformed property %q", ln, trimmed)
		}
		value = strings.TrimSpace(value)

		var err error
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "start":
			cur.Start, err = parseInt(value)
		case "end":
			cur.End, err = parseInt(value)
		case "length":
			var l uint32
			l, err = parseInt(value)
			if cur.End > 0 && cur.End != cur.Start+l {
				logger.Logf(logger.Allow, "splits", "%s has conflicting length and end", cur.Name)
			}
			cur.End = cur.Start + l
		case "section":
			if strings.HasPrefix(value, "0x") {
				var v uint32
				v, err = parseInt(value)
				cur.Section = int(v)
				break
			}
			cur.Section = -1
			for i, n := range sectionNames {
				if n == value {
					cur.Section = i
					break
				}
			}
			if cur.Section == -1 {
				return nil, curated.Errorf("splits: line %d: unknown section %q", ln, value)
			}
		case "type":
			cur.Type = value
		default:
			// other properties are used by tools that are not part of the
			// linker
		}

		if err != nil {
			return nil, curated.Errorf("splits: line %d: %v", ln, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("splits: %v", err)
	}

	return splits, nil
}

// Write the split list. Entries are ordered by section. Entries in the same
// section keep their order.
func Write(w io.Writer, splits []Split, sectionNames []string) error {
	ordered := make([]Split, len(splits))
	copy(ordered, splits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Section < ordered[j].Section
	})

	b := bufio.NewWriter(w)
	for _, s := range ordered {
		if s.Signature != "" {
			fmt.Fprintln(b, s.Signature)
		} else {
			fmt.Fprintln(b, s.Name)
		}
		fmt.Fprintf(b, "\tStart:   0x%X\n", s.Start)
		if s.End > 0 {
			fmt.Fprintf(b, "\tEnd:     0x%X\n", s.End)
		}
		if s.Section >= 0 && s.Section < len(sectionNames) && sectionNames[s.Section] != "" {
			fmt.Fprintf(b, "\tSection: %s\n", sectionNames[s.Section])
		} else {
			fmt.Fprintf(b, "\tSection: 0x%X\n", s.Section)
		}
		if s.Type != "" {
			fmt.Fprintf(b, "\tType:    %s\n", s.Type)
		}
	}

	if err := b.Flush(); err != nil {
		return curated.Errorf("splits: %v", err)
	}
	return nil
}

// SectionNames returns the names of the module's sections indexed by section
// number.
func SectionNames(sections []object.Section) []string {
	n := make([]string, len(sections))
	for i, s := range sections {
		n[i] = s.Name
	}
	return n
}

// FromSymbols creates a split list from the symbols of the module. Every
// section with a payload is covered completely. Gaps of more than one word
// between symbols, and any space after the last symbol, are given a
// placeholder name.
func FromSymbols(m *object.Module) []Split {
	var splits []Split

	for si, sec := range m.Sections {
		if !sec.Placeable() || sec.Kind == object.KindZeroFill {
			continue
		}

		var syms []object.Symbol
		for _, sym := range m.Symbols {
			if int(sym.Section) == si && sym.Kind != object.SymSection && sym.Section != object.SectionExternal {
				syms = append(syms, sym)
			}
		}
		sort.SliceStable(syms, func(i, j int) bool {
			return syms[i].Value < syms[j].Value
		})

		last := uint32(0)
		for _, sym := range syms {
			if sym.Value > last && sym.Value-last > 4 {
				splits = append(splits, Split{Name: gapName(last, sym.Value), Start: last, End: sym.Value, Section: si})
			}
			name := sym.Name
			if name == "" {
				name = gapName(sym.Value, sym.Value+sym.Size)
			}
			splits = append(splits, Split{Name: name, Start: sym.Value, End: sym.Value + sym.Size, Section: si})
			last = sym.Value + sym.Size
		}
		if last < sec.Size {
			splits = append(splits, Split{Name: gapName(last, sec.Size), Start: last, End: sec.Size, Section: si})
		}
	}

	return splits
}

// Symbols converts the split list to symbols. Splits for code sections
// become functions and other splits become objects. Gap placeholders are
// local symbols so that they can never satisfy a reference from another
// module.
func Symbols(splits []Split, sections []object.Section) []object.Symbol {
	syms := make([]object.Symbol, 0, len(splits))
	for _, s := range splits {
		typ := object.TypeObject
		if s.Section >= 0 && s.Section < len(sections) && sections[s.Section].Executable() {
			typ = object.TypeFunction
		}
		bind := object.BindGlobal
		if s.IsGap() {
			bind = object.BindLocal
		}
		syms = append(syms, object.NewSymbol(s.Name, uint16(s.Section), s.Start, s.Length(), object.Info(typ, bind)))
	}
	return syms
}

// Merge returns a copy of the module with symbols for the splits that do not
// already have a symbol of the same name in the module.
func Merge(m *object.Module, splits []Split) *object.Module {
	have := make(map[string]bool)
	for _, sym := range m.Symbols {
		if sym.Name != "" && sym.Defined() {
			have[sym.Name] = true
		}
	}

	var add []Split
	for _, s := range splits {
		if have[s.Name] || s.Section <= 0 || s.Section >= len(m.Sections) {
			continue
		}
		have[s.Name] = true
		add = append(add, s)
	}
	if len(add) == 0 {
		return m
	}

	logger.Logf(logger.Allow, "splits", "%s: %d symbols added from split list", m.Name, len(add))
	return m.WithSymbols(Symbols(add, m.Sections), make([]uint32, len(add)))
}

// ImageTargets converts the splits for the fixed image to discovery targets.
// The address of each target is the section address plus the start of the
// split. Gap placeholders are not targets.
func ImageTargets(splits []Split, img *object.Image) []discovery.Target {
	var t []discovery.Target
	for _, s := range splits {
		if s.IsGap() || s.Section < 0 || s.Section >= len(img.Sections) {
			continue
		}
		t = append(t, discovery.Target{
			Name:    s.Name,
			Address: img.Sections[s.Section].Address + s.Start,
		})
	}
	return t
}
