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

package logger

import (
	"io"
	"os"
	"strings"
)

const (
	penNormal  = "\033[0m"
	penDimTag  = "\033[2;36m"
	penDimRed  = "\033[2;31m"
	penDimGrey = "\033[2;37m"
)

// Colorizer applies basic coloring rules to logging output. The tag part of an
// entry is dimmed and entries that mention a failure are shown in red.
//
// Colouring is only applied when the underlying writer is a terminal. Use
// NewColorizer() to make that decision.
type Colorizer struct {
	out    io.Writer
	active bool
}

// NewColorizer is the preferred method if initialisation for the Colorizer
// type. Colouring is turned off if out is not a terminal.
func NewColorizer(out io.Writer) Colorizer {
	c := Colorizer{out: out}
	if f, ok := out.(*os.File); ok {
		c.active = isTerminal(f.Fd())
	}
	return c
}

// Write implements the io.Writer interface.
func (c Colorizer) Write(p []byte) (n int, err error) {
	if !c.active {
		return c.out.Write(p)
	}

	s := strings.Builder{}
	for _, l := range strings.SplitAfter(string(p), "\n") {
		if l == "" {
			continue
		}

		tag, detail, ok := strings.Cut(l, ": ")
		if !ok {
			s.WriteString(l)
			continue
		}

		s.WriteString(penDimTag)
		s.WriteString(tag)
		s.WriteString(": ")
		lc := strings.ToLower(detail)
		if strings.Contains(lc, "fail") || strings.Contains(lc, "error") || strings.Contains(lc, "unresolved") {
			s.WriteString(penDimRed)
		} else {
			s.WriteString(penDimGrey)
		}
		s.WriteString(strings.TrimSuffix(detail, "\n"))
		s.WriteString(penNormal)
		if strings.HasSuffix(detail, "\n") {
			s.WriteString("\n")
		}
	}

	if _, err := io.WriteString(c.out, s.String()); err != nil {
		return 0, err
	}

	return len(p), nil
}
