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

// Package splits reads and writes split lists. A split list names the
// functions and objects in the sections of a module or of the fixed image. It
// is a plain text file that is intended to be edited by hand:
//
//	// comment lines and blank lines are ignored
//	int getHp(int baseHp, int maxHp)
//		Start:   0x100
//		End:     0x180
//		Section: .text
//		Type:    int
//
// The first line of an entry is the name, or a C style function signature
// from which the name is taken. The property lines that follow are indented
// with a tab. Length can be given instead of End. The section can be given by
// name or by index (as a hexadecimal number). Start and End are offsets from
// the start of the section.
//
// A split list can be created from the symbols of a module with
// FromSymbols(). Gaps between symbols are given placeholder names.
package splits
