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

// Package discovery recovers relocations that are missing from a module's
// relocation table by looking for address construction in the module's code.
//
// Two idioms are recognised. A J or JAL instruction whose target is the start
// of a known symbol produces a jump relocation. A LUI instruction followed
// within a small window by an ADDIU that adds to the same register produces a
// hi16/lo16 pair when the combined value is the address of a known symbol.
//
// The search is deliberately simple. The first match wins and nothing is
// revisited. Missed relocations are expected and are never an error.
package discovery
