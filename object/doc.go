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

// Package object is the in-memory model shared by the container parsers and
// the linker: sections, symbols, relocations, modules and the fixed base
// image.
//
// Values in this package are not changed once they have been created by a
// parser. Functions that need to add to a module, such as relocation
// discovery, use WithSymbols() and WithRelocations() to create a new module.
// Results that depend on the placement of sections, for example the final
// address of a symbol, are kept by the linker in separate tables.
//
// The package also defines the error patterns used with the curated package
// throughout the linker.
package object
