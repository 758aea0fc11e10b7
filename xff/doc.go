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

// Package xff reads and writes the relocatable module container. The
// container is little-endian and begins with a fixed header of 28 words. The
// header holds the counts of, and file offsets to, the section header table,
// the symbol table and the relocation header table, along with the string
// tables for section and symbol names.
//
// Parse() keeps the raw header and table entries so that the tables can be
// written out again byte for byte with the Marshal*() functions. The Module()
// function converts the container to the object model used by the linker.
//
// Encode() is the reverse of Module(). It creates a new container from an
// object.Module.
package xff
