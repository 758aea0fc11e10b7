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

// Package elfimage reads and writes the fixed base image, a 32-bit ELF
// executable. The ELF header, section header table and program header table
// are read into the types of the debug/elf package in the byte order given by
// the file. The raw table entries are kept so that they can be written out
// again byte for byte.
//
// Images for machines other than MIPS are accepted but the fact is logged.
package elfimage
