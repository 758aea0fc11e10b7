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

// Package linker merges relocatable modules with a fixed image and patches
// every relocation in the merged result.
//
// Linking is staged. Discovery optionally adds relocations to modules that
// are missing them. The layout of the merged image is planned completely and
// only then are symbols resolved and relocations applied. The merged image is
// a flat buffer in which the offset of a byte is the address it is loaded at.
// Fixed image sections are therefore placed at their own addresses and module
// sections are placed in the space between them.
//
// Problems other than a LayoutError do not stop the link. They are recorded
// as a Diagnostic, or as a Failure in the Report for relocations that could
// not be applied.
package linker
