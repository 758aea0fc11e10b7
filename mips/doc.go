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

// Package mips decodes the 32-bit MIPS instruction words that matter when
// looking for address construction in compiled code.
//
// Decoding is total. Every word decodes to an Instruction and words that are
// of no interest decode with the FormOther form. The encoders are the inverse
// of Decode() for the forms that can be decoded.
package mips
