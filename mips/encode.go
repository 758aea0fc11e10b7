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

package mips

// EncodeJump returns a J or JAL word for the target address. The lowest two
// bits of the address and the region bits are dropped.
func EncodeJump(op uint8, address uint32) uint32 {
	return uint32(op&0x3f)<<26 | (address>>2)&0x03ffffff
}

// EncodeImmediate returns an immediate form word.
func EncodeImmediate(op uint8, rs uint8, rt uint8, imm uint16) uint32 {
	return uint32(op&0x3f)<<26 | uint32(rs&0x1f)<<21 | uint32(rt&0x1f)<<16 | uint32(imm)
}

// EncodeLUI returns "lui rt, imm".
func EncodeLUI(rt uint8, imm uint16) uint32 {
	return EncodeImmediate(OpLUI, 0, rt, imm)
}

// EncodeADDIU returns "addiu rt, rs, imm".
func EncodeADDIU(rt uint8, rs uint8, imm uint16) uint32 {
	return EncodeImmediate(OpADDIU, rs, rt, imm)
}

// EncodeRegister returns a SPECIAL form word.
func EncodeRegister(rs uint8, rt uint8, rd uint8, shamt uint8, funct uint8) uint32 {
	return uint32(rs&0x1f)<<21 | uint32(rt&0x1f)<<16 | uint32(rd&0x1f)<<11 | uint32(shamt&0x1f)<<6 | uint32(funct&0x3f)
}

// SplitAddress returns the LUI and ADDIU immediates that reconstruct the
// address. The upper half is adjusted for the sign extension of the lower half.
func SplitAddress(address uint32) (hi uint16, lo uint16) {
	lo = uint16(address)
	hi = uint16((address + 0x8000) >> 16)
	return hi, lo
}
