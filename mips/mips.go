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

import "fmt"

// Form of a decoded instruction.
type Form int

// List of valid Form values.
const (
	FormOther Form = iota
	FormJump
	FormImmediate
	FormRegister
)

func (f Form) String() string {
	switch f {
	case FormJump:
		return "jump"
	case FormImmediate:
		return "immediate"
	case FormRegister:
		return "register"
	}
	return "other"
}

// Primary opcodes that the decoder distinguishes.
const (
	OpSpecial = 0x00
	OpRegimm  = 0x01
	OpJ       = 0x02
	OpJAL     = 0x03
	OpADDIU   = 0x09
	OpORI     = 0x0d
	OpLUI     = 0x0f
	OpCOP0    = 0x10
	OpCOP1    = 0x11
	OpCOP2    = 0x12
	OpCOP1X   = 0x13
	OpMMI     = 0x1c
)

// Instruction is a decoded instruction word. Which fields are meaningful
// depends on the Form:
//
//	FormJump: Op, Target
//	FormImmediate: Op, Rs, Rt, Imm
//	FormRegister: Op, Rs, Rt, Rd, Shamt, Funct
//	FormOther: Op
type Instruction struct {
	Form Form
	Word uint32

	Op     uint8
	Rs     uint8
	Rt     uint8
	Rd     uint8
	Shamt  uint8
	Funct  uint8
	Imm    int16
	Target uint32
}

// Decode a single instruction word.
func Decode(word uint32) Instruction {
	ins := Instruction{
		Word: word,
		Op:   uint8(word >> 26),
	}

	switch ins.Op {
	case OpJ, OpJAL:
		ins.Form = FormJump
		ins.Target = word & 0x03ffffff
	case OpSpecial:
		ins.Form = FormRegister
		ins.Rs = uint8(word>>21) & 0x1f
		ins.Rt = uint8(word>>16) & 0x1f
		ins.Rd = uint8(word>>11) & 0x1f
		ins.Shamt = uint8(word>>6) & 0x1f
		ins.Funct = uint8(word) & 0x3f
	case OpRegimm, OpCOP0, OpCOP1, OpCOP2, OpCOP1X, OpMMI:
		ins.Form = FormOther
	default:
		ins.Form = FormImmediate
		ins.Rs = uint8(word>>21) & 0x1f
		ins.Rt = uint8(word>>16) & 0x1f
		ins.Imm = int16(word & 0xffff)
	}

	return ins
}

func (ins Instruction) String() string {
	switch ins.Form {
	case FormJump:
		return fmt.Sprintf("%s 0x%08x", ins.Mnemonic(), ins.JumpAddress())
	case FormImmediate:
		return fmt.Sprintf("%s r%d, r%d, %d", ins.Mnemonic(), ins.Rt, ins.Rs, ins.Imm)
	case FormRegister:
		if ins.IsNOP() {
			return "nop"
		}
		return fmt.Sprintf("special r%d, r%d, r%d (funct 0x%02x)", ins.Rd, ins.Rs, ins.Rt, ins.Funct)
	}
	return fmt.Sprintf("op 0x%02x (0x%08x)", ins.Op, ins.Word)
}

// Mnemonic returns a short name for the instruction for those opcodes that
// are named in this package.
func (ins Instruction) Mnemonic() string {
	switch ins.Op {
	case OpJ:
		return "j"
	case OpJAL:
		return "jal"
	case OpADDIU:
		return "addiu"
	case OpORI:
		return "ori"
	case OpLUI:
		return "lui"
	}
	return fmt.Sprintf("op%02x", ins.Op)
}

// IsNOP returns true for the all zero word.
func (ins Instruction) IsNOP() bool {
	return ins.Word == 0
}

// IsLUI returns true if the instruction loads an upper immediate.
func (ins Instruction) IsLUI() bool {
	return ins.Form == FormImmediate && ins.Op == OpLUI
}

// IsADDIU returns true if the instruction is an add immediate unsigned.
func (ins Instruction) IsADDIU() bool {
	return ins.Form == FormImmediate && ins.Op == OpADDIU
}

// IsJump returns true for J and JAL.
func (ins Instruction) IsJump() bool {
	return ins.Form == FormJump
}

// JumpAddress is the address encoded by the target field of a jump. The
// region bits of the program counter are not included.
func (ins Instruction) JumpAddress() uint32 {
	return ins.Target << 2
}

// Upper returns the immediate of a LUI as the upper half of a 32-bit value.
func (ins Instruction) Upper() uint32 {
	return uint32(uint16(ins.Imm)) << 16
}

// Combine reconstructs the 32-bit address built by a LUI followed by an
// ADDIU. The ADDIU immediate is sign extended.
func Combine(lui Instruction, addiu Instruction) uint32 {
	return lui.Upper() + uint32(int32(addiu.Imm))
}
