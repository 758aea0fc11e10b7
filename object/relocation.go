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

package object

import "fmt"

// RelocationType is the low byte of the packed relocation info word.
type RelocationType uint8

// List of valid RelocationType values. Other values are unsupported.
//
// RelocJump is the absolute jump target. The resolved address is added to the
// whole word. RelocJump26 is the second jump encoding, which adds the word
// address of the target to the 26-bit target field only.
const (
	RelocNone   RelocationType = 0
	RelocJump   RelocationType = 2
	RelocJump26 RelocationType = 4
	RelocHi16   RelocationType = 5
	RelocLo16   RelocationType = 6
)

func (t RelocationType) String() string {
	switch t {
	case RelocNone:
		return "none"
	case RelocJump:
		return "jump"
	case RelocJump26:
		return "jump26"
	case RelocHi16:
		return "hi16"
	case RelocLo16:
		return "lo16"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Supported returns true if the relocation type is one that can be applied.
// RelocNone is supported in the sense that there is nothing to do.
func (t RelocationType) Supported() bool {
	switch t {
	case RelocNone, RelocJump, RelocJump26, RelocHi16, RelocLo16:
		return true
	}
	return false
}

// Relocation describes how the address of a symbol is encoded in the word at
// Offset of the section.
type Relocation struct {
	Section uint16
	Offset  uint32
	Type    RelocationType
	Symbol  uint32

	// relocation was found by scanning the section's instructions
	Discovered bool
}

// PackInfo packs relocation type and symbol index into a single word as
// found in relocation tables.
func PackInfo(t RelocationType, symbol uint32) uint32 {
	return symbol<<8 | uint32(t)
}

// UnpackInfo is the inverse of PackInfo().
func UnpackInfo(info uint32) (RelocationType, uint32) {
	return RelocationType(info & 0xff), info >> 8
}

func (r Relocation) String() string {
	d := ""
	if r.Discovered {
		d = " (discovered)"
	}
	return fmt.Sprintf("%s sec=%d off=0x%x sym=%d%s", r.Type, r.Section, r.Offset, r.Symbol, d)
}

// RelocationGroup is the list of relocations for one section, in table order.
type RelocationGroup struct {
	Section     uint16
	Relocations []Relocation
}
