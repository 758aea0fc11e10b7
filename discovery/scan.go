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

package discovery

import (
	"encoding/binary"

	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/mips"
	"github.com/xfflink/xfflink/object"
)

// DefaultWindow is the number of instructions searched after a LUI for the
// matching ADDIU.
const DefaultWindow = 32

// Candidate is a discovered relocation before it has been attached to a
// symbol of the scanning module.
type Candidate struct {
	Offset uint32
	Type   object.RelocationType
	Target Target
}

// Scan the instruction words of a section for address construction. Words
// are little-endian. Candidates for a hi16/lo16 pair are always adjacent in
// the returned list with the hi16 first.
func Scan(words []byte, targets *Targets, module int, window int) (candidates []Candidate, unmatched int) {
	if window <= 0 {
		window = DefaultWindow
	}

	n := len(words) / 4
	ins := make([]mips.Instruction, n)
	for i := range ins {
		ins[i] = mips.Decode(binary.LittleEndian.Uint32(words[i*4:]))
	}

	for i, in := range ins {
		switch {
		case in.IsJump():
			a := in.JumpAddress()
			tg, ok := targets.Lookup(a, module)
			if !ok {
				logger.Logf(targets.Detail, "discovery", "no target for %s at 0x%x", in, i*4)
				unmatched++
				continue
			}
			candidates = append(candidates, Candidate{Offset: uint32(i * 4), Type: object.RelocJump, Target: tg})

		case in.IsLUI():
			for j := i + 1; j <= i+window && j < n; j++ {
				if !ins[j].IsADDIU() || ins[j].Rs != in.Rt {
					continue
				}

				// search stops at the first ADDIU on the register whether
				// or not the address is a target
				a := mips.Combine(in, ins[j])
				tg, ok := targets.Lookup(a, module)
				if !ok {
					logger.Logf(targets.Detail, "discovery", "no target for lui/addiu pair at 0x%x/0x%x (0x%08x)", i*4, j*4, a)
					unmatched++
					break // for loop
				}
				candidates = append(candidates,
					Candidate{Offset: uint32(i * 4), Type: object.RelocHi16, Target: tg},
					Candidate{Offset: uint32(j * 4), Type: object.RelocLo16, Target: tg},
				)
				break // for loop
			}
		}
	}

	return candidates, unmatched
}
