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

// Error patterns for use with curated.Errorf(), curated.Is() and curated.Has().
//
// FormatError is fatal for the container being parsed. LayoutError is fatal
// for the link. The other errors are recorded and the link continues.
const (
	FormatError           = "format error: %s: %v"
	LayoutError           = "layout error: %v"
	UnresolvedSymbol      = "unresolved symbol: %s"
	AmbiguousSymbol       = "ambiguous symbol: %s defined in %s and %s"
	UnsupportedRelocation = "unsupported relocation: type %d at %s+0x%x"
	PairingFailure        = "pairing failure: hi16 at %s+0x%x has no paired lo16"
	OutOfRange            = "out of range: %s+0x%x is outside the merged image"
)
