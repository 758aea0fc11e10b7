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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The pattern is retained and can be tested for with the Is() function. The
// linker packages define their error patterns as constants so that a caller
// can decide how to react to an error without inspecting the message text:
//
//	err := xff.Parse(data)
//	if curated.Is(err, object.FormatError) {
//		// skip this container and carry on with the rest
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain. The chain is formed by passing a curated error as one of
// the placeholder values of another curated error.
//
//	e := curated.Errorf(object.FormatError, "bad magic")
//	f := curated.Errorf("module %s: %v", "game.xff", e)
//
//	curated.Is(f, object.FormatError)  // false
//	curated.Has(f, object.FormatError) // true
//
// The Error() function implementation for curated errors ensures that the
// error chain is normalised. Specifically, that the chain does not contain
// duplicate adjacent parts. For the purposes of this package we think of
// chains as being composed of parts separated by the sub-string ': '.
package curated
