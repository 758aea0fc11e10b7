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

// Package test bundles helper functions for use with the standard go test
// harness.
//
// The Expect*() functions report a failed test with t.Errorf() and allow the
// test to continue. The Demand*() functions are the same except that they
// report with t.Fatalf(). Use the Demand*() functions when the value being
// tested is needed by later parts of the test. For example, the length of a
// slice that is about to be indexed.
//
// The ExpectSuccess() and ExpectFailure() functions interpret the value
// according to its type:
//
//	bool -> true is success
//	error -> nil is success
//	nil -> success
//
// The nil type is considered a success because of how errors usually work
// (nil to indicate no error).
//
// The Writer type implements the io.Writer interface and should be used to
// capture output. The Writer.Compare() function can then be used to test for
// equality.
package test
