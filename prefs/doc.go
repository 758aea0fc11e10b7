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

// Package prefs facilitates the storage of preferential values in the
// program. The Bool, Int and String types wrap a live value that is safe to
// read from any goroutine.
//
// A preference value can be associated with a key in a Disk instance. The
// Disk type saves and loads the associated values to and from a file. The
// file is a simple text format of one entry per line:
//
//	key :: value
//
// Entries in the file that do not correspond to a key in the Disk instance
// are preserved when the file is saved. This means that different parts of
// the program can maintain their own Disk instance for the same file.
//
// Values on the command line stack take precedence over values on disk. A
// group of command line values is added with PushCommandLineStack(). When a
// Disk instance is loaded, any key found on the top of the stack is used
// instead of the value in the file. A value on the stack can be used only
// once.
//
//	prefs.PushCommandLineStack("linker.scanwindow::64; linker.discovery::true")
package prefs
