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

// Package logger is the central log repository for xfflink. There is a single
// central log which is accessed through the package level functions. Other
// instances of Logger can be created with NewLogger() for when a separate log
// is required. The tests for this package use that facility.
//
// Log entries are made of a tag and a detail string. The linker uses the tag
// to identify the stage of the link the entry concerns (eg. "xff", "layout",
// "resolve") and the detail for the specifics.
//
// Identical entries that are logged one after the other are collapsed into a
// single entry with a repeat count.
//
// Whether a log entry is made at all is decided by the Permission argument.
// The Allow value is a good default when an entry should always be made.
package logger
