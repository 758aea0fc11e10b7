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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes and
// allows different flags for each mode.
//
// Whereas with flag.FlagSet you call Parse() with the array of strings as the
// only argument, with modalflag you first call NewArgs() with the array of
// arguments and then Parse() with no arguments:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("LINK", "DUMP", "SPLITS")
//	p, err := md.Parse()
//
// After Parse() the Mode() function returns the selected mode. The first
// sub-mode is the default mode and is selected when the first argument is not
// a mode name. Mode names are case insensitive.
//
// Each mode can then start a new set of flags with NewMode() and call Parse()
// again to process the arguments that follow the mode name:
//
//	switch md.Mode() {
//	case "LINK":
//		md.NewMode()
//		image := md.AddString("image", "", "fixed base image")
//		p, err := md.Parse()
//		...
//		link(*image, md.RemainingArgs())
//	}
//
// The help flag (-help or -h) is handled automatically. The Parse() function
// returns ParseHelp once the help message has been written to Output.
package modalflag
