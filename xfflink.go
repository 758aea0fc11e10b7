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

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/xfflink/xfflink/curated"
	"github.com/xfflink/xfflink/elfimage"
	"github.com/xfflink/xfflink/linker"
	"github.com/xfflink/xfflink/logger"
	"github.com/xfflink/xfflink/modalflag"
	"github.com/xfflink/xfflink/paths"
	"github.com/xfflink/xfflink/prefs"
	"github.com/xfflink/xfflink/splits"
	"github.com/xfflink/xfflink/statsview"
	"github.com/xfflink/xfflink/version"
	"github.com/xfflink/xfflink/xff"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("LINK", "DUMP", "SPLITS", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "LINK":
		err = link(md)

	case "DUMP":
		err = dump(md)

	case "SPLITS":
		err = split(md)

	case "VERSION":
		fmt.Println(version.String())
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

func link(md *modalflag.Modes) error {
	md.NewMode()

	image := md.AddString("image", "", "fixed base image (ELF)")
	out := md.AddString("out", "", "output directory (default: unique directory in the current directory)")
	splitsFile := md.AddString("splits", "", "split list for the base image")
	discover := md.AddBool("discover", false, "discover relocations by scanning code sections")
	graph := md.AddBool("graph", false, "write a graph of the layout in the dot language")
	debug := md.AddBool("debug", false, "write a record of every applied relocation")
	log := md.AddBool("log", false, "echo log to stdout")
	verbose := md.AddBool("verbose", false, "log every relocation and discovery match")
	prefsOverride := md.AddString("prefs", "", "preferences for this run only (key::value; key2::value2)")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	md.AdditionalHelp("modules can be listed individually or as directories containing .xff files")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(logger.NewColorizer(os.Stdout))
	} else {
		logger.SetEcho(nil)
	}
	logger.Log(logger.Allow, "xfflink", version.String())

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Println("! stats server not available in this build")
		}
	}

	if *image == "" {
		return curated.Errorf("base image required for %s mode", md)
	}
	if len(md.RemainingArgs()) == 0 {
		return curated.Errorf("modules required for %s mode", md)
	}

	if *prefsOverride != "" {
		prefs.PushCommandLineStack(*prefsOverride)
		defer func() {
			if unused := prefs.PopCommandLineStack(); unused != "" {
				fmt.Printf("! unused preferences: %s\n", unused)
			}
		}()
	}

	pref, err := linker.NewPreferences("")
	if err != nil {
		return err
	}
	opts := pref.Options()

	// the discover flag overrides the preference only if it has been set
	md.Visit(func(flag string) {
		if flag == "discover" {
			opts.Discover = *discover
		}
	})
	if *verbose {
		opts.Detail = logger.Allow
	}

	img, err := linker.LoadImage(*image)
	if err != nil {
		return err
	}

	if *splitsFile != "" {
		opts.ImageSplits, err = linker.LoadSplits(*splitsFile, splits.SectionNames(img.Sections))
		if err != nil {
			return err
		}
	}

	pths, err := linker.ExpandModulePaths(md.RemainingArgs())
	if err != nil {
		return err
	}
	modules, diags := linker.LoadModules(pths)
	if len(modules) == 0 {
		return curated.Errorf("no modules could be loaded")
	}

	res, err := linker.Link(img, modules, opts)
	if err != nil {
		return err
	}
	res.Diagnostics = append(diags, res.Diagnostics...)

	dir := *out
	if dir == "" {
		dir = paths.UniqueFilename("xfflink", *image)
	}
	err = res.WriteReports(dir, linker.Artifacts{Graph: *graph, Debug: *debug})
	if err != nil {
		return err
	}

	fmt.Printf("* %s\n", res.Report)
	if len(res.Diagnostics) > 0 {
		fmt.Printf("* %d diagnostics\n", len(res.Diagnostics))
	}
	fmt.Printf("* output written to %s\n", dir)

	return nil
}

var (
	xffMagic = []byte("xff2")
	elfMagic = []byte("\x7fELF")
)

func dump(md *modalflag.Modes) error {
	md.NewMode()
	md.AdditionalHelp("the container type is detected from the file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return curated.Errorf("container file required for %s mode", md)
	case 1:
		b, err := os.ReadFile(md.GetArg(0))
		if err != nil {
			return curated.Errorf("%v", err)
		}

		switch {
		case bytes.HasPrefix(b, xffMagic):
			f, err := xff.Parse(b)
			if err != nil {
				return err
			}
			f.Dump(os.Stdout)

		case bytes.HasPrefix(b, elfMagic):
			f, err := elfimage.Parse(b)
			if err != nil {
				return err
			}
			f.Dump(os.Stdout)

		default:
			return curated.Errorf("%s is not a recognised container", md.GetArg(0))
		}
	default:
		return curated.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func split(md *modalflag.Modes) error {
	md.NewMode()

	out := md.AddString("out", "", "write split list to file (default: stdout)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return curated.Errorf("module required for %s mode", md)
	case 1:
		modules, diags := linker.LoadModules([]string{md.GetArg(0)})
		if len(diags) > 0 {
			return diags[0].Err
		}
		m := modules[0]

		var w io.Writer = os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return curated.Errorf("%v", err)
			}
			defer f.Close()
			w = f
		}

		return splits.Write(w, splits.FromSymbols(m), splits.SectionNames(m.Sections))
	default:
		return curated.Errorf("too many arguments for %s mode", md)
	}
}
